package uart

import (
	"sync"
)

// Emulator is an in-memory UART. After every transmitted byte the
// transmitter reports busy for ShiftPolls line status reads, which forces
// callers through the polling loop. A byte written while the transmitter is
// busy is still captured but counted as an overrun.
type Emulator struct {
	ShiftPolls int

	mu       sync.Mutex
	busy     int
	overruns int
	out      []byte
}

var _ Registers = (*Emulator)(nil)

func (e *Emulator) LineStatus() uint8 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy != 0 {
		e.busy--
		return 0
	}
	return LSRTHRE
}

func (e *Emulator) Transmit(c byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy != 0 {
		e.overruns++
	}
	e.out = append(e.out, c)
	e.busy = e.ShiftPolls
}

// Bytes returns a copy of everything transmitted so far.
func (e *Emulator) Bytes() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]byte(nil), e.out...)
}

func (e *Emulator) String() string {
	return string(e.Bytes())
}

func (e *Emulator) Overruns() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.overruns
}
