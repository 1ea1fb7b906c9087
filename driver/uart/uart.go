package uart

// Polled transmit on a 16550-compatible UART.
// Register layout as exposed by the QEMU virt machine:
// https://www.qemu.org/docs/master/system/riscv/virt.html

import (
	"sync"

	"example.com/rvlock/base/decimal"
)

const (
	// QEMUVirtBase is the physical address of the first UART on QEMU virt.
	QEMUVirtBase = 0x10000000

	RegTHR = 0 // transmit holding register (write)
	RegLSR = 5 // line status register (read)

	// LSRTHRE is set while the transmit holding register can accept a byte.
	LSRTHRE = 1 << 5
)

// Registers is the transmit side of a UART register block.
type Registers interface {
	LineStatus() uint8
	Transmit(c byte)
}

// UART is safe for concurrent use. The status poll and the write of a byte
// happen under one lock, so concurrent callers cannot both observe THRE and
// overrun the holding register.
type UART struct {
	mu   sync.Mutex
	regs Registers
}

func New(regs Registers) *UART {
	if regs == nil {
		panic("UART registers must not be nil")
	}
	return &UART{regs: regs}
}

// Putc waits until the transmitter is ready and writes c. There is no
// timeout: a transmitter that never becomes ready blocks Putc forever.
func (u *UART) Putc(c byte) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for u.regs.LineStatus()&LSRTHRE == 0 {
	}
	u.regs.Transmit(c)
}

// Puts writes s byte by byte. Bytes of concurrent calls may interleave.
func (u *UART) Puts(s string) {
	for i := 0; i != len(s); i++ {
		u.Putc(s[i])
	}
}

// PutUint writes the decimal representation of x.
func (u *UART) PutUint(x uint64) {
	var buf [decimal.MaxLen]byte
	for _, c := range decimal.AppendUint(buf[:0], x) {
		u.Putc(c)
	}
}
