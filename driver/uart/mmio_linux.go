//go:build linux

package uart

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// MMIO accesses a UART register block mapped from a physical memory device
// such as /dev/mem.
type MMIO struct {
	mem []byte
	thr *uint8
	lsr *uint8
}

var _ Registers = (*MMIO)(nil)

func OpenMMIO(dev string, base int64) (*MMIO, error) {
	fd, err := unix.Open(dev, unix.O_RDWR|unix.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dev, err)
	}
	defer unix.Close(fd)

	pageSize := int64(os.Getpagesize())
	pageBase := base &^ (pageSize - 1)
	mem, err := unix.Mmap(fd, pageBase, int(pageSize),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("failed to map %s at %#x: %w", dev, pageBase, err)
	}

	off := base - pageBase
	if off+RegLSR >= pageSize {
		_ = unix.Munmap(mem)
		return nil, fmt.Errorf("register block at %#x crosses a page boundary", base)
	}
	return &MMIO{
		mem: mem,
		thr: &mem[off+RegTHR],
		lsr: &mem[off+RegLSR],
	}, nil
}

// Register accesses go through non-inlined calls so that polling loops
// re-read device memory on every iteration.

//go:noinline
func load8(p *uint8) uint8 { return *p }

//go:noinline
func store8(p *uint8, v uint8) { *p = v }

func (m *MMIO) LineStatus() uint8 {
	return load8(m.lsr)
}

func (m *MMIO) Transmit(c byte) {
	store8(m.thr, c)
}

func (m *MMIO) Close() error {
	if m.mem == nil {
		return nil
	}
	err := unix.Munmap(m.mem)
	m.mem, m.thr, m.lsr = nil, nil, nil
	return err
}
