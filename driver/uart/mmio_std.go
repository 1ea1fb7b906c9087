//go:build !linux

package uart

import (
	"errors"
)

type MMIO struct{}

var _ Registers = (*MMIO)(nil)

var errMMIOUnsupported = errors.New("MMIO UART access requires linux")

func OpenMMIO(dev string, base int64) (*MMIO, error) {
	return nil, errMMIOUnsupported
}

func (m *MMIO) LineStatus() uint8 {
	panic("unexpected MMIO access")
}

func (m *MMIO) Transmit(c byte) {
	panic("unexpected MMIO access")
}

func (m *MMIO) Close() error {
	return nil
}
