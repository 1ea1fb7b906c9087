package netconsole

// A UART register backend that ships every transmitted byte to a remote log
// collector as a UDP datagram, in the spirit of Linux netconsole.

import (
	"fmt"
	"net"

	"github.com/libp2p/go-reuseport"
	"go.uber.org/zap"

	"example.com/rvlock/driver/uart"
)

type Registers struct {
	log  *zap.Logger
	conn net.Conn
}

var _ uart.Registers = (*Registers)(nil)

// Dial connects to the collector at remoteAddr. If localAddr is not empty the
// socket is bound to it with SO_REUSEPORT so several processes can share a
// fixed source port.
func Dial(log *zap.Logger, localAddr, remoteAddr string) (*Registers, error) {
	var conn net.Conn
	var err error
	if localAddr == "" {
		conn, err = net.Dial("udp", remoteAddr)
	} else {
		conn, err = reuseport.Dial("udp", localAddr, remoteAddr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dial netconsole collector %s: %w", remoteAddr, err)
	}
	log.Debug("netconsole connected",
		zap.Stringer("local", conn.LocalAddr()),
		zap.Stringer("remote", conn.RemoteAddr()),
	)
	return &Registers{log: log, conn: conn}, nil
}

func (r *Registers) LineStatus() uint8 {
	return uart.LSRTHRE
}

func (r *Registers) Transmit(c byte) {
	_, err := r.conn.Write([]byte{c})
	if err != nil {
		r.log.Debug("netconsole write failed", zap.Error(err))
	}
}

func (r *Registers) LocalAddr() net.Addr {
	return r.conn.LocalAddr()
}

func (r *Registers) Close() error {
	return r.conn.Close()
}
