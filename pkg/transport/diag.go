package transport

import (
	"fmt"
	"net"
	"time"

	"github.com/higebu/netfd"
	"golang.org/x/sys/unix"
)

// Diagnostics is a snapshot of kernel-level TCP_INFO counters for a
// connection, read on demand by Conn.Diagnose (spec.md §4.2:
// "diagnostics are best-effort and must never fail a request").
type Diagnostics struct {
	RTT         time.Duration
	RTTVariance time.Duration
	Retransmits uint8
	State       uint8
}

// Diagnose reads TCP_INFO off conn's underlying file descriptor. It
// returns an error if the connection is not a *net.TCPConn or the
// getsockopt call fails; callers should treat that as "diagnostics
// unavailable", not a transport fault.
func (c *Conn) Diagnose() (Diagnostics, error) {
	tcpConn, ok := c.conn.(*net.TCPConn)
	if !ok {
		return Diagnostics{}, fmt.Errorf("diagnose: not a TCP connection")
	}
	fd, err := netfd.GetFdFromConn(tcpConn)
	if err != nil {
		return Diagnostics{}, fmt.Errorf("diagnose: %w", err)
	}
	info, err := unix.GetsockoptTCPInfo(int(fd), unix.IPPROTO_TCP, unix.TCP_INFO)
	if err != nil {
		return Diagnostics{}, fmt.Errorf("diagnose: getsockopt TCP_INFO: %w", err)
	}
	return Diagnostics{
		RTT:         time.Duration(info.Rtt) * time.Microsecond,
		RTTVariance: time.Duration(info.Rttvar) * time.Microsecond,
		Retransmits: info.Retransmits,
		State:       info.State,
	}, nil
}
