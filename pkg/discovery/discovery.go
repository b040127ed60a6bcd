// Package discovery implements UDP broadcast discovery of bridges on
// the local network (spec.md §4.7).
package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/airnode/ventbridge"
	"golang.org/x/sys/unix"
)

// DefaultBroadcastAddr and DefaultTimeout are the spec's defaults for
// an unconfigured discover() call (spec.md §4.7).
const (
	DefaultBroadcastAddr = "255.255.255.255"
	DefaultTimeout       = 2 * time.Second
)

// Result is one deduplicated bridge reply.
type Result struct {
	Addr    string
	UUID    ventbridge.UUID
	Version string
}

// searchGatewayRequest is a frame-less, src=0/dst=0, empty-payload
// envelope: the vendor schema's discovery probe has no operation header
// because it is not addressed to a specific bridge yet (spec.md §4.7).
var searchGatewayRequestPayload = []byte{}

// Discover sends one SearchGatewayRequest to broadcastAddr:port and
// collects replies until timeout elapses or ctx is done, returning the
// set of distinct bridges seen, deduplicated by uuid (spec.md §4.7, §8
// scenario 5).
func Discover(ctx context.Context, broadcastAddr string, port int, timeout time.Duration) ([]Result, error) {
	if broadcastAddr == "" {
		broadcastAddr = DefaultBroadcastAddr
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if port == 0 {
		port = ventbridge.DiscoveryPort
	}

	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}

	pc, err := lc.ListenPacket(ctx, "udp4", ":0")
	if err != nil {
		return nil, fmt.Errorf("discovery: listen: %w", err)
	}
	defer pc.Close()

	dst, err := net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", broadcastAddr, port))
	if err != nil {
		return nil, fmt.Errorf("discovery: resolve broadcast address: %w", err)
	}

	if _, err := pc.WriteTo(searchGatewayRequestPayload, dst); err != nil {
		return nil, fmt.Errorf("discovery: send probe: %w", err)
	}

	deadline := time.Now().Add(timeout)
	_ = pc.SetReadDeadline(deadline)

	var mu sync.Mutex
	seen := make(map[ventbridge.UUID]Result)

	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 1024)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			n, addr, err := pc.ReadFrom(buf)
			if err != nil {
				return
			}
			resp, err := DecodeSearchGatewayResponse(buf[:n])
			if err != nil {
				continue
			}
			mu.Lock()
			seen[resp.UUID] = Result{Addr: addr.String(), UUID: resp.UUID, Version: resp.Version}
			mu.Unlock()
		}
	}()

	select {
	case <-ctx.Done():
	case <-time.After(time.Until(deadline)):
	case <-done:
	}
	_ = pc.SetReadDeadline(time.Now())
	<-done

	mu.Lock()
	defer mu.Unlock()
	results := make([]Result, 0, len(seen))
	for _, r := range seen {
		results = append(results, r)
	}
	return results, nil
}
