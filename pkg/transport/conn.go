// Package transport owns the single TCP connection to a bridge: a
// reader goroutine that decodes length-prefixed frames and hands them
// to a dispatcher, and a writer surface serialized behind a mutex
// (spec.md §4.2).
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/airnode/ventbridge/pkg/wire"
)

// FrameHandler receives one decoded frame payload at a time, always
// from the single reader goroutine. It must not block (spec.md §5).
type FrameHandler func(payload []byte)

// CloseHandler is invoked exactly once when the reader goroutine exits,
// carrying the reason (io.EOF for a graceful peer close, or any other
// error).
type CloseHandler func(reason error)

// Conn is a framed TCP connection to a single bridge.
type Conn struct {
	conn         net.Conn
	logger       *slog.Logger
	maxFrameSize uint32

	writeMu sync.Mutex

	onFrame FrameHandler
	onClose CloseHandler

	lastRxMu   sync.Mutex
	lastRxTime time.Time

	closeOnce sync.Once
}

// Dial opens a TCP connection to addr (host:port). The returned Conn
// does not start reading until Start is called, so the caller can
// finish wiring onFrame/onClose first.
func Dial(ctx context.Context, addr string, logger *slog.Logger) (*Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Conn{
		conn:         c,
		logger:       logger,
		maxFrameSize: wire.DefaultMaxFrameSize,
		lastRxTime:   time.Now(),
	}, nil
}

// SetMaxFrameSize overrides the default 64 KiB frame-size ceiling.
func (c *Conn) SetMaxFrameSize(n uint32) {
	c.maxFrameSize = n
}

// Start launches the reader goroutine. onFrame is called for every
// successfully decoded frame; onClose is called exactly once when the
// reader exits.
func (c *Conn) Start(onFrame FrameHandler, onClose CloseHandler) {
	c.onFrame = onFrame
	c.onClose = onClose
	go c.readLoop()
}

func (c *Conn) readLoop() {
	for {
		payload, err := wire.ReadFrame(c.conn, c.maxFrameSize)
		if err != nil {
			c.finish(err)
			return
		}
		c.lastRxMu.Lock()
		c.lastRxTime = time.Now()
		c.lastRxMu.Unlock()
		c.onFrame(payload)
	}
}

func (c *Conn) finish(reason error) {
	c.closeOnce.Do(func() {
		if errors.Is(reason, io.EOF) {
			c.logger.Info("connection closed by peer")
		} else {
			c.logger.Warn("connection reader exiting", "error", reason)
		}
		if c.onClose != nil {
			c.onClose(reason)
		}
	})
}

// Send writes one frame atomically: exactly one acquisition of the
// write lock per frame (spec.md §3 invariant: "only one writer may
// hold the transport write-half at a time").
func (c *Conn) Send(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wire.WriteFrame(c.conn, payload)
}

// Close closes the underlying socket; the reader goroutine observes the
// resulting I/O error and calls onClose.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// LastInboundAt returns the time of the most recently received frame,
// used by the keepalive companion to detect a stalled connection
// (spec.md §4.2: "no inbound traffic for 3·K").
func (c *Conn) LastInboundAt() time.Time {
	c.lastRxMu.Lock()
	defer c.lastRxMu.Unlock()
	return c.lastRxTime
}

