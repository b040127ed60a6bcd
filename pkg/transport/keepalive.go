package transport

import (
	"context"
	"log/slog"
	"time"

	"github.com/airnode/ventbridge"
)

// DefaultKeepaliveInterval is K in spec.md §4.2: the cadence at which a
// zero-payload KeepAlive frame is sent while the session is active.
const DefaultKeepaliveInterval = 5 * time.Second

// Keepalive periodically calls send (to emit a KeepAlive frame) and
// watches the connection's last-inbound timestamp, reporting a stall
// via onStall when no inbound traffic has been observed for 3·interval
// (spec.md §4.2, §8 scenario 4).
type Keepalive struct {
	conn     *Conn
	interval time.Duration
	logger   *slog.Logger
	send     func() error
	onStall  func(error)
}

// NewKeepalive builds a keepalive companion bound to conn. send is
// called on every tick to emit the wire KeepAlive operation; onStall is
// called at most once if the stall window elapses before ctx is done.
func NewKeepalive(conn *Conn, interval time.Duration, logger *slog.Logger, send func() error, onStall func(error)) *Keepalive {
	if interval <= 0 {
		interval = DefaultKeepaliveInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Keepalive{conn: conn, interval: interval, logger: logger, send: send, onStall: onStall}
}

// Run blocks until ctx is cancelled, ticking every interval.
func (k *Keepalive) Run(ctx context.Context) {
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()
	stallWindow := 3 * k.interval
	stalled := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if time.Since(k.conn.LastInboundAt()) > stallWindow {
				if !stalled {
					stalled = true
					k.logger.Warn("no inbound traffic within stall window, reporting stalled connection", "window", stallWindow)
					if k.onStall != nil {
						k.onStall(ventbridge.ErrStalledConnection)
					}
				}
				return
			}
			if err := k.send(); err != nil {
				k.logger.Warn("keepalive send failed", "error", err)
			}
		}
	}
}
