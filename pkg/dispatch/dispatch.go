// Package dispatch correlates outbound requests with inbound replies by
// reference id and routes unsolicited notifications to their owning
// subsystem (spec.md §4.3, §5: "exactly one reader goroutine; request
// correlation happens off that goroutine's critical path").
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/airnode/ventbridge"
	"github.com/airnode/ventbridge/internal/refid"
	"github.com/airnode/ventbridge/pkg/wire"
)

// DefaultTimeout is the per-request deadline applied when the caller's
// context carries none (spec.md §4.3).
const DefaultTimeout = 5 * time.Second

// Sender is the minimal transport surface the dispatcher needs: a
// single framed-write method. *transport.Conn satisfies it.
type Sender interface {
	Send(payload []byte) error
}

// NotificationHandler receives envelopes that are not replies to a
// pending request: PDO notifications, node notifications, session
// close notifications (spec.md §3).
type NotificationHandler func(wire.Envelope)

type pendingRequest struct {
	replyCh chan wire.Envelope
	errCh   chan error
}

// Dispatcher owns the pending-request table and the mapping from wire
// envelopes back to the caller that is waiting on them.
type Dispatcher struct {
	sender    Sender
	localUUID ventbridge.UUID
	refGen    *refid.Generator
	logger    *slog.Logger

	mu      sync.Mutex
	pending map[uint32]*pendingRequest
	closed  bool

	onNotification NotificationHandler
}

// New builds a Dispatcher bound to sender. Every envelope it sends
// carries localUUID as its source (spec.md §3: "source UUID in
// outbound frames always equals the configured local UUID"; discovery
// and SetAddress are documented exceptions handled outside this type).
// onNotification is called, off the caller's goroutine, for every
// envelope that does not correlate to a pending request.
func New(sender Sender, localUUID ventbridge.UUID, onNotification NotificationHandler, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		sender:         sender,
		localUUID:      localUUID,
		refGen:         refid.New(),
		logger:         logger,
		pending:        make(map[uint32]*pendingRequest),
		onNotification: onNotification,
	}
}

// Request sends an envelope carrying a freshly allocated reference id
// and blocks until a reply with a matching ref id arrives, ctx is done,
// or the dispatcher is closed. A ref id collision with a still-pending
// request is a fatal protocol fault (spec.md open question: this
// implementation tears down the dispatcher, failing every pending
// request, and closes the sender when it has a Close method, rather
// than silently overwriting the earlier waiter).
func (d *Dispatcher) Request(ctx context.Context, dst ventbridge.UUID, tag ventbridge.OperationTag, payload []byte) (wire.Envelope, error) {
	refID := d.refGen.Next()

	pr := &pendingRequest{
		replyCh: make(chan wire.Envelope, 1),
		errCh:   make(chan error, 1),
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return wire.Envelope{}, ventbridge.ErrSessionClosed
	}
	if _, exists := d.pending[refID]; exists {
		d.mu.Unlock()
		err := fmt.Errorf("%w: ref id %d", ventbridge.ErrRefIdCollision, refID)
		d.Close(err)
		if c, ok := d.sender.(interface{ Close() error }); ok {
			_ = c.Close()
		}
		return wire.Envelope{}, err
	}
	d.pending[refID] = pr
	d.mu.Unlock()

	env := wire.Envelope{
		Src:     d.localUUID,
		Dst:     dst,
		Tag:     tag,
		RefId:   refID,
		Payload: payload,
	}
	if err := d.sender.Send(wire.Encode(env)); err != nil {
		d.removePending(refID)
		return wire.Envelope{}, fmt.Errorf("%w: %v", ventbridge.ErrTransportLost, err)
	}

	deadline := DefaultTimeout
	if dl, ok := ctx.Deadline(); ok {
		deadline = time.Until(dl)
	}
	timer := time.NewTimer(deadline)
	defer timer.Stop()

	select {
	case reply := <-pr.replyCh:
		return reply, nil
	case err := <-pr.errCh:
		return wire.Envelope{}, err
	case <-timer.C:
		d.removePending(refID)
		return wire.Envelope{}, ventbridge.ErrTimeout
	case <-ctx.Done():
		d.removePending(refID)
		return wire.Envelope{}, ventbridge.ErrCancelled
	}
}

// Notify sends a fire-and-forget envelope: no reference id bookkeeping,
// no reply expected (used for the keepalive heartbeat, spec.md §4.2).
func (d *Dispatcher) Notify(dst ventbridge.UUID, tag ventbridge.OperationTag, payload []byte) error {
	env := wire.Envelope{Src: d.localUUID, Dst: dst, Tag: tag, Payload: payload}
	return d.sender.Send(wire.Encode(env))
}

// HandleFrame decodes one inbound frame and either delivers it to the
// pending request it answers, or treats it as a notification. Malformed
// frames are decode-class errors: logged and dropped, never fatal
// (spec.md §7). A reply with no matching pending request (for example a
// late reply to a cancelled request) is logged and handed to the
// notification handler instead of any waiter; it is never fatal.
func (d *Dispatcher) HandleFrame(payload []byte) {
	env, err := wire.Decode(payload)
	if err != nil {
		d.logger.Warn("dropping malformed envelope", "error", err)
		return
	}

	if env.Tag.IsNotification() || env.RefId == 0 {
		if d.onNotification != nil {
			d.onNotification(env)
		}
		return
	}

	pr := d.takePending(env.RefId)
	if pr == nil {
		d.logger.Debug("dropping reply with no matching pending request", "ref_id", env.RefId, "tag", env.Tag)
		if d.onNotification != nil {
			d.onNotification(env)
		}
		return
	}
	pr.replyCh <- env
}

func (d *Dispatcher) removePending(refID uint32) {
	d.mu.Lock()
	delete(d.pending, refID)
	d.mu.Unlock()
}

func (d *Dispatcher) takePending(refID uint32) *pendingRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	pr, ok := d.pending[refID]
	if !ok {
		return nil
	}
	delete(d.pending, refID)
	return pr
}

// Close fails every pending request with err and rejects further
// requests. Called once the owning transport is torn down.
func (d *Dispatcher) Close(err error) {
	d.mu.Lock()
	d.closed = true
	pending := d.pending
	d.pending = make(map[uint32]*pendingRequest)
	d.mu.Unlock()

	for _, pr := range pending {
		pr.errCh <- err
	}
}

// Pending reports the number of requests awaiting a reply.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
