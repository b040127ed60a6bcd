// Package pdo is the process-data-object subscription registry: it
// turns CnRpdoRequest/Confirm bookkeeping and CnRpdoNotification
// delivery into a subscribe/unsubscribe API over typed, optionally
// deduplicated sensor values (spec.md §4.6).
package pdo

import (
	"context"
	"log/slog"
	"sync"

	"github.com/airnode/ventbridge"
	"github.com/airnode/ventbridge/pkg/dispatch"
	"github.com/airnode/ventbridge/pkg/sensors"
	"github.com/airnode/ventbridge/pkg/wire"
)

// Consumer receives one decoded, (optionally) scaled value per
// notification. It is invoked on the dispatcher's notification path and
// must never block (spec.md §5: "PDO consumers must be non-blocking").
type Consumer func(pdid uint32, value any)

// timeoutForever/timeoutCancel are the RPDO timeout field's two special
// values (spec.md §4.6).
const (
	timeoutForever uint32 = 0xFFFFFFFF
	timeoutCancel  uint32 = 0
)

type subscription struct {
	typeTag  wire.TypeTag
	consumer Consumer
	dedup    bool
	haveLast bool
	last     any
}

// Registry owns the {pdid -> subscription} map and the glue to issue
// CnRpdoRequest/Confirm and to turn CnRpdoNotification frames into
// Consumer calls.
type Registry struct {
	disp    *dispatch.Dispatcher
	bridge  ventbridge.UUID
	catalog *sensors.Catalog
	logger  *slog.Logger

	mu   sync.Mutex
	subs map[uint32]*subscription
}

// New builds a Registry. catalog may be nil, in which case every pdid
// is delivered as its raw decoded value (spec.md §9 open question (c)).
func New(disp *dispatch.Dispatcher, bridge ventbridge.UUID, catalog *sensors.Catalog, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		disp:    disp,
		bridge:  bridge,
		catalog: catalog,
		logger:  logger,
		subs:    make(map[uint32]*subscription),
	}
}

// Subscribe installs a subscription for pdid and sends the
// CnRpdoRequest that tells the bridge to start streaming it. Calling
// Subscribe again for the same pdid replaces the existing subscription
// (spec.md §4.6: "if a subscription already exists, it is replaced").
func (r *Registry) Subscribe(ctx context.Context, pdid uint32, typeTag wire.TypeTag, consumer Consumer, dedup bool) error {
	payload := wire.EncodeRpdoRequest(pdid, typeTag, timeoutForever)
	_, err := r.dispatcher().Request(ctx, r.bridge, ventbridge.OpCnRpdoRequest, payload)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.subs[pdid] = &subscription{typeTag: typeTag, consumer: consumer, dedup: dedup}
	r.mu.Unlock()
	return nil
}

// Unsubscribe sends a cancelling CnRpdoRequest and removes the
// subscription regardless of the confirm's outcome (spec.md §4.6).
func (r *Registry) Unsubscribe(ctx context.Context, pdid uint32) error {
	r.mu.Lock()
	sub, existed := r.subs[pdid]
	delete(r.subs, pdid)
	r.mu.Unlock()

	if !existed {
		return nil
	}
	payload := wire.EncodeRpdoRequest(pdid, sub.typeTag, timeoutCancel)
	_, err := r.dispatcher().Request(ctx, r.bridge, ventbridge.OpCnRpdoRequest, payload)
	return err
}

// Resubscribe reinstalls every currently tracked subscription, used
// after a reconnect to restore streaming before new user requests are
// allowed to proceed (spec.md §8 scenario 6).
func (r *Registry) Resubscribe(ctx context.Context) error {
	r.mu.Lock()
	snapshot := make(map[uint32]*subscription, len(r.subs))
	for pdid, sub := range r.subs {
		snapshot[pdid] = sub
	}
	r.mu.Unlock()

	disp := r.dispatcher()
	for pdid, sub := range snapshot {
		payload := wire.EncodeRpdoRequest(pdid, sub.typeTag, timeoutForever)
		if _, err := disp.Request(ctx, r.bridge, ventbridge.OpCnRpdoRequest, payload); err != nil {
			return err
		}
	}
	return nil
}

// dispatcher returns the current dispatcher under lock, since Rebind
// may swap it from another goroutine across a reconnect.
func (r *Registry) dispatcher() *dispatch.Dispatcher {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disp
}

// HandleNotification decodes a CnRpdoNotification payload and invokes
// the matching consumer. It is meant to be wired as the PDO branch of
// the dispatcher's notification handler. Unknown pdids are logged and
// dropped, never fatal (spec.md §4.6).
func (r *Registry) HandleNotification(env wire.Envelope) {
	pdid, data, err := wire.DecodeRpdoNotification(env.Payload)
	if err != nil {
		r.logger.Warn("dropping malformed rpdo notification", "error", err)
		return
	}

	r.mu.Lock()
	sub, ok := r.subs[pdid]
	r.mu.Unlock()
	if !ok {
		r.logger.Debug("dropping notification for unknown pdid", "pdid", pdid)
		return
	}

	value, err := wire.DecodeValue(sub.typeTag, data)
	if err != nil {
		r.logger.Warn("dropping rpdo notification with undecodable value", "pdid", pdid, "error", err)
		return
	}

	if entry, found := r.catalog.Lookup(pdid); found {
		value = entry.ApplyScale(value)
	}

	r.mu.Lock()
	if sub.dedup {
		if sub.haveLast && sub.last == value {
			r.mu.Unlock()
			return
		}
		sub.haveLast = true
		sub.last = value
	}
	r.mu.Unlock()

	sub.consumer(pdid, value)
}

// Rebind points the registry at a new dispatcher, keeping every tracked
// subscription in place. Used across a reconnect (spec.md §4.4, §8
// scenario 6): the previous connection's dispatcher is gone, but the
// subscription set it built up must survive so Resubscribe can reinstall
// it on the new connection.
func (r *Registry) Rebind(disp *dispatch.Dispatcher) {
	r.mu.Lock()
	r.disp = disp
	r.mu.Unlock()
}

// Count reports the number of active subscriptions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
