package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/airnode/ventbridge"
	"github.com/airnode/ventbridge/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSender loops every sent envelope straight back through a
// dispatcher, simulating a bridge that echoes whatever it is sent. Tests
// install a rewrite hook to turn a request into a plausible reply.
type fakeSender struct {
	mu       sync.Mutex
	sent     []wire.Envelope
	onSend   func(wire.Envelope) *wire.Envelope // returns a reply to deliver, or nil
	deliverd *Dispatcher
}

func (f *fakeSender) Send(payload []byte) error {
	env, err := wire.Decode(payload)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.sent = append(f.sent, env)
	f.mu.Unlock()
	if f.onSend != nil {
		if reply := f.onSend(env); reply != nil {
			go f.deliverd.HandleFrame(wire.Encode(*reply))
		}
	}
	return nil
}

func TestRequestCorrelatesReplyByRefId(t *testing.T) {
	sender := &fakeSender{}
	d := New(sender, ventbridge.NewUUID(), nil, nil)
	sender.deliverd = d
	sender.onSend = func(req wire.Envelope) *wire.Envelope {
		reply := wire.Envelope{Tag: ventbridge.OpCnRmiResponse, RefId: req.RefId, Payload: []byte{0x00}}
		return &reply
	}

	reply, err := d.Request(context.Background(), ventbridge.UUID{}, ventbridge.OpCnRmiRequest, []byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, reply.Payload)
}

func TestRequestAndNotifyStampLocalUUIDAsSrc(t *testing.T) {
	sender := &fakeSender{}
	local := ventbridge.NewUUID()
	d := New(sender, local, nil, nil)
	sender.deliverd = d
	sender.onSend = func(req wire.Envelope) *wire.Envelope {
		reply := wire.Envelope{Tag: ventbridge.OpCnRmiResponse, RefId: req.RefId, Payload: []byte{0x00}}
		return &reply
	}

	_, err := d.Request(context.Background(), ventbridge.NewUUID(), ventbridge.OpCnRmiRequest, []byte{0x01})
	require.NoError(t, err)
	require.NoError(t, d.Notify(ventbridge.NewUUID(), ventbridge.OpKeepAlive, nil))

	require.Len(t, sender.sent, 2)
	assert.Equal(t, local, sender.sent[0].Src)
	assert.Equal(t, local, sender.sent[1].Src)
}

func TestRequestTimesOutWithoutReply(t *testing.T) {
	sender := &fakeSender{}
	d := New(sender, ventbridge.NewUUID(), nil, nil)
	sender.deliverd = d

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := d.Request(ctx, ventbridge.UUID{}, ventbridge.OpCnRmiRequest, []byte{0x01})
	require.Error(t, err)
	assert.Truef(t, err == ventbridge.ErrTimeout || err == ventbridge.ErrCancelled,
		"expected timeout or cancellation, got %v", err)
}

func TestUnmatchedReplyIsDroppedNotFatal(t *testing.T) {
	sender := &fakeSender{}
	var gotNotification bool
	d := New(sender, ventbridge.NewUUID(), func(e wire.Envelope) { gotNotification = true }, nil)
	sender.deliverd = d

	stray := wire.Envelope{Tag: ventbridge.OpCnRmiResponse, RefId: 999, Payload: []byte{1}}
	d.HandleFrame(wire.Encode(stray))

	assert.True(t, gotNotification)
	assert.Equal(t, 0, d.Pending())
}

func TestNotificationsRouteWithoutRefId(t *testing.T) {
	sender := &fakeSender{}
	received := make(chan wire.Envelope, 1)
	d := New(sender, ventbridge.NewUUID(), func(e wire.Envelope) { received <- e }, nil)
	sender.deliverd = d

	note := wire.Envelope{Tag: ventbridge.OpCnRpdoNotification, Payload: []byte{0x01, 0x02}}
	d.HandleFrame(wire.Encode(note))

	select {
	case got := <-received:
		assert.Equal(t, ventbridge.OpCnRpdoNotification, got.Tag)
	case <-time.After(time.Second):
		t.Fatal("notification not routed")
	}
}

func TestCloseFailsAllPendingRequests(t *testing.T) {
	sender := &fakeSender{}
	d := New(sender, ventbridge.NewUUID(), nil, nil)
	sender.deliverd = d

	errs := make(chan error, 1)
	go func() {
		_, err := d.Request(context.Background(), ventbridge.UUID{}, ventbridge.OpCnRmiRequest, []byte{0x01})
		errs <- err
	}()

	require.Eventually(t, func() bool { return d.Pending() == 1 }, time.Second, 5*time.Millisecond)
	d.Close(ventbridge.ErrTransportLost)

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ventbridge.ErrTransportLost)
	case <-time.After(time.Second):
		t.Fatal("pending request was not failed on close")
	}
}

func TestRequestAfterCloseIsRejected(t *testing.T) {
	sender := &fakeSender{}
	d := New(sender, ventbridge.NewUUID(), nil, nil)
	sender.deliverd = d
	d.Close(ventbridge.ErrSessionClosed)

	_, err := d.Request(context.Background(), ventbridge.UUID{}, ventbridge.OpCnRmiRequest, []byte{0x01})
	assert.ErrorIs(t, err, ventbridge.ErrSessionClosed)
}
