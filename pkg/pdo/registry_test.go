package pdo

import (
	"context"
	"testing"
	"time"

	"github.com/airnode/ventbridge"
	"github.com/airnode/ventbridge/pkg/dispatch"
	"github.com/airnode/ventbridge/pkg/sensors"
	"github.com/airnode/ventbridge/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	disp *dispatch.Dispatcher
}

func (f *fakeSender) Send(payload []byte) error {
	req, err := wire.Decode(payload)
	if err != nil {
		return err
	}
	reply := wire.Envelope{Tag: ventbridge.OpCnRpdoConfirm, RefId: req.RefId}
	go f.disp.HandleFrame(wire.Encode(reply))
	return nil
}

func newTestRegistry(t *testing.T, catalog *sensors.Catalog) (*Registry, *dispatch.Dispatcher) {
	t.Helper()
	sender := &fakeSender{}
	var reg *Registry
	disp := dispatch.New(sender, ventbridge.NewUUID(), func(e wire.Envelope) { reg.HandleNotification(e) }, nil)
	sender.disp = disp
	reg = New(disp, ventbridge.NewUUID(), catalog, nil)
	return reg, disp
}

func TestSubscribeThenNotificationDeliversScaledValue(t *testing.T) {
	reg, disp := newTestRegistry(t, sensors.Default)

	got := make(chan any, 1)
	require.NoError(t, reg.Subscribe(context.Background(), 276, wire.TypeInt16, func(pdid uint32, value any) {
		got <- value
	}, false))

	note := wire.Envelope{
		Tag:     ventbridge.OpCnRpdoNotification,
		Payload: wire.EncodeRpdoNotification(276, []byte{0x3c, 0x00}),
	}
	disp.HandleFrame(wire.Encode(note))

	select {
	case v := <-got:
		assert.Equal(t, 6.0, v)
	case <-time.After(time.Second):
		t.Fatal("consumer was not invoked")
	}
}

func TestUnsubscribeRemovesSubscription(t *testing.T) {
	reg, disp := newTestRegistry(t, nil)
	require.NoError(t, reg.Subscribe(context.Background(), 65, wire.TypeUint8, func(uint32, any) {}, false))
	assert.Equal(t, 1, reg.Count())

	require.NoError(t, reg.Unsubscribe(context.Background(), 65))
	assert.Equal(t, 0, reg.Count())

	note := wire.Envelope{Tag: ventbridge.OpCnRpdoNotification, Payload: wire.EncodeRpdoNotification(65, []byte{3})}
	disp.HandleFrame(wire.Encode(note))
}

func TestSubscribeTwiceReplacesNotDuplicates(t *testing.T) {
	reg, _ := newTestRegistry(t, nil)
	require.NoError(t, reg.Subscribe(context.Background(), 65, wire.TypeUint8, func(uint32, any) {}, false))
	require.NoError(t, reg.Subscribe(context.Background(), 65, wire.TypeUint8, func(uint32, any) {}, false))
	assert.Equal(t, 1, reg.Count())
}

func TestDedupSuppressesRepeatedEqualValues(t *testing.T) {
	reg, disp := newTestRegistry(t, nil)
	var calls int
	require.NoError(t, reg.Subscribe(context.Background(), 65, wire.TypeUint8, func(uint32, any) {
		calls++
	}, true))

	for i := 0; i < 3; i++ {
		note := wire.Envelope{Tag: ventbridge.OpCnRpdoNotification, Payload: wire.EncodeRpdoNotification(65, []byte{7})}
		disp.HandleFrame(wire.Encode(note))
	}
	assert.Equal(t, 1, calls)
}

func TestUnknownPdidNotificationIsDropped(t *testing.T) {
	reg, disp := newTestRegistry(t, nil)
	called := false
	require.NoError(t, reg.Subscribe(context.Background(), 65, wire.TypeUint8, func(uint32, any) { called = true }, false))

	note := wire.Envelope{Tag: ventbridge.OpCnRpdoNotification, Payload: wire.EncodeRpdoNotification(999, []byte{1})}
	disp.HandleFrame(wire.Encode(note))
	assert.False(t, called)
}
