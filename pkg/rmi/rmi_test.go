package rmi

import (
	"context"
	"testing"

	"github.com/airnode/ventbridge"
	"github.com/airnode/ventbridge/pkg/dispatch"
	"github.com/airnode/ventbridge/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	disp    *dispatch.Dispatcher
	respond func(req wire.Envelope) wire.Envelope
}

func (f *fakeSender) Send(payload []byte) error {
	req, err := wire.Decode(payload)
	if err != nil {
		return err
	}
	reply := f.respond(req)
	reply.RefId = req.RefId
	go f.disp.HandleFrame(wire.Encode(reply))
	return nil
}

func newTestClient(t *testing.T, respond func(wire.Envelope) wire.Envelope) *Client {
	t.Helper()
	sender := &fakeSender{respond: respond}
	disp := dispatch.New(sender, ventbridge.NewUUID(), nil, nil)
	sender.disp = disp
	return New(disp, ventbridge.NewUUID())
}

func TestGetPropertyDecodesTypedValue(t *testing.T) {
	c := newTestClient(t, func(req wire.Envelope) wire.Envelope {
		return wire.Envelope{Tag: ventbridge.OpCnRmiResponse, Payload: []byte{0x00, 0x3c, 0x00}}
	})
	v, err := c.GetProperty(context.Background(), wire.RMINodeUnit, 0x01, wire.TypeInt16, 0x10)
	require.NoError(t, err)
	assert.Equal(t, int16(60), v)
}

func TestGetPropertyPropagatesRMIError(t *testing.T) {
	c := newTestClient(t, func(req wire.Envelope) wire.Envelope {
		return wire.Envelope{Tag: ventbridge.OpCnRmiResponse, Payload: []byte{ventbridge.RMIErrUnknownProperty}}
	})
	_, err := c.GetProperty(context.Background(), wire.RMINodeUnit, 0x01, wire.TypeInt16, 0x99)
	var rmiErr *ventbridge.RMIError
	require.ErrorAs(t, err, &rmiErr)
	assert.Equal(t, ventbridge.RMIErrUnknownProperty, rmiErr.Code)
}

func TestSetPropertyEncodesAndSends(t *testing.T) {
	var gotPayload []byte
	c := newTestClient(t, func(req wire.Envelope) wire.Envelope {
		gotPayload = req.Payload
		return wire.Envelope{Tag: ventbridge.OpCnRmiResponse, Payload: []byte{0x00}}
	})
	err := c.SetProperty(context.Background(), wire.RMINodeUnit, 0x01, 0x20, wire.TypeUint8, uint8(3))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03, wire.RMINodeUnit, 0x01, 0x20, 0x03}, gotPayload)
}

func TestGetMultiPropertiesSplitsFixedWidthReply(t *testing.T) {
	c := newTestClient(t, func(req wire.Envelope) wire.Envelope {
		return wire.Envelope{Tag: ventbridge.OpCnRmiResponse, Payload: []byte{0x00, 10, 20, 30}}
	})
	values, err := c.GetMultiProperties(context.Background(), wire.RMINodeUnit, 0x01, []uint8{0x10, 0x11, 0x12}, wire.TypeUint8)
	require.NoError(t, err)
	assert.Equal(t, []any{uint8(10), uint8(20), uint8(30)}, values)
}

func TestGetMultiPropertiesRejectsVariableWidthType(t *testing.T) {
	c := newTestClient(t, func(req wire.Envelope) wire.Envelope {
		t.Fatal("should not send a request for a rejected type")
		return wire.Envelope{}
	})
	_, err := c.GetMultiProperties(context.Background(), wire.RMINodeUnit, 0x01, []uint8{0x10}, wire.TypeString)
	assert.ErrorIs(t, err, ventbridge.ErrIllegalArgument)
}

func TestSendCommandRejectsNonSubunitOpcode(t *testing.T) {
	c := newTestClient(t, func(req wire.Envelope) wire.Envelope {
		t.Fatal("should not send a request for a rejected opcode")
		return wire.Envelope{}
	})
	_, err := c.SendCommand(context.Background(), wire.RMINodeUnit, 0x01, 0x05, nil)
	assert.ErrorIs(t, err, ventbridge.ErrIllegalArgument)
}
