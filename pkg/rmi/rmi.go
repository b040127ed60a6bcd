// Package rmi is the typed remote-method-invocation client built on top
// of pkg/wire's byte encoders and pkg/dispatch's request/response
// correlation (spec.md §4.1, §6: "get property", "get multiple
// properties", "set property", subunit commands).
package rmi

import (
	"context"
	"fmt"

	"github.com/airnode/ventbridge"
	"github.com/airnode/ventbridge/pkg/dispatch"
	"github.com/airnode/ventbridge/pkg/wire"
)

// Client issues RMI requests against a single bridge over a shared
// dispatcher.
type Client struct {
	disp   *dispatch.Dispatcher
	bridge ventbridge.UUID
}

// New binds an RMI client to disp, addressing every request to bridge.
func New(disp *dispatch.Dispatcher, bridge ventbridge.UUID) *Client {
	return &Client{disp: disp, bridge: bridge}
}

// GetProperty fetches a single property and decodes it as typeTag.
func (c *Client) GetProperty(ctx context.Context, unit, subunit uint8, typeTag wire.TypeTag, prop uint8) (any, error) {
	payload := wire.EncodeGetSingle(unit, subunit, uint8(typeTag), prop)
	env, err := c.disp.Request(ctx, c.bridge, ventbridge.OpCnRmiRequest, payload)
	if err != nil {
		return nil, err
	}
	resp, err := wire.DecodeRMIResponse(env.Payload)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return wire.DecodeValue(typeTag, resp.Payload)
}

// GetMultiProperties fetches the fixed-width properties listed in props
// in a single round trip (spec.md §4.1). typeTag must be a fixed-width
// type; STRING and other variable-width tags are rejected since the
// reply cannot be split without an explicit length per element.
func (c *Client) GetMultiProperties(ctx context.Context, unit, subunit uint8, props []uint8, typeTag wire.TypeTag) ([]any, error) {
	width, ok := wire.FixedSize(typeTag)
	if !ok {
		return nil, fmt.Errorf("%w: get_multi requires a fixed-width type, got %s", ventbridge.ErrIllegalArgument, typeTag)
	}
	payload, err := wire.EncodeGetMulti(unit, subunit, props, uint8(typeTag))
	if err != nil {
		return nil, err
	}
	env, err := c.disp.Request(ctx, c.bridge, ventbridge.OpCnRmiRequest, payload)
	if err != nil {
		return nil, err
	}
	resp, err := wire.DecodeRMIResponse(env.Payload)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	if len(resp.Payload) != width*len(props) {
		return nil, fmt.Errorf("%w: expected %d bytes for %d properties, got %d",
			ventbridge.ErrTruncatedValue, width*len(props), len(props), len(resp.Payload))
	}
	values := make([]any, len(props))
	for i := range props {
		v, err := wire.DecodeValue(typeTag, resp.Payload[i*width:(i+1)*width])
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// SetProperty encodes value as typeTag and writes it to prop.
func (c *Client) SetProperty(ctx context.Context, unit, subunit, prop uint8, typeTag wire.TypeTag, value any) error {
	raw, err := wire.EncodeValue(typeTag, value)
	if err != nil {
		return err
	}
	payload := wire.EncodeSetSingle(unit, subunit, prop, raw)
	env, err := c.disp.Request(ctx, c.bridge, ventbridge.OpCnRmiRequest, payload)
	if err != nil {
		return err
	}
	resp, err := wire.DecodeRMIResponse(env.Payload)
	if err != nil {
		return err
	}
	return resp.Err()
}

// SendCommand issues a subunit command (opcode >= 0x80) built as
// [opcode, unit, subunit, args...]; args are appended unmodified
// (spec.md §4.1: "subunit commands are opaque to the RMI codec").
func (c *Client) SendCommand(ctx context.Context, unit, subunit, opcode uint8, args []byte) ([]byte, error) {
	if !wire.IsSubunitCommand(opcode) {
		return nil, fmt.Errorf("%w: opcode 0x%02x is not a subunit command", ventbridge.ErrIllegalArgument, opcode)
	}
	payload := make([]byte, 0, 3+len(args))
	payload = append(payload, opcode, unit, subunit)
	payload = append(payload, args...)
	env, err := c.disp.Request(ctx, c.bridge, ventbridge.OpCnRmiRequest, payload)
	if err != nil {
		return nil, err
	}
	resp, err := wire.DecodeRMIResponse(env.Payload)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Payload, nil
}

// SendRawCommand issues a subunit command whose byte string the caller
// has already fully assembled (e.g. via wire.EncodeSetFanSpeed), as
// opposed to SendCommand's generic [opcode, unit, subunit, args] shape.
// The fan speed/bypass/boost/away commands are fixed byte strings
// defined by the unit firmware (spec.md §8 scenario 1), not properties
// addressed by a separate unit/subunit pair.
func (c *Client) SendRawCommand(ctx context.Context, payload []byte) ([]byte, error) {
	if len(payload) == 0 || !wire.IsSubunitCommand(payload[0]) {
		return nil, fmt.Errorf("%w: payload does not start with a subunit command opcode", ventbridge.ErrIllegalArgument)
	}
	env, err := c.disp.Request(ctx, c.bridge, ventbridge.OpCnRmiRequest, payload)
	if err != nil {
		return nil, err
	}
	resp, err := wire.DecodeRMIResponse(env.Payload)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Payload, nil
}
