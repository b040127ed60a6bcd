package wire

import (
	"fmt"

	"github.com/airnode/ventbridge"
	"google.golang.org/protobuf/encoding/protowire"
)

// Envelope field numbers. These are this codec's own numbering, not
// taken from a capture of the vendor's schema (see DESIGN.md). Src/dst
// are 16 raw bytes; the operation header is a
// nested message carrying the tag and reference id; payload is the
// operation-specific sub-message, opaque at this layer.
const (
	fieldSrc     = protowire.Number(1)
	fieldDst     = protowire.Number(2)
	fieldHeader  = protowire.Number(3)
	fieldPayload = protowire.Number(4)

	fieldHeaderTag   = protowire.Number(1)
	fieldHeaderRefId = protowire.Number(2)
)

// Envelope is the decoded outer protobuf message carried by one frame.
type Envelope struct {
	Src     ventbridge.UUID
	Dst     ventbridge.UUID
	Tag     ventbridge.OperationTag
	RefId   uint32
	Payload []byte

	// Unknown is non-nil when Tag did not resolve to a known operation;
	// Payload is preserved unchanged so the frame can still be
	// inspected or forwarded (spec.md §4.1: "non-fatal").
	Unknown bool
}

// Encode serializes the envelope using raw protobuf wire-format
// primitives (no generated message code is available in this module;
// every field number above is fixed and documented so the encoding
// stays byte-compatible with a real protoc-generated decoder reading
// the same schema).
func Encode(e Envelope) []byte {
	var header []byte
	header = protowire.AppendTag(header, fieldHeaderTag, protowire.VarintType)
	header = protowire.AppendVarint(header, uint64(e.Tag))
	header = protowire.AppendTag(header, fieldHeaderRefId, protowire.VarintType)
	header = protowire.AppendVarint(header, uint64(e.RefId))

	var buf []byte
	buf = protowire.AppendTag(buf, fieldSrc, protowire.BytesType)
	buf = protowire.AppendBytes(buf, e.Src[:])
	buf = protowire.AppendTag(buf, fieldDst, protowire.BytesType)
	buf = protowire.AppendBytes(buf, e.Dst[:])
	buf = protowire.AppendTag(buf, fieldHeader, protowire.BytesType)
	buf = protowire.AppendBytes(buf, header)
	buf = protowire.AppendTag(buf, fieldPayload, protowire.BytesType)
	buf = protowire.AppendBytes(buf, e.Payload)
	return buf
}

// Decode parses an envelope out of raw frame bytes. Unknown top-level
// fields are ignored per protobuf forward-compatibility rules; an
// unrecognized operation tag sets Unknown=true but still returns a
// valid Envelope (spec.md §4.1).
func Decode(raw []byte) (Envelope, error) {
	var e Envelope
	b := raw
	var haveHeader bool
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return e, fmt.Errorf("%w: bad tag", ventbridge.ErrMalformedEnvelope)
		}
		b = b[n:]
		switch num {
		case fieldSrc:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 || len(v) != 16 {
				return e, fmt.Errorf("%w: bad src", ventbridge.ErrMalformedEnvelope)
			}
			copy(e.Src[:], v)
			b = b[n:]
		case fieldDst:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 || len(v) != 16 {
				return e, fmt.Errorf("%w: bad dst", ventbridge.ErrMalformedEnvelope)
			}
			copy(e.Dst[:], v)
			b = b[n:]
		case fieldHeader:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return e, fmt.Errorf("%w: bad header", ventbridge.ErrMalformedEnvelope)
			}
			tag, refId, err := decodeHeader(v)
			if err != nil {
				return e, err
			}
			e.Tag = tag
			e.RefId = refId
			haveHeader = true
			b = b[n:]
		case fieldPayload:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return e, fmt.Errorf("%w: bad payload", ventbridge.ErrMalformedEnvelope)
			}
			e.Payload = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return e, fmt.Errorf("%w: unknown field", ventbridge.ErrMalformedEnvelope)
			}
			b = b[n:]
		}
	}
	if !haveHeader {
		return e, fmt.Errorf("%w: missing operation header", ventbridge.ErrMalformedEnvelope)
	}
	if _, ok := knownOperations[e.Tag]; !ok {
		e.Unknown = true
	}
	return e, nil
}

func decodeHeader(raw []byte) (ventbridge.OperationTag, uint32, error) {
	var tag ventbridge.OperationTag
	var refId uint32
	b := raw
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return 0, 0, fmt.Errorf("%w: bad header tag", ventbridge.ErrMalformedEnvelope)
		}
		b = b[n:]
		switch num {
		case fieldHeaderTag:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, 0, fmt.Errorf("%w: bad header op tag", ventbridge.ErrMalformedEnvelope)
			}
			tag = ventbridge.OperationTag(v)
			b = b[n:]
		case fieldHeaderRefId:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, 0, fmt.Errorf("%w: bad header ref id", ventbridge.ErrMalformedEnvelope)
			}
			refId = uint32(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return 0, 0, fmt.Errorf("%w: unknown header field", ventbridge.ErrMalformedEnvelope)
			}
			b = b[n:]
		}
	}
	return tag, refId, nil
}

var knownOperations = func() map[ventbridge.OperationTag]struct{} {
	m := map[ventbridge.OperationTag]struct{}{}
	for tag := ventbridge.OpSetAddressRequest; tag <= ventbridge.OpVersionConfirm; tag++ {
		m[tag] = struct{}{}
	}
	return m
}()
