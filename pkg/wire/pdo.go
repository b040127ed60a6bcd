package wire

import (
	"fmt"

	"github.com/airnode/ventbridge"
	"google.golang.org/protobuf/encoding/protowire"
)

// RpdoRequest field numbers (spec.md §4.6: "CnRpdoRequest{pdid, type,
// zone, timeout}"). zone is fixed to 1 by every caller in this module;
// the field exists because the vendor schema carries it.
const (
	fieldRpdoPdid    = protowire.Number(1)
	fieldRpdoType    = protowire.Number(2)
	fieldRpdoZone    = protowire.Number(3)
	fieldRpdoTimeout = protowire.Number(4)
)

// CnRpdoNotification field numbers: a distinct message from
// CnRpdoRequest above, so field 2 means something different here.
const (
	fieldRpdoNotifPdid = protowire.Number(1)
	fieldRpdoNotifData = protowire.Number(2)
)

// DefaultZone is the zone value sent on every subscribe/unsubscribe
// request; this module has no multi-zone concept.
const DefaultZone = 1

// EncodeRpdoRequest builds a CnRpdoRequest payload. timeout =
// 0xFFFFFFFF means "subscribe forever"; timeout = 0 means "cancel"
// (spec.md §4.6).
func EncodeRpdoRequest(pdid uint32, typeTag TypeTag, timeout uint32) []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, fieldRpdoPdid, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(pdid))
	buf = protowire.AppendTag(buf, fieldRpdoType, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(typeTag))
	buf = protowire.AppendTag(buf, fieldRpdoZone, protowire.VarintType)
	buf = protowire.AppendVarint(buf, DefaultZone)
	buf = protowire.AppendTag(buf, fieldRpdoTimeout, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(timeout))
	return buf
}

// EncodeRpdoNotification builds a CnRpdoNotification payload, used by
// test fixtures and by anything emulating the bridge side of the wire.
func EncodeRpdoNotification(pdid uint32, data []byte) []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, fieldRpdoNotifPdid, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(pdid))
	buf = protowire.AppendTag(buf, fieldRpdoNotifData, protowire.BytesType)
	buf = protowire.AppendBytes(buf, data)
	return buf
}

// DecodeRpdoNotification parses a CnRpdoNotification payload into its
// pdid and raw (still type-encoded) data bytes.
func DecodeRpdoNotification(raw []byte) (pdid uint32, data []byte, err error) {
	b := raw
	var havePdid bool
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return 0, nil, fmt.Errorf("%w: bad rpdo notification tag", ventbridge.ErrMalformedEnvelope)
		}
		b = b[n:]
		switch num {
		case fieldRpdoNotifPdid:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, nil, fmt.Errorf("%w: bad rpdo notification pdid", ventbridge.ErrMalformedEnvelope)
			}
			pdid = uint32(v)
			havePdid = true
			b = b[n:]
		case fieldRpdoNotifData:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, nil, fmt.Errorf("%w: bad rpdo notification data", ventbridge.ErrMalformedEnvelope)
			}
			data = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return 0, nil, fmt.Errorf("%w: unknown rpdo notification field", ventbridge.ErrMalformedEnvelope)
			}
			b = b[n:]
		}
	}
	if !havePdid {
		return 0, nil, fmt.Errorf("%w: rpdo notification missing pdid", ventbridge.ErrMalformedEnvelope)
	}
	return pdid, data, nil
}
