package wire

import (
	"fmt"

	"github.com/airnode/ventbridge"
	"google.golang.org/protobuf/encoding/protowire"
)

// StartSessionConfirm status codes (spec.md §4.4).
const (
	StartSessionOK           uint8 = 0
	StartSessionNotRegistered uint8 = 1
)

// RegisterAppConfirm status codes (spec.md §4.4: "Confirm(ok) or
// Confirm(already-registered); both are treated as success").
const (
	RegisterAppOK               uint8 = 0
	RegisterAppAlreadyRegistered uint8 = 1
)

const fieldStatus = protowire.Number(1)

// EncodeStartSessionRequest returns the (empty) StartSessionRequest
// payload: the operation header's src/dst already identify the caller
// and the bridge, so the message body carries nothing further.
func EncodeStartSessionRequest() []byte { return nil }

// DecodeStartSessionConfirm parses a StartSessionConfirm payload.
func DecodeStartSessionConfirm(raw []byte) (status uint8, err error) {
	return decodeStatus(raw)
}

// EncodeCloseSessionRequest returns the (empty) CloseSessionRequest
// payload.
func EncodeCloseSessionRequest() []byte { return nil }

const (
	fieldRegisterUUID = protowire.Number(1)
	fieldRegisterName = protowire.Number(2)
	fieldRegisterPin  = protowire.Number(3)
)

// EncodeRegisterAppRequest builds a RegisterAppRequest payload carrying
// the caller's local uuid, a human device name, and a numeric PIN as a
// string (spec.md §4.4).
func EncodeRegisterAppRequest(local ventbridge.UUID, deviceName, pin string) []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, fieldRegisterUUID, protowire.BytesType)
	buf = protowire.AppendBytes(buf, local[:])
	buf = protowire.AppendTag(buf, fieldRegisterName, protowire.BytesType)
	buf = protowire.AppendBytes(buf, []byte(deviceName))
	buf = protowire.AppendTag(buf, fieldRegisterPin, protowire.BytesType)
	buf = protowire.AppendBytes(buf, []byte(pin))
	return buf
}

// DecodeRegisterAppConfirm parses a RegisterAppConfirm payload.
func DecodeRegisterAppConfirm(raw []byte) (status uint8, err error) {
	return decodeStatus(raw)
}

const fieldDeregisterUUID = protowire.Number(1)

// EncodeDeregisterAppRequest builds a DeregisterAppRequest payload
// naming the app uuid to remove by exact match (spec.md §4.4).
func EncodeDeregisterAppRequest(target ventbridge.UUID) []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, fieldDeregisterUUID, protowire.BytesType)
	buf = protowire.AppendBytes(buf, target[:])
	return buf
}

// DecodeDeregisterAppConfirm parses a DeregisterAppConfirm payload.
func DecodeDeregisterAppConfirm(raw []byte) (status uint8, err error) {
	return decodeStatus(raw)
}

// EncodeListRegisteredAppsRequest returns the (empty)
// ListRegisteredAppsRequest payload.
func EncodeListRegisteredAppsRequest() []byte { return nil }

// RegisteredApp is one entry in a ListRegisteredAppsConfirm reply.
type RegisteredApp struct {
	UUID ventbridge.UUID
	Name string
}

const fieldRegisteredAppsList = protowire.Number(1)

// DecodeListRegisteredAppsConfirm parses a repeated-submessage
// ListRegisteredAppsConfirm payload into individual RegisteredApp
// entries.
func DecodeListRegisteredAppsConfirm(raw []byte) ([]RegisteredApp, error) {
	var apps []RegisteredApp
	b := raw
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: bad registered-apps tag", ventbridge.ErrMalformedEnvelope)
		}
		b = b[n:]
		if num != fieldRegisteredAppsList {
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: unknown registered-apps field", ventbridge.ErrMalformedEnvelope)
			}
			b = b[n:]
			continue
		}
		entryBytes, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: bad registered-apps entry", ventbridge.ErrMalformedEnvelope)
		}
		b = b[n:]
		app, err := decodeRegisteredApp(entryBytes)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, nil
}

func decodeRegisteredApp(raw []byte) (RegisteredApp, error) {
	var app RegisteredApp
	b := raw
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return app, fmt.Errorf("%w: bad registered-app entry tag", ventbridge.ErrMalformedEnvelope)
		}
		b = b[n:]
		switch num {
		case fieldRegisterUUID:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 || len(v) != 16 {
				return app, fmt.Errorf("%w: bad registered-app uuid", ventbridge.ErrMalformedEnvelope)
			}
			copy(app.UUID[:], v)
			b = b[n:]
		case fieldRegisterName:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return app, fmt.Errorf("%w: bad registered-app name", ventbridge.ErrMalformedEnvelope)
			}
			app.Name = string(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return app, fmt.Errorf("%w: unknown registered-app field", ventbridge.ErrMalformedEnvelope)
			}
			b = b[n:]
		}
	}
	return app, nil
}

func decodeStatus(raw []byte) (uint8, error) {
	b := raw
	var status uint8
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return 0, fmt.Errorf("%w: bad status tag", ventbridge.ErrMalformedEnvelope)
		}
		b = b[n:]
		if num == fieldStatus {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, fmt.Errorf("%w: bad status value", ventbridge.ErrMalformedEnvelope)
			}
			status = uint8(v)
			b = b[n:]
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return 0, fmt.Errorf("%w: unknown status field", ventbridge.ErrMalformedEnvelope)
		}
		b = b[n:]
	}
	return status, nil
}
