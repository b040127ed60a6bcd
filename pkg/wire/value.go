package wire

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/airnode/ventbridge"
)

// TypeTag identifies the elementary type of a PDO sample or an RMI
// get/set value (spec.md §3, §4.1). All multi-byte values are
// little-endian.
type TypeTag uint8

const (
	TypeBool TypeTag = iota
	TypeUint8
	TypeUint16
	TypeUint32
	TypeInt8
	TypeInt16
	TypeInt64
	TypeString
	TypeTime
	TypeVersion
)

func (t TypeTag) String() string {
	switch t {
	case TypeBool:
		return "BOOL"
	case TypeUint8:
		return "UINT8"
	case TypeUint16:
		return "UINT16"
	case TypeUint32:
		return "UINT32"
	case TypeInt8:
		return "INT8"
	case TypeInt16:
		return "INT16"
	case TypeInt64:
		return "INT64"
	case TypeString:
		return "STRING"
	case TypeTime:
		return "TIME"
	case TypeVersion:
		return "VERSION"
	default:
		return "UNKNOWN"
	}
}

// ParseTypeTag parses a type tag's canonical upper-case name (as
// printed by TypeTag.String), for CLI flags that name a type directly.
func ParseTypeTag(s string) (TypeTag, error) {
	switch s {
	case "BOOL":
		return TypeBool, nil
	case "UINT8":
		return TypeUint8, nil
	case "UINT16":
		return TypeUint16, nil
	case "UINT32":
		return TypeUint32, nil
	case "INT8":
		return TypeInt8, nil
	case "INT16":
		return TypeInt16, nil
	case "INT64":
		return TypeInt64, nil
	case "STRING":
		return TypeString, nil
	case "TIME":
		return TypeTime, nil
	case "VERSION":
		return TypeVersion, nil
	default:
		return 0, fmt.Errorf("%w: unknown type tag %q", ventbridge.ErrIllegalArgument, s)
	}
}

// TimeEpoch is the documented reference point for the TIME type: a
// 32-bit seconds offset from 2000-01-01T00:00:00Z (spec.md §4.1 leaves
// the exact epoch to the implementer; this is the value this codec
// commits to and round-trips).
var TimeEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Version is the decoded form of a VERSION value.
type Version struct {
	Major uint8
	Minor uint8
	Patch uint8
	Build uint16
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d-%d", v.Major, v.Minor, v.Patch, v.Build)
}

// FixedSize returns the encoded width of tag when it is a fixed-width
// type, used to split a get_multi reply into one slice per property
// (spec.md §4.1: "only fixed-width types may appear in a multi-get").
func FixedSize(tag TypeTag) (int, bool) {
	switch tag {
	case TypeBool, TypeUint8, TypeInt8:
		return 1, true
	case TypeUint16, TypeInt16:
		return 2, true
	case TypeUint32, TypeTime, TypeVersion:
		return 4, true
	case TypeInt64:
		return 8, true
	default:
		return 0, false
	}
}

// DecodeValue decodes raw little-endian bytes per tag. It returns one
// of: bool, uint8, uint16, uint32, int8, int16, int64, string,
// time.Time, or Version. An unknown tag or truncated input is a
// decode-class error (spec.md §7): it must not tear down the session.
func DecodeValue(tag TypeTag, raw []byte) (any, error) {
	switch tag {
	case TypeBool:
		if len(raw) < 1 {
			return nil, ventbridge.ErrTruncatedValue
		}
		return raw[0] != 0, nil
	case TypeUint8:
		if len(raw) < 1 {
			return nil, ventbridge.ErrTruncatedValue
		}
		return raw[0], nil
	case TypeUint16:
		if len(raw) < 2 {
			return nil, ventbridge.ErrTruncatedValue
		}
		return binary.LittleEndian.Uint16(raw), nil
	case TypeUint32:
		if len(raw) < 4 {
			return nil, ventbridge.ErrTruncatedValue
		}
		return binary.LittleEndian.Uint32(raw), nil
	case TypeInt8:
		if len(raw) < 1 {
			return nil, ventbridge.ErrTruncatedValue
		}
		return int8(raw[0]), nil
	case TypeInt16:
		if len(raw) < 2 {
			return nil, ventbridge.ErrTruncatedValue
		}
		return int16(binary.LittleEndian.Uint16(raw)), nil
	case TypeInt64:
		if len(raw) < 8 {
			return nil, ventbridge.ErrTruncatedValue
		}
		return int64(binary.LittleEndian.Uint64(raw)), nil
	case TypeString:
		n := len(raw)
		for i, b := range raw {
			if b == 0 {
				n = i
				break
			}
		}
		return string(raw[:n]), nil
	case TypeTime:
		if len(raw) < 4 {
			return nil, ventbridge.ErrTruncatedValue
		}
		offset := binary.LittleEndian.Uint32(raw)
		return TimeEpoch.Add(time.Duration(offset) * time.Second), nil
	case TypeVersion:
		if len(raw) < 4 {
			return nil, ventbridge.ErrTruncatedValue
		}
		word := binary.LittleEndian.Uint32(raw)
		return Version{
			Major: uint8(word >> 24),
			Minor: uint8(word>>20) & 0x0F,
			Patch: uint8(word>>16) & 0x0F,
			Build: uint16(word & 0xFFFF),
		}, nil
	default:
		return nil, ventbridge.ErrUnknownType
	}
}

// EncodeValue is DecodeValue's inverse, used to build "set property"
// payloads from caller-supplied values.
func EncodeValue(tag TypeTag, value any) ([]byte, error) {
	switch tag {
	case TypeBool:
		v, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: expected bool for BOOL", ventbridge.ErrIllegalArgument)
		}
		if v {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case TypeUint8:
		v, ok := asUint64(value)
		if !ok {
			return nil, fmt.Errorf("%w: expected integer for UINT8", ventbridge.ErrIllegalArgument)
		}
		return []byte{uint8(v)}, nil
	case TypeUint16:
		v, ok := asUint64(value)
		if !ok {
			return nil, fmt.Errorf("%w: expected integer for UINT16", ventbridge.ErrIllegalArgument)
		}
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, uint16(v))
		return buf, nil
	case TypeUint32:
		v, ok := asUint64(value)
		if !ok {
			return nil, fmt.Errorf("%w: expected integer for UINT32", ventbridge.ErrIllegalArgument)
		}
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(v))
		return buf, nil
	case TypeInt8:
		v, ok := asInt64(value)
		if !ok {
			return nil, fmt.Errorf("%w: expected integer for INT8", ventbridge.ErrIllegalArgument)
		}
		return []byte{byte(int8(v))}, nil
	case TypeInt16:
		v, ok := asInt64(value)
		if !ok {
			return nil, fmt.Errorf("%w: expected integer for INT16", ventbridge.ErrIllegalArgument)
		}
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, uint16(int16(v)))
		return buf, nil
	case TypeInt64:
		v, ok := asInt64(value)
		if !ok {
			return nil, fmt.Errorf("%w: expected integer for INT64", ventbridge.ErrIllegalArgument)
		}
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, uint64(v))
		return buf, nil
	case TypeString:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected string for STRING", ventbridge.ErrIllegalArgument)
		}
		out := make([]byte, len(s)+1)
		copy(out, s)
		return out, nil
	case TypeTime:
		t, ok := value.(time.Time)
		if !ok {
			return nil, fmt.Errorf("%w: expected time.Time for TIME", ventbridge.ErrIllegalArgument)
		}
		offset := uint32(t.Sub(TimeEpoch).Seconds())
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, offset)
		return buf, nil
	case TypeVersion:
		v, ok := value.(Version)
		if !ok {
			return nil, fmt.Errorf("%w: expected Version for VERSION", ventbridge.ErrIllegalArgument)
		}
		word := uint32(v.Major)<<24 | uint32(v.Minor&0x0F)<<20 | uint32(v.Patch&0x0F)<<16 | uint32(v.Build)
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, word)
		return buf, nil
	default:
		return nil, ventbridge.ErrUnknownType
	}
}

func asUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint8:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint64:
		return n, true
	case int:
		return uint64(n), true
	}
	return 0, false
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}
