package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/airnode/ventbridge"
)

// RMI node identifiers (spec.md §3): the ventilation unit itself, and
// the bridge's own node.
const (
	RMINodeUnit   uint8 = 0x01
	RMINodeBridge uint8 = 0x30
)

const (
	rmiOpGetSingle uint8 = 0x01
	rmiOpGetMulti  uint8 = 0x02
	rmiOpSetSingle uint8 = 0x03
)

// MaxMultiProperties bounds a single CnRmiRequest's property list
// (spec.md §4.1: "1 ≤ len(props) ≤ 15" — the count is packed into the
// low nibble of the type/length byte).
const MaxMultiProperties = 15

// EncodeGetSingle builds the byte payload for "get property":
// [0x01, unit, subunit, type, prop].
func EncodeGetSingle(unit, subunit, typeTag, prop uint8) []byte {
	return []byte{rmiOpGetSingle, unit, subunit, typeTag, prop}
}

// EncodeGetMulti builds the byte payload for "get multiple":
// [0x02, unit, subunit, 0x01, type|len(props), props…].
func EncodeGetMulti(unit, subunit uint8, props []uint8, typeTag uint8) ([]byte, error) {
	if len(props) < 1 || len(props) > MaxMultiProperties {
		return nil, fmt.Errorf("%w: get_multi needs 1-%d properties, got %d", ventbridge.ErrIllegalArgument, MaxMultiProperties, len(props))
	}
	out := make([]byte, 0, 5+len(props))
	out = append(out, rmiOpGetMulti, unit, subunit, 0x01, typeTag|uint8(len(props)))
	out = append(out, props...)
	return out, nil
}

// EncodeSetSingle builds the byte payload for "set property":
// [0x03, unit, subunit, prop, value…].
func EncodeSetSingle(unit, subunit, prop uint8, value []byte) []byte {
	out := make([]byte, 0, 4+len(value))
	out = append(out, rmiOpSetSingle, unit, subunit, prop)
	out = append(out, value...)
	return out
}

// IsSubunitCommand reports whether opcode belongs to the subunit-specific
// command space (opcode >= 0x80), which this codec passes through as
// caller-constructed byte strings without further interpretation
// (spec.md §4.1).
func IsSubunitCommand(opcode uint8) bool {
	return opcode >= 0x80
}

// Subunit commands (opcode >= 0x80) are not built from [opcode, unit,
// subunit, prop] like get/set-property: each one is a fixed byte
// string defined by the unit firmware, with the caller's parameters
// substituted at known offsets. spec.md §8 scenario 1 gives the only
// literal ground truth ("set fan speed low" -> node=0x01
// 84 15 01 01 00 00 00 00 01 00 00 00 01); the bypass/boost/away
// commands below follow the same template shape per the real
// aiocomfoconnect client's set_bypass/set_boost/set_away convention
// (fixed command bytes, mode, then an embedded timeout), though their
// exact opcodes are this codec's own choice since the source gives no
// literal bytes for them.
const (
	cmdOpcodeFanMode uint8 = 0x84
	cmdOpcodeBypass  uint8 = 0x85
	cmdOpcodeBoost   uint8 = 0x86
	cmdOpcodeAway    uint8 = 0x87
)

// cmdTemplate is the fixed body shared by these unit commands, between
// the opcode and the trailing parameter bytes.
var cmdTemplate = []byte{0x15, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}

func encodeUnitCommand(opcode, value uint8, trailing ...byte) []byte {
	out := make([]byte, 0, 1+len(cmdTemplate)+1+len(trailing))
	out = append(out, opcode)
	out = append(out, cmdTemplate...)
	out = append(out, value)
	out = append(out, trailing...)
	return out
}

// EncodeSetFanSpeed builds the fixed "set fan speed" subunit command.
// EncodeSetFanSpeed(1) reproduces spec.md §8 scenario 1's literal
// low-speed frame exactly.
func EncodeSetFanSpeed(speed uint8) []byte {
	return encodeUnitCommand(cmdOpcodeFanMode, speed)
}

// EncodeSetBypass builds the "set bypass" subunit command: mode byte
// followed by a little-endian timeout in seconds (0 when the caller
// wants no timeout).
func EncodeSetBypass(mode uint8, timeoutSeconds uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, timeoutSeconds)
	return encodeUnitCommand(cmdOpcodeBypass, mode, buf...)
}

// EncodeSetBoost builds the "set boost" subunit command: on/off byte
// followed by a little-endian timeout in seconds.
func EncodeSetBoost(on bool, timeoutSeconds uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, timeoutSeconds)
	return encodeUnitCommand(cmdOpcodeBoost, boolByte(on), buf...)
}

// EncodeSetAway builds the "set away" subunit command: on/off byte
// followed by a little-endian timeout in seconds.
func EncodeSetAway(on bool, timeoutSeconds uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, timeoutSeconds)
	return encodeUnitCommand(cmdOpcodeAway, boolByte(on), buf...)
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// RMIResponse is the decoded reply to a CnRmiRequest: either a raw
// result/payload, or a non-zero error code when the bridge rejects the
// request (spec.md §4.1, §6).
type RMIResponse struct {
	ErrorCode uint8
	Payload   []byte
}

// Err converts a non-zero ErrorCode into a *ventbridge.RMIError.
func (r RMIResponse) Err() error {
	if r.ErrorCode == 0 {
		return nil
	}
	return &ventbridge.RMIError{Code: r.ErrorCode}
}

// DecodeRMIResponse parses a CnRmiResponse payload: a leading error-code
// byte, followed by the result value bytes when ErrorCode is zero
// (spec.md §4.1, §6).
func DecodeRMIResponse(raw []byte) (RMIResponse, error) {
	if len(raw) < 1 {
		return RMIResponse{}, ventbridge.ErrTruncatedValue
	}
	return RMIResponse{ErrorCode: raw[0], Payload: raw[1:]}, nil
}
