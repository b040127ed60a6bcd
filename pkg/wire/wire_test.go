package wire

import (
	"testing"
	"time"

	"github.com/airnode/ventbridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	src := ventbridge.NewUUID()
	dst := ventbridge.NewUUID()
	e := Envelope{
		Src:     src,
		Dst:     dst,
		Tag:     ventbridge.OpCnRmiRequest,
		RefId:   42,
		Payload: []byte{0x01, 0x01, 0x01, 0x10, 0x14},
	}
	encoded := Encode(e)
	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, e.Src, decoded.Src)
	assert.Equal(t, e.Dst, decoded.Dst)
	assert.Equal(t, e.Tag, decoded.Tag)
	assert.Equal(t, e.RefId, decoded.RefId)
	assert.Equal(t, e.Payload, decoded.Payload)
	assert.False(t, decoded.Unknown)
}

func TestEnvelopeUnknownOperationIsNonFatal(t *testing.T) {
	e := Envelope{Tag: ventbridge.OperationTag(9999), Payload: []byte{1, 2, 3}}
	encoded := Encode(e)
	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.True(t, decoded.Unknown)
	assert.Equal(t, e.Payload, decoded.Payload)
}

func TestGetSingleLayout(t *testing.T) {
	got := EncodeGetSingle(0x01, 0x01, 0x10, 0x14)
	assert.Equal(t, []byte{0x01, 0x01, 0x01, 0x10, 0x14}, got)
}

func TestGetMultiRejectsOutOfRangeCount(t *testing.T) {
	_, err := EncodeGetMulti(1, 1, nil, 0)
	assert.Error(t, err)
	props := make([]byte, 16)
	_, err = EncodeGetMulti(1, 1, props, 0)
	assert.Error(t, err)
}

func TestGetMultiLayout(t *testing.T) {
	got, err := EncodeGetMulti(1, 1, []byte{0x10, 0x11}, 0x10)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x01, 0x01, 0x01, 0x12, 0x10, 0x11}, got)
}

func TestSetSingleLayout(t *testing.T) {
	got := EncodeSetSingle(0x01, 0x01, 0x01, []byte{0x01})
	assert.Equal(t, []byte{0x03, 0x01, 0x01, 0x01, 0x01}, got)
}

func TestEncodeSetFanSpeedMatchesScenarioOneGroundTruth(t *testing.T) {
	got := EncodeSetFanSpeed(1) // "low"
	want := []byte{0x84, 0x15, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01}
	assert.Equal(t, want, got)
	assert.True(t, IsSubunitCommand(got[0]))
}

func TestEncodeSetBypassAppendsLittleEndianTimeout(t *testing.T) {
	got := EncodeSetBypass(1, 1800)
	assert.Len(t, got, len(cmdTemplate)+1+1+4)
	assert.Equal(t, []byte{0x08, 0x07, 0x00, 0x00}, got[len(got)-4:])
}

func TestValueRoundTrip(t *testing.T) {
	cases := []struct {
		tag TypeTag
		val any
	}{
		{TypeBool, true},
		{TypeUint8, uint8(200)},
		{TypeUint16, uint16(6000)},
		{TypeUint32, uint32(123456789)},
		{TypeInt8, int8(-12)},
		{TypeInt16, int16(60)},
		{TypeInt64, int64(-123456789)},
		{TypeString, "ComfoAirQ"},
		{TypeVersion, Version{Major: 1, Minor: 2, Patch: 3, Build: 400}},
	}
	for _, c := range cases {
		raw, err := EncodeValue(c.tag, c.val)
		require.NoError(t, err, c.tag)
		decoded, err := DecodeValue(c.tag, raw)
		require.NoError(t, err, c.tag)
		assert.Equal(t, c.val, decoded, c.tag)
	}
}

func TestTimeValueRoundTrip(t *testing.T) {
	in := TimeEpoch.Add(10000 * time.Second)
	raw, err := EncodeValue(TypeTime, in)
	require.NoError(t, err)
	decoded, err := DecodeValue(TypeTime, raw)
	require.NoError(t, err)
	assert.True(t, in.Equal(decoded.(time.Time)))
}

func TestOutdoorTemperatureSample(t *testing.T) {
	// Scenario 3 in spec.md §8: PDID 276, INT16, raw bytes 3c 00 -> 60 -> 6.0 degC once scaled by 0.1
	v, err := DecodeValue(TypeInt16, []byte{0x3c, 0x00})
	require.NoError(t, err)
	assert.Equal(t, int16(60), v)
}

func TestStringStripsTrailingNul(t *testing.T) {
	v, err := DecodeValue(TypeString, []byte("ComfoAirQ\x00\x00"))
	require.NoError(t, err)
	assert.Equal(t, "ComfoAirQ", v)
}

func TestUnknownTypeTagIsDecodeError(t *testing.T) {
	_, err := DecodeValue(TypeTag(250), []byte{1, 2, 3, 4})
	assert.ErrorIs(t, err, ventbridge.ErrUnknownType)
}

func TestTruncatedValueIsDecodeError(t *testing.T) {
	_, err := DecodeValue(TypeUint32, []byte{1, 2})
	assert.ErrorIs(t, err, ventbridge.ErrTruncatedValue)
}
