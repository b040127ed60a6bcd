package sensors

import (
	"testing"

	"github.com/airnode/ventbridge/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverridesParsesHexSections(t *testing.T) {
	data := []byte(`
[0114]
Name = outdoor_air_temperature_v2
Type = INT16
Unit = degC
Scale = 0.1

[abc]
Name = custom_sensor
Type = UINT8
`)
	entries, err := LoadOverrides(data)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, uint32(0x0114), entries[0].PDID)
	assert.Equal(t, wire.TypeInt16, entries[0].Type)
	assert.Equal(t, "outdoor_air_temperature_v2", entries[0].Name)
	assert.Equal(t, 0.1, entries[0].Scale)

	assert.Equal(t, uint32(0xabc), entries[1].PDID)
	assert.Equal(t, wire.TypeUint8, entries[1].Type)
}

func TestLoadOverridesRejectsUnknownType(t *testing.T) {
	data := []byte(`
[0114]
Name = broken
Type = NOT_A_TYPE
`)
	_, err := LoadOverrides(data)
	assert.Error(t, err)
}

func TestMergeOverridesReplacesMatchingPdid(t *testing.T) {
	base := NewCatalog([]Entry{
		{PDID: 276, Type: wire.TypeInt16, Name: "outdoor_air_temperature", Unit: "degC", Scale: 0.1},
	})
	merged := MergeOverrides(base, []Entry{
		{PDID: 276, Type: wire.TypeInt16, Name: "outdoor_temp_renamed", Unit: "degC", Scale: 0.1},
	})

	e, ok := merged.Lookup(276)
	require.True(t, ok)
	assert.Equal(t, "outdoor_temp_renamed", e.Name)
}
