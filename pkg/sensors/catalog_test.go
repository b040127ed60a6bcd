package sensors

import (
	"testing"

	"github.com/airnode/ventbridge/pkg/wire"
	"github.com/stretchr/testify/assert"
)

func TestDefaultCatalogAppliesScaleToOutdoorTemperature(t *testing.T) {
	e, ok := Default.Lookup(276)
	assert.True(t, ok)
	assert.Equal(t, wire.TypeInt16, e.Type)
	assert.Equal(t, 6.0, e.ApplyScale(int16(60)))
}

func TestUnknownPDIDMisses(t *testing.T) {
	_, ok := Default.Lookup(999999)
	assert.False(t, ok)
}

func TestZeroScaleEntryPassesThroughUnchanged(t *testing.T) {
	e, ok := Default.Lookup(65)
	assert.True(t, ok)
	assert.Equal(t, uint8(3), e.ApplyScale(uint8(3)))
}

func TestNilCatalogAlwaysMisses(t *testing.T) {
	var c *Catalog
	_, ok := c.Lookup(276)
	assert.False(t, ok)
}
