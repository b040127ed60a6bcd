// Package sensors holds the static pdid -> (type, name, unit, scale)
// catalog that the PDO registry consults to turn a raw decoded value
// into a human-meaningful sensor reading (spec.md §9: "sensor/property
// catalogs are data, not code").
package sensors

import (
	"sort"

	"github.com/airnode/ventbridge/pkg/wire"
)

// Entry describes one known process data point.
type Entry struct {
	PDID  uint32
	Type  wire.TypeTag
	Name  string
	Unit  string
	Scale float64 // multiply the raw decoded numeric value by Scale to get Unit
}

// Catalog is a pdid-keyed lookup table. The zero value is an empty
// catalog (every lookup misses, PDO values pass through unscaled).
type Catalog struct {
	entries map[uint32]Entry
}

// NewCatalog builds a Catalog from entries, keyed by PDID. Later
// entries with a duplicate PDID overwrite earlier ones.
func NewCatalog(entries []Entry) *Catalog {
	c := &Catalog{entries: make(map[uint32]Entry, len(entries))}
	for _, e := range entries {
		c.entries[e.PDID] = e
	}
	return c
}

// Entries returns every entry in the catalog, in PDID order, for
// listing commands that enumerate known sensors.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PDID < out[j].PDID })
	return out
}

// Lookup returns the catalog entry for pdid, if any.
func (c *Catalog) Lookup(pdid uint32) (Entry, bool) {
	if c == nil || c.entries == nil {
		return Entry{}, false
	}
	e, ok := c.entries[pdid]
	return e, ok
}

// ApplyScale applies e's scale factor to a decoded numeric value. Non-numeric
// values (STRING, VERSION, bool) and entries with a zero Scale pass
// through unchanged.
func (e Entry) ApplyScale(value any) any {
	if e.Scale == 0 {
		return value
	}
	switch v := value.(type) {
	case uint8:
		return float64(v) * e.Scale
	case uint16:
		return float64(v) * e.Scale
	case uint32:
		return float64(v) * e.Scale
	case int8:
		return float64(v) * e.Scale
	case int16:
		return float64(v) * e.Scale
	case int64:
		return float64(v) * e.Scale
	default:
		return value
	}
}

// Default is the built-in ComfoAirQ-style catalog covering the sensors
// named across spec.md's worked examples. Unknown pdids are never added
// here speculatively (spec.md §9 open question (c)): an implementer who
// discovers a new pdid's semantics should add an entry, not guess one.
var Default = NewCatalog([]Entry{
	{PDID: 276, Type: wire.TypeInt16, Name: "outdoor_air_temperature", Unit: "degC", Scale: 0.1},
	{PDID: 274, Type: wire.TypeInt16, Name: "supply_air_temperature", Unit: "degC", Scale: 0.1},
	{PDID: 275, Type: wire.TypeInt16, Name: "extract_air_temperature", Unit: "degC", Scale: 0.1},
	{PDID: 277, Type: wire.TypeInt16, Name: "exhaust_air_temperature", Unit: "degC", Scale: 0.1},
	{PDID: 65, Type: wire.TypeUint8, Name: "fan_speed_setting", Unit: "", Scale: 0},
	{PDID: 66, Type: wire.TypeUint8, Name: "supply_fan_duty", Unit: "pct", Scale: 0},
	{PDID: 67, Type: wire.TypeUint8, Name: "exhaust_fan_duty", Unit: "pct", Scale: 0},
	{PDID: 33, Type: wire.TypeUint8, Name: "bypass_state", Unit: "", Scale: 0},
	{PDID: 34, Type: wire.TypeUint8, Name: "boost_active", Unit: "", Scale: 0},
	{PDID: 216, Type: wire.TypeUint8, Name: "away_active", Unit: "", Scale: 0},
	{PDID: 561, Type: wire.TypeUint8, Name: "filter_remaining_percent", Unit: "pct", Scale: 0},
})
