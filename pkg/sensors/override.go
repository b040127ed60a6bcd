package sensors

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/airnode/ventbridge/pkg/wire"
	"gopkg.in/ini.v1"
)

// matchPdidSection matches a hex-numbered section like "0114", the
// same section-naming convention the vendor's own EDS files use for
// object dictionary indices, repurposed here to key sensor overrides
// by pdid instead.
var matchPdidSection = regexp.MustCompile(`^[0-9A-Fa-f]{1,8}$`)

// LoadOverrides parses an ini file of sensor overrides, one section per
// pdid (named in hex, e.g. "[0114]"), with Name/Type/Unit/Scale keys.
// Entries found here take precedence over Default when merged with
// MergeOverrides. A missing Name or Unit is empty and a missing or
// malformed Scale is 0; a missing or unknown Type fails the whole file.
func LoadOverrides(pathOrData any) ([]Entry, error) {
	f, err := ini.Load(pathOrData)
	if err != nil {
		return nil, fmt.Errorf("sensors: load overrides: %w", err)
	}

	var entries []Entry
	for _, section := range f.Sections() {
		name := section.Name()
		if !matchPdidSection.MatchString(name) {
			continue
		}
		pdid, err := strconv.ParseUint(name, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("sensors: section %q: %w", name, err)
		}

		typeTag, err := wire.ParseTypeTag(section.Key("Type").String())
		if err != nil {
			return nil, fmt.Errorf("sensors: section %q: %w", name, err)
		}

		scale, _ := section.Key("Scale").Float64()

		entries = append(entries, Entry{
			PDID:  uint32(pdid),
			Type:  typeTag,
			Name:  section.Key("Name").String(),
			Unit:  section.Key("Unit").String(),
			Scale: scale,
		})
	}
	return entries, nil
}

// MergeOverrides builds a Catalog from base's entries with overrides
// applied on top, keyed by pdid.
func MergeOverrides(base *Catalog, overrides []Entry) *Catalog {
	entries := base.Entries()
	return NewCatalog(append(entries, overrides...))
}
