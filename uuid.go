package ventbridge

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// UUID is the raw 16-byte identifier carried on the wire for source and
// destination fields. Unlike google/uuid's canonical hyphenated string
// form, the bridge's own "uuid" values are a bare 32-character hex
// string (no hyphens) — see ParseUUID.
type UUID [16]byte

// ZeroUUID is used as src/dst for discovery and SetAddress, per spec.md §3.
var ZeroUUID UUID

// NewUUID generates a fresh random v4 UUID, suitable as a stable local
// identity (spec.md §6: "a caller-managed local UUID MUST be stable
// across runs").
func NewUUID() UUID {
	u := uuid.New()
	var out UUID
	copy(out[:], u[:])
	return out
}

// ParseUUID parses either a bare 32-hex-digit bridge uuid or a
// canonical hyphenated UUID string.
func ParseUUID(s string) (UUID, error) {
	var out UUID
	if len(s) == 32 {
		b, err := hex.DecodeString(s)
		if err != nil {
			return out, fmt.Errorf("parsing uuid %q: %w", s, err)
		}
		copy(out[:], b)
		return out, nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return out, fmt.Errorf("parsing uuid %q: %w", s, err)
	}
	copy(out[:], u[:])
	return out, nil
}

// String renders the bare 32-hex-digit form used by the bridge on the
// wire and in its own logs/UIs.
func (u UUID) String() string {
	return hex.EncodeToString(u[:])
}

func (u UUID) IsZero() bool {
	return u == ZeroUUID
}
