package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTempXDGConfigHome(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
}

func TestLoadGeneratesLocalUUIDOnFirstRun(t *testing.T) {
	withTempXDGConfigHome(t)

	store, err := Load()
	require.NoError(t, err)

	id, err := store.LocalUUID()
	require.NoError(t, err)
	assert.False(t, id.IsZero())
}

func TestLoadIsStableAcrossRuns(t *testing.T) {
	withTempXDGConfigHome(t)

	store1, err := Load()
	require.NoError(t, err)
	id1, err := store1.LocalUUID()
	require.NoError(t, err)

	store2, err := Load()
	require.NoError(t, err)
	id2, err := store2.LocalUUID()
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
}

func TestRememberBridgeUpsertsByUUID(t *testing.T) {
	withTempXDGConfigHome(t)
	store, err := Load()
	require.NoError(t, err)

	require.NoError(t, store.RememberBridge(KnownBridge{UUID: "abc123", Name: "Attic Unit", LastHost: "192.168.1.10:56747"}))
	require.NoError(t, store.RememberBridge(KnownBridge{UUID: "abc123", Name: "Attic Unit", LastHost: "192.168.1.20:56747"}))

	st, err := store.State()
	require.NoError(t, err)
	require.Len(t, st.KnownBridges, 1)
	assert.Equal(t, "192.168.1.20:56747", st.KnownBridges[0].LastHost)
}
