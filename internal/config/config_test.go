package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gridrealm.ai/internal/sim/world"
	"gridrealm.ai/internal/sim/world/kernel/model"
)

func TestLoadShippedConfigs(t *testing.T) {
	b, err := Load(filepath.Join("..", "..", "configs"), "")
	require.NoError(t, err)
	require.Equal(t, 10, b.Tuning.TickRateHz)
	require.Contains(t, b.Catalogs.Monsters.ByID, "stone_golem")
	require.Len(t, b.Zones.IDs(), 2)

	w, err := world.New(world.Config{Tuning: b.Tuning, Zones: b.Zones, Catalogs: b.Catalogs})
	require.NoError(t, err)
	require.Len(t, w.Characters(), 1)
	require.NotEmpty(t, w.Monsters())
	for _, m := range w.Monsters() {
		require.Equal(t, model.ZoneID{}, m.ZoneID)
	}
}

func TestLoadMissingDir(t *testing.T) {
	_, err := Load(t.TempDir(), "")
	require.Error(t, err)
}
