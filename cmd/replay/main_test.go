package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gridrealm.ai/internal/config"
	persistlog "gridrealm.ai/internal/persistence/log"
	"gridrealm.ai/internal/sim/world"
	"gridrealm.ai/internal/sim/world/kernel/model"
)

func loadWorld(t *testing.T, savePath string) *world.World {
	t.Helper()
	b, err := config.Load(filepath.Join("..", "..", "configs"), "")
	require.NoError(t, err)
	w, err := openWorld(world.Config{Tuning: b.Tuning, Zones: b.Zones, Catalogs: b.Catalogs}, savePath)
	require.NoError(t, err)
	return w
}

func TestSimulateHuntingEarnsGold(t *testing.T) {
	w := loadWorld(t, "")
	require.NoError(t, startTask(w, "hunting", "", []string{"R1"}))

	sum := simulate(w, 600) // 60s at 10 Hz
	require.Equal(t, uint64(600), sum.Ticks)
	require.GreaterOrEqual(t, sum.Kills["rat"], 1)
	require.Greater(t, sum.Gold, int64(0))
	require.Len(t, sum.Characters, 1)

	var out bytes.Buffer
	printSummary(&out, sum)
	require.Contains(t, out.String(), "kill rat")
}

func TestOutputSaveResumes(t *testing.T) {
	w := loadWorld(t, "")
	simulate(w, 25)
	path := filepath.Join(t.TempDir(), "out.save.zst")
	require.NoError(t, writeSave(path, w.ExportSave("replay")))

	resumed := loadWorld(t, path)
	require.Equal(t, uint64(25), resumed.Tick())
}

func TestStartTaskRejectsUnknownMonster(t *testing.T) {
	w := loadWorld(t, "")
	require.Error(t, startTask(w, "hunting", "", []string{"nope"}))
	require.Error(t, startTask(w, "dancing", "", nil))
}

func TestSummarizeJournal(t *testing.T) {
	dir := t.TempDir()
	l := persistlog.NewEventLogger(dir)
	require.NoError(t, l.WriteEvent(model.Event{Kind: model.EventKill, Tick: 4, Amount: 2, Currency: "gold"}))
	require.NoError(t, l.WriteEvent(model.Event{Kind: model.EventRespawn, Tick: 104}))
	require.NoError(t, l.Close())

	sum, err := summarizeJournal(dir)
	require.NoError(t, err)
	require.Equal(t, 1, sum.Files)
	require.Equal(t, uint64(4), sum.First)
	require.Equal(t, uint64(104), sum.Last)
	require.Equal(t, int64(2), sum.Gold)
	require.Equal(t, 1, sum.Events["RESPAWN"])

	_, err = summarizeJournal(t.TempDir())
	require.Error(t, err)
}
