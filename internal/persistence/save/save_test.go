package save

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

func sample() SaveV3 {
	return SaveV3{
		Header: Header{Slot: "main", Tick: 42},
		Seed:   7,
		NowMs:  4200,
		Team: TeamV1{
			Gold:      120,
			Inventory: map[string]int{"copper_ore": 3},
			Upgrades:  map[string]int{"sharpen": 2},
		},
		Characters: []CharacterV3{{
			ID: "C1", Name: "Ash", Zone: [2]int{1, 0}, Pos: [2]int{3, 2}, HP: 40,
			Marks:  []MarkV1{{MonsterID: "rat_1", Zone: [2]int{1, 0}, Approach: [2]int{4, 2}}},
			Task:   "hunting",
			Skills: map[string]int{"mining": 75},
		}},
		ActivatedZones: [][2]int{{0, 0}, {1, 0}},
		Respawns:       []RespawnV3{{ID: "rat_2", Type: "rat", Zone: [2]int{1, 0}, Pos: [2]int{5, 5}, Size: [2]int{1, 1}, MaxHP: 20, DueAtMs: 9000}},
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	st := NewFileStore(t.TempDir())
	ctx := context.Background()
	in := sample()
	require.NoError(t, st.Save(ctx, in))

	out, err := st.Load(ctx, "main")
	require.NoError(t, err)
	require.Equal(t, CurrentVersion, out.Header.Version)
	require.Equal(t, in.Team.Inventory, out.Team.Inventory)
	require.Equal(t, in.Team.Upgrades, out.Team.Upgrades)
	require.Equal(t, in.Characters, out.Characters)
	require.Equal(t, in.Respawns, out.Respawns)
	require.NotNil(t, out.Team.FirstKills)

	slots, err := st.Slots()
	require.NoError(t, err)
	require.Equal(t, []string{"main"}, slots)
}

func TestFileStore_SaveReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	st := NewFileStore(dir)
	ctx := context.Background()
	s := sample()
	require.NoError(t, st.Save(ctx, s))
	s.Team.Gold = 1
	require.NoError(t, st.Save(ctx, s))

	out, err := st.Load(ctx, "main")
	require.NoError(t, err)
	require.Equal(t, int64(1), out.Team.Gold)

	ents, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, ents, 1, "no temp files left behind")
}

func TestFileStore_Errors(t *testing.T) {
	st := NewFileStore(t.TempDir())
	ctx := context.Background()

	_, err := st.Load(ctx, "missing")
	require.True(t, errors.Is(err, ErrNotFound))

	bad := sample()
	bad.Header.Slot = "../escape"
	require.Error(t, st.Save(ctx, bad))
}

func TestRead_MigratesV1(t *testing.T) {
	v1 := `{"version":1,"slot":"old","tick":5}` + "\n" +
		`{"header":{"version":1,"slot":"old","tick":5},"seed":3,"team":{"gold":10,"inventory":{"log":2},"upgrades":{}},` +
		`"characters":[{"id":"C1","zone":[0,0],"pos":[1,1],"hp":50}]}`
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = enc.Write([]byte(v1))
	require.NoError(t, err)
	require.NoError(t, enc.Close())

	s, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, CurrentVersion, s.Header.Version)
	require.Equal(t, int64(10), s.Team.Gold)
	require.Equal(t, 2, s.Team.Inventory["log"])
	require.NotNil(t, s.Team.UnlockedDrops)
	require.NotNil(t, s.Team.FirstKills)
	require.NotNil(t, s.Characters[0].Skills)
	require.Empty(t, s.Respawns)
	require.Empty(t, s.ActivatedZones)
}

func TestMigrate_StepsInOrder(t *testing.T) {
	doc := map[string]any{
		"header":     map[string]any{"version": 2},
		"team":       map[string]any{"unlocked_drops": map[string]any{"fang": true}},
		"characters": []any{map[string]any{"id": "C1"}},
	}
	require.NoError(t, Migrate(doc, 2))
	require.Equal(t, CurrentVersion, doc["header"].(map[string]any)["version"])
	require.Equal(t, map[string]any{"fang": true}, doc["team"].(map[string]any)["unlocked_drops"], "v1->v2 not re-run")
	require.Contains(t, doc["characters"].([]any)[0].(map[string]any), "skills")
}

func TestUnmarshal_RejectsFutureVersion(t *testing.T) {
	_, err := Unmarshal(CurrentVersion+1, []byte(`{}`))
	require.True(t, errors.Is(err, ErrUnsupportedVersion))
}
