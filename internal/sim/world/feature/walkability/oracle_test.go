package walkability

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gridrealm.ai/internal/sim/world/feature/entities"
	"gridrealm.ai/internal/sim/world/kernel/model"
	"gridrealm.ai/internal/sim/zones"
)

type content struct{}

func (content) ResourceBlocking(id string) (bool, bool) { return id == "rock", id == "rock" || id == "pond" }
func (content) MonsterSize(string) (int, int, bool)     { return 1, 1, true }

func testZones(t *testing.T) *zones.Registry {
	t.Helper()
	r, err := zones.Build(zones.Config{
		HomeZone:    [2]int{0, 0},
		RespawnTile: [2]int{1, 1},
		SafeTile:    [2]int{1, 1},
		Zones: []zones.ZoneSpec{{
			ID:      [2]int{0, 0},
			Rows:    []string{"#####", "#...#", "#.,.#", "#####"},
			Objects: []zones.ObjectSpec{{Type: "rock", At: [2]int{3, 1}}, {Type: "pond", At: [2]int{3, 2}}},
		}},
	}, content{})
	require.NoError(t, err)
	return r
}

func TestOracle_StaticAndDynamic(t *testing.T) {
	reg := entities.NewRegistry()
	o := New(testZones(t), reg)
	z := model.ZoneID{}

	require.True(t, o.IsWalkable(model.Pos{X: 1, Y: 1}, z, false))
	require.True(t, o.IsWalkable(model.Pos{X: 2, Y: 2}, z, false), "decor")
	require.False(t, o.IsWalkable(model.Pos{X: 0, Y: 1}, z, true), "terrain")
	require.False(t, o.IsWalkable(model.Pos{X: 3, Y: 1}, z, true), "blocking node")
	require.True(t, o.IsWalkable(model.Pos{X: 3, Y: 2}, z, false), "traversable node")

	_, err := reg.SpawnMonster(model.Monster{ID: "M1", ZoneID: z, Pos: model.Pos{X: 2, Y: 1}, MaxHP: 1, HP: 1})
	require.NoError(t, err)
	require.True(t, o.IsWalkable(model.Pos{X: 2, Y: 1}, z, false), "uncommitted mutation is invisible")
	reg.Commit()
	require.False(t, o.IsWalkable(model.Pos{X: 2, Y: 1}, z, false))
	require.True(t, o.IsWalkable(model.Pos{X: 2, Y: 1}, z, true))
}

func TestOracle_FailsClosed(t *testing.T) {
	o := New(testZones(t), entities.NewRegistry())
	require.False(t, o.IsWalkable(model.Pos{X: -1, Y: 1}, model.ZoneID{}, true))
	require.False(t, o.IsWalkable(model.Pos{X: 9, Y: 9}, model.ZoneID{}, true))
	require.False(t, o.IsWalkable(model.Pos{X: 1, Y: 1}, model.ZoneID{X: 5, Y: 5}, true))
}
