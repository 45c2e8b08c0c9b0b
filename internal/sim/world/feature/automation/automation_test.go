package automation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/world/feature/entities"
	"gridrealm.ai/internal/sim/world/feature/pathing"
	"gridrealm.ai/internal/sim/world/feature/walkability"
	"gridrealm.ai/internal/sim/world/kernel/model"
	"gridrealm.ai/internal/sim/zones"
)

type content struct{}

func (content) ResourceBlocking(id string) (bool, bool) { return id == "copper_rock", true }
func (content) MonsterSize(string) (int, int, bool)     { return 1, 1, true }

type env struct {
	now       time.Duration
	tick      uint64
	team      *model.Team
	zones     *zones.Registry
	reg       *entities.Registry
	oracle    *walkability.Oracle
	finder    *pathing.Finder
	resources map[string]catalogs.ResourceDef
	reserved  map[model.Pos]bool
	searches  int
	crossings int
}

func newEnv(t *testing.T) *env {
	t.Helper()
	zr, err := zones.Build(zones.Config{
		HomeZone:    [2]int{0, 0},
		RespawnTile: [2]int{1, 1},
		SafeTile:    [2]int{1, 1},
		Zones: []zones.ZoneSpec{{
			ID:      [2]int{0, 0},
			Rows:    []string{"#######", "#.....#", "#.....#", "#.....#", "#######"},
			Objects: []zones.ObjectSpec{{Type: "copper_rock", At: [2]int{5, 1}}},
		}},
	}, content{})
	require.NoError(t, err)
	reg := entities.NewRegistry()
	o := walkability.New(zr, reg)
	team := &model.Team{}
	team.InitDefaults()
	return &env{
		team:   team,
		zones:  zr,
		reg:    reg,
		oracle: o,
		finder: pathing.NewFinder(o, zr),
		resources: map[string]catalogs.ResourceDef{
			"copper_rock": {ID: "copper_rock", Skill: "mining", IntervalMs: 300, XP: 60, Item: "copper_ore", Blocking: true},
		},
		reserved: map[model.Pos]bool{},
	}
}

func (e *env) Now() time.Duration                       { return e.now }
func (e *env) Tick() uint64                             { return e.tick }
func (e *env) TickDuration() time.Duration              { return 100 * time.Millisecond }
func (e *env) ReplanInterval() time.Duration            { return time.Second }
func (e *env) XPLevelBase() int                         { return 50 }
func (e *env) Team() *model.Team                        { return e.team }
func (e *env) Zone(id model.ZoneID) (*zones.Zone, bool) { return e.zones.Zone(id) }
func (e *env) IsWalkable(p model.Pos, z model.ZoneID, ignore bool) bool {
	return e.oracle.IsWalkable(p, z, ignore)
}
func (e *env) Resource(id string) (catalogs.ResourceDef, bool) {
	def, ok := e.resources[id]
	return def, ok
}
func (e *env) Monster(id string) (*model.Monster, bool) { return e.reg.Monster(id) }
func (e *env) IsRespawning(id string) bool              { return e.reg.IsRespawning(id) }
func (e *env) Reserved(_, _ string, p model.Pos) bool   { return e.reserved[p] }
func (e *env) SearchPath(start model.Pos, goals []model.Pos, z model.ZoneID) ([]model.Pos, bool) {
	e.searches++
	res := e.finder.Search(start, goals, z)
	return res.Path, res.Found
}
func (e *env) FindPathToZone(start model.Pos, from, to model.ZoneID) ([]model.Pos, bool) {
	return e.finder.FindPathToZone(start, from, to)
}
func (e *env) ApproachTiles(id string, fp model.Footprint, z model.ZoneID) []model.Pos {
	return e.finder.ApproachTiles(id, fp, z)
}
func (e *env) CrossGateway(*model.Character) bool {
	e.crossings++
	return false
}
func (e *env) Engage(c *model.Character, m *model.Monster) bool {
	if !m.Footprint().AdjacentTo(c.Pos) {
		return false
	}
	c.Combat = model.CombatSession{Active: true, MonsterID: m.ID}
	return true
}

func addChar(t *testing.T, e *env, id string, p model.Pos) *model.Character {
	t.Helper()
	c := &model.Character{ID: id, Pos: p, HP: 10, MaxHP: 10}
	c.InitDefaults()
	require.NoError(t, e.reg.AddCharacter(c))
	e.reg.Commit()
	return c
}

func addRat(t *testing.T, e *env, id string, p model.Pos) *model.Monster {
	t.Helper()
	m, err := e.reg.SpawnMonster(model.Monster{ID: id, Type: "rat", Pos: p, HP: 20, MaxHP: 20, Attack: 2})
	require.NoError(t, err)
	e.reg.Commit()
	return m
}

// arrive finishes c's path in one jump.
func arrive(e *env, c *model.Character) {
	end := c.Path[len(c.Path)-1]
	e.reg.MoveCharacter(c, c.ZoneID, end)
	c.ClearPath()
	e.reg.Commit()
}

func TestStart_RejectsNone(t *testing.T) {
	c := &model.Character{ID: "C1"}
	require.Error(t, Start(c, model.TaskNone, ""))
	require.False(t, c.Auto.Active)
}

func TestStart_ReplacesRunningTaskAndCombat(t *testing.T) {
	c := &model.Character{ID: "C1", Path: []model.Pos{{X: 1, Y: 1}}}
	c.Combat = model.CombatSession{Active: true, MonsterID: "M1"}
	require.NoError(t, Start(c, model.TaskHunting, "ignored"))
	require.True(t, c.Auto.Active)
	require.Equal(t, "", c.Auto.Resource)
	require.False(t, c.MidPath())
	require.False(t, c.Combat.Active)

	Stop(c)
	require.False(t, c.Auto.Active)
	require.Equal(t, model.TaskNone, c.Auto.Task)
}

func TestHunt_NoMarksIsIdle(t *testing.T) {
	e := newEnv(t)
	c := addChar(t, e, "C1", model.Pos{X: 1, Y: 2})
	require.NoError(t, Start(c, model.TaskHunting, ""))

	Tick(e, c)
	require.Equal(t, model.PhaseIdle, c.Auto.Phase)
	require.Equal(t, StatusNoMarks, c.Status)
	require.True(t, c.Auto.Active)
}

func TestHunt_WalksToNearestApproachThenEngages(t *testing.T) {
	e := newEnv(t)
	c := addChar(t, e, "C1", model.Pos{X: 1, Y: 2})
	m := addRat(t, e, "M1", model.Pos{X: 4, Y: 2})
	c.AddMark(model.Mark{MonsterID: m.ID}, 1)
	require.NoError(t, Start(c, model.TaskHunting, ""))

	Tick(e, c)
	require.Equal(t, model.PhaseWalkingToTarget, c.Auto.Phase)
	require.Equal(t, model.Pos{X: 3, Y: 2}, c.Path[len(c.Path)-1])
	require.Equal(t, model.Pos{X: 3, Y: 2}, c.Marks[0].Approach)

	require.Equal(t, Result{}, Tick(e, c), "yields while mid-path")

	arrive(e, c)
	Tick(e, c)
	require.Equal(t, model.PhaseActing, c.Auto.Phase)
	require.True(t, c.Combat.Active)
	require.Equal(t, "M1", c.Combat.MonsterID)
}

func TestHunt_ReusesValidApproach(t *testing.T) {
	e := newEnv(t)
	c := addChar(t, e, "C1", model.Pos{X: 1, Y: 2})
	m := addRat(t, e, "M1", model.Pos{X: 4, Y: 2})
	c.AddMark(model.Mark{MonsterID: m.ID, Approach: model.Pos{X: 4, Y: 3}}, 1)
	require.NoError(t, Start(c, model.TaskHunting, ""))

	Tick(e, c)
	require.Equal(t, model.Pos{X: 4, Y: 3}, c.Path[len(c.Path)-1])
}

func TestHunt_SkipsReservedApproach(t *testing.T) {
	e := newEnv(t)
	c := addChar(t, e, "C1", model.Pos{X: 1, Y: 2})
	m := addRat(t, e, "M1", model.Pos{X: 4, Y: 2})
	e.reserved[model.Pos{X: 3, Y: 2}] = true
	c.AddMark(model.Mark{MonsterID: m.ID}, 1)
	require.NoError(t, Start(c, model.TaskHunting, ""))

	Tick(e, c)
	end := c.Path[len(c.Path)-1]
	require.NotEqual(t, model.Pos{X: 3, Y: 2}, end)
	require.True(t, m.Footprint().AdjacentTo(end))
	require.Equal(t, end, c.Marks[0].Approach)
}

func TestHunt_WaitsForRespawnAndDropsStaleMarks(t *testing.T) {
	e := newEnv(t)
	c := addChar(t, e, "C1", model.Pos{X: 1, Y: 2})
	addRat(t, e, "M1", model.Pos{X: 4, Y: 2})
	c.AddMark(model.Mark{MonsterID: "M1"}, 2)
	require.NoError(t, Start(c, model.TaskHunting, ""))

	_, ok := e.reg.Defeat("M1", 10*time.Second)
	require.True(t, ok)
	Tick(e, c)
	require.Equal(t, model.PhaseWaitingForAvailability, c.Auto.Phase)
	require.Len(t, c.Marks, 1, "mark survives the respawn wait")

	c.Marks = []model.Mark{{MonsterID: "ghost"}}
	Tick(e, c)
	require.Empty(t, c.Marks)
	require.Equal(t, StatusStaleMark, c.Status)
}

func TestHunt_UnreachableBacksOff(t *testing.T) {
	e := newEnv(t)
	c := addChar(t, e, "C1", model.Pos{X: 1, Y: 2})
	m := addRat(t, e, "M1", model.Pos{X: 4, Y: 2})
	for _, p := range []model.Pos{{X: 4, Y: 1}, {X: 5, Y: 2}, {X: 4, Y: 3}, {X: 3, Y: 2}} {
		e.reserved[p] = true
	}
	c.AddMark(model.Mark{MonsterID: m.ID}, 1)
	require.NoError(t, Start(c, model.TaskHunting, ""))

	Tick(e, c)
	require.Equal(t, StatusUnreachable, c.Status)
	require.Equal(t, model.PhaseWaitingForAvailability, c.Auto.Phase)
	require.Equal(t, time.Second, c.Auto.RetryAt)

	before := e.searches
	e.now = 500 * time.Millisecond
	Tick(e, c)
	require.Equal(t, before, e.searches, "no search before the retry time")
}

func TestGather_FindWalkActLoop(t *testing.T) {
	e := newEnv(t)
	c := addChar(t, e, "C1", model.Pos{X: 1, Y: 1})
	require.NoError(t, Start(c, model.TaskMining, ""))

	Tick(e, c)
	require.Equal(t, model.PhaseWalkingToTarget, c.Auto.Phase)
	require.Equal(t, "copper_rock@5,1", c.Auto.TargetID)
	require.Equal(t, model.Pos{X: 4, Y: 1}, c.Path[len(c.Path)-1])

	arrive(e, c)
	res := Tick(e, c)
	require.Empty(t, res.Events)
	require.Equal(t, model.PhaseActing, c.Auto.Phase)
	require.Equal(t, 100*time.Millisecond, c.Auto.Progress)

	Tick(e, c)
	res = Tick(e, c)
	require.True(t, res.Changed)
	require.Len(t, res.Events, 2)
	require.Equal(t, model.EventItem, res.Events[0].Kind)
	require.Equal(t, model.EventLevelUp, res.Events[1].Kind)
	require.Equal(t, int64(2), res.Events[1].Amount)
	require.Equal(t, 1, e.team.Inventory["copper_ore"])
	require.Equal(t, 60, c.Skills[model.SkillMining])
	require.Equal(t, model.PhaseFindingTarget, c.Auto.Phase)

	Tick(e, c)
	require.Equal(t, model.PhaseActing, c.Auto.Phase, "loops straight back onto the same node")
	require.False(t, c.MidPath())
}

func TestGather_WaitsWithoutPathingWhenNoNodes(t *testing.T) {
	e := newEnv(t)
	c := addChar(t, e, "C1", model.Pos{X: 1, Y: 1})
	require.NoError(t, Start(c, model.TaskMining, "gold_rock"))

	for i := 0; i < 5; i++ {
		Tick(e, c)
		e.now += 100 * time.Millisecond
	}
	require.Equal(t, model.PhaseWaitingForAvailability, c.Auto.Phase)
	require.Equal(t, StatusNoNodes, c.Status)
	require.Zero(t, e.searches)
}

func TestGather_LevelGate(t *testing.T) {
	e := newEnv(t)
	def := e.resources["copper_rock"]
	def.MinLevel = 3
	e.resources["copper_rock"] = def
	c := addChar(t, e, "C1", model.Pos{X: 1, Y: 1})
	require.NoError(t, Start(c, model.TaskMining, ""))

	Tick(e, c)
	require.Equal(t, StatusNoNodes, c.Status)

	c.Skills[model.SkillMining] = 200
	Tick(e, c)
	require.Equal(t, model.PhaseWalkingToTarget, c.Auto.Phase)
}
