package movement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gridrealm.ai/internal/sim/world/feature/entities"
	"gridrealm.ai/internal/sim/world/feature/pathing"
	"gridrealm.ai/internal/sim/world/feature/walkability"
	"gridrealm.ai/internal/sim/world/kernel/model"
	"gridrealm.ai/internal/sim/zones"
)

type content struct{}

func (content) ResourceBlocking(string) (bool, bool) { return true, true }
func (content) MonsterSize(string) (int, int, bool)  { return 1, 1, true }

type env struct {
	now     time.Duration
	speed   float64
	zones   *zones.Registry
	reg     *entities.Registry
	oracle  *walkability.Oracle
	finder  *pathing.Finder
	entered []model.ZoneID
}

func newEnv(t *testing.T) *env {
	t.Helper()
	zr, err := zones.Build(zones.Config{
		HomeZone:    [2]int{0, 0},
		RespawnTile: [2]int{1, 1},
		SafeTile:    [2]int{1, 1},
		Zones: []zones.ZoneSpec{
			{
				ID:       [2]int{0, 0},
				Rows:     []string{"######", "#....#", "#....#", "######"},
				Gateways: []zones.GatewaySpec{{At: [2]int{4, 1}, To: [2]int{1, 0}, Entry: [2]int{1, 1}}},
			},
			{
				ID:       [2]int{1, 0},
				Rows:     []string{"####", "#..#", "#..#", "####"},
				Gateways: []zones.GatewaySpec{{At: [2]int{2, 2}, To: [2]int{0, 0}, Entry: [2]int{3, 1}}},
			},
		},
	}, content{})
	require.NoError(t, err)
	reg := entities.NewRegistry()
	o := walkability.New(zr, reg)
	return &env{speed: 100, zones: zr, reg: reg, oracle: o, finder: pathing.NewFinder(o, zr)}
}

func (e *env) Now() time.Duration                       { return e.now }
func (e *env) BaseMoveInterval() time.Duration          { return 300 * time.Millisecond }
func (e *env) SpeedPct() float64                        { return e.speed }
func (e *env) Zone(id model.ZoneID) (*zones.Zone, bool) { return e.zones.Zone(id) }
func (e *env) IsWalkable(p model.Pos, z model.ZoneID, ignore bool) bool {
	return e.oracle.IsWalkable(p, z, ignore)
}
func (e *env) OccupiedNow(z model.ZoneID, p model.Pos) bool { return e.reg.OccupiedNow(z, p) }
func (e *env) FindPath(a, b model.Pos, z model.ZoneID) ([]model.Pos, bool) {
	return e.finder.FindPath(a, b, z)
}
func (e *env) MoveCharacter(c *model.Character, z model.ZoneID, p model.Pos) {
	e.reg.MoveCharacter(c, z, p)
}
func (e *env) EnterZone(c *model.Character, from model.ZoneID) { e.entered = append(e.entered, c.ZoneID) }

func addChar(t *testing.T, e *env, id string, p model.Pos) *model.Character {
	c := &model.Character{ID: id, ZoneID: model.ZoneID{}, Pos: p, HP: 10, MaxHP: 10}
	c.InitDefaults()
	require.NoError(t, e.reg.AddCharacter(c))
	e.reg.Commit()
	return c
}

func TestStep_CooldownGatesSteps(t *testing.T) {
	e := newEnv(t)
	c := addChar(t, e, "C1", model.Pos{X: 1, Y: 2})
	path, ok := e.FindPath(c.Pos, model.Pos{X: 3, Y: 2}, c.ZoneID)
	require.True(t, ok)
	SetPath(c, path)

	require.True(t, Step(e, c))
	require.Equal(t, model.Pos{X: 2, Y: 2}, c.Pos)
	require.False(t, Step(e, c), "cooldown not elapsed")

	e.now += 300 * time.Millisecond
	require.True(t, Step(e, c))
	require.Equal(t, model.Pos{X: 3, Y: 2}, c.Pos)
	require.False(t, c.MidPath())
}

func TestStep_SpeedAppliesToNextStep(t *testing.T) {
	e := newEnv(t)
	c := addChar(t, e, "C1", model.Pos{X: 1, Y: 2})
	SetPath(c, []model.Pos{{X: 2, Y: 2}, {X: 3, Y: 2}})
	e.speed = 200
	require.True(t, Step(e, c))
	require.Equal(t, 150*time.Millisecond, c.MoveReadyAt)
}

func TestStep_ReplansAroundBlocker(t *testing.T) {
	e := newEnv(t)
	c := addChar(t, e, "C1", model.Pos{X: 1, Y: 2})
	SetPath(c, []model.Pos{{X: 2, Y: 2}, {X: 3, Y: 2}})
	addChar(t, e, "C2", model.Pos{X: 2, Y: 2})

	require.True(t, Step(e, c))
	require.Equal(t, model.Pos{X: 1, Y: 1}, c.Pos, "detours north")
	require.Equal(t, model.Pos{X: 3, Y: 2}, c.Path[len(c.Path)-1])
}

func TestStep_UnreachableClearsPathWithStatus(t *testing.T) {
	e := newEnv(t)
	c := addChar(t, e, "C1", model.Pos{X: 1, Y: 2})
	SetPath(c, []model.Pos{{X: 2, Y: 2}})
	addChar(t, e, "C2", model.Pos{X: 2, Y: 2})

	require.False(t, Step(e, c))
	require.False(t, c.MidPath())
	require.Equal(t, StatusPathBlocked, c.Status)
}

func TestStep_GatewayTransferOnFinalWaypoint(t *testing.T) {
	e := newEnv(t)
	c := addChar(t, e, "C1", model.Pos{X: 3, Y: 1})
	SetPath(c, []model.Pos{{X: 4, Y: 1}})

	require.True(t, Step(e, c))
	require.Equal(t, model.ZoneID{X: 1, Y: 0}, c.ZoneID)
	require.Equal(t, model.Pos{X: 1, Y: 1}, c.Pos)
	require.Equal(t, []model.ZoneID{{X: 1, Y: 0}}, e.entered)
	require.Equal(t, model.VisualAt(c.Pos), c.Visual)
}

func TestTransfer_FromGatewayTile(t *testing.T) {
	e := newEnv(t)
	c := addChar(t, e, "C1", model.Pos{X: 4, Y: 1})
	require.True(t, Transfer(e, c))
	require.Equal(t, model.ZoneID{X: 1, Y: 0}, c.ZoneID)
	require.Equal(t, []model.ZoneID{{X: 1, Y: 0}}, e.entered)

	off := addChar(t, e, "C2", model.Pos{X: 2, Y: 2})
	require.False(t, Transfer(e, off))
	require.Equal(t, model.ZoneID{}, off.ZoneID)
}

func TestInterpolate_EasesTowardTarget(t *testing.T) {
	c := &model.Character{Pos: model.Pos{X: 1, Y: 0}, Target: model.Pos{X: 1, Y: 0}}
	c.Visual = model.VisualPos{X: 0, Y: 0}
	Interpolate(c, 50*time.Millisecond, 8)
	require.InDelta(t, 0.4, c.Visual.X, 1e-9)
	Interpolate(c, time.Second, 8)
	require.Equal(t, 1.0, c.Visual.X)
}
