package automation

import (
	"fmt"
	"time"

	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/world/feature/movement"
	"gridrealm.ai/internal/sim/world/kernel/model"
	"gridrealm.ai/internal/sim/zones"
)

const (
	StatusNoMarks     = "no marked monsters"
	StatusStaleMark   = "marked monster no longer exists"
	StatusUnreachable = "target unreachable"
	StatusNoNodes     = "no resource of this type in zone"
)

type Env interface {
	Now() time.Duration
	Tick() uint64
	TickDuration() time.Duration
	ReplanInterval() time.Duration
	XPLevelBase() int
	Team() *model.Team

	Zone(id model.ZoneID) (*zones.Zone, bool)
	IsWalkable(p model.Pos, zone model.ZoneID, ignoreAgents bool) bool
	Resource(id string) (catalogs.ResourceDef, bool)

	Monster(id string) (*model.Monster, bool)
	IsRespawning(id string) bool
	// Reserved reports whether another character's mark on monsterID holds p.
	Reserved(monsterID, charID string, p model.Pos) bool

	SearchPath(start model.Pos, goals []model.Pos, zone model.ZoneID) ([]model.Pos, bool)
	FindPathToZone(start model.Pos, from, to model.ZoneID) ([]model.Pos, bool)
	ApproachTiles(entityID string, fp model.Footprint, zone model.ZoneID) []model.Pos
	// CrossGateway transfers c through the gateway it stands on.
	CrossGateway(c *model.Character) bool

	Engage(c *model.Character, m *model.Monster) bool
}

type Result struct {
	Events  []model.Event
	Changed bool
}

// Start replaces any running task. Combat and the current path are dropped.
func Start(c *model.Character, task model.Task, resource string) error {
	switch task {
	case model.TaskHunting, model.TaskMining, model.TaskWoodcutting, model.TaskFishing:
	default:
		return fmt.Errorf("cannot start task %s", task)
	}
	if task == model.TaskHunting {
		resource = ""
	}
	Stop(c)
	c.Auto = model.AutomationState{Active: true, Task: task, Resource: resource, Phase: model.PhaseFindingTarget}
	c.Status = ""
	return nil
}

// Stop cancels automation and combat synchronously.
func Stop(c *model.Character) {
	c.StopAutomation()
	c.Disengage()
}

// Tick advances c's automation by one decision. It yields while c is mid-path, in combat or dead.
func Tick(env Env, c *model.Character) Result {
	if c == nil || !c.Auto.Active || c.Dead || c.MidPath() || c.Combat.Active {
		return Result{}
	}
	switch c.Auto.Task {
	case model.TaskHunting:
		hunt(env, c)
		return Result{}
	case model.TaskMining, model.TaskWoodcutting, model.TaskFishing:
		return gather(env, c)
	case model.TaskNone:
	}
	Stop(c)
	return Result{}
}

func unreachable(env Env, c *model.Character) {
	c.Status = StatusUnreachable
	c.Auto.Phase = model.PhaseWaitingForAvailability
	c.Auto.RetryAt = env.Now() + env.ReplanInterval()
}

func hunt(env Env, c *model.Character) {
	a := &c.Auto
	if env.Now() < a.RetryAt {
		return
	}
	if len(c.Marks) == 0 {
		a.Phase = model.PhaseIdle
		a.TargetID = ""
		c.Status = StatusNoMarks
		return
	}
	mk := c.Marks[0]
	m, ok := env.Monster(mk.MonsterID)
	if !ok {
		if env.IsRespawning(mk.MonsterID) {
			a.Phase = model.PhaseWaitingForAvailability
			a.TargetID = mk.MonsterID
			return
		}
		c.RemoveMark(mk.MonsterID)
		c.Status = StatusStaleMark
		a.Phase = model.PhaseFindingTarget
		a.TargetID = ""
		return
	}
	a.TargetID = m.ID
	a.TargetPos = m.Pos

	if m.ZoneID != c.ZoneID {
		path, ok := env.FindPathToZone(c.Pos, c.ZoneID, m.ZoneID)
		if !ok {
			unreachable(env, c)
			return
		}
		if len(path) == 0 {
			if !env.CrossGateway(c) {
				a.Phase = model.PhaseWaitingForAvailability
				a.RetryAt = env.Now() + env.ReplanInterval()
			}
			return
		}
		movement.SetPath(c, path)
		a.Phase = model.PhaseWalkingToTarget
		return
	}

	fp := m.Footprint()
	if fp.AdjacentTo(c.Pos) {
		if env.Engage(c, m) {
			a.Phase = model.PhaseActing
			c.Status = ""
		}
		return
	}

	var path []model.Pos
	found := false
	if fp.AdjacentTo(mk.Approach) && env.IsWalkable(mk.Approach, m.ZoneID, false) {
		path, found = env.SearchPath(c.Pos, []model.Pos{mk.Approach}, c.ZoneID)
	}
	if !found {
		var goals []model.Pos
		for _, p := range env.ApproachTiles(m.ID, fp, m.ZoneID) {
			if !env.Reserved(m.ID, c.ID, p) {
				goals = append(goals, p)
			}
		}
		path, found = env.SearchPath(c.Pos, goals, c.ZoneID)
		if found && len(path) > 0 {
			c.Marks[0].Approach = path[len(path)-1]
		}
	}
	if !found || len(path) == 0 {
		unreachable(env, c)
		return
	}
	movement.SetPath(c, path)
	a.Phase = model.PhaseWalkingToTarget
}
