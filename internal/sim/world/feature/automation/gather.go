package automation

import (
	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/world/feature/movement"
	"gridrealm.ai/internal/sim/world/feature/work/gathering"
	"gridrealm.ai/internal/sim/world/kernel/model"
	"gridrealm.ai/internal/sim/zones"
)

func eligibleNodes(env Env, c *model.Character, skill model.Skill) []zones.Object {
	z, ok := env.Zone(c.ZoneID)
	if !ok {
		return nil
	}
	level := gathering.Level(c.Skills[skill], env.XPLevelBase())
	return z.ResourceNodes(func(typ string) bool {
		def, ok := env.Resource(typ)
		return ok && gathering.Eligible(def, skill, c.Auto.Resource, level)
	})
}

// inReach: adjacent to a node, or standing on a traversable one.
func inReach(c *model.Character, n zones.Object) bool {
	d := c.Pos.Manhattan(n.At)
	if d == 1 {
		return true
	}
	return d == 0 && !n.Blocking
}

func gather(env Env, c *model.Character) Result {
	skill, _ := c.Auto.Task.Skill()
	a := &c.Auto

	switch a.Phase {
	case model.PhaseWaitingForAvailability:
		if env.Now() < a.RetryAt {
			return Result{}
		}
		// No pathing while nothing exists: only re-plan once a node is present.
		if len(eligibleNodes(env, c, skill)) == 0 {
			return Result{}
		}
		a.Phase = model.PhaseFindingTarget
		findNode(env, c, skill)
		return Result{}

	case model.PhaseWalkingToTarget:
		if n, ok := targetNode(env, c); ok && inReach(c, n) {
			a.Phase = model.PhaseActing
			a.Progress = 0
			return act(env, c, skill)
		}
		a.Phase = model.PhaseFindingTarget
		findNode(env, c, skill)
		return Result{}

	case model.PhaseActing:
		return act(env, c, skill)

	case model.PhaseIdle, model.PhaseFindingTarget:
	}
	a.Phase = model.PhaseFindingTarget
	findNode(env, c, skill)
	return Result{}
}

func targetNode(env Env, c *model.Character) (zones.Object, bool) {
	z, ok := env.Zone(c.ZoneID)
	if !ok {
		return zones.Object{}, false
	}
	n, ok := z.ObjectAt(c.Auto.TargetPos)
	if !ok || n.Key() != c.Auto.TargetID {
		return zones.Object{}, false
	}
	return n, true
}

// findNode picks the nearest eligible node and walks toward it, skipping unreachable ones.
func findNode(env Env, c *model.Character, skill model.Skill) {
	a := &c.Auto
	nodes := eligibleNodes(env, c, skill)
	if len(nodes) == 0 {
		a.Phase = model.PhaseWaitingForAvailability
		a.TargetID = ""
		a.RetryAt = 0
		c.Status = StatusNoNodes
		return
	}
	tried := map[string]bool{}
	for {
		n, ok := gathering.Nearest(nodes, c.Pos, func(o zones.Object) bool { return tried[o.Key()] })
		if !ok {
			unreachable(env, c)
			a.TargetID = ""
			return
		}
		tried[n.Key()] = true
		a.TargetID = n.Key()
		a.TargetPos = n.At
		if inReach(c, n) {
			a.Phase = model.PhaseActing
			a.Progress = 0
			c.Status = ""
			return
		}
		goals := env.ApproachTiles(n.Key(), model.Footprint{Anchor: n.At, Size: model.Size{W: 1, H: 1}}, c.ZoneID)
		if !n.Blocking && env.IsWalkable(n.At, c.ZoneID, false) {
			goals = append(goals, n.At)
		}
		path, found := env.SearchPath(c.Pos, goals, c.ZoneID)
		if !found || len(path) == 0 {
			continue
		}
		movement.SetPath(c, path)
		a.Phase = model.PhaseWalkingToTarget
		c.Status = ""
		return
	}
}

func act(env Env, c *model.Character, skill model.Skill) Result {
	a := &c.Auto
	n, ok := targetNode(env, c)
	if !ok || !inReach(c, n) {
		a.Phase = model.PhaseFindingTarget
		a.Progress = 0
		return Result{}
	}
	def, ok := env.Resource(n.Type)
	if !ok {
		a.Phase = model.PhaseFindingTarget
		return Result{}
	}
	a.Progress += env.TickDuration()
	if a.Progress < gathering.Interval(def) {
		return Result{}
	}
	return complete(env, c, def, skill)
}

func complete(env Env, c *model.Character, def catalogs.ResourceDef, skill model.Skill) Result {
	a := &c.Auto
	award := gathering.Complete(c, env.Team(), def, skill, env.XPLevelBase())
	a.Progress = 0
	// The node is inexhaustible; look again so a nearer or newly unlocked node wins.
	a.Phase = model.PhaseFindingTarget

	res := Result{Changed: true}
	if award.Item != "" {
		res.Events = append(res.Events, model.Event{
			Kind: model.EventItem, Tick: env.Tick(), At: env.Now(),
			CharacterID: c.ID, Item: award.Item, Amount: 1, Zone: c.ZoneID,
		})
	}
	if award.LevelUp {
		res.Events = append(res.Events, model.Event{
			Kind: model.EventLevelUp, Tick: env.Tick(), At: env.Now(),
			CharacterID: c.ID, Item: skill.String(), Amount: int64(award.NewLevel), Zone: c.ZoneID,
		})
	}
	return res
}
