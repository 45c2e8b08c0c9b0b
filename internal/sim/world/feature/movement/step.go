package movement

import (
	"time"

	"gridrealm.ai/internal/sim/world/kernel/model"
	"gridrealm.ai/internal/sim/zones"
)

const (
	StatusPathBlocked    = "path blocked"
	StatusGatewayBlocked = "gateway exit blocked"
)

type Env interface {
	Now() time.Duration
	BaseMoveInterval() time.Duration
	SpeedPct() float64

	Zone(id model.ZoneID) (*zones.Zone, bool)
	IsWalkable(p model.Pos, zone model.ZoneID, ignoreAgents bool) bool
	// OccupiedNow includes tiles claimed earlier in the current tick.
	OccupiedNow(zone model.ZoneID, p model.Pos) bool
	FindPath(start, goal model.Pos, zone model.ZoneID) ([]model.Pos, bool)

	MoveCharacter(c *model.Character, zone model.ZoneID, p model.Pos)
	// EnterZone runs after a gateway transfer lands c in a new zone.
	EnterZone(c *model.Character, from model.ZoneID)
}

// SetPath installs a new path. The cooldown is not reset, so re-targeting never stalls.
func SetPath(c *model.Character, path []model.Pos) {
	c.Path = append(c.Path[:0:0], path...)
}

// Step advances c by at most one waypoint. It reports whether c moved.
func Step(env Env, c *model.Character) bool {
	if c == nil || c.Dead || !c.MidPath() {
		return false
	}
	now := env.Now()
	if now < c.MoveReadyAt {
		return false
	}

	next := c.Path[0]
	if !free(env, c, next) {
		if !replan(env, c) {
			c.ClearPath()
			c.Status = StatusPathBlocked
			return false
		}
		next = c.Path[0]
		if !free(env, c, next) {
			return false
		}
	}

	env.MoveCharacter(c, c.ZoneID, next)
	c.Path = c.Path[1:]
	c.Target = next
	c.MoveReadyAt = now + Interval(env.BaseMoveInterval(), env.SpeedPct())

	if len(c.Path) == 0 {
		c.Path = nil
		Transfer(env, c)
	}
	return true
}

func free(env Env, c *model.Character, p model.Pos) bool {
	if p.Manhattan(c.Pos) != 1 {
		return false
	}
	return env.IsWalkable(p, c.ZoneID, true) && !env.OccupiedNow(c.ZoneID, p)
}

// Transfer moves c through the gateway it is standing on, if any. It reports whether c
// changed zone.
func Transfer(env Env, c *model.Character) bool {
	z, ok := env.Zone(c.ZoneID)
	if !ok {
		return false
	}
	g, ok := z.GatewayAt(c.Pos)
	if !ok {
		return false
	}
	entry, ok := NearestFree(env, g.To, g.Entry)
	if !ok {
		c.Status = StatusGatewayBlocked
		return false
	}
	from := c.ZoneID
	env.MoveCharacter(c, g.To, entry)
	c.Target = entry
	c.Visual = model.VisualAt(entry)
	env.EnterZone(c, from)
	return true
}
