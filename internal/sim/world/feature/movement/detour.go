package movement

import (
	"gridrealm.ai/internal/sim/world/kernel/model"
	"gridrealm.ai/internal/sim/world/logic/gridpath"
	"gridrealm.ai/internal/sim/zones"
)

// replan recomputes the route to the final waypoint once. The new first step must be free now.
func replan(env Env, c *model.Character) bool {
	if len(c.Path) == 0 {
		return false
	}
	goal := c.Path[len(c.Path)-1]
	path, ok := env.FindPath(c.Pos, goal, c.ZoneID)
	if !ok || len(path) == 0 {
		return false
	}
	c.Path = path
	return true
}

// TileEnv is the subset of Env needed to place a character on a free tile.
type TileEnv interface {
	Zone(id model.ZoneID) (*zones.Zone, bool)
	IsWalkable(p model.Pos, zone model.ZoneID, ignoreAgents bool) bool
	OccupiedNow(zone model.ZoneID, p model.Pos) bool
}

// NearestFree returns the closest tile to p in zone that is walkable and unclaimed this tick,
// searching outward in the fixed cardinal order.
func NearestFree(env TileEnv, zone model.ZoneID, p model.Pos) (model.Pos, bool) {
	z, ok := env.Zone(zone)
	if !ok {
		return model.Pos{}, false
	}
	free := func(q model.Pos) bool {
		return env.IsWalkable(q, zone, true) && !env.OccupiedNow(zone, q)
	}
	if !z.InBounds(p) {
		return model.Pos{}, false
	}
	seen := make([]bool, z.TileCount())
	seen[p.Y*z.W+p.X] = true
	queue := []model.Pos{p}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if free(cur) {
			return cur, true
		}
		for _, d := range gridpath.Dirs {
			np := cur.Add(d.X, d.Y)
			if !z.InBounds(np) || seen[np.Y*z.W+np.X] || !env.IsWalkable(np, zone, true) {
				continue
			}
			seen[np.Y*z.W+np.X] = true
			queue = append(queue, np)
		}
	}
	return model.Pos{}, false
}
