package gathering

import (
	"math"
	"time"

	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/world/kernel/model"
	"gridrealm.ai/internal/sim/zones"
)

// Level is floor(sqrt(xp/base)) + 1.
func Level(xp, base int) int {
	if xp <= 0 || base <= 0 {
		return 1
	}
	return int(math.Sqrt(float64(xp)/float64(base))) + 1
}

func Interval(def catalogs.ResourceDef) time.Duration {
	return time.Duration(def.IntervalMs) * time.Millisecond
}

// Progress is the completed fraction of one action, clamped to [0, 1].
func Progress(elapsed, interval time.Duration) float64 {
	if interval <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1, float64(elapsed)/float64(interval)))
}

// Eligible reports whether a node of def can be worked for skill at level.
func Eligible(def catalogs.ResourceDef, skill model.Skill, resource string, level int) bool {
	if def.Skill != skill.String() {
		return false
	}
	if resource != "" && def.ID != resource {
		return false
	}
	return level >= def.MinLevel
}

// Nearest picks the node closest to from by Manhattan distance, first in list order on ties.
func Nearest(nodes []zones.Object, from model.Pos, skip func(zones.Object) bool) (zones.Object, bool) {
	best := -1
	var out zones.Object
	for _, n := range nodes {
		if skip != nil && skip(n) {
			continue
		}
		d := n.At.Manhattan(from)
		if best < 0 || d < best {
			best = d
			out = n
		}
	}
	return out, best >= 0
}

type Award struct {
	XP       int
	Item     string
	LevelUp  bool
	NewLevel int
}

// Complete grants one action's experience and item.
func Complete(c *model.Character, team *model.Team, def catalogs.ResourceDef, skill model.Skill, xpBase int) Award {
	if c.Skills == nil {
		c.Skills = map[model.Skill]int{}
	}
	before := Level(c.Skills[skill], xpBase)
	c.Skills[skill] += def.XP
	after := Level(c.Skills[skill], xpBase)
	if def.Item != "" {
		team.InitDefaults()
		team.Inventory[def.Item]++
	}
	return Award{XP: def.XP, Item: def.Item, LevelUp: after > before, NewLevel: after}
}
