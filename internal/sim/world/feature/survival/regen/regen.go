package regen

import (
	"math"
	"time"

	"gridrealm.ai/internal/sim/world/kernel/model"
)

// Apply heals c by amount when its regeneration cooldown has elapsed. Dead characters and
// characters at full health only have their cooldown advanced.
func Apply(c *model.Character, now, interval time.Duration, amount float64) bool {
	if c == nil || now < c.RegenAt {
		return false
	}
	c.RegenAt = now + interval
	if c.Dead || c.HP >= c.MaxHP || amount <= 0 {
		return false
	}
	c.HP = math.Min(c.MaxHP, c.HP+amount)
	return true
}
