package movement

import (
	"math"
	"time"

	"gridrealm.ai/internal/sim/world/kernel/model"
)

const minInterval = time.Millisecond

// Interval scales the base step cooldown by the team speed percentage.
// It is read at every step, so a speed change applies from the next step of an in-flight path.
func Interval(base time.Duration, speedPct float64) time.Duration {
	if speedPct <= 0 {
		speedPct = 100
	}
	d := time.Duration(float64(base) * 100 / speedPct)
	if d < minInterval {
		return minInterval
	}
	return d
}

// Interpolate eases the visual position toward the logical target by at most tilesPerSec*dt.
func Interpolate(c *model.Character, dt time.Duration, tilesPerSec float64) {
	if c == nil {
		return
	}
	tx, ty := float64(c.Target.X), float64(c.Target.Y)
	dx, dy := tx-c.Visual.X, ty-c.Visual.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return
	}
	step := tilesPerSec * dt.Seconds()
	if step <= 0 {
		return
	}
	// Snap when far behind, e.g. after a zone transfer.
	if step >= dist || dist > 2 {
		c.Visual = model.VisualPos{X: tx, Y: ty}
		return
	}
	c.Visual.X += dx / dist * step
	c.Visual.Y += dy / dist * step
}
