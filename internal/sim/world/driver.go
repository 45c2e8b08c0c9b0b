package world

import (
	"time"

	"gridrealm.ai/internal/sim/world/feature/movement"
)

// Driver converts real elapsed time into fixed logic ticks. Unspent time carries over
// between frames; a long stall runs at most MaxCatchUpTicks ticks and drops the rest.
type Driver struct {
	w           *World
	tick        time.Duration
	maxAcc      time.Duration
	acc         time.Duration
	tilesPerSec float64
}

func NewDriver(w *World) *Driver {
	tun := w.Tuning()
	catchUp := tun.MaxCatchUpTicks
	if catchUp < 1 {
		catchUp = 1
	}
	return &Driver{
		w:           w,
		tick:        tun.TickDuration(),
		maxAcc:      time.Duration(catchUp) * tun.TickDuration(),
		tilesPerSec: tun.VisualTilesPerSecond,
	}
}

// Advance banks real elapsed time and runs every tick it pays for. It returns the number
// of ticks run.
func (d *Driver) Advance(real time.Duration) int {
	if real > 0 {
		d.acc += real
	}
	if d.acc > d.maxAcc {
		d.acc = d.maxAcc
	}
	n := 0
	for d.acc >= d.tick {
		d.w.Step()
		d.acc -= d.tick
		n++
	}
	return n
}

// Interpolate eases every character's visual position toward its logical target.
func (d *Driver) Interpolate(real time.Duration) {
	for _, c := range d.w.Characters() {
		movement.Interpolate(c, real, d.tilesPerSec)
	}
}

// Frame is one render frame: advance the logic, then interpolate.
func (d *Driver) Frame(real time.Duration) int {
	n := d.Advance(real)
	d.Interpolate(real)
	return n
}

// Alpha is the fraction of a tick banked in the accumulator.
func (d *Driver) Alpha() float64 { return float64(d.acc) / float64(d.tick) }
