package world

import (
	"go.uber.org/zap"

	"gridrealm.ai/internal/sim/world/feature/automation"
	"gridrealm.ai/internal/sim/world/feature/combat"
	"gridrealm.ai/internal/sim/world/feature/movement"
	"gridrealm.ai/internal/sim/world/feature/survival/regen"
	"gridrealm.ai/internal/sim/world/feature/survival/respawn"
	"gridrealm.ai/internal/sim/world/kernel/model"
)

// Step advances the session by one logic tick. Queued intents apply first, then due
// respawns, regeneration, and per character: revival, one path step, automation, combat.
func (w *World) Step() {
	w.tick++
	w.now += w.tun.TickDuration()
	env := w.env()

	w.applyIntents()
	w.reg.Commit()

	for _, m := range respawn.Process(w.reg, w.now, w.reg.OccupiedNow) {
		w.finder.Perimeters().Invalidate(m.ID)
		w.emit(model.Event{
			Kind: model.EventRespawn, Tick: w.tick, At: w.now,
			MonsterID: m.ID, MonsterType: m.Type, Zone: m.ZoneID,
		})
	}
	w.reg.Commit()

	chars := w.reg.Characters()
	for _, c := range chars {
		regen.Apply(c, w.now, w.tun.RegenInterval(), w.team.Stats.Regen)
	}

	for _, c := range chars {
		if ev, ok := respawn.Revive(env, c); ok {
			w.emit(ev)
			continue
		}
		movement.Step(env, c)

		res := automation.Tick(env, c)
		w.emit(res.Events...)
		if res.Changed {
			w.dirty = true
		}

		out := combat.Resolve(env, c)
		if out.MissingType != "" {
			w.log.Warn("killed monster type missing from catalog, no reward paid",
				zap.String("character", c.ID), zap.String("type", out.MissingType))
		}
		w.emit(out.Events...)
		if out.StatsDirty {
			w.recomputeStats()
		}
		if out.Changed {
			w.dirty = true
		}
	}
	w.reg.Commit()
}

// StepN runs n ticks back to back.
func (w *World) StepN(n int) {
	for i := 0; i < n; i++ {
		w.Step()
	}
}
