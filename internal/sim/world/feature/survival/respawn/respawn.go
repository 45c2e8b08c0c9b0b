package respawn

import (
	"time"

	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/world/kernel/model"
)

// Queue is the respawn side of the entity registry.
type Queue interface {
	RespawnDue(now time.Duration, canPlace func(m *model.Monster) bool) []*model.Monster
}

// Delay is the per-type respawn delay, or fallback when the type does not set one.
func Delay(def catalogs.MonsterDef, fallback time.Duration) time.Duration {
	if def.RespawnMs > 0 {
		return time.Duration(def.RespawnMs) * time.Millisecond
	}
	return fallback
}

// Process re-materializes every due monster whose footprint is free. A monster whose
// footprint is occupied stays queued and is retried on the next tick.
func Process(q Queue, now time.Duration, occupied func(zone model.ZoneID, p model.Pos) bool) []*model.Monster {
	return q.RespawnDue(now, func(m *model.Monster) bool {
		if occupied == nil {
			return true
		}
		for _, t := range m.Footprint().Tiles() {
			if occupied(m.ZoneID, t) {
				return false
			}
		}
		return true
	})
}
