package walkability

import (
	"gridrealm.ai/internal/sim/world/kernel/model"
	"gridrealm.ai/internal/sim/zones"
)

type ZoneSource interface {
	Zone(id model.ZoneID) (*zones.Zone, bool)
}

// Occupancy answers committed per-tile occupancy by characters and live monsters.
type Occupancy interface {
	Occupied(zone model.ZoneID, p model.Pos) bool
}

// Oracle layers dynamic occupancy over static terrain. Every query is O(1).
type Oracle struct {
	zones ZoneSource
	occ   Occupancy
}

func New(zs ZoneSource, occ Occupancy) *Oracle {
	return &Oracle{zones: zs, occ: occ}
}

// IsWalkable fails closed for unknown zones and out-of-bounds tiles.
func (o *Oracle) IsWalkable(p model.Pos, zone model.ZoneID, ignoreAgents bool) bool {
	z, ok := o.zones.Zone(zone)
	if !ok {
		return false
	}
	if z.StaticBlocked(p) {
		return false
	}
	if ignoreAgents || o.occ == nil {
		return true
	}
	return !o.occ.Occupied(zone, p)
}

// StaticWalkable ignores agents.
func (o *Oracle) StaticWalkable(p model.Pos, zone model.ZoneID) bool {
	return o.IsWalkable(p, zone, true)
}

// Zone exposes the underlying zone for callers that already hold the oracle.
func (o *Oracle) Zone(id model.ZoneID) (*zones.Zone, bool) {
	return o.zones.Zone(id)
}
