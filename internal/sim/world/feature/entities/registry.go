package entities

import (
	"fmt"
	"sort"
	"time"

	"gridrealm.ai/internal/sim/world/kernel/model"
)

type occupancy map[model.ZoneID]map[model.Pos]int

func (o occupancy) add(z model.ZoneID, p model.Pos) {
	m := o[z]
	if m == nil {
		m = map[model.Pos]int{}
		o[z] = m
	}
	m[p]++
}

func (o occupancy) remove(z model.ZoneID, p model.Pos) {
	m := o[z]
	if m == nil {
		return
	}
	if m[p] <= 1 {
		delete(m, p)
		return
	}
	m[p]--
}

func (o occupancy) has(z model.ZoneID, p model.Pos) bool {
	return o[z][p] > 0
}

func (o occupancy) clone() occupancy {
	out := make(occupancy, len(o))
	for z, m := range o {
		cp := make(map[model.Pos]int, len(m))
		for p, n := range m {
			cp[p] = n
		}
		out[z] = cp
	}
	return out
}

// Registry owns live characters and monsters, the respawn queue and tile occupancy.
//
// Occupancy is double-buffered: mutations update the live index, and Commit publishes it to
// the committed index that walkability queries read during the rest of the tick.
type Registry struct {
	chars     map[string]*model.Character
	charOrder []string

	monsters  map[string]*model.Monster
	monsterAt map[model.ZoneID]map[model.Pos]string

	respawns  map[model.ZoneID][]model.RespawnRecord
	queuedIn  map[string]model.ZoneID
	activated map[model.ZoneID]bool

	live      occupancy
	committed occupancy
}

func NewRegistry() *Registry {
	return &Registry{
		chars:     map[string]*model.Character{},
		monsters:  map[string]*model.Monster{},
		monsterAt: map[model.ZoneID]map[model.Pos]string{},
		respawns:  map[model.ZoneID][]model.RespawnRecord{},
		queuedIn:  map[string]model.ZoneID{},
		activated: map[model.ZoneID]bool{},
		live:      occupancy{},
		committed: occupancy{},
	}
}

func (r *Registry) AddCharacter(c *model.Character) error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("character id must not be empty")
	}
	if _, dup := r.chars[c.ID]; dup {
		return fmt.Errorf("duplicate character %s", c.ID)
	}
	r.chars[c.ID] = c
	r.charOrder = append(r.charOrder, c.ID)
	r.live.add(c.ZoneID, c.Pos)
	return nil
}

func (r *Registry) Character(id string) (*model.Character, bool) {
	c, ok := r.chars[id]
	return c, ok
}

// Characters returns characters in creation order.
func (r *Registry) Characters() []*model.Character {
	out := make([]*model.Character, 0, len(r.charOrder))
	for _, id := range r.charOrder {
		out = append(out, r.chars[id])
	}
	return out
}

func (r *Registry) CharacterCount() int { return len(r.charOrder) }

// MoveCharacter relocates c and keeps the live occupancy index in step.
func (r *Registry) MoveCharacter(c *model.Character, zone model.ZoneID, p model.Pos) {
	r.live.remove(c.ZoneID, c.Pos)
	c.ZoneID = zone
	c.Pos = p
	r.live.add(zone, p)
}

func (r *Registry) SpawnMonster(m model.Monster) (*model.Monster, error) {
	if m.ID == "" {
		return nil, fmt.Errorf("monster id must not be empty")
	}
	if _, ok := r.monsters[m.ID]; ok {
		return nil, fmt.Errorf("monster %s already live", m.ID)
	}
	if _, ok := r.queuedIn[m.ID]; ok {
		return nil, fmt.Errorf("monster %s is awaiting respawn", m.ID)
	}
	mm := m
	mm.Size = mm.Size.Normalize()
	r.place(&mm)
	return &mm, nil
}

func (r *Registry) place(m *model.Monster) {
	r.monsters[m.ID] = m
	at := r.monsterAt[m.ZoneID]
	if at == nil {
		at = map[model.Pos]string{}
		r.monsterAt[m.ZoneID] = at
	}
	for _, t := range m.Footprint().Tiles() {
		at[t] = m.ID
		r.live.add(m.ZoneID, t)
	}
}

func (r *Registry) unplace(m *model.Monster) {
	delete(r.monsters, m.ID)
	at := r.monsterAt[m.ZoneID]
	for _, t := range m.Footprint().Tiles() {
		if at[t] == m.ID {
			delete(at, t)
		}
		r.live.remove(m.ZoneID, t)
	}
}

// Monster returns a live monster.
func (r *Registry) Monster(id string) (*model.Monster, bool) {
	m, ok := r.monsters[id]
	return m, ok
}

// MonsterAt returns the live monster whose footprint covers p.
func (r *Registry) MonsterAt(zone model.ZoneID, p model.Pos) (*model.Monster, bool) {
	id, ok := r.monsterAt[zone][p]
	if !ok {
		return nil, false
	}
	return r.monsters[id], true
}

// MonstersIn returns live monsters of zone sorted by id.
func (r *Registry) MonstersIn(zone model.ZoneID) []*model.Monster {
	var out []*model.Monster
	for _, m := range r.monsters {
		if m.ZoneID == zone {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Monsters returns every live monster sorted by id.
func (r *Registry) Monsters() []*model.Monster {
	out := make([]*model.Monster, 0, len(r.monsters))
	for _, m := range r.monsters {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Defeat moves a live monster into the respawn queue with health reset to max.
func (r *Registry) Defeat(id string, dueAt time.Duration) (model.RespawnRecord, bool) {
	m, ok := r.monsters[id]
	if !ok {
		return model.RespawnRecord{}, false
	}
	r.unplace(m)
	snap := *m
	snap.HP = snap.MaxHP
	rec := model.RespawnRecord{Monster: snap, DueAt: dueAt}
	r.respawns[snap.ZoneID] = append(r.respawns[snap.ZoneID], rec)
	r.queuedIn[snap.ID] = snap.ZoneID
	return rec, true
}

// Enqueue restores a respawn record, e.g. from a save.
func (r *Registry) Enqueue(rec model.RespawnRecord) error {
	id := rec.Monster.ID
	if _, ok := r.monsters[id]; ok {
		return fmt.Errorf("monster %s already live", id)
	}
	if _, ok := r.queuedIn[id]; ok {
		return fmt.Errorf("monster %s already queued", id)
	}
	rec.Monster.Size = rec.Monster.Size.Normalize()
	r.respawns[rec.Monster.ZoneID] = append(r.respawns[rec.Monster.ZoneID], rec)
	r.queuedIn[id] = rec.Monster.ZoneID
	return nil
}

func (r *Registry) IsRespawning(id string) bool {
	_, ok := r.queuedIn[id]
	return ok
}

// Known reports whether id is live or queued.
func (r *Registry) Known(id string) bool {
	_, live := r.monsters[id]
	return live || r.IsRespawning(id)
}

func (r *Registry) Respawns(zone model.ZoneID) []model.RespawnRecord {
	return r.respawns[zone]
}

// AllRespawns returns queued records ordered by due time, then id.
func (r *Registry) AllRespawns() []model.RespawnRecord {
	var out []model.RespawnRecord
	for _, recs := range r.respawns {
		out = append(out, recs...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DueAt != out[j].DueAt {
			return out[i].DueAt < out[j].DueAt
		}
		return out[i].Monster.ID < out[j].Monster.ID
	})
	return out
}

func (r *Registry) respawnZones() []model.ZoneID {
	zs := make([]model.ZoneID, 0, len(r.respawns))
	for z, recs := range r.respawns {
		if len(recs) > 0 {
			zs = append(zs, z)
		}
	}
	sort.Slice(zs, func(i, j int) bool { return zs[i].Less(zs[j]) })
	return zs
}

// RespawnDue moves every due record accepted by canPlace back into the live registry.
// Each record leaves the queue in the same step it becomes live.
func (r *Registry) RespawnDue(now time.Duration, canPlace func(m *model.Monster) bool) []*model.Monster {
	var out []*model.Monster
	for _, z := range r.respawnZones() {
		recs := r.respawns[z]
		keep := recs[:0]
		for _, rec := range recs {
			if rec.DueAt > now || (canPlace != nil && !canPlace(&rec.Monster)) {
				keep = append(keep, rec)
				continue
			}
			m := rec.Monster
			m.HP = m.MaxHP
			delete(r.queuedIn, m.ID)
			r.place(&m)
			out = append(out, &m)
		}
		if len(keep) == 0 {
			delete(r.respawns, z)
		} else {
			r.respawns[z] = keep
		}
	}
	return out
}

// ActivateZone marks zone active, reporting whether this is the first activation.
func (r *Registry) ActivateZone(zone model.ZoneID) bool {
	if r.activated[zone] {
		return false
	}
	r.activated[zone] = true
	return true
}

func (r *Registry) IsActivated(zone model.ZoneID) bool { return r.activated[zone] }

func (r *Registry) ActivatedZones() []model.ZoneID {
	out := make([]model.ZoneID, 0, len(r.activated))
	for z := range r.activated {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Occupied reports committed occupancy of p by any character or live monster.
func (r *Registry) Occupied(zone model.ZoneID, p model.Pos) bool {
	return r.committed.has(zone, p)
}

// OccupiedNow reports live occupancy, including mutations made earlier in this tick.
func (r *Registry) OccupiedNow(zone model.ZoneID, p model.Pos) bool {
	return r.live.has(zone, p)
}

// Commit publishes live occupancy to the committed index.
func (r *Registry) Commit() {
	r.committed = r.live.clone()
}
