package world

import (
	"sort"

	"gridrealm.ai/internal/persistence/save"
)

// ExportSave projects the session into its save form.
// Must be called from the goroutine driving Step.
func (w *World) ExportSave(slot string) save.SaveV3 {
	s := save.SaveV3{
		Header:          save.Header{Version: save.CurrentVersion, Slot: slot, Tick: w.tick},
		Seed:            w.tun.Seed,
		NowMs:           w.now.Milliseconds(),
		ActiveCharacter: w.active,
		Team: save.TeamV1{
			Gold:          w.team.Gold,
			Gems:          w.team.Gems,
			Inventory:     nonZero(w.team.Inventory),
			Upgrades:      nonZero(w.team.Upgrades),
			UnlockedDrops: trueKeys(w.team.UnlockedDrops),
			FirstKills:    trueKeys(w.team.FirstKills),
		},
	}

	for _, c := range w.reg.Characters() {
		cs := save.CharacterV3{
			ID:     c.ID,
			Name:   c.Name,
			Zone:   c.ZoneID.ToArray(),
			Pos:    c.Pos.ToArray(),
			HP:     c.HP,
			Dead:   c.Dead,
			Skills: make(map[string]int, len(c.Skills)),
		}
		if c.Dead {
			cs.ReviveAtMs = c.ReviveAt.Milliseconds()
		}
		for sk, xp := range c.Skills {
			if xp > 0 {
				cs.Skills[sk.String()] = xp
			}
		}
		for _, mk := range c.Marks {
			cs.Marks = append(cs.Marks, save.MarkV1{
				MonsterID: mk.MonsterID,
				Zone:      mk.Zone.ToArray(),
				Approach:  mk.Approach.ToArray(),
			})
		}
		if c.Auto.Active {
			cs.Task = c.Auto.Task.String()
			cs.Resource = c.Auto.Resource
		}
		s.Characters = append(s.Characters, cs)
	}

	for _, z := range w.reg.ActivatedZones() {
		s.ActivatedZones = append(s.ActivatedZones, z.ToArray())
	}
	for _, rec := range w.reg.AllRespawns() {
		m := rec.Monster
		s.Respawns = append(s.Respawns, save.RespawnV3{
			ID:      m.ID,
			Type:    m.Type,
			Zone:    m.ZoneID.ToArray(),
			Pos:     m.Pos.ToArray(),
			Size:    [2]int{m.Size.W, m.Size.H},
			MaxHP:   m.MaxHP,
			Attack:  m.Attack,
			Boss:    m.Boss,
			DueAtMs: rec.DueAt.Milliseconds(),
		})
	}
	sort.Slice(s.Respawns, func(i, j int) bool { return s.Respawns[i].ID < s.Respawns[j].ID })
	s.Normalize()
	return s
}

func nonZero(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		if v != 0 {
			out[k] = v
		}
	}
	return out
}

func trueKeys(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, ok := range m {
		if ok {
			out[k] = true
		}
	}
	return out
}
