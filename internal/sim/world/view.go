package world

import (
	"gridrealm.ai/internal/protocol"
	"gridrealm.ai/internal/sim/world/kernel/model"
)

// Frame is the read-only per-frame snapshot handed to presentation.
func (w *World) Frame() protocol.FrameMsg {
	f := protocol.FrameMsg{
		Type:            protocol.TypeFrame,
		ProtocolVersion: protocol.Version,
		Tick:            w.tick,
		ActiveCharacter: w.active,
		Team: protocol.TeamState{
			Gold:      w.team.Gold,
			Gems:      w.team.Gems,
			Inventory: copyCounts(w.team.Inventory),
			Upgrades:  copyCounts(w.team.Upgrades),
			Damage:    w.team.Stats.Damage,
			Defense:   w.team.Stats.Defense,
			SpeedPct:  w.team.Stats.SpeedPct,
			MaxHP:     w.team.Stats.MaxHP,
			MarkCap:   w.team.Stats.MarkCapacity,
		},
		Characters: []protocol.CharacterState{},
		Monsters:   []protocol.MonsterState{},
		Marks:      []protocol.MarkState{},
		Combat:     []protocol.CombatState{},
	}
	for _, c := range w.reg.Characters() {
		cs := protocol.CharacterState{
			ID:     c.ID,
			Name:   c.Name,
			Zone:   c.ZoneID.ToArray(),
			Pos:    c.Pos.ToArray(),
			Visual: [2]float64{c.Visual.X, c.Visual.Y},
			HP:     c.HP,
			MaxHP:  c.MaxHP,
			Dead:   c.Dead,
			Status: c.Status,
			Skills: skillXP(c),
		}
		if c.Auto.Active {
			cs.Task = c.Auto.Task.String()
			cs.Phase = c.Auto.Phase.String()
		}
		f.Characters = append(f.Characters, cs)
		for _, mk := range c.Marks {
			f.Marks = append(f.Marks, protocol.MarkState{
				CharacterID: c.ID,
				MonsterID:   mk.MonsterID,
				Zone:        mk.Zone.ToArray(),
				Approach:    mk.Approach.ToArray(),
			})
		}
		if c.Combat.Active {
			f.Combat = append(f.Combat, protocol.CombatState{
				CharacterID: c.ID,
				MonsterID:   c.Combat.MonsterID,
				Turn:        c.Combat.Turn.String(),
			})
		}
	}
	for _, m := range w.reg.Monsters() {
		f.Monsters = append(f.Monsters, protocol.MonsterState{
			ID:    m.ID,
			Type:  m.Type,
			Zone:  m.ZoneID.ToArray(),
			Pos:   m.Pos.ToArray(),
			Size:  [2]int{m.Size.W, m.Size.H},
			HP:    m.HP,
			MaxHP: m.MaxHP,
			Boss:  m.Boss,
		})
	}
	return f
}

// Welcome describes the static world to a newly connected client.
func (w *World) Welcome(sessionID string) protocol.WelcomeMsg {
	msg := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       sessionID,
		TickRateHz:      w.tun.TickRateHz,
		FrameRateHz:     w.tun.FrameRateHz,
		ActiveCharacter: w.active,
		Catalogs: protocol.CatalogDigests{
			Monsters:  w.cats.Monsters.Digest,
			Resources: w.cats.Resources.Digest,
			Items:     w.cats.Items.Digest,
			Upgrades:  w.cats.Upgrades.Digest,
		},
	}
	for _, id := range w.zones.IDs() {
		z, _ := w.zones.Zone(id)
		msg.Zones = append(msg.Zones, protocol.ZoneInfo{
			ID:   id.ToArray(),
			Name: z.Name,
			W:    z.W,
			H:    z.H,
			Rows: z.Rows(),
		})
	}
	return msg
}

func copyCounts(m map[string]int) map[string]int {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func skillXP(c *model.Character) map[string]int {
	if len(c.Skills) == 0 {
		return nil
	}
	out := make(map[string]int, len(c.Skills))
	for s, xp := range c.Skills {
		out[s.String()] = xp
	}
	return out
}
