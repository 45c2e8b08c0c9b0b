package world

import (
	"fmt"

	"go.uber.org/zap"

	"gridrealm.ai/internal/sim/world/feature/automation"
	"gridrealm.ai/internal/sim/world/feature/combat"
	"gridrealm.ai/internal/sim/world/feature/economy/stats"
	"gridrealm.ai/internal/sim/world/feature/movement"
	"gridrealm.ai/internal/sim/world/kernel/model"
)

const statCharacters = "characters"

// MoveTo sends a character to tile in its current zone. Manual movement cancels automation.
func (w *World) MoveTo(charID string, tile model.Pos) error {
	c, err := w.character(charID)
	if err != nil {
		return err
	}
	if c.Dead {
		return ErrCharacterDead
	}
	automation.Stop(c)
	if tile == c.Pos {
		c.ClearPath()
		return nil
	}
	path, ok := w.finder.FindPath(c.Pos, tile, c.ZoneID)
	if !ok || len(path) == 0 {
		c.ClearPath()
		c.Status = automation.StatusUnreachable
		return fmt.Errorf("%w: %d,%d in zone %s", ErrUnreachable, tile.X, tile.Y, c.ZoneID)
	}
	movement.SetPath(c, path)
	c.Status = ""
	return nil
}

// ToggleMark marks the monster standing on tile in the character's zone, or unmarks it if
// already marked. Marking past capacity evicts the oldest mark.
func (w *World) ToggleMark(charID string, tile model.Pos) error {
	c, err := w.character(charID)
	if err != nil {
		return err
	}
	if c.Dead {
		return ErrCharacterDead
	}
	m, ok := w.reg.MonsterAt(c.ZoneID, tile)
	if !ok {
		return fmt.Errorf("%w: %d,%d", ErrNoMonster, tile.X, tile.Y)
	}
	if c.RemoveMark(m.ID) {
		w.dirty = true
		return nil
	}

	approach, ok := w.pickApproach(c, m)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoApproachTile, m.ID)
	}
	evicted := c.AddMark(model.Mark{MonsterID: m.ID, Zone: m.ZoneID, Approach: approach}, w.team.Stats.MarkCapacity)
	for _, ev := range evicted {
		w.emit(model.Event{
			Kind: model.EventMarkEvicted, Tick: w.tick, At: w.now,
			CharacterID: c.ID, MonsterID: ev.MonsterID, Zone: ev.Zone,
		})
	}
	w.dirty = true
	return nil
}

// pickApproach chooses the perimeter tile of m nearest to c that no other character reserves.
func (w *World) pickApproach(c *model.Character, m *model.Monster) (model.Pos, bool) {
	best, found := model.Pos{}, false
	bestD := 0
	for _, p := range w.finder.Perimeters().For(m.ID, m.Footprint()) {
		if p != c.Pos && !w.oracle.IsWalkable(p, m.ZoneID, false) {
			continue
		}
		if w.reserved(m.ID, c.ID, p) {
			continue
		}
		if d := p.Manhattan(c.Pos); !found || d < bestD {
			best, bestD, found = p, d, true
		}
	}
	return best, found
}

// StartTask starts hunting or a gathering skill. resource narrows gathering to one node type.
func (w *World) StartTask(charID string, task model.Task, resource string) error {
	c, err := w.character(charID)
	if err != nil {
		return err
	}
	if c.Dead {
		return ErrCharacterDead
	}
	if skill, ok := task.Skill(); ok && resource != "" {
		def, ok := w.cats.Resources.ByID[resource]
		if !ok || def.Skill != skill.String() {
			return fmt.Errorf("%w: resource %s for %s", ErrConfigMissing, resource, skill)
		}
	}
	if err := automation.Start(c, task, resource); err != nil {
		return fmt.Errorf("%w: %v", ErrBadIntent, err)
	}
	w.dirty = true
	return nil
}

// StopAutomation cancels the character's task, path and combat.
func (w *World) StopAutomation(charID string) error {
	c, err := w.character(charID)
	if err != nil {
		return err
	}
	automation.Stop(c)
	w.dirty = true
	return nil
}

// PurchaseUpgrade buys one level and recomputes team stats.
func (w *World) PurchaseUpgrade(id string) error {
	def, ok := w.cats.Upgrades.ByID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownUpgrade, id)
	}
	if def.Stat == statCharacters && w.reg.CharacterCount() >= w.tun.MaxCharacters {
		return ErrCharacterCap
	}
	cost, err := stats.Purchase(&w.team, def)
	if err != nil {
		return fmt.Errorf("upgrade %s: %w", id, err)
	}
	if def.Stat == statCharacters {
		c, err := w.addCharacter()
		if err != nil {
			w.team.Gold += cost
			w.team.Upgrades[id]--
			return fmt.Errorf("upgrade %s: %w", id, err)
		}
		w.log.Info("character joined", zap.String("character", c.ID))
	}
	w.recomputeStats()
	w.emit(model.Event{
		Kind: model.EventUpgrade, Tick: w.tick, At: w.now,
		Item: id, Amount: cost, Currency: combat.CurrencyGold, Zone: w.zones.Home(),
	})
	return nil
}

// SwitchActive selects the character the presentation layer follows.
func (w *World) SwitchActive(charID string) error {
	if _, err := w.character(charID); err != nil {
		return err
	}
	w.active = charID
	return nil
}
