package world

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"gridrealm.ai/internal/persistence/save"
	"gridrealm.ai/internal/sim/world/feature/automation"
	"gridrealm.ai/internal/sim/world/feature/movement"
	"gridrealm.ai/internal/sim/world/kernel/model"
)

// NewFromSave builds a session and replaces its state with s.
func NewFromSave(cfg Config, s save.SaveV3) (*World, error) {
	w, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if err := w.ImportSave(s); err != nil {
		return nil, err
	}
	return w, nil
}

// ImportSave replaces all session state with s. Characters saved on a tile that is no
// longer walkable are moved next to the home safe tile.
//
// This must be called only when the session is stopped or from the goroutine driving Step.
func (w *World) ImportSave(s save.SaveV3) error {
	if s.Header.Version != save.CurrentVersion {
		return fmt.Errorf("%w: %d", save.ErrUnsupportedVersion, s.Header.Version)
	}
	if s.Seed != w.tun.Seed {
		w.log.Warn("save seed differs from tuning", zap.Int64("save", s.Seed), zap.Int64("tuning", w.tun.Seed))
	}
	s.Normalize()

	w.reset()
	w.tick = s.Header.Tick
	w.now = time.Duration(s.NowMs) * time.Millisecond
	w.team.Gold = s.Team.Gold
	w.team.Gems = s.Team.Gems
	for k, v := range s.Team.Inventory {
		w.team.Inventory[k] = v
	}
	for k, v := range s.Team.Upgrades {
		if _, ok := w.cats.Upgrades.ByID[k]; !ok {
			w.log.Warn("dropping unknown upgrade", zap.String("upgrade", k))
			continue
		}
		w.team.Upgrades[k] = v
	}
	for k, ok := range s.Team.UnlockedDrops {
		w.team.UnlockedDrops[k] = ok
	}
	for k, ok := range s.Team.FirstKills {
		w.team.FirstKills[k] = ok
	}
	w.recomputeStats()

	// Respawns first so zone activation does not re-spawn queued monsters.
	for _, r := range s.Respawns {
		rec := model.RespawnRecord{
			Monster: model.Monster{
				ID:     r.ID,
				Type:   r.Type,
				ZoneID: model.ZoneFromArray(r.Zone),
				Pos:    model.PosFromArray(r.Pos),
				Size:   model.Size{W: r.Size[0], H: r.Size[1]}.Normalize(),
				HP:     r.MaxHP,
				MaxHP:  r.MaxHP,
				Attack: r.Attack,
				Boss:   r.Boss,
			},
			DueAt: time.Duration(r.DueAtMs) * time.Millisecond,
		}
		if err := w.reg.Enqueue(rec); err != nil {
			return fmt.Errorf("respawn %s: %w", r.ID, err)
		}
	}

	relocated := false
	for _, cs := range s.Characters {
		moved, err := w.importCharacter(cs)
		if err != nil {
			return err
		}
		relocated = relocated || moved
	}

	// Characters are placed before monsters; a template under a character respawns later.
	w.activateZone(w.zones.Home())
	for _, z := range s.ActivatedZones {
		w.activateZone(model.ZoneFromArray(z))
	}
	for _, c := range w.reg.Characters() {
		w.activateZone(c.ZoneID)
		kept := c.Marks[:0]
		for _, mk := range c.Marks {
			if w.reg.Known(mk.MonsterID) {
				kept = append(kept, mk)
			}
		}
		c.Marks = kept
	}

	if _, ok := w.reg.Character(s.ActiveCharacter); ok {
		w.active = s.ActiveCharacter
	} else if chars := w.reg.Characters(); len(chars) > 0 {
		w.active = chars[0].ID
	}
	w.reg.Commit()
	w.dirty = relocated
	w.log.Info("save restored",
		zap.String("slot", s.Header.Slot),
		zap.Uint64("tick", w.tick),
		zap.Int("characters", w.reg.CharacterCount()))
	return nil
}

// importCharacter reports whether the character had to be relocated.
func (w *World) importCharacter(cs save.CharacterV3) (bool, error) {
	c := &model.Character{
		ID:     cs.ID,
		Name:   cs.Name,
		ZoneID: model.ZoneFromArray(cs.Zone),
		Pos:    model.PosFromArray(cs.Pos),
		HP:     cs.HP,
		MaxHP:  w.team.Stats.MaxHP,
		Dead:   cs.Dead,
		Skills: map[model.Skill]int{},
	}
	if c.Dead {
		c.ReviveAt = time.Duration(cs.ReviveAtMs) * time.Millisecond
	}
	for name, xp := range cs.Skills {
		sk, err := model.ParseSkill(name)
		if err != nil {
			w.log.Warn("dropping unknown skill", zap.String("character", cs.ID), zap.String("skill", name))
			continue
		}
		c.Skills[sk] = xp
	}

	relocated := false
	if !w.oracle.StaticWalkable(c.Pos, c.ZoneID) || w.reg.OccupiedNow(c.ZoneID, c.Pos) {
		home := w.zones.Home()
		spot, ok := movement.NearestFree(w.env(), home, w.zones.SafeTile())
		if !ok {
			return false, fmt.Errorf("%w: character %s has no free tile", ErrInvalidPosition, cs.ID)
		}
		w.log.Warn("relocating character",
			zap.String("character", cs.ID),
			zap.String("zone", c.ZoneID.String()),
			zap.Ints("pos", cs.Pos[:]),
			zap.Error(ErrInvalidPosition))
		c.ZoneID, c.Pos = home, spot
		relocated = true
	}
	c.InitDefaults()

	for _, mk := range cs.Marks {
		c.Marks = append(c.Marks, model.Mark{
			MonsterID: mk.MonsterID,
			Zone:      model.ZoneFromArray(mk.Zone),
			Approach:  model.PosFromArray(mk.Approach),
		})
	}
	if n := w.team.Stats.MarkCapacity; n > 0 && len(c.Marks) > n {
		c.Marks = c.Marks[len(c.Marks)-n:]
	}
	if cs.Task != "" {
		task, err := model.ParseTask(cs.Task)
		if err == nil {
			err = automation.Start(c, task, cs.Resource)
		}
		if err != nil {
			w.log.Warn("dropping saved task", zap.String("character", cs.ID), zap.Error(err))
		}
	}

	if err := w.reg.AddCharacter(c); err != nil {
		return false, fmt.Errorf("character %s: %w", cs.ID, err)
	}
	if n, ok := charSeq(c.ID); ok && n > w.nextChar {
		w.nextChar = n
	}
	return relocated, nil
}

// charSeq extracts the sequence number from ids minted by addCharacter.
func charSeq(id string) (int, bool) {
	if !strings.HasPrefix(id, "C") {
		return 0, false
	}
	n, err := strconv.Atoi(id[1:])
	return n, err == nil
}
