package stats

import (
	"errors"
	"math"
	"sort"

	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/tuning"
	"gridrealm.ai/internal/sim/world/kernel/model"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrMaxLevel          = errors.New("upgrade at max level")
)

// Recompute derives team stats from base tuning, upgrade levels and unlocked drops.
func Recompute(base tuning.BaseStats, team *model.Team, cats *catalogs.Catalogs) model.TeamStats {
	s := model.TeamStats{
		Damage:       base.Damage,
		Defense:      base.Defense,
		SpeedPct:     base.SpeedPct,
		MaxHP:        base.MaxHP,
		Regen:        base.Regen,
		MarkCapacity: base.MarkCapacity,
	}
	if team == nil || cats == nil {
		return s
	}
	for _, id := range sortedKeys(team.Upgrades) {
		def, ok := cats.Upgrades.ByID[id]
		if !ok {
			continue
		}
		v := def.PerLevel * float64(team.Upgrades[id])
		switch def.Stat {
		case "damage":
			s.Damage += v
		case "defense":
			s.Defense += v
		case "speed":
			s.SpeedPct += v
		case "max_hp":
			s.MaxHP += v
		case "regen":
			s.Regen += v
		case "mark_capacity":
			s.MarkCapacity += int(math.Round(v))
		}
	}
	for _, id := range sortedKeys(team.UnlockedDrops) {
		if !team.UnlockedDrops[id] {
			continue
		}
		it, ok := cats.Items.ByID[id]
		if !ok {
			continue
		}
		s.Damage += it.Damage
		s.Defense += it.Defense
		s.SpeedPct += it.SpeedPct
		s.MaxHP += it.MaxHP
	}
	if s.SpeedPct < 1 {
		s.SpeedPct = 1
	}
	if s.MaxHP < 1 {
		s.MaxHP = 1
	}
	if s.MarkCapacity < 1 {
		s.MarkCapacity = 1
	}
	return s
}

// Purchase buys one level of def, returning the price paid.
func Purchase(team *model.Team, def catalogs.UpgradeDef) (int64, error) {
	team.InitDefaults()
	level := team.Upgrades[def.ID]
	if def.MaxLevel > 0 && level >= def.MaxLevel {
		return 0, ErrMaxLevel
	}
	cost := def.Cost(level)
	if team.Gold < cost {
		return 0, ErrInsufficientFunds
	}
	team.Gold -= cost
	team.Upgrades[def.ID] = level + 1
	return cost, nil
}

// ApplyMaxHP moves every character to the new max, keeping the missing-health delta.
func ApplyMaxHP(chars []*model.Character, maxHP float64) {
	for _, c := range chars {
		delta := maxHP - c.MaxHP
		c.MaxHP = maxHP
		if c.Dead {
			continue
		}
		c.HP = math.Min(maxHP, c.HP+delta)
		if c.HP < 1 {
			c.HP = 1
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
