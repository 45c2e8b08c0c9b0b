package combat

import (
	"math"
	"time"

	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/world/kernel/model"
	"gridrealm.ai/internal/sim/world/logic/mathx"
)

const (
	CurrencyGold = "gold"
	CurrencyGems = "gems"
)

type Rules struct {
	// TurnInterval is the base gap between resolved turns at 100% speed.
	TurnInterval time.Duration
	// Mitigation is the damage removed per point of defense.
	Mitigation   float64
	HealFraction float64
	ReviveDelay  time.Duration
}

type Env interface {
	Now() time.Duration
	Tick() uint64
	Seed() int64
	Rules() Rules
	Stats() model.TeamStats
	Team() *model.Team

	Monster(id string) (*model.Monster, bool)
	MonsterDef(typ string) (catalogs.MonsterDef, bool)
	// DefeatMonster moves m into the respawn queue.
	DefeatMonster(m *model.Monster)
}

type Outcome struct {
	Events []model.Event
	// StatsDirty is set when a drop was unlocked for the first time.
	StatsDirty bool
	// Changed is set when persistent state was mutated.
	Changed bool
	// MissingType names a defeated monster type absent from the catalog. No reward was paid.
	MissingType string
}

// MitigatedDamage is attack reduced linearly by defense, floored at zero.
func MitigatedDamage(attack, defense, perPoint float64) float64 {
	return math.Max(0, attack-defense*perPoint)
}

// CharacterDamage is the team damage stat, at least 1.
func CharacterDamage(stats model.TeamStats) float64 {
	return math.Max(stats.Damage, 1)
}

// TurnInterval scales the base turn gap by team speed.
func TurnInterval(base time.Duration, speedPct float64) time.Duration {
	if speedPct <= 0 {
		speedPct = 100
	}
	return time.Duration(float64(base) * 100 / speedPct)
}

// Engage starts a session against m. The character acts first, on the current tick.
func Engage(env Env, c *model.Character, m *model.Monster) bool {
	if c.Dead || m == nil || !m.Footprint().AdjacentTo(c.Pos) || m.ZoneID != c.ZoneID {
		return false
	}
	if c.Combat.Active && c.Combat.MonsterID == m.ID {
		return true
	}
	c.Combat = model.CombatSession{
		Active:     true,
		MonsterID:  m.ID,
		Turn:       model.TurnCharacter,
		LastTurnAt: env.Now() - TurnInterval(env.Rules().TurnInterval, env.Stats().SpeedPct),
	}
	return true
}

// Resolve runs at most one turn of c's session.
func Resolve(env Env, c *model.Character) Outcome {
	var out Outcome
	if c == nil || !c.Combat.Active {
		return out
	}
	if c.Dead {
		c.Disengage()
		return out
	}
	m, ok := env.Monster(c.Combat.MonsterID)
	if !ok {
		// Gone without our blow: counts as a win, no loot.
		c.Disengage()
		return out
	}
	if m.ZoneID != c.ZoneID || !m.Footprint().AdjacentTo(c.Pos) {
		c.Disengage()
		return out
	}

	rules := env.Rules()
	stats := env.Stats()
	now := env.Now()
	if now-c.Combat.LastTurnAt < TurnInterval(rules.TurnInterval, stats.SpeedPct) {
		return out
	}
	c.Combat.LastTurnAt = now

	switch c.Combat.Turn {
	case model.TurnCharacter:
		m.HP -= CharacterDamage(stats)
		if m.HP <= 0 {
			m.HP = 0
			return monsterDefeated(env, c, m)
		}
		c.Combat.Turn = model.TurnMonster
	case model.TurnMonster:
		c.HP -= MitigatedDamage(m.Attack, stats.Defense, rules.Mitigation)
		if c.HP <= 0 {
			return characterDefeated(env, c, m)
		}
		c.Combat.Turn = model.TurnCharacter
	}
	return out
}

func monsterDefeated(env Env, c *model.Character, m *model.Monster) Outcome {
	out := Outcome{Changed: true}
	team := env.Team()
	team.InitDefaults()
	def, ok := env.MonsterDef(m.Type)
	if !ok {
		out.MissingType = m.Type
	}

	kill := model.Event{
		Kind:        model.EventKill,
		Tick:        env.Tick(),
		At:          env.Now(),
		CharacterID: c.ID,
		MonsterID:   m.ID,
		MonsterType: m.Type,
		Zone:        m.ZoneID,
	}
	if def.Boss && !team.FirstKills[m.Type] {
		team.Gems += def.BonusGems
		kill.Amount, kill.Currency = def.BonusGems, CurrencyGems
	} else {
		team.Gold += def.Gold
		kill.Amount, kill.Currency = def.Gold, CurrencyGold
	}
	team.FirstKills[m.Type] = true
	out.Events = append(out.Events, kill)

	for i, d := range def.Drops {
		if mathx.Unit(env.Seed(), env.Tick(), m.ID+"/"+c.ID, i) >= d.Chance {
			continue
		}
		team.Inventory[d.Item]++
		out.Events = append(out.Events, model.Event{
			Kind: model.EventItem, Tick: env.Tick(), At: env.Now(),
			CharacterID: c.ID, MonsterID: m.ID, Item: d.Item, Amount: 1, Zone: m.ZoneID,
		})
		if !team.UnlockedDrops[d.Item] {
			team.UnlockedDrops[d.Item] = true
			out.StatsDirty = true
			out.Events = append(out.Events, model.Event{
				Kind: model.EventDropUnlocked, Tick: env.Tick(), At: env.Now(),
				CharacterID: c.ID, MonsterType: m.Type, Item: d.Item, Zone: m.ZoneID,
			})
		}
	}

	c.Disengage()
	env.DefeatMonster(m)
	return out
}

func characterDefeated(env Env, c *model.Character, m *model.Monster) Outcome {
	rules := env.Rules()
	m.HP = math.Min(m.MaxHP, m.HP+m.MaxHP*rules.HealFraction)

	c.HP = 0
	c.Dead = true
	c.ReviveAt = env.Now() + rules.ReviveDelay
	c.Marks = nil
	c.StopAutomation()
	c.Disengage()

	return Outcome{
		Changed: true,
		Events: []model.Event{{
			Kind: model.EventDefeat, Tick: env.Tick(), At: env.Now(),
			CharacterID: c.ID, MonsterID: m.ID, MonsterType: m.Type, Zone: c.ZoneID,
		}},
	}
}
