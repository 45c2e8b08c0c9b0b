package tuning

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version" json:"protocol_version"`

	LogLevel  string `yaml:"log_level" json:"log_level"`
	LogFormat string `yaml:"log_format" json:"log_format"`

	Seed            int64 `yaml:"seed" json:"seed"`
	TickRateHz      int   `yaml:"tick_rate_hz" json:"tick_rate_hz"`
	FrameRateHz     int   `yaml:"frame_rate_hz" json:"frame_rate_hz"`
	MaxCatchUpTicks int   `yaml:"max_catch_up_ticks" json:"max_catch_up_ticks"`
	SaveEveryMs     int   `yaml:"save_every_ms" json:"save_every_ms"`

	MoveIntervalMs        int     `yaml:"move_interval_ms" json:"move_interval_ms"`
	VisualTilesPerSecond  float64 `yaml:"visual_tiles_per_second" json:"visual_tiles_per_second"`
	CombatTurnIntervalMs  int     `yaml:"combat_turn_interval_ms" json:"combat_turn_interval_ms"`
	DefenseMitigation     float64 `yaml:"defense_mitigation_per_point" json:"defense_mitigation_per_point"`
	MonsterHealFraction   float64 `yaml:"monster_heal_fraction" json:"monster_heal_fraction"`
	MonsterRespawnMs      int     `yaml:"monster_respawn_ms" json:"monster_respawn_ms"`
	CharacterReviveMs     int     `yaml:"character_revive_ms" json:"character_revive_ms"`
	RegenIntervalMs       int     `yaml:"regen_interval_ms" json:"regen_interval_ms"`
	ReplanIntervalMs      int     `yaml:"replan_interval_ms" json:"replan_interval_ms"`
	XPLevelBase           int     `yaml:"xp_level_base" json:"xp_level_base"`
	StartingCharacters    int     `yaml:"starting_characters" json:"starting_characters"`
	MaxCharacters         int     `yaml:"max_characters" json:"max_characters"`

	StarterItems map[string]int `yaml:"starter_items" json:"starter_items,omitempty"`

	Base BaseStats `yaml:"base_stats" json:"base_stats"`
}

type BaseStats struct {
	Damage       float64 `yaml:"damage" json:"damage"`
	Defense      float64 `yaml:"defense" json:"defense"`
	SpeedPct     float64 `yaml:"speed_pct" json:"speed_pct"`
	MaxHP        float64 `yaml:"max_hp" json:"max_hp"`
	Regen        float64 `yaml:"regen" json:"regen"`
	MarkCapacity int     `yaml:"mark_capacity" json:"mark_capacity"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:      "1.0",
		LogLevel:             "info",
		LogFormat:            "console",
		Seed:                 1337,
		TickRateHz:           10,
		FrameRateHz:          30,
		MaxCatchUpTicks:      5,
		SaveEveryMs:          5000,
		MoveIntervalMs:       300,
		VisualTilesPerSecond: 8,
		CombatTurnIntervalMs: 600,
		DefenseMitigation:    0.25,
		MonsterHealFraction:  0.25,
		MonsterRespawnMs:     10000,
		CharacterReviveMs:    3000,
		RegenIntervalMs:      2000,
		ReplanIntervalMs:     1000,
		XPLevelBase:          50,
		StartingCharacters:   1,
		MaxCharacters:        4,
		Base: BaseStats{
			Damage:       5,
			Defense:      0,
			SpeedPct:     100,
			MaxHP:        50,
			Regen:        1,
			MarkCapacity: 1,
		},
	}
}

// Load reads path over Defaults(), so a partial file only overrides what it names.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.TickRateHz <= 0 || t.TickRateHz > 1000 {
		return fmt.Errorf("tick_rate_hz must be in [1, 1000]")
	}
	if t.FrameRateHz <= 0 {
		return fmt.Errorf("frame_rate_hz must be > 0")
	}
	if t.MaxCatchUpTicks <= 0 {
		return fmt.Errorf("max_catch_up_ticks must be > 0")
	}
	if t.MoveIntervalMs <= 0 || t.CombatTurnIntervalMs <= 0 {
		return fmt.Errorf("move_interval_ms and combat_turn_interval_ms must be > 0")
	}
	if t.DefenseMitigation < 0 {
		return fmt.Errorf("defense_mitigation_per_point must be >= 0")
	}
	if t.MonsterHealFraction < 0 || t.MonsterHealFraction > 1 {
		return fmt.Errorf("monster_heal_fraction must be in [0, 1]")
	}
	if t.MonsterRespawnMs < 0 || t.CharacterReviveMs < 0 || t.RegenIntervalMs <= 0 || t.ReplanIntervalMs <= 0 {
		return fmt.Errorf("respawn/revive must be >= 0 and regen/replan intervals > 0")
	}
	if t.XPLevelBase <= 0 {
		return fmt.Errorf("xp_level_base must be > 0")
	}
	if t.StartingCharacters <= 0 || t.MaxCharacters < t.StartingCharacters {
		return fmt.Errorf("starting_characters must be in [1, max_characters]")
	}
	if t.Base.SpeedPct <= 0 || t.Base.MaxHP <= 0 || t.Base.MarkCapacity <= 0 {
		return fmt.Errorf("base_stats speed_pct, max_hp and mark_capacity must be > 0")
	}
	return nil
}

func (t Tuning) TickDuration() time.Duration {
	return time.Second / time.Duration(t.TickRateHz)
}

func (t Tuning) FrameDuration() time.Duration {
	return time.Second / time.Duration(t.FrameRateHz)
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func (t Tuning) MoveInterval() time.Duration         { return ms(t.MoveIntervalMs) }
func (t Tuning) CombatTurnInterval() time.Duration   { return ms(t.CombatTurnIntervalMs) }
func (t Tuning) MonsterRespawnDelay() time.Duration  { return ms(t.MonsterRespawnMs) }
func (t Tuning) CharacterReviveDelay() time.Duration { return ms(t.CharacterReviveMs) }
func (t Tuning) RegenInterval() time.Duration        { return ms(t.RegenIntervalMs) }
func (t Tuning) ReplanInterval() time.Duration       { return ms(t.ReplanIntervalMs) }
func (t Tuning) SaveEvery() time.Duration            { return ms(t.SaveEveryMs) }
