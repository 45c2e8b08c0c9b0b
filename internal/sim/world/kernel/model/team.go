package model

import "time"

// TeamStats are derived from base tuning, upgrades and unlocked drops.
type TeamStats struct {
	Damage       float64
	Defense      float64
	SpeedPct     float64
	MaxHP        float64
	Regen        float64
	MarkCapacity int
}

// Team is the session-wide progression shared by all characters.
type Team struct {
	Gold int64
	Gems int64

	Inventory     map[string]int
	Upgrades      map[string]int
	UnlockedDrops map[string]bool
	FirstKills    map[string]bool

	Stats TeamStats
}

func (t *Team) InitDefaults() {
	if t.Inventory == nil {
		t.Inventory = map[string]int{}
	}
	if t.Upgrades == nil {
		t.Upgrades = map[string]int{}
	}
	if t.UnlockedDrops == nil {
		t.UnlockedDrops = map[string]bool{}
	}
	if t.FirstKills == nil {
		t.FirstKills = map[string]bool{}
	}
}

type EventKind string

const (
	EventKill         EventKind = "KILL"
	EventDefeat       EventKind = "DEFEAT"
	EventDropUnlocked EventKind = "DROP_UNLOCKED"
	EventItem         EventKind = "ITEM"
	EventLevelUp      EventKind = "LEVEL_UP"
	EventRevive       EventKind = "REVIVE"
	EventRespawn      EventKind = "RESPAWN"
	EventUpgrade      EventKind = "UPGRADE"
	EventZoneEnter    EventKind = "ZONE_ENTER"
	EventMarkEvicted  EventKind = "MARK_EVICTED"
)

// Event is a state-affecting occurrence surfaced to journals and the save hook.
type Event struct {
	Kind        EventKind     `json:"kind"`
	Tick        uint64        `json:"tick"`
	At          time.Duration `json:"at"`
	CharacterID string        `json:"character_id,omitempty"`
	MonsterID   string        `json:"monster_id,omitempty"`
	MonsterType string        `json:"monster_type,omitempty"`
	Item        string        `json:"item,omitempty"`
	Amount      int64         `json:"amount,omitempty"`
	Currency    string        `json:"currency,omitempty"`
	Zone        ZoneID        `json:"zone"`
}
