package save

import (
	"encoding/json"
	"errors"
	"fmt"
)

const CurrentVersion = 3

var (
	ErrNotFound           = errors.New("save not found")
	ErrUnsupportedVersion = errors.New("unsupported save version")
)

type Header struct {
	Version int    `json:"version"`
	Slot    string `json:"slot"`
	Tick    uint64 `json:"tick"`
}

// SaveV3 is the serializable projection of a session.
type SaveV3 struct {
	Header Header `json:"header"`

	Seed  int64 `json:"seed"`
	NowMs int64 `json:"now_ms"`

	ActiveCharacter string        `json:"active_character,omitempty"`
	Team            TeamV1        `json:"team"`
	Characters      []CharacterV3 `json:"characters"`

	ActivatedZones [][2]int    `json:"activated_zones"`
	Respawns       []RespawnV3 `json:"respawns"`
}

type TeamV1 struct {
	Gold          int64           `json:"gold"`
	Gems          int64           `json:"gems"`
	Inventory     map[string]int  `json:"inventory"`
	Upgrades      map[string]int  `json:"upgrades"`
	UnlockedDrops map[string]bool `json:"unlocked_drops"`
	FirstKills    map[string]bool `json:"first_kills"`
}

type CharacterV3 struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Zone [2]int `json:"zone"`
	Pos  [2]int `json:"pos"`

	HP         float64 `json:"hp"`
	Dead       bool    `json:"dead,omitempty"`
	ReviveAtMs int64   `json:"revive_at_ms,omitempty"`

	Marks    []MarkV1       `json:"marks,omitempty"`
	Task     string         `json:"task,omitempty"`
	Resource string         `json:"resource,omitempty"`
	Skills   map[string]int `json:"skills"`
}

type MarkV1 struct {
	MonsterID string `json:"monster_id"`
	Zone      [2]int `json:"zone"`
	Approach  [2]int `json:"approach"`
}

// RespawnV3 is a defeated monster waiting in the queue. DueAtMs is on the session clock.
type RespawnV3 struct {
	ID      string  `json:"id"`
	Type    string  `json:"type"`
	Zone    [2]int  `json:"zone"`
	Pos     [2]int  `json:"pos"`
	Size    [2]int  `json:"size"`
	MaxHP   float64 `json:"max_hp"`
	Attack  float64 `json:"attack"`
	Boss    bool    `json:"boss,omitempty"`
	DueAtMs int64   `json:"due_at_ms"`
}

// Normalize fills nil collections so a decoded save never needs nil checks downstream.
func (s *SaveV3) Normalize() {
	if s.Team.Inventory == nil {
		s.Team.Inventory = map[string]int{}
	}
	if s.Team.Upgrades == nil {
		s.Team.Upgrades = map[string]int{}
	}
	if s.Team.UnlockedDrops == nil {
		s.Team.UnlockedDrops = map[string]bool{}
	}
	if s.Team.FirstKills == nil {
		s.Team.FirstKills = map[string]bool{}
	}
	for i := range s.Characters {
		if s.Characters[i].Skills == nil {
			s.Characters[i].Skills = map[string]int{}
		}
	}
	if s.ActivatedZones == nil {
		s.ActivatedZones = [][2]int{}
	}
	if s.Respawns == nil {
		s.Respawns = []RespawnV3{}
	}
}

// Marshal encodes s at the current version.
func Marshal(s SaveV3) ([]byte, error) {
	s.Header.Version = CurrentVersion
	s.Normalize()
	return json.Marshal(s)
}

// Unmarshal decodes a body written at version, migrating it forward to the current schema.
func Unmarshal(version int, body []byte) (SaveV3, error) {
	var out SaveV3
	if version <= 0 || version > CurrentVersion {
		return out, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	if version < CurrentVersion {
		var doc map[string]any
		if err := json.Unmarshal(body, &doc); err != nil {
			return out, fmt.Errorf("decode v%d body: %w", version, err)
		}
		if err := Migrate(doc, version); err != nil {
			return out, err
		}
		b, err := json.Marshal(doc)
		if err != nil {
			return out, err
		}
		body = b
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("decode body: %w", err)
	}
	out.Header.Version = CurrentVersion
	out.Normalize()
	return out, nil
}
