package model

import "time"

// Kind tags the Agent variants.
type Kind uint8

const (
	KindCharacter Kind = iota + 1
	KindMonster
)

// Agent is the capability set shared by characters and monsters.
type Agent interface {
	Kind() Kind
	AgentID() string
	Zone() ZoneID
	Footprint() Footprint
	Health() (cur, max float64)
}

// Mark is a character's reservation on a monster together with the tile it will attack from.
type Mark struct {
	MonsterID string
	Zone      ZoneID
	Approach  Pos
}

type Turn uint8

const (
	TurnCharacter Turn = iota
	TurnMonster
)

func (t Turn) String() string {
	if t == TurnMonster {
		return "monster"
	}
	return "character"
}

// CombatSession exists only while a character is engaged with an adjacent monster.
type CombatSession struct {
	Active     bool
	MonsterID  string
	Turn       Turn
	LastTurnAt time.Duration
}

type Character struct {
	ID   string
	Name string

	ZoneID ZoneID
	// Pos is the authoritative logical tile.
	Pos Pos
	// Visual eases toward Target once per render frame.
	Visual VisualPos
	Target Pos
	// Path holds pending waypoints, excluding the current tile.
	Path        []Pos
	MoveReadyAt time.Duration

	HP    float64
	MaxHP float64
	// RegenAt is the next time passive regeneration may apply.
	RegenAt time.Duration

	Dead     bool
	ReviveAt time.Duration

	Marks  []Mark
	Auto   AutomationState
	Combat CombatSession

	// Skills maps each gathering skill to accumulated experience.
	Skills map[Skill]int

	// Status is the last user-visible problem for this character.
	Status string
}

func (c *Character) Kind() Kind           { return KindCharacter }
func (c *Character) AgentID() string      { return c.ID }
func (c *Character) Zone() ZoneID         { return c.ZoneID }
func (c *Character) Footprint() Footprint { return Footprint{Anchor: c.Pos, Size: Size{W: 1, H: 1}} }
func (c *Character) Health() (float64, float64) {
	return c.HP, c.MaxHP
}

func (c *Character) InitDefaults() {
	if c.Skills == nil {
		c.Skills = map[Skill]int{}
	}
	if c.MaxHP <= 0 {
		c.MaxHP = 1
	}
	if c.HP > c.MaxHP {
		c.HP = c.MaxHP
	}
	c.Target = c.Pos
	c.Visual = VisualAt(c.Pos)
}

// MidPath reports whether the character still has waypoints to walk.
func (c *Character) MidPath() bool { return len(c.Path) > 0 }

// ClearPath drops pending waypoints; the character stops on its logical tile.
func (c *Character) ClearPath() {
	c.Path = nil
	c.Target = c.Pos
}

// StopAutomation cancels automation synchronously: path cleared, sub-state back to idle.
func (c *Character) StopAutomation() {
	c.ClearPath()
	c.Auto = AutomationState{}
}

// Disengage ends any combat session.
func (c *Character) Disengage() {
	c.Combat = CombatSession{}
}

// MarkIndex returns the index of the mark on monsterID, or -1.
func (c *Character) MarkIndex(monsterID string) int {
	for i, m := range c.Marks {
		if m.MonsterID == monsterID {
			return i
		}
	}
	return -1
}

// RemoveMark drops the mark on monsterID, disengaging if it was the combat target.
func (c *Character) RemoveMark(monsterID string) bool {
	i := c.MarkIndex(monsterID)
	if i < 0 {
		return false
	}
	c.Marks = append(c.Marks[:i:i], c.Marks[i+1:]...)
	if c.Combat.Active && c.Combat.MonsterID == monsterID {
		c.Disengage()
	}
	return true
}

// AddMark appends a mark, evicting the oldest marks beyond capacity. It returns the evicted marks.
func (c *Character) AddMark(m Mark, capacity int) []Mark {
	if capacity < 1 {
		capacity = 1
	}
	c.Marks = append(c.Marks, m)
	var evicted []Mark
	for len(c.Marks) > capacity {
		old := c.Marks[0]
		c.Marks = c.Marks[1:]
		evicted = append(evicted, old)
		if c.Combat.Active && c.Combat.MonsterID == old.MonsterID {
			c.Disengage()
		}
	}
	return evicted
}

type Monster struct {
	ID     string
	Type   string
	ZoneID ZoneID
	Pos    Pos
	Size   Size

	HP     float64
	MaxHP  float64
	Attack float64
	Boss   bool
}

func (m *Monster) Kind() Kind      { return KindMonster }
func (m *Monster) AgentID() string { return m.ID }
func (m *Monster) Zone() ZoneID    { return m.ZoneID }
func (m *Monster) Footprint() Footprint {
	return Footprint{Anchor: m.Pos, Size: m.Size.Normalize()}
}
func (m *Monster) Health() (float64, float64) { return m.HP, m.MaxHP }

// RespawnRecord is a defeated monster awaiting re-entry at DueAt.
type RespawnRecord struct {
	Monster Monster
	DueAt   time.Duration
}
