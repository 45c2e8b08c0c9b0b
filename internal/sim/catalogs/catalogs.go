package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
)

type Catalogs struct {
	Monsters  MonsterCatalog
	Resources ResourceCatalog
	Items     ItemCatalog
	Upgrades  UpgradeCatalog
}

type MonsterCatalog struct {
	ByID   map[string]MonsterDef
	Digest string
}

type MonsterDef struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MaxHP     float64   `json:"max_hp"`
	Attack    float64   `json:"attack"`
	Gold      int64     `json:"gold"`
	Boss      bool      `json:"boss,omitempty"`
	BonusGems int64     `json:"bonus_gems,omitempty"`
	Size      [2]int    `json:"size,omitempty"`
	RespawnMs int       `json:"respawn_ms,omitempty"`
	Drops     []DropDef `json:"drops,omitempty"`
}

type DropDef struct {
	Item   string  `json:"item"`
	Chance float64 `json:"chance"`
}

type ResourceCatalog struct {
	ByID   map[string]ResourceDef
	Digest string
}

type ResourceDef struct {
	ID         string `json:"id"`
	Skill      string `json:"skill"` // "mining","woodcutting","fishing"
	IntervalMs int    `json:"interval_ms"`
	XP         int    `json:"xp"`
	Item       string `json:"item"`
	Blocking   bool   `json:"blocking"`
	MinLevel   int    `json:"min_level,omitempty"`
}

type ItemCatalog struct {
	ByID   map[string]ItemDef
	Digest string
}

type ItemDef struct {
	ID       string  `json:"id"`
	Damage   float64 `json:"damage,omitempty"`
	Defense  float64 `json:"defense,omitempty"`
	SpeedPct float64 `json:"speed_pct,omitempty"`
	MaxHP    float64 `json:"max_hp,omitempty"`
}

type UpgradeCatalog struct {
	ByID   map[string]UpgradeDef
	Digest string
}

type UpgradeDef struct {
	ID         string  `json:"id"`
	Stat       string  `json:"stat"` // "damage","defense","speed","max_hp","regen","mark_capacity","characters"
	PerLevel   float64 `json:"per_level"`
	BaseCost   int64   `json:"base_cost"`
	CostGrowth float64 `json:"cost_growth"`
	MaxLevel   int     `json:"max_level,omitempty"`
}

var upgradeStats = map[string]bool{
	"damage": true, "defense": true, "speed": true, "max_hp": true,
	"regen": true, "mark_capacity": true, "characters": true,
}

var skills = map[string]bool{"mining": true, "woodcutting": true, "fishing": true}

// Cost is the price of buying the next level when level levels are already owned.
func (u UpgradeDef) Cost(level int) int64 {
	g := u.CostGrowth
	if g <= 0 {
		g = 1
	}
	return int64(math.Round(float64(u.BaseCost) * math.Pow(g, float64(level))))
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadMonsters(filepath.Join(configDir, "monsters.json"), &c.Monsters); err != nil {
		return nil, err
	}
	if err := loadResources(filepath.Join(configDir, "resources.json"), &c.Resources); err != nil {
		return nil, err
	}
	if err := loadItems(filepath.Join(configDir, "items.json"), &c.Items); err != nil {
		return nil, err
	}
	if err := loadUpgrades(filepath.Join(configDir, "upgrades.json"), &c.Upgrades); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks cross-references between catalogs.
func (c *Catalogs) Validate() error {
	for _, id := range sortedKeys(c.Monsters.ByID) {
		m := c.Monsters.ByID[id]
		for _, d := range m.Drops {
			if _, ok := c.Items.ByID[d.Item]; !ok {
				return fmt.Errorf("monsters.json: %s drops unknown item %q", id, d.Item)
			}
		}
	}
	for _, id := range sortedKeys(c.Resources.ByID) {
		r := c.Resources.ByID[id]
		if _, ok := c.Items.ByID[r.Item]; !ok {
			return fmt.Errorf("resources.json: %s yields unknown item %q", id, r.Item)
		}
	}
	return nil
}

// ResourceBlocking implements zones.Content.
func (c *Catalogs) ResourceBlocking(id string) (bool, bool) {
	r, ok := c.Resources.ByID[id]
	return r.Blocking, ok
}

// MonsterSize implements zones.Content.
func (c *Catalogs) MonsterSize(id string) (w, h int, ok bool) {
	m, ok := c.Monsters.ByID[id]
	if !ok {
		return 0, 0, false
	}
	return m.Size[0], m.Size[1], true
}

// ResourcesForSkill lists resource ids trained by skill, sorted.
func (c *Catalogs) ResourcesForSkill(skill string) []string {
	var out []string
	for _, id := range sortedKeys(c.Resources.ByID) {
		if c.Resources.ByID[id].Skill == skill {
			out = append(out, id)
		}
	}
	return out
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func loadMonsters(path string, out *MonsterCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []MonsterDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("monsters.json: %w", err)
	}
	out.ByID = map[string]MonsterDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("monsters.json: empty id")
		}
		if _, dup := out.ByID[d.ID]; dup {
			return fmt.Errorf("monsters.json: duplicate id %s", d.ID)
		}
		if d.MaxHP <= 0 {
			return fmt.Errorf("monsters.json: %s max_hp must be > 0", d.ID)
		}
		if d.BonusGems > 0 && !d.Boss {
			return fmt.Errorf("monsters.json: %s bonus_gems requires boss", d.ID)
		}
		for _, dr := range d.Drops {
			if dr.Chance < 0 || dr.Chance > 1 {
				return fmt.Errorf("monsters.json: %s drop %s chance must be in [0,1]", d.ID, dr.Item)
			}
		}
		if d.Size[0] <= 0 {
			d.Size[0] = 1
		}
		if d.Size[1] <= 0 {
			d.Size[1] = 1
		}
		out.ByID[d.ID] = d
	}
	return nil
}

func loadResources(path string, out *ResourceCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []ResourceDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("resources.json: %w", err)
	}
	out.ByID = map[string]ResourceDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("resources.json: empty id")
		}
		if !skills[d.Skill] {
			return fmt.Errorf("resources.json: %s unknown skill %q", d.ID, d.Skill)
		}
		if d.IntervalMs <= 0 {
			return fmt.Errorf("resources.json: %s interval_ms must be > 0", d.ID)
		}
		out.ByID[d.ID] = d
	}
	return nil
}

func loadItems(path string, out *ItemCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []ItemDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("items.json: %w", err)
	}
	out.ByID = map[string]ItemDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("items.json: empty id")
		}
		out.ByID[d.ID] = d
	}
	return nil
}

func loadUpgrades(path string, out *UpgradeCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		// Upgrades are optional.
		if os.IsNotExist(err) {
			out.ByID = map[string]UpgradeDef{}
			out.Digest = sha256Hex(nil)
			return nil
		}
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []UpgradeDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("upgrades.json: %w", err)
	}
	out.ByID = map[string]UpgradeDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("upgrades.json: empty id")
		}
		if !upgradeStats[d.Stat] {
			return fmt.Errorf("upgrades.json: %s unknown stat %q", d.ID, d.Stat)
		}
		if d.BaseCost < 0 {
			return fmt.Errorf("upgrades.json: %s base_cost must be >= 0", d.ID)
		}
		out.ByID[d.ID] = d
	}
	return nil
}
