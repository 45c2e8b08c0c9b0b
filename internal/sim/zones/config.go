package zones

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HomeZone    [2]int            `yaml:"home_zone"`
	RespawnTile [2]int            `yaml:"respawn_tile"`
	SafeTile    [2]int            `yaml:"safe_tile"`
	Legend      map[string]string `yaml:"legend,omitempty"`
	Zones       []ZoneSpec        `yaml:"zones"`
}

type ZoneSpec struct {
	ID       [2]int        `yaml:"id"`
	Name     string        `yaml:"name"`
	Rows     []string      `yaml:"rows"`
	Gateways []GatewaySpec `yaml:"gateways,omitempty"`
	Objects  []ObjectSpec  `yaml:"objects,omitempty"`
	Spawns   []SpawnSpec   `yaml:"spawns,omitempty"`
}

type GatewaySpec struct {
	At    [2]int `yaml:"at"`
	To    [2]int `yaml:"to"`
	Entry [2]int `yaml:"entry"`
}

type ObjectSpec struct {
	Kind string `yaml:"kind"` // "resource" (default) or "pedestal"
	Type string `yaml:"type"`
	At   [2]int `yaml:"at"`
}

type SpawnSpec struct {
	ID      string `yaml:"id"`
	Monster string `yaml:"monster"`
	At      [2]int `yaml:"at"`
}

var defaultLegend = map[string]string{
	".": "open",
	",": "decor",
	"#": "blocking",
	"~": "blocking",
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("zones.yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("zones.yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	if c.Legend == nil {
		c.Legend = map[string]string{}
	}
	for k, v := range defaultLegend {
		if _, ok := c.Legend[k]; !ok {
			c.Legend[k] = v
		}
	}
	for i := range c.Zones {
		if strings.TrimSpace(c.Zones[i].Name) == "" {
			c.Zones[i].Name = fmt.Sprintf("zone %d,%d", c.Zones[i].ID[0], c.Zones[i].ID[1])
		}
		for j := range c.Zones[i].Objects {
			if strings.TrimSpace(c.Zones[i].Objects[j].Kind) == "" {
				c.Zones[i].Objects[j].Kind = "resource"
			}
		}
	}
}

func (c Config) Validate() error {
	c.Normalize()
	if len(c.Zones) == 0 {
		return fmt.Errorf("zones must not be empty")
	}
	for sym, class := range c.Legend {
		if len(sym) != 1 {
			return fmt.Errorf("legend symbol %q must be one character", sym)
		}
		if _, err := parseTile(class); err != nil {
			return fmt.Errorf("legend %q: %w", sym, err)
		}
	}
	byID := map[[2]int]ZoneSpec{}
	for _, z := range c.Zones {
		if _, dup := byID[z.ID]; dup {
			return fmt.Errorf("duplicate zone id %v", z.ID)
		}
		byID[z.ID] = z
	}
	spawnIDs := map[string]bool{}
	for _, z := range c.Zones {
		if len(z.Rows) == 0 || len(z.Rows[0]) == 0 {
			return fmt.Errorf("zone %v rows must not be empty", z.ID)
		}
		w := len(z.Rows[0])
		for y, row := range z.Rows {
			if len(row) != w {
				return fmt.Errorf("zone %v row %d width %d != %d", z.ID, y, len(row), w)
			}
			for x := 0; x < len(row); x++ {
				if _, ok := c.Legend[row[x:x+1]]; !ok {
					return fmt.Errorf("zone %v tile (%d,%d) symbol %q not in legend", z.ID, x, y, row[x:x+1])
				}
			}
		}
		h := len(z.Rows)
		in := func(p [2]int) bool { return p[0] >= 0 && p[1] >= 0 && p[0] < w && p[1] < h }
		for i, g := range z.Gateways {
			if !in(g.At) {
				return fmt.Errorf("zone %v gateways[%d] at %v out of bounds", z.ID, i, g.At)
			}
			dst, ok := byID[g.To]
			if !ok {
				return fmt.Errorf("zone %v gateways[%d] destination %v not found", z.ID, i, g.To)
			}
			if g.Entry[0] < 0 || g.Entry[1] < 0 || g.Entry[1] >= len(dst.Rows) || len(dst.Rows) == 0 || g.Entry[0] >= len(dst.Rows[0]) {
				return fmt.Errorf("zone %v gateways[%d] entry %v out of bounds in %v", z.ID, i, g.Entry, g.To)
			}
		}
		for i, o := range z.Objects {
			if o.Kind != "resource" && o.Kind != "pedestal" {
				return fmt.Errorf("zone %v objects[%d] unknown kind %q", z.ID, i, o.Kind)
			}
			if !in(o.At) {
				return fmt.Errorf("zone %v objects[%d] at %v out of bounds", z.ID, i, o.At)
			}
		}
		for i, s := range z.Spawns {
			if strings.TrimSpace(s.ID) == "" {
				return fmt.Errorf("zone %v spawns[%d] id must not be empty", z.ID, i)
			}
			if spawnIDs[s.ID] {
				return fmt.Errorf("duplicate spawn id %s", s.ID)
			}
			spawnIDs[s.ID] = true
			if !in(s.At) {
				return fmt.Errorf("zone %v spawn %s at %v out of bounds", z.ID, s.ID, s.At)
			}
		}
	}
	home, ok := byID[c.HomeZone]
	if !ok {
		return fmt.Errorf("home_zone %v not found", c.HomeZone)
	}
	for name, p := range map[string][2]int{"respawn_tile": c.RespawnTile, "safe_tile": c.SafeTile} {
		if p[0] < 0 || p[1] < 0 || p[1] >= len(home.Rows) || p[0] >= len(home.Rows[0]) {
			return fmt.Errorf("%s %v out of bounds in home zone", name, p)
		}
	}
	return nil
}
