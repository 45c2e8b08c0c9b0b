package zones

import (
	"errors"
	"fmt"
	"sort"

	"gridrealm.ai/internal/sim/world/kernel/model"
)

// ErrConfigMissing reports a reference to a zone or content type that is not configured.
var ErrConfigMissing = errors.New("configuration missing")

// Tile is the static classification of a grid cell.
type Tile uint8

const (
	TileOpen Tile = iota
	TileBlocking
	TileDecor
)

func (t Tile) String() string {
	switch t {
	case TileOpen:
		return "open"
	case TileBlocking:
		return "blocking"
	case TileDecor:
		return "decor"
	}
	return fmt.Sprintf("tile(%d)", uint8(t))
}

func parseTile(s string) (Tile, error) {
	switch s {
	case "open":
		return TileOpen, nil
	case "blocking":
		return TileBlocking, nil
	case "decor":
		return TileDecor, nil
	}
	return 0, fmt.Errorf("unknown tile class %q", s)
}

// Content is the static content the registry checks object and spawn references against.
type Content interface {
	ResourceBlocking(id string) (blocking bool, ok bool)
	MonsterSize(id string) (w, h int, ok bool)
}

type ObjectKind uint8

const (
	ObjectResource ObjectKind = iota + 1
	ObjectPedestal
)

type Object struct {
	Kind     ObjectKind
	Type     string
	At       model.Pos
	Blocking bool
}

// Key identifies a placed object within its zone.
func (o Object) Key() string { return fmt.Sprintf("%s@%d,%d", o.Type, o.At.X, o.At.Y) }

type Gateway struct {
	At    model.Pos
	To    model.ZoneID
	Entry model.Pos
}

type Spawn struct {
	ID      string
	Monster string
	At      model.Pos
}

// Zone is immutable after Build.
type Zone struct {
	ID   model.ZoneID
	Name string
	W, H int

	rows    []string
	tiles   []Tile
	blocked []bool

	gateways []Gateway
	gateAt   map[model.Pos]int
	objects  []Object
	objAt    map[model.Pos]int
	spawns   []Spawn
}

func (z *Zone) InBounds(p model.Pos) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < z.W && p.Y < z.H
}

func (z *Zone) idx(p model.Pos) int { return p.Y*z.W + p.X }

func (z *Zone) TileAt(p model.Pos) (Tile, bool) {
	if !z.InBounds(p) {
		return 0, false
	}
	return z.tiles[z.idx(p)], true
}

// StaticBlocked reports blocking terrain or a blocking object at p. Out of bounds is blocked.
func (z *Zone) StaticBlocked(p model.Pos) bool {
	if !z.InBounds(p) {
		return true
	}
	return z.blocked[z.idx(p)]
}

// Rows returns the zone's source rows, as authored.
func (z *Zone) Rows() []string { return z.rows }

func (z *Zone) TileCount() int { return z.W * z.H }

func (z *Zone) GatewayAt(p model.Pos) (Gateway, bool) {
	i, ok := z.gateAt[p]
	if !ok {
		return Gateway{}, false
	}
	return z.gateways[i], true
}

func (z *Zone) Gateways() []Gateway { return z.gateways }

// GatewaysTo lists gateways leading directly to dst, in config order.
func (z *Zone) GatewaysTo(dst model.ZoneID) []Gateway {
	var out []Gateway
	for _, g := range z.gateways {
		if g.To == dst {
			out = append(out, g)
		}
	}
	return out
}

func (z *Zone) ObjectAt(p model.Pos) (Object, bool) {
	i, ok := z.objAt[p]
	if !ok {
		return Object{}, false
	}
	return z.objects[i], true
}

func (z *Zone) Objects() []Object { return z.objects }

// ResourceNodes lists resource objects accepted by keep, in config order.
func (z *Zone) ResourceNodes(keep func(typ string) bool) []Object {
	var out []Object
	for _, o := range z.objects {
		if o.Kind == ObjectResource && (keep == nil || keep(o.Type)) {
			out = append(out, o)
		}
	}
	return out
}

func (z *Zone) Spawns() []Spawn { return z.spawns }

// Registry is the immutable set of zones plus the zone routing table.
type Registry struct {
	zones   map[model.ZoneID]*Zone
	ids     []model.ZoneID
	nextHop map[[2]model.ZoneID]model.ZoneID

	home        model.ZoneID
	respawnTile model.Pos
	safeTile    model.Pos
}

func (r *Registry) Zone(id model.ZoneID) (*Zone, bool) {
	z, ok := r.zones[id]
	return z, ok
}

// IDs returns zone ids sorted by (X, Y).
func (r *Registry) IDs() []model.ZoneID { return r.ids }

func (r *Registry) Home() model.ZoneID     { return r.home }
func (r *Registry) RespawnTile() model.Pos { return r.respawnTile }
func (r *Registry) SafeTile() model.Pos    { return r.safeTile }

// NextHop returns the neighbouring zone on a shortest gateway route from -> to.
func (r *Registry) NextHop(from, to model.ZoneID) (model.ZoneID, bool) {
	if from == to {
		return to, true
	}
	z, ok := r.nextHop[[2]model.ZoneID{from, to}]
	return z, ok
}

// Build compiles cfg into a Registry. Every object and spawn type must exist in content.
func Build(cfg Config, content Content) (*Registry, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	legend := map[byte]Tile{}
	for sym, class := range cfg.Legend {
		t, _ := parseTile(class)
		legend[sym[0]] = t
	}

	r := &Registry{
		zones:       map[model.ZoneID]*Zone{},
		nextHop:     map[[2]model.ZoneID]model.ZoneID{},
		home:        model.ZoneFromArray(cfg.HomeZone),
		respawnTile: model.PosFromArray(cfg.RespawnTile),
		safeTile:    model.PosFromArray(cfg.SafeTile),
	}
	for _, spec := range cfg.Zones {
		z, err := buildZone(spec, legend, content)
		if err != nil {
			return nil, err
		}
		r.zones[z.ID] = z
		r.ids = append(r.ids, z.ID)
	}
	sort.Slice(r.ids, func(i, j int) bool {
		if r.ids[i].X != r.ids[j].X {
			return r.ids[i].X < r.ids[j].X
		}
		return r.ids[i].Y < r.ids[j].Y
	})

	home := r.zones[r.home]
	if home.StaticBlocked(r.respawnTile) {
		return nil, fmt.Errorf("respawn_tile %v is not walkable in home zone", cfg.RespawnTile)
	}
	if home.StaticBlocked(r.safeTile) {
		return nil, fmt.Errorf("safe_tile %v is not walkable in home zone", cfg.SafeTile)
	}
	for _, id := range r.ids {
		z := r.zones[id]
		for _, g := range z.gateways {
			if z.StaticBlocked(g.At) {
				return nil, fmt.Errorf("zone %s gateway %v is not walkable", id, g.At)
			}
			if r.zones[g.To].StaticBlocked(g.Entry) {
				return nil, fmt.Errorf("zone %s gateway %v entry %v is not walkable in %s", id, g.At, g.Entry, g.To)
			}
		}
	}
	r.buildRoutes()
	return r, nil
}

func buildZone(spec ZoneSpec, legend map[byte]Tile, content Content) (*Zone, error) {
	z := &Zone{
		ID:     model.ZoneFromArray(spec.ID),
		Name:   spec.Name,
		W:      len(spec.Rows[0]),
		H:      len(spec.Rows),
		gateAt: map[model.Pos]int{},
		objAt:  map[model.Pos]int{},
	}
	z.rows = append([]string(nil), spec.Rows...)
	z.tiles = make([]Tile, z.W*z.H)
	z.blocked = make([]bool, z.W*z.H)
	for y, row := range spec.Rows {
		for x := 0; x < len(row); x++ {
			t := legend[row[x]]
			z.tiles[y*z.W+x] = t
			z.blocked[y*z.W+x] = t == TileBlocking
		}
	}
	for _, g := range spec.Gateways {
		gw := Gateway{At: model.PosFromArray(g.At), To: model.ZoneFromArray(g.To), Entry: model.PosFromArray(g.Entry)}
		if _, dup := z.gateAt[gw.At]; dup {
			return nil, fmt.Errorf("zone %s duplicate gateway at %v", z.ID, g.At)
		}
		z.gateAt[gw.At] = len(z.gateways)
		z.gateways = append(z.gateways, gw)
	}
	for _, o := range spec.Objects {
		obj := Object{Type: o.Type, At: model.PosFromArray(o.At)}
		switch o.Kind {
		case "pedestal":
			obj.Kind = ObjectPedestal
			obj.Blocking = true
		default:
			blocking, ok := content.ResourceBlocking(o.Type)
			if !ok {
				return nil, fmt.Errorf("%w: zone %s resource %q", ErrConfigMissing, z.ID, o.Type)
			}
			obj.Kind = ObjectResource
			obj.Blocking = blocking
		}
		if _, dup := z.objAt[obj.At]; dup {
			return nil, fmt.Errorf("zone %s duplicate object at %v", z.ID, o.At)
		}
		if _, gate := z.gateAt[obj.At]; gate && obj.Blocking {
			return nil, fmt.Errorf("zone %s blocking object on gateway %v", z.ID, o.At)
		}
		z.objAt[obj.At] = len(z.objects)
		z.objects = append(z.objects, obj)
		if obj.Blocking {
			z.blocked[z.idx(obj.At)] = true
		}
	}
	for _, s := range spec.Spawns {
		w, h, ok := content.MonsterSize(s.Monster)
		if !ok {
			return nil, fmt.Errorf("%w: zone %s spawn %s monster %q", ErrConfigMissing, z.ID, s.ID, s.Monster)
		}
		sp := Spawn{ID: s.ID, Monster: s.Monster, At: model.PosFromArray(s.At)}
		fp := model.Footprint{Anchor: sp.At, Size: model.Size{W: w, H: h}}
		for _, t := range fp.Tiles() {
			if z.StaticBlocked(t) {
				return nil, fmt.Errorf("zone %s spawn %s footprint tile %v is not walkable", z.ID, s.ID, t)
			}
		}
		z.spawns = append(z.spawns, sp)
	}
	return z, nil
}

// buildRoutes runs a BFS over gateway edges from every zone, recording the first hop.
func (r *Registry) buildRoutes() {
	for _, src := range r.ids {
		first := map[model.ZoneID]model.ZoneID{src: src}
		queue := []model.ZoneID{src}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, g := range r.zones[cur].gateways {
				if _, seen := first[g.To]; seen {
					continue
				}
				hop := first[cur]
				if cur == src {
					hop = g.To
				}
				first[g.To] = hop
				queue = append(queue, g.To)
			}
		}
		for dst, hop := range first {
			if dst != src {
				r.nextHop[[2]model.ZoneID{src, dst}] = hop
			}
		}
	}
}
