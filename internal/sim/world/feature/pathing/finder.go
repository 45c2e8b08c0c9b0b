package pathing

import (
	"gridrealm.ai/internal/sim/world/kernel/model"
	"gridrealm.ai/internal/sim/world/logic/gridpath"
	"gridrealm.ai/internal/sim/zones"
)

// Walkable is the walkability oracle as seen by the pathfinder.
type Walkable interface {
	IsWalkable(p model.Pos, zone model.ZoneID, ignoreAgents bool) bool
	Zone(id model.ZoneID) (*zones.Zone, bool)
}

type Routes interface {
	NextHop(from, to model.ZoneID) (model.ZoneID, bool)
}

type Result struct {
	Path     []model.Pos
	Found    bool
	Expanded int
}

type Finder struct {
	walk   Walkable
	routes Routes
	perim  *PerimeterCache
}

func NewFinder(w Walkable, routes Routes) *Finder {
	return &Finder{walk: w, routes: routes, perim: NewPerimeterCache()}
}

func (f *Finder) Perimeters() *PerimeterCache { return f.perim }

// Neighbors returns the walkable cardinal neighbours of p. Agents block.
func (f *Finder) Neighbors(p model.Pos, zone model.ZoneID) []model.Pos {
	out := make([]model.Pos, 0, 4)
	for _, d := range gridpath.Dirs {
		np := p.Add(d.X, d.Y)
		if f.walk.IsWalkable(np, zone, false) {
			out = append(out, np)
		}
	}
	return out
}

// FindPath returns the tiles from start (exclusive) to goal, or false if goal is unreachable.
func (f *Finder) FindPath(start, goal model.Pos, zone model.ZoneID) ([]model.Pos, bool) {
	res := f.Search(start, []model.Pos{goal}, zone)
	return res.Path, res.Found
}

// Search runs A* from start toward the nearest of goals within one zone.
func (f *Finder) Search(start model.Pos, goals []model.Pos, zone model.ZoneID) Result {
	z, ok := f.walk.Zone(zone)
	if !ok {
		return Result{}
	}
	gs := make([]gridpath.Pos, len(goals))
	for i, g := range goals {
		gs[i] = gridpath.Pos{X: g.X, Y: g.Y}
	}
	res := gridpath.Search(z.W, z.H, gridpath.Pos{X: start.X, Y: start.Y}, gs, func(p gridpath.Pos) bool {
		return f.walk.IsWalkable(model.Pos{X: p.X, Y: p.Y}, zone, false)
	})
	out := Result{Found: res.Found, Expanded: res.Expanded}
	if len(res.Path) > 0 {
		out.Path = make([]model.Pos, len(res.Path))
		for i, p := range res.Path {
			out.Path[i] = model.Pos{X: p.X, Y: p.Y}
		}
	}
	return out
}

// FindPathToZone paths to the nearest gateway tile of from that leads toward dst. A start
// already on such a gateway yields an empty path and true.
func (f *Finder) FindPathToZone(start model.Pos, from, dst model.ZoneID) ([]model.Pos, bool) {
	if f.routes == nil {
		return nil, false
	}
	hop, ok := f.routes.NextHop(from, dst)
	if !ok || hop == from {
		return nil, false
	}
	z, ok := f.walk.Zone(from)
	if !ok {
		return nil, false
	}
	gates := z.GatewaysTo(hop)
	if len(gates) == 0 {
		return nil, false
	}
	goals := make([]model.Pos, len(gates))
	for i, g := range gates {
		if g.At == start {
			// Already on the gateway: an empty path, the caller crosses in place.
			return nil, true
		}
		goals[i] = g.At
	}
	res := f.Search(start, goals, from)
	if !res.Found || len(res.Path) == 0 {
		return nil, false
	}
	return res.Path, true
}

// ApproachTiles returns the perimeter tiles of an entity's footprint that are walkable now.
func (f *Finder) ApproachTiles(entityID string, fp model.Footprint, zone model.ZoneID) []model.Pos {
	var out []model.Pos
	for _, p := range f.perim.For(entityID, fp) {
		if f.walk.IsWalkable(p, zone, false) {
			out = append(out, p)
		}
	}
	return out
}
