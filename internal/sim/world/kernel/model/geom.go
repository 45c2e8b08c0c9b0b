package model

import "fmt"

// Pos is a tile coordinate inside one zone.
type Pos struct {
	X int
	Y int
}

func (p Pos) Add(dx, dy int) Pos { return Pos{X: p.X + dx, Y: p.Y + dy} }

func (p Pos) ToArray() [2]int { return [2]int{p.X, p.Y} }

func PosFromArray(a [2]int) Pos { return Pos{X: a[0], Y: a[1]} }

func (p Pos) Manhattan(q Pos) int {
	return absInt(p.X-q.X) + absInt(p.Y-q.Y)
}

// ZoneID identifies a zone by its coordinate on the world map.
type ZoneID struct {
	X int
	Y int
}

func (z ZoneID) String() string { return fmt.Sprintf("%d,%d", z.X, z.Y) }

func (z ZoneID) ToArray() [2]int { return [2]int{z.X, z.Y} }

// Less orders zones by X, then Y.
func (z ZoneID) Less(o ZoneID) bool {
	if z.X != o.X {
		return z.X < o.X
	}
	return z.Y < o.Y
}

func ZoneFromArray(a [2]int) ZoneID { return ZoneID{X: a[0], Y: a[1]} }

// Size is the footprint of an entity in tiles.
type Size struct {
	W int
	H int
}

func (s Size) Normalize() Size {
	if s.W <= 0 {
		s.W = 1
	}
	if s.H <= 0 {
		s.H = 1
	}
	return s
}

// Footprint is the rectangle of tiles an entity occupies, anchored at its top-left tile.
type Footprint struct {
	Anchor Pos
	Size   Size
}

func (f Footprint) Contains(p Pos) bool {
	s := f.Size.Normalize()
	return p.X >= f.Anchor.X && p.X < f.Anchor.X+s.W &&
		p.Y >= f.Anchor.Y && p.Y < f.Anchor.Y+s.H
}

// AdjacentTo reports whether p is orthogonally adjacent to the footprint (and outside it).
func (f Footprint) AdjacentTo(p Pos) bool {
	if f.Contains(p) {
		return false
	}
	s := f.Size.Normalize()
	x0, y0 := f.Anchor.X, f.Anchor.Y
	x1, y1 := x0+s.W-1, y0+s.H-1
	if p.X >= x0 && p.X <= x1 && (p.Y == y0-1 || p.Y == y1+1) {
		return true
	}
	if p.Y >= y0 && p.Y <= y1 && (p.X == x0-1 || p.X == x1+1) {
		return true
	}
	return false
}

// Tiles lists the footprint tiles row by row.
func (f Footprint) Tiles() []Pos {
	s := f.Size.Normalize()
	out := make([]Pos, 0, s.W*s.H)
	for dy := 0; dy < s.H; dy++ {
		for dx := 0; dx < s.W; dx++ {
			out = append(out, f.Anchor.Add(dx, dy))
		}
	}
	return out
}

// Distance is the Manhattan distance from p to the nearest footprint tile.
func (f Footprint) Distance(p Pos) int {
	s := f.Size.Normalize()
	dx := 0
	if p.X < f.Anchor.X {
		dx = f.Anchor.X - p.X
	} else if p.X > f.Anchor.X+s.W-1 {
		dx = p.X - (f.Anchor.X + s.W - 1)
	}
	dy := 0
	if p.Y < f.Anchor.Y {
		dy = f.Anchor.Y - p.Y
	} else if p.Y > f.Anchor.Y+s.H-1 {
		dy = p.Y - (f.Anchor.Y + s.H - 1)
	}
	return dx + dy
}

// VisualPos is the interpolated presentation position in tile units.
type VisualPos struct {
	X float64
	Y float64
}

func VisualAt(p Pos) VisualPos { return VisualPos{X: float64(p.X), Y: float64(p.Y)} }

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
