package gridpath

import "container/heap"

type Pos struct {
	X int
	Y int
}

// Dirs is the fixed cardinal expansion order: north, east, south, west.
var Dirs = [4]Pos{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}}

func manhattan(a, b Pos) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

type node struct {
	p   Pos
	g   int
	h   int
	seq int
}

type openList []node

func (ol openList) Len() int { return len(ol) }
func (ol openList) Less(i, j int) bool {
	fi, fj := ol[i].g+ol[i].h, ol[j].g+ol[j].h
	if fi != fj {
		return fi < fj
	}
	if ol[i].h != ol[j].h {
		return ol[i].h < ol[j].h
	}
	return ol[i].seq < ol[j].seq
}
func (ol openList) Swap(i, j int) { ol[i], ol[j] = ol[j], ol[i] }
func (ol *openList) Push(x any)   { *ol = append(*ol, x.(node)) }
func (ol *openList) Pop() any     { old := *ol; n := old[len(old)-1]; *ol = old[:len(old)-1]; return n }

type Result struct {
	// Path excludes the start tile. Empty with Found set means start is already a goal.
	Path     []Pos
	Found    bool
	Expanded int
}

// Search runs A* over a w x h grid from start to the nearest of goals, with a Manhattan
// heuristic and unit edge cost. passable is consulted for every tile except start.
// Frontier ties break on lower h, then insertion order, so results are stable for a fixed map.
// Each tile is expanded at most once, so Expanded never exceeds w*h.
func Search(w, h int, start Pos, goals []Pos, passable func(Pos) bool) Result {
	in := func(p Pos) bool { return p.X >= 0 && p.Y >= 0 && p.X < w && p.Y < h }
	if !in(start) || len(goals) == 0 {
		return Result{}
	}
	isGoal := make(map[Pos]bool, len(goals))
	for _, g := range goals {
		if in(g) {
			isGoal[g] = true
		}
	}
	if len(isGoal) == 0 {
		return Result{}
	}
	if isGoal[start] {
		return Result{Found: true}
	}
	hOf := func(p Pos) int {
		best := -1
		for g := range isGoal {
			if d := manhattan(p, g); best < 0 || d < best {
				best = d
			}
		}
		return best
	}

	idx := func(p Pos) int { return p.Y*w + p.X }
	gScore := make([]int, w*h)
	for i := range gScore {
		gScore[i] = -1
	}
	closed := make([]bool, w*h)
	parent := make([]int, w*h)

	seq := 0
	ol := &openList{{p: start, g: 0, h: hOf(start), seq: seq}}
	gScore[idx(start)] = 0
	parent[idx(start)] = -1

	expanded := 0
	for ol.Len() > 0 {
		cur := heap.Pop(ol).(node)
		ci := idx(cur.p)
		if closed[ci] {
			continue
		}
		closed[ci] = true
		expanded++
		if isGoal[cur.p] {
			return Result{Path: unwind(parent, ci, idx(start), w), Found: true, Expanded: expanded}
		}
		for _, d := range Dirs {
			np := Pos{X: cur.p.X + d.X, Y: cur.p.Y + d.Y}
			if !in(np) {
				continue
			}
			ni := idx(np)
			if closed[ni] || !passable(np) {
				continue
			}
			ng := cur.g + 1
			if gScore[ni] >= 0 && gScore[ni] <= ng {
				continue
			}
			gScore[ni] = ng
			parent[ni] = ci
			seq++
			heap.Push(ol, node{p: np, g: ng, h: hOf(np), seq: seq})
		}
	}
	return Result{Expanded: expanded}
}

func unwind(parent []int, at, start, w int) []Pos {
	var rev []Pos
	for at != start && at >= 0 {
		rev = append(rev, Pos{X: at % w, Y: at / w})
		at = parent[at]
	}
	out := make([]Pos, len(rev))
	for i := range rev {
		out[i] = rev[len(rev)-1-i]
	}
	return out
}
