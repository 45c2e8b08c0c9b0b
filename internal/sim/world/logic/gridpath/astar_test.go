package gridpath

import "testing"

func open(Pos) bool { return true }

func TestSearch_OpenGridPathEqualsManhattan(t *testing.T) {
	for _, tc := range []struct{ sx, sy, gx, gy int }{
		{0, 0, 7, 5}, {7, 5, 0, 0}, {3, 3, 3, 0}, {0, 4, 6, 4}, {2, 2, 2, 2},
	} {
		start, goal := Pos{X: tc.sx, Y: tc.sy}, Pos{X: tc.gx, Y: tc.gy}
		res := Search(8, 6, start, []Pos{goal}, open)
		if !res.Found {
			t.Fatalf("%v->%v: not found", start, goal)
		}
		if len(res.Path) != manhattan(start, goal) {
			t.Fatalf("%v->%v: len=%d want %d", start, goal, len(res.Path), manhattan(start, goal))
		}
		prev := start
		for _, p := range res.Path {
			if manhattan(prev, p) != 1 {
				t.Fatalf("%v->%v: non-adjacent step %v->%v", start, goal, prev, p)
			}
			prev = p
		}
		if len(res.Path) > 0 && res.Path[len(res.Path)-1] != goal {
			t.Fatalf("%v->%v: path ends at %v", start, goal, res.Path[len(res.Path)-1])
		}
	}
}

func TestSearch_DetourNeverShorterThanManhattan(t *testing.T) {
	// Vertical wall at x=3 with a gap at y=5.
	wall := func(p Pos) bool { return !(p.X == 3 && p.Y != 5) }
	start, goal := Pos{X: 0, Y: 0}, Pos{X: 6, Y: 0}
	res := Search(7, 6, start, []Pos{goal}, wall)
	if !res.Found {
		t.Fatalf("expected a path through the gap")
	}
	if len(res.Path) < manhattan(start, goal) {
		t.Fatalf("path shorter than Manhattan: %d", len(res.Path))
	}
	if len(res.Path) != 16 {
		t.Fatalf("len=%d want 16", len(res.Path))
	}
	for _, p := range res.Path {
		if !wall(p) {
			t.Fatalf("path crosses wall at %v", p)
		}
	}
}

func TestSearch_UnreachableTerminatesWithinTileCount(t *testing.T) {
	goal := Pos{X: 5, Y: 5}
	enclosed := func(p Pos) bool { return manhattan(p, goal) != 1 }
	const w, h = 10, 10
	res := Search(w, h, Pos{X: 0, Y: 0}, []Pos{goal}, enclosed)
	if res.Found || res.Path != nil {
		t.Fatalf("expected no path, got %+v", res)
	}
	if res.Expanded > w*h {
		t.Fatalf("expanded %d > tile count %d", res.Expanded, w*h)
	}
}

func TestSearch_Deterministic(t *testing.T) {
	a := Search(9, 9, Pos{X: 0, Y: 0}, []Pos{{X: 8, Y: 8}}, open)
	for i := 0; i < 20; i++ {
		b := Search(9, 9, Pos{X: 0, Y: 0}, []Pos{{X: 8, Y: 8}}, open)
		if len(a.Path) != len(b.Path) {
			t.Fatalf("length changed between runs")
		}
		for j := range a.Path {
			if a.Path[j] != b.Path[j] {
				t.Fatalf("path differs at step %d: %v vs %v", j, a.Path[j], b.Path[j])
			}
		}
	}
}

func TestSearch_MultiGoalPicksNearest(t *testing.T) {
	res := Search(10, 3, Pos{X: 4, Y: 1}, []Pos{{X: 0, Y: 1}, {X: 9, Y: 1}}, open)
	if !res.Found || len(res.Path) != 4 || res.Path[3] != (Pos{X: 0, Y: 1}) {
		t.Fatalf("unexpected multi-goal result: %+v", res)
	}
}
