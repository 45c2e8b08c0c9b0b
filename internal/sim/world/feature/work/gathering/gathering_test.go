package gathering

import (
	"testing"
	"time"

	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/world/kernel/model"
	"gridrealm.ai/internal/sim/zones"
)

func TestLevelCurve(t *testing.T) {
	for _, tc := range []struct{ xp, want int }{{0, 1}, {49, 1}, {50, 2}, {199, 2}, {200, 3}, {450, 4}} {
		if got := Level(tc.xp, 50); got != tc.want {
			t.Fatalf("Level(%d)=%d want %d", tc.xp, got, tc.want)
		}
	}
}

func TestProgress(t *testing.T) {
	if got := Progress(500*time.Millisecond, 2*time.Second); got != 0.25 {
		t.Fatalf("Progress=%v want 0.25", got)
	}
	if got := Progress(3*time.Second, 2*time.Second); got != 1 {
		t.Fatalf("Progress should clamp, got %v", got)
	}
}

func TestNearest_TieBreaksOnListOrder(t *testing.T) {
	nodes := []zones.Object{
		{Type: "oak", At: model.Pos{X: 5, Y: 1}},
		{Type: "oak", At: model.Pos{X: 1, Y: 5}},
		{Type: "oak", At: model.Pos{X: 9, Y: 9}},
	}
	got, ok := Nearest(nodes, model.Pos{X: 1, Y: 1}, nil)
	if !ok || got.At != (model.Pos{X: 5, Y: 1}) {
		t.Fatalf("expected first equidistant node, got %+v", got)
	}
	got, ok = Nearest(nodes, model.Pos{X: 1, Y: 1}, func(o zones.Object) bool { return o.At.X == 5 })
	if !ok || got.At != (model.Pos{X: 1, Y: 5}) {
		t.Fatalf("skip not honoured: %+v", got)
	}
	if _, ok := Nearest(nil, model.Pos{}, nil); ok {
		t.Fatalf("expected no node")
	}
}

func TestEligible_MinLevel(t *testing.T) {
	def := catalogs.ResourceDef{ID: "iron_rock", Skill: "mining", MinLevel: 3}
	if Eligible(def, model.SkillMining, "", 2) {
		t.Fatalf("level 2 should not mine iron")
	}
	if !Eligible(def, model.SkillMining, "", 3) {
		t.Fatalf("level 3 should mine iron")
	}
	if Eligible(def, model.SkillFishing, "", 9) {
		t.Fatalf("wrong skill")
	}
	if Eligible(def, model.SkillMining, "copper_rock", 9) {
		t.Fatalf("resource filter ignored")
	}
}

func TestComplete_AwardsXPAndItem(t *testing.T) {
	c := &model.Character{}
	team := &model.Team{}
	def := catalogs.ResourceDef{ID: "copper_rock", Skill: "mining", XP: 50, Item: "copper_ore"}
	a := Complete(c, team, def, model.SkillMining, 50)
	if !a.LevelUp || a.NewLevel != 2 {
		t.Fatalf("expected level up to 2, got %+v", a)
	}
	if team.Inventory["copper_ore"] != 1 || c.Skills[model.SkillMining] != 50 {
		t.Fatalf("award not applied: inv=%v skills=%v", team.Inventory, c.Skills)
	}
}
