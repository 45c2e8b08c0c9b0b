package stats

import (
	"errors"
	"testing"

	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/tuning"
	"gridrealm.ai/internal/sim/world/kernel/model"
)

func testCatalogs() *catalogs.Catalogs {
	return &catalogs.Catalogs{
		Items: catalogs.ItemCatalog{ByID: map[string]catalogs.ItemDef{
			"tail":   {ID: "tail", Damage: 1, SpeedPct: 10},
			"helmet": {ID: "helmet", Defense: 2, MaxHP: 5},
		}},
		Upgrades: catalogs.UpgradeCatalog{ByID: map[string]catalogs.UpgradeDef{
			"sharpen": {ID: "sharpen", Stat: "damage", PerLevel: 2, BaseCost: 10, CostGrowth: 2},
			"focus":   {ID: "focus", Stat: "mark_capacity", PerLevel: 1, BaseCost: 100, CostGrowth: 1, MaxLevel: 1},
		}},
	}
}

func TestRecompute(t *testing.T) {
	base := tuning.Defaults().Base
	team := &model.Team{
		Upgrades:      map[string]int{"sharpen": 2, "focus": 1},
		UnlockedDrops: map[string]bool{"tail": true, "helmet": true},
	}
	s := Recompute(base, team, testCatalogs())
	if s.Damage != base.Damage+4+1 {
		t.Fatalf("damage=%v", s.Damage)
	}
	if s.Defense != base.Defense+2 || s.MaxHP != base.MaxHP+5 || s.SpeedPct != base.SpeedPct+10 {
		t.Fatalf("item bonuses not applied: %+v", s)
	}
	if s.MarkCapacity != base.MarkCapacity+1 {
		t.Fatalf("mark capacity=%d", s.MarkCapacity)
	}
}

func TestPurchase(t *testing.T) {
	cats := testCatalogs()
	team := &model.Team{Gold: 25}
	cost, err := Purchase(team, cats.Upgrades.ByID["sharpen"])
	if err != nil || cost != 10 || team.Gold != 15 || team.Upgrades["sharpen"] != 1 {
		t.Fatalf("first purchase: cost=%d err=%v team=%+v", cost, err, team)
	}
	if _, err := Purchase(team, cats.Upgrades.ByID["sharpen"]); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("level 2 costs 20 with 15 gold: err=%v", err)
	}
	if team.Gold != 15 || team.Upgrades["sharpen"] != 1 {
		t.Fatalf("failed purchase mutated team: %+v", team)
	}

	team.Gold = 1000
	if _, err := Purchase(team, cats.Upgrades.ByID["focus"]); err != nil {
		t.Fatalf("focus: %v", err)
	}
	if _, err := Purchase(team, cats.Upgrades.ByID["focus"]); !errors.Is(err, ErrMaxLevel) {
		t.Fatalf("expected ErrMaxLevel, got %v", err)
	}
}

func TestApplyMaxHP_KeepsDelta(t *testing.T) {
	alive := &model.Character{HP: 40, MaxHP: 50}
	dead := &model.Character{HP: 0, MaxHP: 50, Dead: true}
	ApplyMaxHP([]*model.Character{alive, dead}, 60)
	if alive.MaxHP != 60 || alive.HP != 50 {
		t.Fatalf("alive=%+v", alive)
	}
	if dead.MaxHP != 60 || dead.HP != 0 {
		t.Fatalf("dead=%+v", dead)
	}
}
