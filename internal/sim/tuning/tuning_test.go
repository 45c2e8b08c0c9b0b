package tuning

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults_Valid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if got := Defaults().TickDuration(); got != 100*time.Millisecond {
		t.Fatalf("tick duration=%v want 100ms", got)
	}
}

func TestLoad_PartialOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tuning.yaml")
	if err := os.WriteFile(p, []byte("tick_rate_hz: 20\nbase_stats:\n  damage: 7\n  speed_pct: 100\n  max_hp: 40\n  mark_capacity: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tn, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tn.TickRateHz != 20 || tn.Base.Damage != 7 || tn.Base.MarkCapacity != 2 {
		t.Fatalf("overrides not applied: %+v", tn)
	}
	if tn.MonsterRespawnMs != Defaults().MonsterRespawnMs {
		t.Fatalf("default lost: monster_respawn_ms=%d", tn.MonsterRespawnMs)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tuning.yaml")
	if err := os.WriteFile(p, []byte("monster_heal_fraction: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(p); err == nil {
		t.Fatalf("expected validation error")
	}
}
