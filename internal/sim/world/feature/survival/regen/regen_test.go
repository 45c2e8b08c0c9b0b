package regen

import (
	"testing"
	"time"

	"gridrealm.ai/internal/sim/world/kernel/model"
)

func TestApply(t *testing.T) {
	c := &model.Character{HP: 5, MaxHP: 6}
	if !Apply(c, 0, 2*time.Second, 1) || c.HP != 6 {
		t.Fatalf("expected heal to 6, got %v", c.HP)
	}
	c.HP = 3
	if Apply(c, time.Second, 2*time.Second, 1) {
		t.Fatalf("cooldown not honoured")
	}
	if !Apply(c, 2*time.Second, 2*time.Second, 5) || c.HP != 6 {
		t.Fatalf("heal should clamp at max, got %v", c.HP)
	}
	c.Dead = true
	c.HP = 0
	if Apply(c, 10*time.Second, 2*time.Second, 1) || c.HP != 0 {
		t.Fatalf("dead characters do not regenerate")
	}
}
