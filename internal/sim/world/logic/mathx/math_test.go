package mathx

import "testing"

func TestUnit_DeterministicAndInRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		a := Unit(1337, uint64(i), "M0001", i%4)
		b := Unit(1337, uint64(i), "M0001", i%4)
		if a != b {
			t.Fatalf("Unit not deterministic at %d: %v vs %v", i, a, b)
		}
		if a < 0 || a >= 1 {
			t.Fatalf("Unit out of range at %d: %v", i, a)
		}
	}
	if Unit(1, 1, "x", 0) == Unit(2, 1, "x", 0) {
		t.Fatalf("expected seed to change the roll")
	}
}

func TestAbsInt(t *testing.T) {
	if AbsInt(-3) != 3 || AbsInt(4) != 4 {
		t.Fatalf("AbsInt mismatch")
	}
}
