package zmin

import "testing"

func TestDetectIsCached(t *testing.T) {
	a := Detect()
	b := Detect()
	if a != b {
		t.Fatalf("Detect() is not stable across calls: %+v vs %+v", a, b)
	}
	switch a.Tier {
	case TierScalar:
		if a.VectorWidth != 1 {
			t.Errorf("scalar tier should report VectorWidth 1, got %d", a.VectorWidth)
		}
	case Tier128:
		if a.VectorWidth != 16 {
			t.Errorf("Tier128 should report VectorWidth 16, got %d", a.VectorWidth)
		}
	case Tier256:
		if a.VectorWidth != 32 {
			t.Errorf("Tier256 should report VectorWidth 32, got %d", a.VectorWidth)
		}
	case Tier512:
		if a.VectorWidth != 64 {
			t.Errorf("Tier512 should report VectorWidth 64, got %d", a.VectorWidth)
		}
	}
}

func TestCpuTierString(t *testing.T) {
	tiers := []CpuTier{TierScalar, Tier128, Tier256, Tier512, CpuTier(99)}
	for _, tr := range tiers {
		if tr.String() == "" {
			t.Errorf("CpuTier(%d).String() returned empty", tr)
		}
	}
}
