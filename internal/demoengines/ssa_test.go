package demoengines

import (
	"math"
	"math/rand"
	"testing"
)

func TestPickWeighted_ZeroTotalReturnsNegativeOne(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if got := pickWeighted([]float64{1, 2, 3}, 0, rng); got != -1 {
		t.Fatalf("expected -1 for a non-positive total, got %d", got)
	}
}

func TestPickWeighted_AlwaysReturnsValidIndex(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	weights := []float64{1, 2, 3}
	total := 6.0
	for i := 0; i < 100; i++ {
		idx := pickWeighted(weights, total, rng)
		if idx < 0 || idx >= len(weights) {
			t.Fatalf("pickWeighted returned out-of-range index %d", idx)
		}
	}
}

func TestExpWait_ZeroTotalReturnsInfinity(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if got := expWait(0, rng); !math.IsInf(got, 1) {
		t.Fatalf("expected +Inf for a non-positive total, got %g", got)
	}
}

func TestExpWait_PositiveTotalReturnsPositiveWait(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if got := expWait(2, rng); got <= 0 {
		t.Fatalf("expected a positive wait time, got %g", got)
	}
}
