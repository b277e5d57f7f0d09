// Package demoengines provides minimal reference engines for each
// kernel.EngineKind, just enough to drive the coordinator's integration
// tests and the hybridsim CLI. They are not a physically rigorous solver
// suite.
package demoengines

import (
	"math"
	"math/rand"
)

// pickWeighted draws an index proportional to weights[i]/total via the
// Gillespie direct method. Returns -1 if total <= 0.
func pickWeighted(weights []float64, total float64, rng *rand.Rand) int {
	if total <= 0 {
		return -1
	}
	r := rng.Float64() * total
	cum := 0.0
	for i, w := range weights {
		cum += w
		if r < cum {
			return i
		}
	}
	return len(weights) - 1
}

// expWait draws an exponential waiting time for the given total propensity.
func expWait(total float64, rng *rand.Rand) float64 {
	if total <= 0 {
		return math.Inf(1)
	}
	return rng.ExpFloat64() / total
}
