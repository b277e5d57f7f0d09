package demoengines

import (
	"math"
	"math/rand"

	"github.com/daniacca/hybridchem/internal/kernel"
)

// ConversionRule is a unimolecular reaction Reactant -> Product firing at
// rate Rate per molecule of Reactant present.
type ConversionRule struct {
	Reactant kernel.SpeciesID
	Product  kernel.SpeciesID
	Rate     float64
}

// WellMixed is a direct-method Gillespie engine over a fixed table of
// unimolecular conversion rules, with no geometry (kernel.WellMixed).
type WellMixed struct {
	rng    *rand.Rand
	rules  []ConversionRule
	counts map[kernel.SpeciesID]int
	t      float64
	nextT  float64
	last   []kernel.ReactionRecord
}

// NewWellMixed builds a WellMixed engine from an initial population and a
// fixed reaction table. rng drives every stochastic draw this engine
// makes, so replays depend only on its seed.
func NewWellMixed(rng *rand.Rand, initial map[kernel.SpeciesID]int, rules []ConversionRule) *WellMixed {
	counts := make(map[kernel.SpeciesID]int, len(initial))
	for sp, n := range initial {
		counts[sp] = n
	}
	return &WellMixed{rng: rng, rules: rules, counts: counts}
}

func (e *WellMixed) Kind() kernel.EngineKind { return kernel.WellMixed }
func (e *WellMixed) T() float64              { return e.t }
func (e *WellMixed) NextTime() float64       { return e.nextT }
func (e *WellMixed) Rand() *rand.Rand        { return e.rng }

func (e *WellMixed) propensities() ([]float64, float64) {
	weights := make([]float64, len(e.rules))
	total := 0.0
	for i, r := range e.rules {
		w := r.Rate * float64(e.counts[r.Reactant])
		weights[i] = w
		total += w
	}
	return weights, total
}

// Initialize recomputes the next firing time from the current state.
func (e *WellMixed) Initialize() {
	_, total := e.propensities()
	e.nextT = e.t + expWait(total, e.rng)
}

func (e *WellMixed) Step() {
	e.last = nil
	weights, total := e.propensities()
	idx := pickWeighted(weights, total, e.rng)
	e.t = e.nextT
	if idx < 0 {
		e.nextT = math.Inf(1)
		return
	}
	r := e.rules[idx]
	e.counts[r.Reactant]--
	e.counts[r.Product]++
	e.last = []kernel.ReactionRecord{{
		Info: kernel.ReactionInfo{
			T:         e.t,
			Reactants: []kernel.Molecule{{Species: r.Reactant}},
			Products:  []kernel.Molecule{{Species: r.Product}},
		},
	}}
	e.Initialize()
}

func (e *WellMixed) StepUpto(t float64) {
	e.t = t
	e.last = nil
}

func (e *WellMixed) LastReactions() []kernel.ReactionRecord { return e.last }
func (e *WellMixed) World() any                             { return e }

// AmountWorld implementation.

func (e *WellMixed) GetValueExact(sp kernel.SpeciesID) float64 {
	return float64(e.counts[sp])
}

func (e *WellMixed) SetValue(sp kernel.SpeciesID, value float64) {
	e.counts[sp] = int(math.Round(value))
}

func (e *WellMixed) AddMolecules(sp kernel.SpeciesID, n int) {
	e.counts[sp] += n
}

func (e *WellMixed) RemoveMolecules(sp kernel.SpeciesID, n int) {
	e.counts[sp] -= n
	if e.counts[sp] < 0 {
		e.counts[sp] = 0
	}
}

func (e *WellMixed) ListSpecies() []kernel.SpeciesID {
	out := make([]kernel.SpeciesID, 0, len(e.counts))
	for sp := range e.counts {
		out = append(out, sp)
	}
	return out
}
