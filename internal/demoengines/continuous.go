package demoengines

import (
	"math"

	"github.com/daniacca/hybridchem/internal/kernel"
)

const continuousSubstep = 0.01

// Continuous is a fixed-substep forward-Euler integrator over a table of
// first-order flux rules (kernel.Continuous). Its own EngineHandle.Step is
// never driven by kernel.Event — ContinuousEvent always calls StepUpto —
// but it is implemented for standalone use and testing.
type Continuous struct {
	rules   []ConversionRule
	amounts map[kernel.SpeciesID]float64
	t       float64
}

// NewContinuous builds a Continuous engine from an initial population and a
// flux table.
func NewContinuous(initial map[kernel.SpeciesID]float64, rules []ConversionRule) *Continuous {
	amounts := make(map[kernel.SpeciesID]float64, len(initial))
	for sp, v := range initial {
		amounts[sp] = v
	}
	return &Continuous{rules: rules, amounts: amounts}
}

func (e *Continuous) Kind() kernel.EngineKind { return kernel.Continuous }
func (e *Continuous) Initialize()             {}
func (e *Continuous) T() float64              { return e.t }

func (e *Continuous) Step() {
	e.StepUpto(e.t + continuousSubstep)
}

func (e *Continuous) StepUpto(target float64) {
	for e.t < target {
		h := continuousSubstep
		if e.t+h > target {
			h = target - e.t
		}
		deltas := make(map[kernel.SpeciesID]float64, len(e.rules))
		for _, r := range e.rules {
			d := r.Rate * e.amounts[r.Reactant] * h
			deltas[r.Reactant] -= d
			deltas[r.Product] += d
		}
		for sp, d := range deltas {
			e.amounts[sp] = math.Max(0, e.amounts[sp]+d)
		}
		e.t += h
	}
	e.t = target
}

func (e *Continuous) LastReactions() []kernel.ReactionRecord { return nil }
func (e *Continuous) World() any                             { return e }

// AmountWorld implementation.

func (e *Continuous) GetValueExact(sp kernel.SpeciesID) float64 {
	return e.amounts[sp]
}

func (e *Continuous) SetValue(sp kernel.SpeciesID, value float64) {
	e.amounts[sp] = value
}

func (e *Continuous) AddMolecules(sp kernel.SpeciesID, n int) {
	e.amounts[sp] += float64(n)
}

func (e *Continuous) RemoveMolecules(sp kernel.SpeciesID, n int) {
	e.amounts[sp] = math.Max(0, e.amounts[sp]-float64(n))
}

func (e *Continuous) ListSpecies() []kernel.SpeciesID {
	out := make([]kernel.SpeciesID, 0, len(e.amounts))
	for sp := range e.amounts {
		out = append(out, sp)
	}
	return out
}
