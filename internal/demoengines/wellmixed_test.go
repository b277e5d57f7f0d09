package demoengines

import (
	"math/rand"
	"testing"

	"github.com/daniacca/hybridchem/internal/kernel"
)

func TestWellMixed_StepConservesTotalMoleculeCount(t *testing.T) {
	spA := kernel.Intern("wm_test_a")
	spB := kernel.Intern("wm_test_b")
	rng := rand.New(rand.NewSource(1))
	e := NewWellMixed(rng, map[kernel.SpeciesID]int{spA: 10}, []ConversionRule{{Reactant: spA, Product: spB, Rate: 1}})
	e.Initialize()

	for i := 0; i < 5; i++ {
		e.Step()
	}

	total := e.GetValueExact(spA) + e.GetValueExact(spB)
	if total != 10 {
		t.Fatalf("expected total molecule count to stay 10, got %g", total)
	}
}

func TestWellMixed_NoRulesNeverFires(t *testing.T) {
	spA := kernel.Intern("wm_test_norules")
	rng := rand.New(rand.NewSource(1))
	e := NewWellMixed(rng, map[kernel.SpeciesID]int{spA: 5}, nil)
	e.Initialize()
	e.Step()
	if len(e.LastReactions()) != 0 {
		t.Fatalf("expected no reaction with an empty rule table, got %v", e.LastReactions())
	}
}

func TestWellMixed_AddAndRemoveMolecules(t *testing.T) {
	spA := kernel.Intern("wm_test_addremove")
	e := NewWellMixed(rand.New(rand.NewSource(1)), nil, nil)
	e.AddMolecules(spA, 3)
	if got := e.GetValueExact(spA); got != 3 {
		t.Fatalf("expected 3 after AddMolecules, got %g", got)
	}
	e.RemoveMolecules(spA, 5)
	if got := e.GetValueExact(spA); got != 0 {
		t.Fatalf("expected RemoveMolecules to floor at 0, got %g", got)
	}
}
