package kernel

import "testing"

// fakeAmountEngine is a minimal deterministic AmountWorld-backed
// DiscreteEngineHandle for Coordinator-level tests: each Step adds one
// molecule of the configured product species and reports a fixed dt.
type fakeAmountEngine struct {
	kind    EngineKind
	t       float64
	dt      float64
	product SpeciesID
	values  map[SpeciesID]float64
	last    []ReactionRecord
}

func newFakeAmountEngine(kind EngineKind, dt float64, product SpeciesID) *fakeAmountEngine {
	return &fakeAmountEngine{kind: kind, dt: dt, product: product, values: make(map[SpeciesID]float64)}
}

func (e *fakeAmountEngine) Kind() EngineKind { return e.kind }
func (e *fakeAmountEngine) Initialize()      {}
func (e *fakeAmountEngine) T() float64       { return e.t }
func (e *fakeAmountEngine) NextTime() float64 { return e.t + e.dt }

func (e *fakeAmountEngine) Step() {
	e.t += e.dt
	e.values[e.product]++
	e.last = []ReactionRecord{{Info: ReactionInfo{T: e.t, Products: []Molecule{{Species: e.product}}}}}
}

func (e *fakeAmountEngine) StepUpto(t float64) {
	e.t = t
}

func (e *fakeAmountEngine) LastReactions() []ReactionRecord { return e.last }
func (e *fakeAmountEngine) World() any                      { return e }

func (e *fakeAmountEngine) GetValueExact(sp SpeciesID) float64 { return e.values[sp] }
func (e *fakeAmountEngine) SetValue(sp SpeciesID, value float64) { e.values[sp] = value }
func (e *fakeAmountEngine) AddMolecules(sp SpeciesID, n int)     { e.values[sp] += float64(n) }
func (e *fakeAmountEngine) RemoveMolecules(sp SpeciesID, n int) {
	e.values[sp] -= float64(n)
	if e.values[sp] < 0 {
		e.values[sp] = 0
	}
}
func (e *fakeAmountEngine) ListSpecies() []SpeciesID {
	out := make([]SpeciesID, 0, len(e.values))
	for sp := range e.values {
		out = append(out, sp)
	}
	return out
}

func TestCoordinator_InitializeRejectsDoubleOwnership(t *testing.T) {
	spA := Intern("coord_dup_a")
	c := NewCoordinator(1, nil)

	e1 := NewWellMixedEvent(newFakeAmountEngine(WellMixed, 1, spA))
	e1.Own(spA)
	e2 := NewWellMixedEvent(newFakeAmountEngine(WellMixed, 1, spA))
	e2.Own(spA)
	c.AddEvent(e1)
	c.AddEvent(e2)

	if err := c.Initialize(); err == nil {
		t.Fatalf("expected an ownership error when two events own the same species")
	}
}

func TestCoordinator_StepAdvancesTimeAndFiresWinner(t *testing.T) {
	spA := Intern("coord_step_a")
	c := NewCoordinator(1, nil)

	e1 := NewWellMixedEvent(newFakeAmountEngine(WellMixed, 1, spA))
	e1.Own(spA)
	c.AddEvent(e1)
	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	fired, err := c.Step(100)
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if !fired {
		t.Fatalf("expected a native step to fire")
	}
	if c.T() != 1 {
		t.Fatalf("expected t=1 after one step, got %g", c.T())
	}
	if c.LastEvent() != e1 {
		t.Fatalf("expected e1 to be the last winning event")
	}
}

func TestCoordinator_StepFastForwardsWithoutFiringPastDeadline(t *testing.T) {
	spA := Intern("coord_ff_a")
	c := NewCoordinator(1, nil)

	e1 := NewWellMixedEvent(newFakeAmountEngine(WellMixed, 10, spA))
	e1.Own(spA)
	c.AddEvent(e1)
	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	fired, err := c.Step(5)
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if fired {
		t.Fatalf("expected no native step to fire when the deadline precedes NextTime")
	}
	if c.T() != 5 {
		t.Fatalf("expected t to fast-forward to the deadline 5, got %g", c.T())
	}
}

func TestCoordinator_GetNextEventBreaksTiesByInsertionOrder(t *testing.T) {
	spA := Intern("coord_tie_a")
	spB := Intern("coord_tie_b")
	c := NewCoordinator(1, nil)

	first := NewWellMixedEvent(newFakeAmountEngine(WellMixed, 1, spA))
	first.Own(spA)
	second := NewWellMixedEvent(newFakeAmountEngine(WellMixed, 1, spB))
	second.Own(spB)
	c.AddEvent(first)
	c.AddEvent(second)

	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if _, err := c.Step(100); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if c.LastEvent() != first {
		t.Fatalf("expected the first-inserted event to win a simultaneous NextTime tie")
	}
}

func TestCoordinator_BorrowMirrorsOwnerValueAfterInterrupt(t *testing.T) {
	spA := Intern("coord_borrow_src")
	spB := Intern("coord_borrow_dst")
	spW := Intern("coord_borrow_watcher")
	c := NewCoordinator(1, nil)

	owner := NewWellMixedEvent(newFakeAmountEngine(WellMixed, 1, spA))
	owner.Own(spA)

	watcher := NewWellMixedEvent(newFakeAmountEngine(WellMixed, 1000, spW))
	watcher.Own(spW)
	if err := watcher.Borrow(spA, spB); err != nil {
		t.Fatalf("Borrow failed: %v", err)
	}

	c.AddEvent(owner)
	c.AddEvent(watcher)
	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if _, err := c.Step(100); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	ownerVal, _ := c.GetValue(spA)
	watcherVal := watcher.World().(AmountWorld).GetValueExact(spB)
	if ownerVal != watcherVal {
		t.Fatalf("expected borrowed species to mirror owner's value, owner=%g watcher=%g", ownerVal, watcherVal)
	}
}

func TestCoordinator_DeterministicAcrossIdenticalSeeds(t *testing.T) {
	build := func() *Coordinator {
		spA := Intern("coord_det_a")
		spB := Intern("coord_det_b")
		c := NewCoordinator(7, nil)
		e1 := NewWellMixedEvent(newFakeAmountEngine(WellMixed, 1, spA))
		e1.Own(spA)
		e2 := NewWellMixedEvent(newFakeAmountEngine(WellMixed, 2, spB))
		e2.Own(spB)
		c.AddEvent(e1)
		c.AddEvent(e2)
		if err := c.Initialize(); err != nil {
			t.Fatalf("Initialize failed: %v", err)
		}
		return c
	}

	c1 := build()
	c2 := build()

	for i := 0; i < 5; i++ {
		f1, err1 := c1.Step(1000)
		f2, err2 := c2.Step(1000)
		if err1 != nil || err2 != nil {
			t.Fatalf("Step failed: %v / %v", err1, err2)
		}
		if f1 != f2 || c1.T() != c2.T() {
			t.Fatalf("replay mismatch at step %d: fired=%v/%v t=%g/%g", i, f1, f2, c1.T(), c2.T())
		}
	}
}
