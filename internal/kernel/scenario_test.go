package kernel_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/daniacca/hybridchem/internal/demoengines"
	"github.com/daniacca/hybridchem/internal/kernel"
)

// runToDeadline drives c with repeated Step(deadline) calls, invoking check
// after every call (fired or not) until c.T() reaches deadline.
func runToDeadline(t *testing.T, c *kernel.Coordinator, deadline float64, check func()) {
	t.Helper()
	for c.T() < deadline {
		if _, err := c.Step(deadline); err != nil {
			t.Fatalf("Step failed: %v", err)
		}
		check()
	}
}

// TestScenario_SingleEngineSanity is S1: one WELLMIXED event owns {A1,A2},
// rules A1<->A2 at equal rates. Total population must stay exactly constant.
func TestScenario_SingleEngineSanity(t *testing.T) {
	a1, a2 := kernel.Intern("s1_a1"), kernel.Intern("s1_a2")
	rng := rand.New(rand.NewSource(0))

	engine := demoengines.NewWellMixed(rng, map[kernel.SpeciesID]int{a1: 240}, []demoengines.ConversionRule{
		{Reactant: a1, Product: a2, Rate: 1.0},
		{Reactant: a2, Product: a1, Rate: 1.0},
	})
	ev := kernel.NewWellMixedEvent(engine)
	ev.Own(a1, a2)

	c := kernel.NewCoordinator(0, nil)
	c.AddEvent(ev)
	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	runToDeadline(t, c, 3.0, func() {
		va, _ := c.GetValue(a1)
		vb, _ := c.GetValue(a2)
		if va+vb != 240 {
			t.Fatalf("conservation violated: A1+A2 = %g, want 240", va+vb)
		}
	})
}

// TestScenario_TwoEngineExchange is S2: WELLMIXED owns {A1,A2}, CONTINUOUS
// owns {E1,E2}; A1<->E1 exchange is split across the two engines' own rule
// tables (the WELLMIXED side converts A1->E1, the CONTINUOUS side fluxes
// E1->A1), since each engine only ever evaluates its own local network.
// Total mass across all four species must stay within one molecule of the
// starting amount at every log point (the CONTINUOUS/discrete boundary
// always carries at most one molecule of fractional slack).
func TestScenario_TwoEngineExchange(t *testing.T) {
	a1, a2 := kernel.Intern("s2_a1"), kernel.Intern("s2_a2")
	e1, e2 := kernel.Intern("s2_e1"), kernel.Intern("s2_e2")
	rng := rand.New(rand.NewSource(0))

	wm := demoengines.NewWellMixed(rng, map[kernel.SpeciesID]int{a1: 120}, []demoengines.ConversionRule{
		{Reactant: a1, Product: e1, Rate: 1.0},
	})
	wmEvent := kernel.NewWellMixedEvent(wm)
	wmEvent.Own(a1, a2)

	cont := demoengines.NewContinuous(map[kernel.SpeciesID]float64{}, []demoengines.ConversionRule{
		{Reactant: e1, Product: a1, Rate: 1.0},
	})
	contEvent := kernel.NewContinuousEvent(cont, 0, 0.01)
	contEvent.Own(e1, e2)

	c := kernel.NewCoordinator(0, nil)
	c.AddEvent(wmEvent)
	c.AddEvent(contEvent)
	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	runToDeadline(t, c, 5.0, func() {
		va, _ := c.GetValue(a1)
		vb, _ := c.GetValue(a2)
		ve1, _ := c.GetValue(e1)
		ve2, _ := c.GetValue(e2)
		total := va + vb + ve1 + ve2
		if math.Abs(total-120) > 1.0 {
			t.Fatalf("conservation violated: A1+A2+E1+E2 = %g, want 120 +/- 1", total)
		}
	})
}

// TestScenario_FourEngineQuartet is S3: one species pair per engine kind
// (WELLMIXED, SUBVOLUME, LATTICE, PARTICLE), wired in a ring so that each
// of the ring's four Translator kind-pair transitions gets exercised:
// WELLMIXED->SUBVOLUME->LATTICE->PARTICLE->WELLMIXED. Total mass
// across all eight species must stay exactly constant (every hop moves
// exactly one whole molecule), and every engine must eventually fire.
func TestScenario_FourEngineQuartet(t *testing.T) {
	w1, w2 := kernel.Intern("s3_w1"), kernel.Intern("s3_w2")
	s1, s2 := kernel.Intern("s3_s1"), kernel.Intern("s3_s2")
	l1, l2 := kernel.Intern("s3_l1"), kernel.Intern("s3_l2")
	p1, p2 := kernel.Intern("s3_p1"), kernel.Intern("s3_p2")

	edge := kernel.Vec3{X: 1, Y: 1, Z: 1}

	wm := demoengines.NewWellMixed(rand.New(rand.NewSource(1)), map[kernel.SpeciesID]int{w1: 24}, []demoengines.ConversionRule{
		{Reactant: w1, Product: s1, Rate: 1.0},
	})
	wmEvent := kernel.NewWellMixedEvent(wm)
	wmEvent.Own(w1, w2)

	sv := demoengines.NewSubvolume(rand.New(rand.NewSource(2)), 9, edge, nil, []demoengines.ConversionRule{
		{Reactant: s1, Product: l1, Rate: 1.0},
	}, nil, 0)
	svEvent := kernel.NewSubvolumeEvent(sv)
	svEvent.Own(s1, s2)

	lt := demoengines.NewLattice(rand.New(rand.NewSource(3)), 4, edge, nil, []demoengines.ConversionRule{
		{Reactant: l1, Product: p1, Rate: 1.0},
	}, nil, 0)
	ltEvent := kernel.NewLatticeEvent(lt)
	ltEvent.Own(l1, l2)

	pt := demoengines.NewParticleEngine(rand.New(rand.NewSource(4)), kernel.Vec3{X: 4, Y: 4, Z: 4}, nil, []demoengines.ConversionRule{
		{Reactant: p1, Product: w1, Rate: 1.0},
	}, nil, 0, 0, 0.1, 1.0)
	ptEvent := kernel.NewParticleEvent(pt)
	ptEvent.Own(p1, p2)

	c := kernel.NewCoordinator(0, nil)
	c.AddEvent(wmEvent)
	c.AddEvent(svEvent)
	c.AddEvent(ltEvent)
	c.AddEvent(ptEvent)
	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	species := []kernel.SpeciesID{w1, w2, s1, s2, l1, l2, p1, p2}
	runToDeadline(t, c, 3.0, func() {
		total := 0.0
		for _, sp := range species {
			v, _ := c.GetValue(sp)
			total += v
		}
		if total != 24 {
			t.Fatalf("conservation violated across the quartet: total = %g, want 24", total)
		}
	})

	for _, e := range c.Events() {
		if e.NumSteps() == 0 {
			t.Fatalf("expected every engine in the quartet to fire at least once, kind=%s had 0 steps", e.Kind())
		}
	}
}

// TestScenario_BorrowMirroring is S4: a WELLMIXED event borrows a read-only
// mirror of a CONTINUOUS-owned species. At every log point the mirrored
// value must equal the owner's value.
func TestScenario_BorrowMirroring(t *testing.T) {
	a1, a2 := kernel.Intern("s4_a1"), kernel.Intern("s4_a2")
	b1, b2, b3 := kernel.Intern("s4_b1"), kernel.Intern("s4_b2"), kernel.Intern("s4_b3")
	b2Mirror := kernel.Intern("s4_b2_mirror")

	wm := demoengines.NewWellMixed(rand.New(rand.NewSource(5)), map[kernel.SpeciesID]int{a1: 60}, []demoengines.ConversionRule{
		{Reactant: a1, Product: a2, Rate: 1.0 / 30},
	})
	wmEvent := kernel.NewWellMixedEvent(wm)
	wmEvent.Own(a1, a2)
	if err := wmEvent.Borrow(b2, b2Mirror); err != nil {
		t.Fatalf("Borrow failed: %v", err)
	}

	cont := demoengines.NewContinuous(map[kernel.SpeciesID]float64{b1: 60}, []demoengines.ConversionRule{
		{Reactant: b1, Product: b2, Rate: 1.0 / 30},
	})
	contEvent := kernel.NewContinuousEvent(cont, 0, 0.01)
	contEvent.Own(b1, b2, b3)

	c := kernel.NewCoordinator(0, nil)
	c.AddEvent(wmEvent)
	c.AddEvent(contEvent)
	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	mirrorOf := func(ev kernel.Event, sp kernel.SpeciesID) float64 {
		world, ok := ev.World().(kernel.AmountWorld)
		if !ok {
			t.Fatalf("expected an AmountWorld")
		}
		return world.GetValueExact(sp)
	}

	runToDeadline(t, c, 3.0, func() {
		mirrored := mirrorOf(wmEvent, b2Mirror)
		owner := mirrorOf(contEvent, b2)
		if mirrored != owner {
			t.Fatalf("borrow mirroring violated: wellmixed.B2_ = %g, continuous.B2 = %g", mirrored, owner)
		}
	})
}

// TestScenario_Deadline is S5: Step(upto) returning false must leave every
// engine's own clock at exactly upto.
func TestScenario_Deadline(t *testing.T) {
	a1 := kernel.Intern("s5_a1")
	wm := demoengines.NewWellMixed(rand.New(rand.NewSource(6)), map[kernel.SpeciesID]int{a1: 5}, nil)
	ev := kernel.NewWellMixedEvent(wm)
	ev.Own(a1)

	c := kernel.NewCoordinator(0, nil)
	c.AddEvent(ev)
	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	fired, err := c.Step(1000)
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if fired {
		t.Fatalf("expected no native step to fire with an empty rule table")
	}
	if c.T() != 1000 || ev.T() != 1000 {
		t.Fatalf("expected coordinator and engine both at t=1000, got c.T()=%g ev.T()=%g", c.T(), ev.T())
	}
}

// TestScenario_DeterminismReplay is S6: running the quartet topology twice
// from the same seed must produce byte-identical time/population traces.
func TestScenario_DeterminismReplay(t *testing.T) {
	build := func() (*kernel.Coordinator, []kernel.SpeciesID) {
		w1 := kernel.Intern("s6_w1")
		s1 := kernel.Intern("s6_s1")
		l1 := kernel.Intern("s6_l1")
		p1 := kernel.Intern("s6_p1")
		edge := kernel.Vec3{X: 1, Y: 1, Z: 1}

		wm := demoengines.NewWellMixed(rand.New(rand.NewSource(0)), map[kernel.SpeciesID]int{w1: 16}, []demoengines.ConversionRule{
			{Reactant: w1, Product: s1, Rate: 1.0},
		})
		wmEvent := kernel.NewWellMixedEvent(wm)
		wmEvent.Own(w1)

		sv := demoengines.NewSubvolume(rand.New(rand.NewSource(0)), 9, edge, nil, []demoengines.ConversionRule{
			{Reactant: s1, Product: l1, Rate: 1.0},
		}, nil, 0)
		svEvent := kernel.NewSubvolumeEvent(sv)
		svEvent.Own(s1)

		lt := demoengines.NewLattice(rand.New(rand.NewSource(0)), 4, edge, nil, []demoengines.ConversionRule{
			{Reactant: l1, Product: p1, Rate: 1.0},
		}, nil, 0)
		ltEvent := kernel.NewLatticeEvent(lt)
		ltEvent.Own(l1)

		pt := demoengines.NewParticleEngine(rand.New(rand.NewSource(0)), kernel.Vec3{X: 4, Y: 4, Z: 4}, nil, []demoengines.ConversionRule{
			{Reactant: p1, Product: w1, Rate: 1.0},
		}, nil, 0, 0, 0.1, 1.0)
		ptEvent := kernel.NewParticleEvent(pt)
		ptEvent.Own(p1)

		c := kernel.NewCoordinator(0, nil)
		c.AddEvent(wmEvent)
		c.AddEvent(svEvent)
		c.AddEvent(ltEvent)
		c.AddEvent(ptEvent)
		if err := c.Initialize(); err != nil {
			t.Fatalf("Initialize failed: %v", err)
		}
		return c, []kernel.SpeciesID{w1, s1, l1, p1}
	}

	c1, species := build()
	c2, _ := build()

	for i := 0; i < 50; i++ {
		f1, err1 := c1.Step(3.0)
		f2, err2 := c2.Step(3.0)
		if err1 != nil || err2 != nil {
			t.Fatalf("Step failed: %v / %v", err1, err2)
		}
		if f1 != f2 || c1.T() != c2.T() {
			t.Fatalf("replay mismatch at step %d: fired=%v/%v t=%g/%g", i, f1, f2, c1.T(), c2.T())
		}
		for _, sp := range species {
			v1, _ := c1.GetValue(sp)
			v2, _ := c2.GetValue(sp)
			if v1 != v2 {
				t.Fatalf("replay mismatch at step %d for species %v: %g != %g", i, sp, v1, v2)
			}
		}
	}
}
