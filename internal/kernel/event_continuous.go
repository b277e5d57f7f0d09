package kernel

import "math/rand"

// continuousEvent wraps a CONTINUOUS (ODE) engine. Its native "step" is a
// fixed-width advance to t0+dt*(numSteps+1) (spec §4.6), not an
// engine-chosen NextTime, so it does not embed discreteEvent.
//
// Reactions crossing engine boundaries do not exist natively in a
// continuous, population-as-real-number world: generateReactions
// synthesizes one ReactionRecord per whole molecule that the species this
// event does not own have accumulated since the last sync, mirroring the
// original generate_reactions scan-every-step behavior rather than
// tracking deltas incrementally.
type continuousEvent struct {
	baseEvent
	t0, dt    float64
	synthetic []ReactionRecord
}

func newContinuousEvent(engine EngineHandle, t0, dt float64) *continuousEvent {
	return &continuousEvent{
		baseEvent: newBaseEvent(engine),
		t0:        t0,
		dt:        dt,
	}
}

func (e *continuousEvent) NextTime() float64 {
	return e.t0 + e.dt*float64(e.numSteps+1)
}

func (e *continuousEvent) step() {
	target := e.NextTime()
	e.engine.StepUpto(target)
	e.numSteps++
	e.synthetic = e.generateReactions()
}

func (e *continuousEvent) Updated() bool {
	return len(e.synthetic) > 0
}

func (e *continuousEvent) translateFor(peerKind EngineKind, peerWorld any, fallbackRNG *rand.Rand, logger Logger) ([]ReactionInfo, error) {
	return e.translateRecords(e.synthetic, peerKind, peerWorld, fallbackRNG, logger)
}

// generateReactions scans every species' current continuous value and
// emits one synthetic ReactionRecord per whole molecule accumulated in a
// species this event does not own, exactly as the original
// ODEEvent.generate_reactions re-scans world().list_species() on every
// step, skips its own owned species, and exports whole-molecule buildup
// of the rest rather than diffing against a cached baseline. The
// continuous engine integrates the full network but is only authoritative
// over its owned species; everything else is peer-owned and must be
// handed off once a whole molecule has accumulated.
func (e *continuousEvent) generateReactions() []ReactionRecord {
	world, ok := e.World().(AmountWorld)
	if !ok {
		return nil
	}
	t := e.engine.T()
	var out []ReactionRecord
	for _, sp := range world.ListSpecies() {
		if e.Owns(sp) {
			continue
		}
		n := int(world.GetValueExact(sp))
		for i := 0; i < n; i++ {
			out = append(out, ReactionRecord{
				Info: ReactionInfo{T: t, Products: []Molecule{{Species: sp}}},
			})
		}
	}
	return out
}

// sync implements the subtract-floor half of §4.6: every whole molecule
// just exported via generateReactions is removed from the non-owned
// species' continuous value, leaving only the fractional remainder, so
// the next step's scan does not re-export molecules already handed off
// to peers. Owned species are never touched here — they are the engine's
// own authoritative population.
func (e *continuousEvent) sync(logger Logger) error {
	if len(e.synthetic) == 0 {
		return nil
	}
	world, ok := e.World().(AmountWorld)
	if !ok {
		return nil
	}
	counts := make(map[SpeciesID]int)
	for _, rec := range e.synthetic {
		for _, p := range rec.Info.Products {
			counts[p.Species]++
		}
	}
	for sp, n := range counts {
		if n > 0 {
			world.RemoveMolecules(sp, n)
		}
	}
	e.engine.Initialize()
	return nil
}

// interrupt implements the non-winner half for a CONTINUOUS peer:
// borrow mirroring, then add exactly one molecule of amount per
// translated product (spec's "add-1-exactly" rule — a continuous world
// absorbs an incoming discrete molecule as a unit increment).
func (e *continuousEvent) interrupt(t float64, winner Event, fallbackRNG *rand.Rand, logger Logger) (bool, error) {
	return genericInterrupt(&e.baseEvent, e.applyIncoming, t, winner, fallbackRNG, logger)
}

func (e *continuousEvent) applyIncoming(t float64, ri ReactionInfo) (bool, error) {
	world, ok := e.World().(AmountWorld)
	if !ok {
		return false, nil
	}
	changed := false
	for _, p := range ri.Products {
		if !e.Owns(p.Species) {
			continue
		}
		world.AddMolecules(p.Species, 1)
		changed = true
	}
	return changed, nil
}
