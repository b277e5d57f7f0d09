package kernel

import (
	"fmt"
	"math/rand"
)

// particleEvent wraps a PARTICLE (Brownian dynamics / EGFRD-like) engine:
// off-lattice particles positioned in continuous 3-space (spec §4.4).
type particleEvent struct {
	discreteEvent
}

// NewParticleEvent builds the Event for a PARTICLE engine handle.
func NewParticleEvent(handle DiscreteEngineHandle) Event {
	return &particleEvent{discreteEvent: newDiscreteEvent(handle)}
}

func (e *particleEvent) sync(logger Logger) error {
	world, ok := e.World().(ParticleWorld)
	if !ok {
		return nil
	}
	dirty := false
	for _, rec := range e.handle.LastReactions() {
		for _, p := range rec.Info.Products {
			if e.Owns(p.Species) {
				continue
			}
			world.RemoveParticle(p.ParticleID)
			dirty = true
		}
	}
	if dirty {
		e.engine.Initialize()
	}
	return nil
}

func (e *particleEvent) applyIncoming(t float64, ri ReactionInfo) (bool, error) {
	world, ok := e.World().(ParticleWorld)
	if !ok {
		return false, nil
	}
	owned := make([]Molecule, 0, len(ri.Products))
	for _, p := range ri.Products {
		if e.Owns(p.Species) {
			owned = append(owned, p)
		}
	}
	if len(owned) == 0 {
		return false, nil
	}
	e.engine.StepUpto(t)
	if e.engine.T() != t {
		return false, fmt.Errorf("particle event: failed to advance to %g: %w", t, ErrSchedulingViolation)
	}
	for _, m := range owned {
		world.NewParticle(m.Species, m.Position)
	}
	return true, nil
}

func (e *particleEvent) interrupt(t float64, winner Event, fallbackRNG *rand.Rand, logger Logger) (bool, error) {
	return genericInterrupt(&e.baseEvent, e.applyIncoming, t, winner, fallbackRNG, logger)
}
