package kernel

import (
	"fmt"
	"math/rand"
)

// latticeEvent wraps a LATTICE (spatiocyte-like) engine: at most one
// particle per voxel, addressed by an integer lattice coordinate (spec
// §4.4).
type latticeEvent struct {
	discreteEvent
}

// NewLatticeEvent builds the Event for a LATTICE engine handle.
func NewLatticeEvent(handle DiscreteEngineHandle) Event {
	return &latticeEvent{discreteEvent: newDiscreteEvent(handle)}
}

func (e *latticeEvent) sync(logger Logger) error {
	world, ok := e.World().(LatticeWorld)
	if !ok {
		return nil
	}
	dirty := false
	for _, rec := range e.handle.LastReactions() {
		for _, p := range rec.Info.Products {
			if e.Owns(p.Species) {
				continue
			}
			world.RemoveVoxel(p.ParticleID)
			dirty = true
		}
	}
	if dirty {
		e.engine.Initialize()
	}
	return nil
}

func (e *latticeEvent) applyIncoming(t float64, ri ReactionInfo) (bool, error) {
	world, ok := e.World().(LatticeWorld)
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
		return false, fmt.Errorf("lattice event: failed to advance to %g: %w", t, ErrSchedulingViolation)
	}
	for _, m := range owned {
		world.NewVoxel(m.Species, m.LatticeCoord)
	}
	return true, nil
}

func (e *latticeEvent) interrupt(t float64, winner Event, fallbackRNG *rand.Rand, logger Logger) (bool, error) {
	return genericInterrupt(&e.baseEvent, e.applyIncoming, t, winner, fallbackRNG, logger)
}
