package kernel

import (
	"fmt"
	"math/rand"
)

// subvolumeEvent wraps a SUBVOLUME (reaction-diffusion master equation)
// engine: species counts are scoped to an integer grid cell (spec §4.4).
type subvolumeEvent struct {
	discreteEvent
}

// NewSubvolumeEvent builds the Event for a SUBVOLUME engine handle.
func NewSubvolumeEvent(handle DiscreteEngineHandle) Event {
	return &subvolumeEvent{discreteEvent: newDiscreteEvent(handle)}
}

func (e *subvolumeEvent) sync(logger Logger) error {
	world, ok := e.World().(SubvolumeWorld)
	if !ok {
		return nil
	}
	dirty := false
	for _, rec := range e.handle.LastReactions() {
		for _, p := range rec.Info.Products {
			if e.Owns(p.Species) {
				continue
			}
			world.RemoveMolecules(p.Species, 1, p.SubvolumeCoord)
			dirty = true
		}
	}
	if dirty {
		e.engine.Initialize()
	}
	return nil
}

func (e *subvolumeEvent) applyIncoming(t float64, ri ReactionInfo) (bool, error) {
	world, ok := e.World().(SubvolumeWorld)
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
		return false, fmt.Errorf("subvolume event: failed to advance to %g: %w", t, ErrSchedulingViolation)
	}
	for _, m := range owned {
		world.AddMolecules(m.Species, 1, m.SubvolumeCoord)
	}
	return true, nil
}

func (e *subvolumeEvent) interrupt(t float64, winner Event, fallbackRNG *rand.Rand, logger Logger) (bool, error) {
	return genericInterrupt(&e.baseEvent, e.applyIncoming, t, winner, fallbackRNG, logger)
}
