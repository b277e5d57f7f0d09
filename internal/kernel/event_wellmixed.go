package kernel

import (
	"fmt"
	"math/rand"
)

// wellMixedEvent wraps a WELLMIXED (Gillespie) engine: species are tracked
// as plain integer counts, no geometry (spec §4.4).
type wellMixedEvent struct {
	discreteEvent
}

// NewWellMixedEvent builds the Event for a WELLMIXED engine handle.
func NewWellMixedEvent(handle DiscreteEngineHandle) Event {
	return &wellMixedEvent{discreteEvent: newDiscreteEvent(handle)}
}

func (e *wellMixedEvent) sync(logger Logger) error {
	world, ok := e.World().(AmountWorld)
	if !ok {
		return nil
	}
	dirty := false
	for _, rec := range e.handle.LastReactions() {
		for _, p := range rec.Info.Products {
			if e.Owns(p.Species) {
				continue
			}
			world.RemoveMolecules(p.Species, 1)
			dirty = true
		}
	}
	if dirty {
		e.engine.Initialize()
	}
	return nil
}

func (e *wellMixedEvent) applyIncoming(t float64, ri ReactionInfo) (bool, error) {
	world, ok := e.World().(AmountWorld)
	if !ok {
		return false, nil
	}
	owned := make([]SpeciesID, 0, len(ri.Products))
	for _, p := range ri.Products {
		if e.Owns(p.Species) {
			owned = append(owned, p.Species)
		}
	}
	if len(owned) == 0 {
		return false, nil
	}
	e.engine.StepUpto(t)
	if e.engine.T() != t {
		return false, fmt.Errorf("wellmixed event: failed to advance to %g: %w", t, ErrSchedulingViolation)
	}
	for _, sp := range owned {
		world.AddMolecules(sp, 1)
	}
	return true, nil
}

func (e *wellMixedEvent) interrupt(t float64, winner Event, fallbackRNG *rand.Rand, logger Logger) (bool, error) {
	return genericInterrupt(&e.baseEvent, e.applyIncoming, t, winner, fallbackRNG, logger)
}
