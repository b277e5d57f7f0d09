package kernel

import "fmt"

// NewEvent builds the Event for a discrete-kind (WELLMIXED, SUBVOLUME,
// LATTICE, PARTICLE) engine handle, dispatching on Kind() rather than a
// type switch on the concrete engine type (spec §9: a closed tagged union
// over EngineKind, not open-ended isinstance-style branching). CONTINUOUS
// engines need a (t0, dt) schedule and are built with NewContinuousEvent
// instead.
func NewEvent(handle EngineHandle) (Event, error) {
	dh, ok := handle.(DiscreteEngineHandle)
	if !ok {
		return nil, fmt.Errorf("new event for %s: engine does not implement DiscreteEngineHandle: %w", handle.Kind(), ErrUnknownEngineKind)
	}
	switch handle.Kind() {
	case WellMixed:
		return NewWellMixedEvent(dh), nil
	case Subvolume:
		return NewSubvolumeEvent(dh), nil
	case Lattice:
		return NewLatticeEvent(dh), nil
	case Particle:
		return NewParticleEvent(dh), nil
	case Continuous:
		return nil, fmt.Errorf("new event: CONTINUOUS engines must use NewContinuousEvent: %w", ErrUnknownEngineKind)
	default:
		return nil, fmt.Errorf("new event: %w", ErrUnknownEngineKind)
	}
}

// NewContinuousEvent builds the Event for a CONTINUOUS (ODE) engine handle,
// on a fixed step schedule t0, t0+dt, t0+2dt, ...
func NewContinuousEvent(handle EngineHandle, t0, dt float64) Event {
	return newContinuousEvent(handle, t0, dt)
}
