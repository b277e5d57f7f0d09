package kernel

import "math/rand"

// discreteEvent is the shared base for the four Event variants wrapping a
// DiscreteEngineHandle (WELLMIXED, SUBVOLUME, LATTICE, PARTICLE): the
// native step is a single reaction event, and the engine itself picks
// NextTime (spec §4.2).
type discreteEvent struct {
	baseEvent
	handle DiscreteEngineHandle
}

func newDiscreteEvent(handle DiscreteEngineHandle) discreteEvent {
	return discreteEvent{
		baseEvent: newBaseEvent(handle),
		handle:    handle,
	}
}

func (e *discreteEvent) NextTime() float64 {
	return e.handle.NextTime()
}

func (e *discreteEvent) step() {
	e.handle.Step()
	e.numSteps++
}

func (e *discreteEvent) Updated() bool {
	return len(e.handle.LastReactions()) > 0
}

func (e *discreteEvent) translateFor(peerKind EngineKind, peerWorld any, fallbackRNG *rand.Rand, logger Logger) ([]ReactionInfo, error) {
	return e.translateRecords(e.handle.LastReactions(), peerKind, peerWorld, fallbackRNG, logger)
}
