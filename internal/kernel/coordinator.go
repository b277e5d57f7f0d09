package kernel

import (
	"fmt"
	"math"
	"math/rand"
)

// Coordinator interleaves next-events across a fixed set of Events,
// translating and transferring reactions across engine-ownership
// boundaries (spec §6). Reproducibility (spec §5) depends only on the
// master seed passed to NewCoordinator and the order Events were added —
// never on wall-clock time or goroutine scheduling.
type Coordinator struct {
	events    []Event
	rng       *rand.Rand
	logger    Logger
	t         float64
	numSteps  int
	lastEvent Event
	init      bool
}

// NewCoordinator builds an empty Coordinator seeded for deterministic
// replay. A nil logger is replaced with NoOpLogger.
func NewCoordinator(seed int64, logger Logger) *Coordinator {
	if logger == nil {
		logger = NewNoOpLogger()
	}
	return &Coordinator{
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger,
	}
}

// AddEvent registers e with the Coordinator. Events must be added before
// Initialize; insertion order is the tie-break for simultaneous
// NextTime() values (spec §6).
func (c *Coordinator) AddEvent(e Event) {
	c.events = append(c.events, e)
}

// Events returns the Coordinator's Events in insertion order.
func (c *Coordinator) Events() []Event {
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// LastEvent returns the Event that won the most recent Step, or nil if no
// step has fired yet.
func (c *Coordinator) LastEvent() Event {
	return c.lastEvent
}

// NumSteps returns the number of Step calls that advanced an Event (fired
// a native step), not counting pure fast-forwards.
func (c *Coordinator) NumSteps() int {
	return c.numSteps
}

// T returns the Coordinator's current simulated time: the time of the
// most recent fired step, or the most recent fast-forward deadline.
func (c *Coordinator) T() float64 {
	return c.t
}

// Initialize validates species-ownership uniqueness across all registered
// Events (spec §4.2 invariant: a species is owned by at most one Event)
// and primes every Event's underlying engine.
func (c *Coordinator) Initialize() error {
	if err := c.validateOwnership(); err != nil {
		return err
	}
	for _, e := range c.events {
		e.initializeEngine()
	}
	c.init = true
	return nil
}

func (c *Coordinator) validateOwnership() error {
	owner := make(map[SpeciesID]Event)
	var violation *OwnershipError
	for _, e := range c.events {
		for sp := range ownedSpeciesOf(e) {
			if prev, ok := owner[sp]; ok && prev != e {
				if violation == nil {
					violation = &OwnershipError{}
				}
				violation.add("species %q owned by both a %s and a %s event", sp, prev.Kind(), e.Kind())
				continue
			}
			owner[sp] = e
		}
	}
	if violation != nil {
		return violation
	}
	return nil
}

// ownedSpeciesOf reaches into e's owned set. Every concrete Event embeds
// baseEvent, so this type-switch covers the full closed set of variants
// rather than requiring a public accessor on the Event interface.
func ownedSpeciesOf(e Event) map[SpeciesID]struct{} {
	switch v := e.(type) {
	case *wellMixedEvent:
		return v.owned
	case *subvolumeEvent:
		return v.owned
	case *latticeEvent:
		return v.owned
	case *particleEvent:
		return v.owned
	case *continuousEvent:
		return v.owned
	default:
		return nil
	}
}

// GetValue reports sp's population according to whichever Event owns it.
// The second return is false if no registered Event owns sp.
func (c *Coordinator) GetValue(sp SpeciesID) (float64, bool) {
	for _, e := range c.events {
		if e.Owns(sp) {
			return valueOf(e.World(), sp), true
		}
	}
	return 0, false
}

// Step advances the simulation by exactly one global event, unless doing
// so would pass upto, in which case every Event is fast-forwarded to upto
// instead and no native step fires (spec §4.2's deadline-based
// step(upto)). The bool return reports whether a native step fired.
func (c *Coordinator) Step(upto float64) (bool, error) {
	if !c.init {
		return false, fmt.Errorf("coordinator: Step called before Initialize: %w", ErrSchedulingViolation)
	}
	winner := c.getNextEvent()
	if winner == nil {
		return false, nil
	}

	if winner.NextTime() > upto {
		for _, e := range c.events {
			e.forceStepUpto(upto)
		}
		c.t = upto
		return false, nil
	}

	winner.step()

	t := winner.T()
	if err := c.interruptAll(t, winner); err != nil {
		return false, err
	}

	if err := winner.sync(c.logger); err != nil {
		return false, err
	}

	c.t = t
	c.lastEvent = winner
	c.numSteps++
	return true, nil
}

// getNextEvent picks the Event with the smallest NextTime(), breaking ties
// by insertion order (the first minimal Event encountered wins, since
// later ties fail the strict less-than).
func (c *Coordinator) getNextEvent() Event {
	var winner Event
	best := math.Inf(1)
	for _, e := range c.events {
		nt := e.NextTime()
		if winner == nil || nt < best {
			best = nt
			winner = e
		}
	}
	return winner
}

// interruptAll propagates winner's effects to every other Event, then
// keeps propagating any Event that itself changed as a result, until a
// round produces no further change. Bounded by len(events) rounds: each
// round either narrows the active set or terminates, so this always
// halts even if two Events' borrows form a cycle.
func (c *Coordinator) interruptAll(t float64, winner Event) error {
	active := []Event{winner}
	processed := map[Event]bool{winner: true}

	for round := 0; round < len(c.events) && len(active) > 0; round++ {
		var next []Event
		for _, e := range c.events {
			if e == winner {
				continue
			}
			changed := false
			for _, a := range active {
				if a == e {
					continue
				}
				ch, err := e.interrupt(t, a, c.rng, c.logger)
				if err != nil {
					return err
				}
				if ch {
					changed = true
				}
			}
			if changed && !processed[e] {
				next = append(next, e)
			}
		}
		for _, e := range next {
			processed[e] = true
		}
		active = next
	}
	return nil
}
