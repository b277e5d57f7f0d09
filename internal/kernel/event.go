package kernel

import (
	"errors"
	"fmt"
	"math/rand"
)

// Event is the scheduler-facing adapter around one EngineHandle (spec §4.2,
// §6). The exported methods are the embedder-facing surface; the
// unexported ones are the Coordinator's internal mechanics and are never
// meant to be called directly by embedding code — drive the simulation
// through Coordinator.Step instead.
type Event interface {
	// Own registers that this Event authoritatively tracks the given
	// species (set semantics).
	Own(species ...SpeciesID)

	// OwnNames is Own, but taking plain strings — interned on the way in.
	OwnNames(names ...string)

	// Borrow declares that this Event's engine should mirror a read-only
	// view of peer-owned species src under the local name dst. Returns
	// ErrOwnershipViolation if dst is already owned locally.
	Borrow(src, dst SpeciesID) error

	// Owns reports whether sp is in this Event's owned set.
	Owns(sp SpeciesID) bool

	// BorrowSrc returns the peer species a local dst species mirrors, if
	// dst was declared via Borrow.
	BorrowSrc(dst SpeciesID) (SpeciesID, bool)

	Kind() EngineKind
	T() float64
	NumSteps() int
	NextTime() float64
	Updated() bool
	World() any

	step()
	forceStepUpto(t float64)
	initializeEngine()
	interrupt(t float64, winner Event, fallbackRNG *rand.Rand, logger Logger) (bool, error)
	sync(logger Logger) error
	translateFor(peerKind EngineKind, peerWorld any, fallbackRNG *rand.Rand, logger Logger) ([]ReactionInfo, error)
}

// baseEvent holds the state and behavior common to every Event variant:
// species ownership/borrow bookkeeping (spec §4.2) and the plumbing shared
// by interrupt/translateFor.
type baseEvent struct {
	engine   EngineHandle
	kind     EngineKind
	owned    map[SpeciesID]struct{}
	borrows  map[SpeciesID]SpeciesID // dst -> src
	numSteps int
}

func newBaseEvent(engine EngineHandle) baseEvent {
	return baseEvent{
		engine:  engine,
		kind:    engine.Kind(),
		owned:   make(map[SpeciesID]struct{}),
		borrows: make(map[SpeciesID]SpeciesID),
	}
}

func (b *baseEvent) Own(species ...SpeciesID) {
	for _, sp := range species {
		b.owned[sp] = struct{}{}
	}
}

func (b *baseEvent) OwnNames(names ...string) {
	b.Own(InternAll(names...)...)
}

func (b *baseEvent) Borrow(src, dst SpeciesID) error {
	if b.Owns(dst) {
		return fmt.Errorf("event: borrow target %q is already owned: %w", dst, ErrOwnershipViolation)
	}
	b.borrows[dst] = src
	return nil
}

func (b *baseEvent) Owns(sp SpeciesID) bool {
	_, ok := b.owned[sp]
	return ok
}

func (b *baseEvent) BorrowSrc(dst SpeciesID) (SpeciesID, bool) {
	src, ok := b.borrows[dst]
	return src, ok
}

func (b *baseEvent) Kind() EngineKind { return b.kind }
func (b *baseEvent) T() float64       { return b.engine.T() }
func (b *baseEvent) NumSteps() int    { return b.numSteps }
func (b *baseEvent) World() any       { return b.engine.World() }

func (b *baseEvent) forceStepUpto(t float64) {
	b.engine.StepUpto(t)
}

func (b *baseEvent) initializeEngine() {
	b.engine.Initialize()
}

// resolveRNG prefers the engine's own RNG (RandomSource) over the
// Coordinator-owned fallback, so reproducibility depends only on the
// master seed and Event insertion order (spec §4.3, §5).
func (b *baseEvent) resolveRNG(fallback *rand.Rand) *rand.Rand {
	if rs, ok := b.engine.(RandomSource); ok {
		if r := rs.Rand(); r != nil {
			return r
		}
	}
	return fallback
}

// translateRecords is the shared implementation behind every variant's
// translateFor: translate each of records into peerKind's representation.
func (b *baseEvent) translateRecords(records []ReactionRecord, peerKind EngineKind, peerWorld any, fallbackRNG *rand.Rand, logger Logger) ([]ReactionInfo, error) {
	rng := b.resolveRNG(fallbackRNG)
	out := make([]ReactionInfo, 0, len(records))
	for _, rec := range records {
		ri, err := translate(rec.Info, translateCtx{
			winnerKind:  b.kind,
			peerKind:    peerKind,
			winnerWorld: b.engine.World(),
			peerWorld:   peerWorld,
			rng:         rng,
			logger:      logger,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, ri)
	}
	return out, nil
}

// genericInterrupt implements the non-winner half of spec §4.5's
// interrupt(t, winner): borrow mirroring, then translated-reaction
// application via applyIncoming, then a conditional engine.Initialize().
func genericInterrupt(b *baseEvent, applyIncoming func(t float64, ri ReactionInfo) (bool, error), t float64, winner Event, fallbackRNG *rand.Rand, logger Logger) (bool, error) {
	changed := false

	for dst, src := range b.borrows {
		if !winner.Owns(src) {
			continue
		}
		ok, err := mirror(winner, src, dst, b.engine.World())
		if err != nil && !errors.Is(err, errInvalidBorrow) {
			return changed, err
		}
		if ok {
			changed = true
		}
	}

	if winner.Updated() {
		ris, err := winner.translateFor(b.kind, b.engine.World(), fallbackRNG, logger)
		if err != nil {
			return changed, err
		}
		for _, ri := range ris {
			ok, err := applyIncoming(t, ri)
			if err != nil {
				return changed, err
			}
			if ok {
				changed = true
			}
		}
	}

	if changed {
		b.engine.Initialize()
	}
	return changed, nil
}

// mirror sets holderWorld's population of dst equal to winner's population
// of src (spec §4.2, invariant 5). If winner does not own src, it reports
// InvalidBorrow and silently no-ops (spec §7). If holderWorld has no
// writable population notion (only AmountWorld does), it no-ops without
// error.
func mirror(winner Event, src, dst SpeciesID, holderWorld any) (bool, error) {
	if !winner.Owns(src) {
		return false, errInvalidBorrow
	}
	target := valueOf(winner.World(), src)
	current := valueOf(holderWorld, dst)
	if target == current {
		return false, nil
	}
	if !setValue(holderWorld, dst, target) {
		return false, nil
	}
	return true, nil
}

// valueOf reads a species' total population from any world representation.
func valueOf(world any, sp SpeciesID) float64 {
	switch w := world.(type) {
	case AmountWorld:
		return w.GetValueExact(sp)
	case SubvolumeWorld:
		var total float64
		for c := 0; c < w.NumSubvolumes(); c++ {
			total += w.GetValueExact(sp, c)
		}
		return total
	case LatticeWorld:
		return float64(len(w.ListVoxelsExact(sp)))
	case ParticleWorld:
		return float64(len(w.ListParticlesExact(sp)))
	}
	return 0
}

// setValue writes a species' population into a world that supports direct
// assignment. Only AmountWorld has an unambiguous "set the count"
// operation; other representations report false (mirror then no-ops).
func setValue(world any, sp SpeciesID, value float64) bool {
	if w, ok := world.(AmountWorld); ok {
		w.SetValue(sp, value)
		return true
	}
	return false
}
