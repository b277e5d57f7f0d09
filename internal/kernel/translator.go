package kernel

import (
	"fmt"
	"math/rand"
)

// translateCtx carries everything translate needs to rewrite a reaction
// produced by winnerKind into peerKind's representation: both worlds (for
// coordinate/position geometry), the RNG to use for unspecified spatial
// attributes, and a logger for the forward-check warning in §9.
type translateCtx struct {
	winnerKind  EngineKind
	peerKind    EngineKind
	winnerWorld any
	peerWorld   any
	rng         *rand.Rand
	logger      Logger
}

// translate is the Translator: a pure function from
// (winner-kind, peer-kind, ReactionInfo) to the peer's ReactionInfo,
// following the Cartesian product of rules in spec §4.3.
func translate(info ReactionInfo, ctx translateCtx) (ReactionInfo, error) {
	if ctx.winnerKind == ctx.peerKind {
		if ctx.winnerKind == Subvolume {
			return translateSubvolumeToSubvolume(info, ctx)
		}
		// Same kind (CONTINUOUS, WELLMIXED, LATTICE, PARTICLE): identity.
		return info, nil
	}

	switch {
	case ctx.peerKind == Continuous || ctx.peerKind == WellMixed:
		return dropGeometry(info), nil
	case ctx.peerKind == Subvolume:
		return translateToSubvolume(info, ctx)
	case ctx.peerKind == Lattice:
		return translateToLattice(info, ctx)
	case ctx.peerKind == Particle:
		return translateToParticle(info, ctx)
	}
	return ReactionInfo{}, fmt.Errorf("translate %s -> %s: %w", ctx.winnerKind, ctx.peerKind, ErrUnsupportedTranslation)
}

// dropGeometry implements "Any -> CONTINUOUS or WELLMIXED": keep SpeciesId
// lists only.
func dropGeometry(info ReactionInfo) ReactionInfo {
	return ReactionInfo{
		T:         info.T,
		Reactants: stripToSpecies(info.Reactants),
		Products:  stripToSpecies(info.Products),
	}
}

func stripToSpecies(mols []Molecule) []Molecule {
	out := make([]Molecule, len(mols))
	for i, m := range mols {
		out[i] = Molecule{Species: m.Species}
	}
	return out
}

func translateToSubvolume(info ReactionInfo, ctx translateCtx) (ReactionInfo, error) {
	peer, ok := ctx.peerWorld.(SubvolumeWorld)
	if !ok {
		return ReactionInfo{}, fmt.Errorf("translate to SUBVOLUME: peer world missing SubvolumeWorld: %w", ErrUnsupportedTranslation)
	}

	var coord int
	switch ctx.winnerKind {
	case Continuous, WellMixed:
		coord = ctx.rng.Intn(peer.NumSubvolumes())
	case Lattice:
		winner, ok := ctx.winnerWorld.(LatticeWorld)
		if !ok {
			return ReactionInfo{}, fmt.Errorf("translate LATTICE -> SUBVOLUME: winner world missing LatticeWorld: %w", ErrUnsupportedTranslation)
		}
		latticeCoord, found := anchorLatticeCoord(info)
		if !found {
			return dropGeometry(info), nil
		}
		coord = peer.Position2Coordinate(winner.Coordinate2Position(latticeCoord))
	case Particle:
		pos, found := anchorPosition(info)
		if !found {
			return dropGeometry(info), nil
		}
		coord = peer.Position2Coordinate(pos)
	default:
		return ReactionInfo{}, fmt.Errorf("translate %s -> SUBVOLUME: %w", ctx.winnerKind, ErrUnsupportedTranslation)
	}

	return ReactionInfo{
		T:         info.T,
		Reactants: withSubvolumeCoord(info.Reactants, coord),
		Products:  withSubvolumeCoord(info.Products, coord),
	}, nil
}

// translateSubvolumeToSubvolume implements "SUBVOLUME -> SUBVOLUME
// (different grids)": map the winner's subvolume center to 3-space using
// the winner's edge lengths, jitter uniformly inside the cell, then ask the
// peer for position2coordinate. Only the forward direction is checked
// (spec §9's Open Question): the reverse map may not round-trip, and that
// is an accepted overlap, not an error.
func translateSubvolumeToSubvolume(info ReactionInfo, ctx translateCtx) (ReactionInfo, error) {
	winner, ok := ctx.winnerWorld.(SubvolumeWorld)
	if !ok {
		return ReactionInfo{}, fmt.Errorf("translate SUBVOLUME -> SUBVOLUME: winner world missing SubvolumeWorld: %w", ErrUnsupportedTranslation)
	}
	peer, ok := ctx.peerWorld.(SubvolumeWorld)
	if !ok {
		return ReactionInfo{}, fmt.Errorf("translate SUBVOLUME -> SUBVOLUME: peer world missing SubvolumeWorld: %w", ErrUnsupportedTranslation)
	}

	srcCoord, found := firstSubvolumeCoord(info)
	if !found {
		return info, nil
	}

	pos := jitterSubvolume(winner, srcCoord, ctx.rng)
	if got := winner.Position2Coordinate(pos); got != srcCoord && ctx.logger != nil {
		ctx.logger.Warnf("translator: forward check failed for subvolume %d (jittered position maps back to %d) - accepted overlap", srcCoord, got)
	}
	coord := peer.Position2Coordinate(pos)

	return ReactionInfo{
		T:         info.T,
		Reactants: withSubvolumeCoord(info.Reactants, coord),
		Products:  withSubvolumeCoord(info.Products, coord),
	}, nil
}

func jitterSubvolume(world SubvolumeWorld, coord int, rng *rand.Rand) Vec3 {
	g := world.Coord2Global(coord)
	lengths := world.SubvolumeEdgeLengths()
	jitter := Vec3{X: rng.Float64(), Y: rng.Float64(), Z: rng.Float64()}
	return Vec3{
		X: (float64(g[0]) + jitter.X) * lengths.X,
		Y: (float64(g[1]) + jitter.Y) * lengths.Y,
		Z: (float64(g[2]) + jitter.Z) * lengths.Z,
	}
}

func translateToLattice(info ReactionInfo, ctx translateCtx) (ReactionInfo, error) {
	peer, ok := ctx.peerWorld.(LatticeWorld)
	if !ok {
		return ReactionInfo{}, fmt.Errorf("translate to LATTICE: peer world missing LatticeWorld: %w", ErrUnsupportedTranslation)
	}

	switch ctx.winnerKind {
	case Continuous, WellMixed:
		coord := ctx.rng.Intn(peer.Size())
		return wrapAsVoxels(info, coord, ctx.rng), nil
	case Subvolume:
		winner, ok := ctx.winnerWorld.(SubvolumeWorld)
		if !ok {
			return ReactionInfo{}, fmt.Errorf("translate SUBVOLUME -> LATTICE: winner world missing SubvolumeWorld: %w", ErrUnsupportedTranslation)
		}
		srcCoord, found := firstSubvolumeCoord(info)
		if !found {
			return wrapAsVoxels(info, 0, ctx.rng), nil
		}
		pos := jitterSubvolume(winner, srcCoord, ctx.rng)
		coord := peer.Position2Coordinate(pos)
		return wrapAsVoxels(info, coord, ctx.rng), nil
	case Particle:
		return mapParticleToLattice(info, peer), nil
	default:
		return ReactionInfo{}, fmt.Errorf("translate %s -> LATTICE: %w", ctx.winnerKind, ErrUnsupportedTranslation)
	}
}

func translateToParticle(info ReactionInfo, ctx translateCtx) (ReactionInfo, error) {
	peer, ok := ctx.peerWorld.(ParticleWorld)
	if !ok {
		return ReactionInfo{}, fmt.Errorf("translate to PARTICLE: peer world missing ParticleWorld: %w", ErrUnsupportedTranslation)
	}

	switch ctx.winnerKind {
	case Continuous, WellMixed:
		lengths := peer.EdgeLengths()
		pos := Vec3{X: ctx.rng.Float64() * lengths.X, Y: ctx.rng.Float64() * lengths.Y, Z: ctx.rng.Float64() * lengths.Z}
		return wrapAsParticles(info, pos, ctx.rng), nil
	case Subvolume:
		winner, ok := ctx.winnerWorld.(SubvolumeWorld)
		if !ok {
			return ReactionInfo{}, fmt.Errorf("translate SUBVOLUME -> PARTICLE: winner world missing SubvolumeWorld: %w", ErrUnsupportedTranslation)
		}
		srcCoord, found := firstSubvolumeCoord(info)
		if !found {
			return wrapAsParticles(info, Vec3{}, ctx.rng), nil
		}
		pos := jitterSubvolume(winner, srcCoord, ctx.rng)
		return wrapAsParticles(info, pos, ctx.rng), nil
	case Lattice:
		winner, ok := ctx.winnerWorld.(LatticeWorld)
		if !ok {
			return ReactionInfo{}, fmt.Errorf("translate LATTICE -> PARTICLE: winner world missing LatticeWorld: %w", ErrUnsupportedTranslation)
		}
		return mapLatticeToParticle(info, winner), nil
	default:
		return ReactionInfo{}, fmt.Errorf("translate %s -> PARTICLE: %w", ctx.winnerKind, ErrUnsupportedTranslation)
	}
}

func withSubvolumeCoord(mols []Molecule, coord int) []Molecule {
	out := make([]Molecule, len(mols))
	for i, m := range mols {
		out[i] = Molecule{Species: m.Species, SubvolumeCoord: coord}
	}
	return out
}

func wrapAsVoxels(info ReactionInfo, coord int, rng *rand.Rand) ReactionInfo {
	return ReactionInfo{
		T:         info.T,
		Reactants: toVoxels(info.Reactants, coord, rng),
		Products:  toVoxels(info.Products, coord, rng),
	}
}

func toVoxels(mols []Molecule, coord int, rng *rand.Rand) []Molecule {
	out := make([]Molecule, len(mols))
	for i, m := range mols {
		out[i] = Molecule{Species: m.Species, ParticleID: freshParticleID(rng), LatticeCoord: coord}
	}
	return out
}

func wrapAsParticles(info ReactionInfo, pos Vec3, rng *rand.Rand) ReactionInfo {
	return ReactionInfo{
		T:         info.T,
		Reactants: toParticles(info.Reactants, pos, rng),
		Products:  toParticles(info.Products, pos, rng),
	}
}

func toParticles(mols []Molecule, pos Vec3, rng *rand.Rand) []Molecule {
	out := make([]Molecule, len(mols))
	for i, m := range mols {
		out[i] = Molecule{Species: m.Species, ParticleID: freshParticleID(rng), Position: pos}
	}
	return out
}

// mapLatticeToParticle implements "LATTICE -> PARTICLE": each voxel's own
// coordinate maps individually to its own position via the winner's world,
// preserving radius and D (unlike the SUBVOLUME rules, this is per-molecule
// because a lattice reaction already carries one coordinate per molecule).
func mapLatticeToParticle(info ReactionInfo, winner LatticeWorld) ReactionInfo {
	convert := func(mols []Molecule) []Molecule {
		out := make([]Molecule, len(mols))
		for i, m := range mols {
			out[i] = Molecule{
				Species:    m.Species,
				ParticleID: m.ParticleID,
				Position:   winner.Coordinate2Position(m.LatticeCoord),
				Radius:     m.Radius,
				D:          m.D,
			}
		}
		return out
	}
	return ReactionInfo{T: info.T, Reactants: convert(info.Reactants), Products: convert(info.Products)}
}

// mapParticleToLattice implements "PARTICLE -> LATTICE": per-molecule,
// preserving radius and D.
func mapParticleToLattice(info ReactionInfo, peer LatticeWorld) ReactionInfo {
	convert := func(mols []Molecule) []Molecule {
		out := make([]Molecule, len(mols))
		for i, m := range mols {
			out[i] = Molecule{
				Species:      m.Species,
				ParticleID:   m.ParticleID,
				LatticeCoord: peer.Position2Coordinate(m.Position),
				Radius:       m.Radius,
				D:            m.D,
			}
		}
		return out
	}
	return ReactionInfo{T: info.T, Reactants: convert(info.Reactants), Products: convert(info.Products)}
}

// anchorLatticeCoord, anchorPosition, and firstSubvolumeCoord all prefer the
// first product, falling back to the first reactant, then reporting
// not-found for an empty reaction — tolerating the general multi-product
// case rather than the single-reaction assumption spec §9 warns against.
func anchorLatticeCoord(info ReactionInfo) (int, bool) {
	if len(info.Products) > 0 {
		return info.Products[0].LatticeCoord, true
	}
	if len(info.Reactants) > 0 {
		return info.Reactants[0].LatticeCoord, true
	}
	return 0, false
}

func anchorPosition(info ReactionInfo) (Vec3, bool) {
	if len(info.Products) > 0 {
		return info.Products[0].Position, true
	}
	if len(info.Reactants) > 0 {
		return info.Reactants[0].Position, true
	}
	return Vec3{}, false
}

func firstSubvolumeCoord(info ReactionInfo) (int, bool) {
	if len(info.Products) > 0 {
		return info.Products[0].SubvolumeCoord, true
	}
	if len(info.Reactants) > 0 {
		return info.Reactants[0].SubvolumeCoord, true
	}
	return 0, false
}

// freshParticleID mints a new particle identity from the same RNG stream
// used for the rest of the translation, so replays stay bit-exact given a
// master seed (spec §5) — unlike the teacher's crypto/rand-backed
// NewRandomID, which would break reproducibility here.
func freshParticleID(rng *rand.Rand) ParticleID {
	return ParticleID(fmt.Sprintf("p%x", rng.Int63()))
}
