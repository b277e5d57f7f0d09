package kernel

import "math/rand"

// EngineKind tags an EngineHandle with which of the five supported
// simulators it wraps. The set is closed (spec §9 favors a tagged union
// here over open-ended dynamic dispatch, since translation is a Cartesian
// product over exactly these five kinds).
type EngineKind int

const (
	Continuous EngineKind = iota
	WellMixed
	Subvolume
	Lattice
	Particle
)

// String returns the kind's name, for logging and error messages.
func (k EngineKind) String() string {
	switch k {
	case Continuous:
		return "CONTINUOUS"
	case WellMixed:
		return "WELLMIXED"
	case Subvolume:
		return "SUBVOLUME"
	case Lattice:
		return "LATTICE"
	case Particle:
		return "PARTICLE"
	default:
		return "UNKNOWN"
	}
}

// EngineHandle is the contract every simulation engine must satisfy (spec
// §4.1). The kernel never inspects an engine beyond this contract plus the
// kind-specific World accessed through World().
type EngineHandle interface {
	Kind() EngineKind

	// Initialize (re)primes the engine's internal scheduling state. Called
	// once before the first step, and again whenever a cross-engine
	// modification has invalidated cached state.
	Initialize()

	// T returns the engine's current simulated time.
	T() float64

	// Step advances the engine exactly one native event.
	Step()

	// StepUpto advances the engine to exactly t, performing a partial step
	// if the engine's native granularity is coarser than the gap.
	StepUpto(t float64)

	// LastReactions returns the reaction(s) produced by the most recent
	// Step/StepUpto call, in this engine's own representation.
	LastReactions() []ReactionRecord

	// World returns the engine's mutable state. Its dynamic type is one of
	// AmountWorld, SubvolumeWorld, LatticeWorld, or ParticleWorld,
	// depending on Kind(). Event and Translator code type-assert it to the
	// interface appropriate for Kind() — this is the "explicit interface
	// methods, no dynamic forwarding" read of spec §9's attribute
	// delegation note.
	World() any
}

// DiscreteEngineHandle is additionally satisfied by WELLMIXED, SUBVOLUME,
// LATTICE, and PARTICLE engines, whose next event time is engine-chosen
// rather than computed by a fixed-step schedule.
type DiscreteEngineHandle interface {
	EngineHandle
	NextTime() float64
}

// RandomSource is optionally satisfied by an EngineHandle that exposes its
// own random number generator. The Translator prefers the winner's RNG over
// the Coordinator's fallback one, so that reproducibility depends only on
// the master seed and Event insertion order (spec §5).
type RandomSource interface {
	Rand() *rand.Rand
}

// AmountWorld is the world shape for CONTINUOUS and WELLMIXED engines:
// species are tracked purely by population count, with no geometry.
type AmountWorld interface {
	GetValueExact(sp SpeciesID) float64
	SetValue(sp SpeciesID, value float64)
	AddMolecules(sp SpeciesID, n int)
	RemoveMolecules(sp SpeciesID, n int)
	ListSpecies() []SpeciesID
}

// SubvolumeWorld is the world shape for SUBVOLUME engines: an integer grid
// of cells, each independently well-mixed.
type SubvolumeWorld interface {
	NumSubvolumes() int
	GetValueExact(sp SpeciesID, coord int) float64
	AddMolecules(sp SpeciesID, n int, coord int)
	RemoveMolecules(sp SpeciesID, n int, coord int)
	SubvolumeEdgeLengths() Vec3
	Coord2Global(coord int) [3]int
	Position2Coordinate(pos Vec3) int
	Coordinate2Position(coord int) Vec3
}

// LatticeWorld is the world shape for LATTICE engines: a voxel lattice with
// at most one particle per site.
type LatticeWorld interface {
	Size() int
	NewVoxel(sp SpeciesID, coord int) ParticleID
	RemoveVoxel(pid ParticleID)
	ListVoxelsExact(sp SpeciesID) []VoxelEntry
	Position2Coordinate(pos Vec3) int
	Coordinate2Position(coord int) Vec3
}

// ParticleWorld is the world shape for PARTICLE engines: off-lattice
// particles positioned in continuous 3-space.
type ParticleWorld interface {
	EdgeLengths() Vec3
	NewParticle(sp SpeciesID, pos Vec3) ParticleID
	RemoveParticle(pid ParticleID)
	ListParticlesExact(sp SpeciesID) []ParticleEntry
}
