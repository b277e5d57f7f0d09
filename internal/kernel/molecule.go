package kernel

// Vec3 is a point or offset in the shared 3-space world geometry.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns the componentwise sum of v and o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Scale returns v scaled componentwise by f.
func (v Vec3) Scale(f Vec3) Vec3 {
	return Vec3{v.X * f.X, v.Y * f.Y, v.Z * f.Z}
}

// ParticleID is a unique handle for one voxel or particle instance, minted
// fresh whenever the Translator materializes a molecule in a peer's
// representation.
type ParticleID string

// Molecule is the data model's sum type (spec §3): depending on which
// engine kind produced or will consume it, only a subset of these fields is
// meaningful.
//
//   - Amount (CONTINUOUS, WELLMIXED): Species only.
//   - Subvolume (SUBVOLUME): Species, SubvolumeCoord.
//   - Voxel (LATTICE): ParticleID, Species, LatticeCoord, Radius, D.
//   - Particle (PARTICLE): ParticleID, Species, Position, Radius, D.
type Molecule struct {
	Species        SpeciesID
	ParticleID     ParticleID
	SubvolumeCoord int
	LatticeCoord   int
	Position       Vec3
	Radius         float64
	D              float64
}

// VoxelEntry pairs a particle identity with its lattice-space voxel data, as
// returned by LatticeWorld.ListVoxelsExact.
type VoxelEntry struct {
	ID       ParticleID
	Species  SpeciesID
	Coord    int
	Radius   float64
	D        float64
}

// ParticleEntry pairs a particle identity with its 3-space data, as returned
// by ParticleWorld.ListParticlesExact.
type ParticleEntry struct {
	ID       ParticleID
	Species  SpeciesID
	Position Vec3
	Radius   float64
	D        float64
}
