package demoengines

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/daniacca/hybridchem/internal/kernel"
)

type latticeAction struct {
	diffusion bool
	ruleIdx   int
	sp        kernel.SpeciesID
	coord     int
	pid       kernel.ParticleID
}

// Lattice is a discrete voxel lattice (kernel.Lattice), a minimal stand-in
// for a spatiocyte-style engine. Species named in Diffusing additionally
// hop to a random empty face-adjacent voxel at DiffusionRate per occupied
// voxel. NewVoxel does not check occupancy: a voxel placed on an occupied
// site (for example by a cross-engine transfer) shares that site.
type Lattice struct {
	rng           *rand.Rand
	size          int
	edge          kernel.Vec3
	rules         []ConversionRule
	diffusing     []kernel.SpeciesID
	diffusionRate float64

	occupancy map[int]kernel.ParticleID
	entries   map[kernel.ParticleID]kernel.VoxelEntry
	nextID    int

	t, nextT float64
	last     []kernel.ReactionRecord
}

// NewLattice builds a size x size x size voxel lattice. initial places one
// voxel per (species, coord) pair.
func NewLattice(rng *rand.Rand, size int, edge kernel.Vec3, initial map[kernel.SpeciesID][]int, rules []ConversionRule, diffusing []kernel.SpeciesID, diffusionRate float64) *Lattice {
	l := &Lattice{
		rng: rng, size: size, edge: edge, rules: rules,
		diffusing: diffusing, diffusionRate: diffusionRate,
		occupancy: make(map[int]kernel.ParticleID),
		entries:   make(map[kernel.ParticleID]kernel.VoxelEntry),
	}
	for sp, coords := range initial {
		for _, c := range coords {
			l.NewVoxel(sp, c)
		}
	}
	return l
}

func (e *Lattice) Kind() kernel.EngineKind { return kernel.Lattice }
func (e *Lattice) T() float64              { return e.t }
func (e *Lattice) NextTime() float64       { return e.nextT }
func (e *Lattice) Rand() *rand.Rand        { return e.rng }
func (e *Lattice) Size() int               { return e.size * e.size * e.size }

func (e *Lattice) globalOf(coord int) [3]int {
	x := coord % e.size
	y := (coord / e.size) % e.size
	z := coord / (e.size * e.size)
	return [3]int{x, y, z}
}

func (e *Lattice) coordOf(x, y, z int) int {
	return x + y*e.size + z*e.size*e.size
}

func (e *Lattice) Coordinate2Position(coord int) kernel.Vec3 {
	g := e.globalOf(coord)
	return kernel.Vec3{
		X: (float64(g[0]) + 0.5) * e.edge.X,
		Y: (float64(g[1]) + 0.5) * e.edge.Y,
		Z: (float64(g[2]) + 0.5) * e.edge.Z,
	}
}

func (e *Lattice) Position2Coordinate(pos kernel.Vec3) int {
	clamp := func(v, length float64) int {
		c := int(v / length)
		if c < 0 {
			c = 0
		}
		if c > e.size-1 {
			c = e.size - 1
		}
		return c
	}
	return e.coordOf(clamp(pos.X, e.edge.X), clamp(pos.Y, e.edge.Y), clamp(pos.Z, e.edge.Z))
}

func (e *Lattice) neighbors(coord int) []int {
	g := e.globalOf(coord)
	var out []int
	deltas := [6][3]int{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
	for _, d := range deltas {
		nx, ny, nz := g[0]+d[0], g[1]+d[1], g[2]+d[2]
		if nx < 0 || nx >= e.size || ny < 0 || ny >= e.size || nz < 0 || nz >= e.size {
			continue
		}
		out = append(out, e.coordOf(nx, ny, nz))
	}
	return out
}

func (e *Lattice) emptyNeighbors(coord int) []int {
	var out []int
	for _, c := range e.neighbors(coord) {
		if _, occupied := e.occupancy[c]; !occupied {
			out = append(out, c)
		}
	}
	return out
}

func (e *Lattice) actions() ([]latticeAction, []float64, float64) {
	var actions []latticeAction
	var weights []float64
	total := 0.0

	for ri, r := range e.rules {
		for _, ve := range e.ListVoxelsExact(r.Reactant) {
			actions = append(actions, latticeAction{ruleIdx: ri, coord: ve.Coord, pid: ve.ID})
			weights = append(weights, r.Rate)
			total += r.Rate
		}
	}

	for _, sp := range e.diffusing {
		for _, ve := range e.ListVoxelsExact(sp) {
			if len(e.emptyNeighbors(ve.Coord)) == 0 {
				continue
			}
			actions = append(actions, latticeAction{diffusion: true, sp: sp, coord: ve.Coord, pid: ve.ID})
			weights = append(weights, e.diffusionRate)
			total += e.diffusionRate
		}
	}

	return actions, weights, total
}

func (e *Lattice) Initialize() {
	_, _, total := e.actions()
	e.nextT = e.t + expWait(total, e.rng)
}

func (e *Lattice) Step() {
	e.last = nil
	actions, weights, total := e.actions()
	idx := pickWeighted(weights, total, e.rng)
	e.t = e.nextT
	if idx < 0 {
		e.nextT = math.Inf(1)
		return
	}
	a := actions[idx]
	if a.diffusion {
		empty := e.emptyNeighbors(a.coord)
		dst := empty[e.rng.Intn(len(empty))]
		oldPid := a.pid
		e.RemoveVoxel(oldPid)
		newPid := e.NewVoxel(a.sp, dst)
		e.last = []kernel.ReactionRecord{{Info: kernel.ReactionInfo{
			T:         e.t,
			Reactants: []kernel.Molecule{{Species: a.sp, ParticleID: oldPid, LatticeCoord: a.coord}},
			Products:  []kernel.Molecule{{Species: a.sp, ParticleID: newPid, LatticeCoord: dst}},
		}}}
	} else {
		r := e.rules[a.ruleIdx]
		oldPid := a.pid
		e.RemoveVoxel(oldPid)
		newPid := e.NewVoxel(r.Product, a.coord)
		e.last = []kernel.ReactionRecord{{Info: kernel.ReactionInfo{
			T:         e.t,
			Reactants: []kernel.Molecule{{Species: r.Reactant, ParticleID: oldPid, LatticeCoord: a.coord}},
			Products:  []kernel.Molecule{{Species: r.Product, ParticleID: newPid, LatticeCoord: a.coord}},
		}}}
	}
	e.Initialize()
}

func (e *Lattice) StepUpto(t float64) {
	e.t = t
	e.last = nil
}

func (e *Lattice) LastReactions() []kernel.ReactionRecord { return e.last }
func (e *Lattice) World() any                             { return e }

// LatticeWorld implementation.

func (e *Lattice) NewVoxel(sp kernel.SpeciesID, coord int) kernel.ParticleID {
	e.nextID++
	pid := kernel.ParticleID(fmt.Sprintf("v%d", e.nextID))
	e.occupancy[coord] = pid
	e.entries[pid] = kernel.VoxelEntry{ID: pid, Species: sp, Coord: coord}
	return pid
}

func (e *Lattice) RemoveVoxel(pid kernel.ParticleID) {
	if ve, ok := e.entries[pid]; ok {
		delete(e.occupancy, ve.Coord)
		delete(e.entries, pid)
	}
}

func (e *Lattice) ListVoxelsExact(sp kernel.SpeciesID) []kernel.VoxelEntry {
	var out []kernel.VoxelEntry
	for _, ve := range e.entries {
		if ve.Species == sp {
			out = append(out, ve)
		}
	}
	return out
}
