package demoengines

import (
	"math"
	"math/rand"

	"github.com/daniacca/hybridchem/internal/kernel"
)

type subvolumeAction struct {
	diffusion bool
	ruleIdx   int
	sp        kernel.SpeciesID
	coord     int
}

// Subvolume is an N x N x N grid of independently well-mixed cells (a
// mesoscopic reaction-diffusion master equation engine, kernel.Subvolume).
// Each cell runs the same conversion rule table; species named in
// Diffusing additionally hop to a random face-adjacent cell at
// DiffusionRate per molecule present.
type Subvolume struct {
	rng           *rand.Rand
	size          int
	edge          kernel.Vec3
	rules         []ConversionRule
	diffusing     []kernel.SpeciesID
	diffusionRate float64
	counts        map[kernel.SpeciesID]map[int]int
	t, nextT      float64
	last          []kernel.ReactionRecord
}

// NewSubvolume builds a size x size x size grid, edge giving each cell's
// physical dimensions. initial maps species to a sparse coord->count table.
func NewSubvolume(rng *rand.Rand, size int, edge kernel.Vec3, initial map[kernel.SpeciesID]map[int]int, rules []ConversionRule, diffusing []kernel.SpeciesID, diffusionRate float64) *Subvolume {
	counts := make(map[kernel.SpeciesID]map[int]int, len(initial))
	for sp, m := range initial {
		cm := make(map[int]int, len(m))
		for c, n := range m {
			cm[c] = n
		}
		counts[sp] = cm
	}
	return &Subvolume{
		rng: rng, size: size, edge: edge, rules: rules,
		diffusing: diffusing, diffusionRate: diffusionRate, counts: counts,
	}
}

func (e *Subvolume) Kind() kernel.EngineKind { return kernel.Subvolume }
func (e *Subvolume) T() float64              { return e.t }
func (e *Subvolume) NextTime() float64       { return e.nextT }
func (e *Subvolume) Rand() *rand.Rand        { return e.rng }
func (e *Subvolume) NumSubvolumes() int      { return e.size * e.size * e.size }

func (e *Subvolume) globalOf(coord int) [3]int {
	x := coord % e.size
	y := (coord / e.size) % e.size
	z := coord / (e.size * e.size)
	return [3]int{x, y, z}
}

func (e *Subvolume) coordOf(x, y, z int) int {
	return x + y*e.size + z*e.size*e.size
}

func (e *Subvolume) Coord2Global(coord int) [3]int { return e.globalOf(coord) }

func (e *Subvolume) Coordinate2Position(coord int) kernel.Vec3 {
	g := e.globalOf(coord)
	return kernel.Vec3{
		X: (float64(g[0]) + 0.5) * e.edge.X,
		Y: (float64(g[1]) + 0.5) * e.edge.Y,
		Z: (float64(g[2]) + 0.5) * e.edge.Z,
	}
}

func (e *Subvolume) Position2Coordinate(pos kernel.Vec3) int {
	clamp := func(v float64, length float64) int {
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

func (e *Subvolume) SubvolumeEdgeLengths() kernel.Vec3 { return e.edge }

func (e *Subvolume) neighbors(coord int) []int {
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

func (e *Subvolume) actions() ([]subvolumeAction, []float64, float64) {
	var actions []subvolumeAction
	var weights []float64
	total := 0.0

	for ri, r := range e.rules {
		for coord, n := range e.counts[r.Reactant] {
			if n <= 0 {
				continue
			}
			w := r.Rate * float64(n)
			actions = append(actions, subvolumeAction{ruleIdx: ri, coord: coord})
			weights = append(weights, w)
			total += w
		}
	}

	for _, sp := range e.diffusing {
		for coord, n := range e.counts[sp] {
			if n <= 0 || len(e.neighbors(coord)) == 0 {
				continue
			}
			w := e.diffusionRate * float64(n)
			actions = append(actions, subvolumeAction{diffusion: true, sp: sp, coord: coord})
			weights = append(weights, w)
			total += w
		}
	}

	return actions, weights, total
}

func (e *Subvolume) Initialize() {
	_, _, total := e.actions()
	e.nextT = e.t + expWait(total, e.rng)
}

func (e *Subvolume) Step() {
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
		neigh := e.neighbors(a.coord)
		dst := neigh[e.rng.Intn(len(neigh))]
		e.counts[a.sp][a.coord]--
		e.counts[a.sp][dst]++
		e.last = []kernel.ReactionRecord{{Info: kernel.ReactionInfo{
			T:         e.t,
			Reactants: []kernel.Molecule{{Species: a.sp, SubvolumeCoord: a.coord}},
			Products:  []kernel.Molecule{{Species: a.sp, SubvolumeCoord: dst}},
		}}}
	} else {
		r := e.rules[a.ruleIdx]
		e.ensure(r.Reactant)
		e.ensure(r.Product)
		e.counts[r.Reactant][a.coord]--
		e.counts[r.Product][a.coord]++
		e.last = []kernel.ReactionRecord{{Info: kernel.ReactionInfo{
			T:         e.t,
			Reactants: []kernel.Molecule{{Species: r.Reactant, SubvolumeCoord: a.coord}},
			Products:  []kernel.Molecule{{Species: r.Product, SubvolumeCoord: a.coord}},
		}}}
	}
	e.Initialize()
}

func (e *Subvolume) StepUpto(t float64) {
	e.t = t
	e.last = nil
}

func (e *Subvolume) LastReactions() []kernel.ReactionRecord { return e.last }
func (e *Subvolume) World() any                             { return e }

func (e *Subvolume) ensure(sp kernel.SpeciesID) {
	if e.counts[sp] == nil {
		e.counts[sp] = make(map[int]int)
	}
}

// SubvolumeWorld implementation.

func (e *Subvolume) GetValueExact(sp kernel.SpeciesID, coord int) float64 {
	return float64(e.counts[sp][coord])
}

func (e *Subvolume) AddMolecules(sp kernel.SpeciesID, n int, coord int) {
	e.ensure(sp)
	e.counts[sp][coord] += n
}

func (e *Subvolume) RemoveMolecules(sp kernel.SpeciesID, n int, coord int) {
	e.ensure(sp)
	e.counts[sp][coord] -= n
	if e.counts[sp][coord] < 0 {
		e.counts[sp][coord] = 0
	}
}
