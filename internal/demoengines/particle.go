package demoengines

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/daniacca/hybridchem/internal/kernel"
)

type particleAction struct {
	move bool
	rule int
	pid  kernel.ParticleID
}

// Particle is an off-lattice Brownian-dynamics engine in a cubic box
// (kernel.Particle). Species named in Diffusing additionally perform a
// random displacement of StepSize at MoveRate per particle present.
type Particle struct {
	rng       *rand.Rand
	box       kernel.Vec3
	rules     []ConversionRule
	diffusing []kernel.SpeciesID
	moveRate  float64
	stepSize  float64
	radius    float64
	diffCoef  float64

	entries map[kernel.ParticleID]kernel.ParticleEntry
	nextID  int

	t, nextT float64
	last     []kernel.ReactionRecord
}

// NewParticleEngine builds a Particle engine in a box sized by edge. initial
// places len(positions) particles of each species.
func NewParticleEngine(rng *rand.Rand, edge kernel.Vec3, initial map[kernel.SpeciesID][]kernel.Vec3, rules []ConversionRule, diffusing []kernel.SpeciesID, moveRate, stepSize, radius, diffCoef float64) *Particle {
	p := &Particle{
		rng: rng, box: edge, rules: rules, diffusing: diffusing,
		moveRate: moveRate, stepSize: stepSize, radius: radius, diffCoef: diffCoef,
		entries: make(map[kernel.ParticleID]kernel.ParticleEntry),
	}
	for sp, positions := range initial {
		for _, pos := range positions {
			p.NewParticle(sp, pos)
		}
	}
	return p
}

func (e *Particle) Kind() kernel.EngineKind { return kernel.Particle }
func (e *Particle) T() float64              { return e.t }
func (e *Particle) NextTime() float64       { return e.nextT }
func (e *Particle) Rand() *rand.Rand        { return e.rng }
func (e *Particle) EdgeLengths() kernel.Vec3 { return e.box }

func (e *Particle) actions() ([]particleAction, []float64, float64) {
	var actions []particleAction
	var weights []float64
	total := 0.0

	for ri, r := range e.rules {
		for _, pe := range e.ListParticlesExact(r.Reactant) {
			actions = append(actions, particleAction{rule: ri, pid: pe.ID})
			weights = append(weights, r.Rate)
			total += r.Rate
		}
	}

	for _, sp := range e.diffusing {
		for _, pe := range e.ListParticlesExact(sp) {
			actions = append(actions, particleAction{move: true, pid: pe.ID})
			weights = append(weights, e.moveRate)
			total += e.moveRate
		}
	}

	return actions, weights, total
}

func (e *Particle) Initialize() {
	_, _, total := e.actions()
	e.nextT = e.t + expWait(total, e.rng)
}

func (e *Particle) clampBox(pos kernel.Vec3) kernel.Vec3 {
	clamp := func(v, length float64) float64 {
		if v < 0 {
			return 0
		}
		if v > length {
			return length
		}
		return v
	}
	return kernel.Vec3{X: clamp(pos.X, e.box.X), Y: clamp(pos.Y, e.box.Y), Z: clamp(pos.Z, e.box.Z)}
}

func (e *Particle) Step() {
	e.last = nil
	actions, weights, total := e.actions()
	idx := pickWeighted(weights, total, e.rng)
	e.t = e.nextT
	if idx < 0 {
		e.nextT = math.Inf(1)
		return
	}
	a := actions[idx]
	old, ok := e.entries[a.pid]
	if !ok {
		e.Initialize()
		return
	}
	if a.move {
		delta := kernel.Vec3{
			X: (e.rng.Float64()*2 - 1) * e.stepSize,
			Y: (e.rng.Float64()*2 - 1) * e.stepSize,
			Z: (e.rng.Float64()*2 - 1) * e.stepSize,
		}
		newPos := e.clampBox(old.Position.Add(delta))
		e.RemoveParticle(a.pid)
		newPid := e.NewParticle(old.Species, newPos)
		e.last = []kernel.ReactionRecord{{Info: kernel.ReactionInfo{
			T:         e.t,
			Reactants: []kernel.Molecule{{Species: old.Species, ParticleID: a.pid, Position: old.Position, Radius: old.Radius, D: old.D}},
			Products:  []kernel.Molecule{{Species: old.Species, ParticleID: newPid, Position: newPos, Radius: old.Radius, D: old.D}},
		}}}
	} else {
		r := e.rules[a.rule]
		e.RemoveParticle(a.pid)
		newPid := e.NewParticle(r.Product, old.Position)
		e.last = []kernel.ReactionRecord{{Info: kernel.ReactionInfo{
			T:         e.t,
			Reactants: []kernel.Molecule{{Species: r.Reactant, ParticleID: a.pid, Position: old.Position, Radius: old.Radius, D: old.D}},
			Products:  []kernel.Molecule{{Species: r.Product, ParticleID: newPid, Position: old.Position, Radius: old.Radius, D: old.D}},
		}}}
	}
	e.Initialize()
}

func (e *Particle) StepUpto(t float64) {
	e.t = t
	e.last = nil
}

func (e *Particle) LastReactions() []kernel.ReactionRecord { return e.last }
func (e *Particle) World() any                             { return e }

// ParticleWorld implementation.

func (e *Particle) NewParticle(sp kernel.SpeciesID, pos kernel.Vec3) kernel.ParticleID {
	e.nextID++
	pid := kernel.ParticleID(fmt.Sprintf("p%d", e.nextID))
	e.entries[pid] = kernel.ParticleEntry{ID: pid, Species: sp, Position: pos, Radius: e.radius, D: e.diffCoef}
	return pid
}

func (e *Particle) RemoveParticle(pid kernel.ParticleID) {
	delete(e.entries, pid)
}

func (e *Particle) ListParticlesExact(sp kernel.SpeciesID) []kernel.ParticleEntry {
	var out []kernel.ParticleEntry
	for _, pe := range e.entries {
		if pe.Species == sp {
			out = append(out, pe)
		}
	}
	return out
}
