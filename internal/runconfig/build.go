package runconfig

import (
	"fmt"
	"math/rand"

	"github.com/daniacca/hybridchem/internal/demoengines"
	"github.com/daniacca/hybridchem/internal/kernel"
)

const demoGridSize = 4

var demoGridEdge = kernel.Vec3{X: 1, Y: 1, Z: 1}
var demoBoxEdge = kernel.Vec3{X: float64(demoGridSize), Y: float64(demoGridSize), Z: float64(demoGridSize)}

const demoSeedPopulation = 10

// Build wires a demo engine (internal/demoengines) for every EngineSpec in
// cfg and registers it with a freshly built Coordinator. Each engine gets a
// single A->B conversion rule between its first two owned species (if it
// owns fewer than two, it gets no reaction rule and only participates via
// borrows). This is enough to drive the CLI and server demos; it is not a
// model-authoring facility.
func Build(cfg RunConfig, logger kernel.Logger) (*kernel.Coordinator, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	coord := kernel.NewCoordinator(cfg.Seed, logger)

	for i, es := range cfg.Engines {
		owned := kernel.InternAll(es.Owns...)
		rules := conversionRules(owned)
		rng := rand.New(rand.NewSource(cfg.Seed + int64(i) + 1))

		var ev kernel.Event
		switch es.Kind {
		case "WELLMIXED":
			initial := make(map[kernel.SpeciesID]int)
			if len(owned) > 0 {
				initial[owned[0]] = demoSeedPopulation
			}
			ev = kernel.NewWellMixedEvent(demoengines.NewWellMixed(rng, initial, rules))
		case "CONTINUOUS":
			initial := make(map[kernel.SpeciesID]float64)
			if len(owned) > 0 {
				initial[owned[0]] = demoSeedPopulation
			}
			ev = kernel.NewContinuousEvent(demoengines.NewContinuous(initial, rules), 0, es.Dt)
		case "SUBVOLUME":
			initial := make(map[kernel.SpeciesID]map[int]int)
			if len(owned) > 0 {
				initial[owned[0]] = map[int]int{0: demoSeedPopulation}
			}
			ev = kernel.NewSubvolumeEvent(demoengines.NewSubvolume(rng, demoGridSize, demoGridEdge, initial, rules, nil, 0))
		case "LATTICE":
			initial := make(map[kernel.SpeciesID][]int)
			if len(owned) > 0 {
				coords := make([]int, demoSeedPopulation)
				for j := range coords {
					coords[j] = j
				}
				initial[owned[0]] = coords
			}
			ev = kernel.NewLatticeEvent(demoengines.NewLattice(rng, demoGridSize, demoGridEdge, initial, rules, nil, 0))
		case "PARTICLE":
			initial := make(map[kernel.SpeciesID][]kernel.Vec3)
			if len(owned) > 0 {
				positions := make([]kernel.Vec3, demoSeedPopulation)
				for j := range positions {
					positions[j] = kernel.Vec3{X: float64(j % demoGridSize), Y: 0, Z: 0}
				}
				initial[owned[0]] = positions
			}
			ev = kernel.NewParticleEvent(demoengines.NewParticleEngine(rng, demoBoxEdge, initial, rules, nil, 0.5, 0.2, 0.1, 1.0))
		default:
			return nil, fmt.Errorf("runconfig: build engine %q: unknown kind %q", es.ID, es.Kind)
		}

		ev.Own(owned...)
		for _, b := range es.Borrows {
			if err := ev.Borrow(kernel.Intern(b.Src), kernel.Intern(b.Dst)); err != nil {
				return nil, fmt.Errorf("runconfig: build engine %q: %w", es.ID, err)
			}
		}
		coord.AddEvent(ev)
	}

	if err := coord.Initialize(); err != nil {
		return nil, err
	}
	return coord, nil
}

func conversionRules(owned []kernel.SpeciesID) []demoengines.ConversionRule {
	if len(owned) < 2 {
		return nil
	}
	return []demoengines.ConversionRule{{Reactant: owned[0], Product: owned[1], Rate: 1.0}}
}
