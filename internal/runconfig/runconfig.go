// Package runconfig describes coordinator wiring in JSON: which demo
// engines to instantiate, what species each owns or borrows, and the
// master seed. It is deliberately not a reaction-rule authoring format —
// model definition and rule parsing stay out of scope (spec §1).
package runconfig

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BorrowSpec declares that an engine should mirror a peer-owned species
// src under the local name dst.
type BorrowSpec struct {
	Src string `json:"src"`
	Dst string `json:"dst"`
}

// EngineSpec describes one engine to instantiate: its kind, the species it
// authoritatively owns, any species it borrows, and (for CONTINUOUS) its
// fixed step width.
type EngineSpec struct {
	ID      string       `json:"id"`
	Kind    string       `json:"kind"`
	Owns    []string     `json:"owns"`
	Borrows []BorrowSpec `json:"borrows,omitempty"`
	Dt      float64      `json:"dt,omitempty"`
}

// RunConfig is the top-level coordinator wiring document.
type RunConfig struct {
	Seed    int64        `json:"seed"`
	Engines []EngineSpec `json:"engines"`
}

var validKinds = map[string]bool{
	"CONTINUOUS": true,
	"WELLMIXED":  true,
	"SUBVOLUME":  true,
	"LATTICE":    true,
	"PARTICLE":   true,
}

// ValidationError collects every issue found, rather than failing fast, in
// the shape the teacher's schema validation uses.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid run config: unknown validation error"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0]
	}
	return "run config validation errors: " + strings.Join(e.Issues, "; ")
}

func (e *ValidationError) Add(issue string) { e.Issues = append(e.Issues, issue) }
func (e *ValidationError) HasIssues() bool  { return len(e.Issues) > 0 }

// Validate checks cfg for structural consistency: unique engine IDs, known
// kinds, a positive dt for every CONTINUOUS engine, and at most one owner
// per species across the whole run.
func Validate(cfg RunConfig) error {
	verr := &ValidationError{}

	if len(cfg.Engines) == 0 {
		verr.Add("at least one engine is required")
	}

	ids := make(map[string]bool)
	owner := make(map[string]string)

	for i, es := range cfg.Engines {
		prefix := fmt.Sprintf("engine at index %d", i)
		if es.ID != "" {
			prefix = fmt.Sprintf("engine %q", es.ID)
		}

		if es.ID == "" {
			verr.Add(prefix + ": id is required")
		} else if ids[es.ID] {
			verr.Add(fmt.Sprintf("duplicate engine id: %s", es.ID))
		} else {
			ids[es.ID] = true
		}

		if !validKinds[es.Kind] {
			verr.Add(fmt.Sprintf("%s: unknown kind %q", prefix, es.Kind))
		}
		if es.Kind == "CONTINUOUS" && es.Dt <= 0 {
			verr.Add(prefix + ": dt must be positive for a CONTINUOUS engine")
		}

		for _, sp := range es.Owns {
			if sp == "" {
				verr.Add(prefix + ": owns an empty species name")
				continue
			}
			if prev, exists := owner[sp]; exists {
				verr.Add(fmt.Sprintf("species %q owned by both %s and %s", sp, prev, es.ID))
				continue
			}
			owner[sp] = es.ID
		}

		for j, b := range es.Borrows {
			if b.Src == "" || b.Dst == "" {
				verr.Add(fmt.Sprintf("%s borrow at index %d: src and dst are both required", prefix, j))
			}
		}
	}

	if verr.HasIssues() {
		return verr
	}
	return nil
}

// Load parses and validates a RunConfig from JSON.
func Load(data []byte) (RunConfig, error) {
	var cfg RunConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, fmt.Errorf("failed to parse run config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}
