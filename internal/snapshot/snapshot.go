// Package snapshot captures a point-in-time view of a running Coordinator
// and encodes/decodes it as JSON, ported from the teacher's persistence.go.
// It does not restore a Coordinator from a Snapshot.
package snapshot

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/daniacca/hybridchem/internal/kernel"
)

// SpeciesValue is one species' population at snapshot time, according to
// whichever Event owns it.
type SpeciesValue struct {
	Species string  `json:"species"`
	Value   float64 `json:"value"`
}

// EventSnapshot is one Event's scheduling state at snapshot time.
type EventSnapshot struct {
	Kind     string  `json:"kind"`
	T        float64 `json:"t"`
	NumSteps int     `json:"num_steps"`
}

// Snapshot is a point-in-time capture of one Coordinator: its Events'
// scheduling state plus every tracked species' population.
type Snapshot struct {
	EnvironmentID string          `json:"environment_id"`
	Time          float64         `json:"time"`
	StepCount     int             `json:"step_count"`
	Species       []SpeciesValue  `json:"species"`
	Events        []EventSnapshot `json:"events"`
}

// Build captures c's current state. species lists every species name the
// caller wants recorded; a name not owned by any registered Event is
// silently omitted from the result (it has no authoritative value yet).
func Build(envID string, c *kernel.Coordinator, species []string) Snapshot {
	snap := Snapshot{EnvironmentID: envID, Time: c.T(), StepCount: c.NumSteps()}
	for _, e := range c.Events() {
		snap.Events = append(snap.Events, EventSnapshot{
			Kind:     e.Kind().String(),
			T:        e.T(),
			NumSteps: e.NumSteps(),
		})
	}
	for _, name := range species {
		if v, ok := c.GetValue(kernel.Intern(name)); ok {
			snap.Species = append(snap.Species, SpeciesValue{Species: name, Value: v})
		}
	}
	return snap
}

// ValidationError accumulates every snapshot issue found, rather than
// failing on the first one.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return e.Issues[0]
	}
	return fmt.Sprintf("%d snapshot validation issues: %s", len(e.Issues), strings.Join(e.Issues, "; "))
}

// Validate checks a decoded Snapshot for internal consistency: no duplicate
// species entries, and (if known is non-nil) every species name recognized.
func Validate(s Snapshot, known map[string]bool) error {
	var verr *ValidationError
	addIssue := func(format string, args ...any) {
		if verr == nil {
			verr = &ValidationError{}
		}
		verr.Issues = append(verr.Issues, fmt.Sprintf(format, args...))
	}

	seen := make(map[string]struct{}, len(s.Species))
	for _, sv := range s.Species {
		if sv.Species == "" {
			addIssue("snapshot has a species entry with an empty name")
			continue
		}
		if _, dup := seen[sv.Species]; dup {
			addIssue("duplicate species entry: %s", sv.Species)
			continue
		}
		seen[sv.Species] = struct{}{}
		if known != nil && !known[sv.Species] {
			addIssue("species %q not found in the run's known species", sv.Species)
		}
	}

	if verr != nil {
		return verr
	}
	return nil
}

// EncodeJSON encodes a Snapshot to JSON.
func EncodeJSON(s Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeJSON decodes a Snapshot from JSON.
func DecodeJSON(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return s, nil
}
