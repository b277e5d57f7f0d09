package snapshot

import "testing"

func TestValidate_AcceptsCleanSnapshot(t *testing.T) {
	s := Snapshot{
		EnvironmentID: "env1",
		Species:       []SpeciesValue{{Species: "A", Value: 3}},
	}
	if err := Validate(s, map[string]bool{"A": true}); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidate_RejectsEmptySpeciesName(t *testing.T) {
	s := Snapshot{Species: []SpeciesValue{{Species: "", Value: 1}}}
	if err := Validate(s, nil); err == nil {
		t.Fatalf("expected an error for an empty species name")
	}
}

func TestValidate_RejectsDuplicateSpecies(t *testing.T) {
	s := Snapshot{Species: []SpeciesValue{{Species: "A", Value: 1}, {Species: "A", Value: 2}}}
	if err := Validate(s, nil); err == nil {
		t.Fatalf("expected an error for a duplicate species entry")
	}
}

func TestValidate_RejectsUnknownSpeciesWhenKnownSetProvided(t *testing.T) {
	s := Snapshot{Species: []SpeciesValue{{Species: "Z", Value: 1}}}
	if err := Validate(s, map[string]bool{"A": true}); err == nil {
		t.Fatalf("expected an error for a species outside the known set")
	}
}

func TestEncodeDecodeJSON_RoundTrips(t *testing.T) {
	s := Snapshot{
		EnvironmentID: "env1",
		Time:          3.5,
		StepCount:     4,
		Species:       []SpeciesValue{{Species: "A", Value: 2}},
		Events:        []EventSnapshot{{Kind: "WELLMIXED", T: 3.5, NumSteps: 4}},
	}
	data, err := EncodeJSON(s)
	if err != nil {
		t.Fatalf("EncodeJSON failed: %v", err)
	}
	got, err := DecodeJSON(data)
	if err != nil {
		t.Fatalf("DecodeJSON failed: %v", err)
	}
	if got.EnvironmentID != s.EnvironmentID || got.Time != s.Time || len(got.Species) != 1 {
		t.Fatalf("round-tripped snapshot mismatch: %+v vs %+v", got, s)
	}
}

func TestDecodeJSON_RejectsMalformedInput(t *testing.T) {
	if _, err := DecodeJSON([]byte(`{not json`)); err == nil {
		t.Fatalf("expected an error for malformed JSON")
	}
}
