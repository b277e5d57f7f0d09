package runconfig

import "testing"

func TestValidate_AcceptsWellFormedConfig(t *testing.T) {
	cfg := RunConfig{
		Seed: 1,
		Engines: []EngineSpec{
			{ID: "e1", Kind: "WELLMIXED", Owns: []string{"A", "B"}},
			{ID: "e2", Kind: "CONTINUOUS", Owns: []string{"C"}, Dt: 0.1},
		},
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected no validation error, got: %v", err)
	}
}

func TestValidate_RejectsNoEngines(t *testing.T) {
	if err := Validate(RunConfig{Seed: 1}); err == nil {
		t.Fatalf("expected an error for a run config with no engines")
	}
}

func TestValidate_RejectsUnknownKind(t *testing.T) {
	cfg := RunConfig{Engines: []EngineSpec{{ID: "e1", Kind: "QUANTUM"}}}
	err := Validate(cfg)
	if err == nil {
		t.Fatalf("expected an error for an unknown engine kind")
	}
}

func TestValidate_RejectsContinuousWithoutPositiveDt(t *testing.T) {
	cfg := RunConfig{Engines: []EngineSpec{{ID: "e1", Kind: "CONTINUOUS", Dt: 0}}}
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected an error for a CONTINUOUS engine with a non-positive dt")
	}
}

func TestValidate_RejectsDoubleOwnership(t *testing.T) {
	cfg := RunConfig{
		Engines: []EngineSpec{
			{ID: "e1", Kind: "WELLMIXED", Owns: []string{"A"}},
			{ID: "e2", Kind: "WELLMIXED", Owns: []string{"A"}},
		},
	}
	err := Validate(cfg)
	if err == nil {
		t.Fatalf("expected an error when two engines own the same species")
	}
}

func TestValidate_RejectsDuplicateEngineIDs(t *testing.T) {
	cfg := RunConfig{
		Engines: []EngineSpec{
			{ID: "e1", Kind: "WELLMIXED", Owns: []string{"A"}},
			{ID: "e1", Kind: "WELLMIXED", Owns: []string{"B"}},
		},
	}
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected an error for duplicate engine ids")
	}
}

func TestLoad_ParsesAndValidates(t *testing.T) {
	data := []byte(`{"seed":5,"engines":[{"id":"e1","kind":"WELLMIXED","owns":["A"]}]}`)
	cfg, err := Load(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Seed != 5 || len(cfg.Engines) != 1 {
		t.Fatalf("unexpected parsed config: %+v", cfg)
	}
}

func TestLoad_RejectsMalformedJSON(t *testing.T) {
	if _, err := Load([]byte(`{not json`)); err == nil {
		t.Fatalf("expected an error for malformed JSON")
	}
}
