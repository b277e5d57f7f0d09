package runconfig

import "testing"

func TestBuild_WiresOneEventPerEngine(t *testing.T) {
	cfg := RunConfig{
		Seed: 1,
		Engines: []EngineSpec{
			{ID: "wm", Kind: "WELLMIXED", Owns: []string{"A", "B"}},
			{ID: "cont", Kind: "CONTINUOUS", Owns: []string{"C"}, Dt: 0.1},
		},
	}

	coord, err := Build(cfg, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(coord.Events()) != 2 {
		t.Fatalf("expected 2 events, got %d", len(coord.Events()))
	}
}

func TestBuild_RejectsInvalidConfig(t *testing.T) {
	if _, err := Build(RunConfig{}, nil); err == nil {
		t.Fatalf("expected Build to reject an invalid config")
	}
}

func TestBuild_RejectsUnknownKind(t *testing.T) {
	cfg := RunConfig{Engines: []EngineSpec{{ID: "e1", Kind: "WELLMIXED", Owns: []string{"A"}}}}
	cfg.Engines[0].Kind = "QUANTUM"
	if _, err := Build(cfg, nil); err == nil {
		t.Fatalf("expected Build to reject an unknown engine kind")
	}
}
