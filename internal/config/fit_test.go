package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := EmptyFitConfig()
	if got := cfg.GetModel(); got != "gaussian" {
		t.Errorf("GetModel = %q, want gaussian", got)
	}
	if got := cfg.GetSamples(); got != 2000 {
		t.Errorf("GetSamples = %d, want 2000", got)
	}
	if got := cfg.GetSeed(); got != 1 {
		t.Errorf("GetSeed = %d, want 1", got)
	}
	if !cfg.GetUsePixelWeights() {
		t.Error("GetUsePixelWeights = false, want true")
	}
	if got := cfg.GetDBPath(); got != "" {
		t.Errorf("GetDBPath = %q, want empty", got)
	}
}

func TestPartialConfigOverridesOnlyNamedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fit.json")
	if err := os.WriteFile(path, []byte(`{"model":"point","samples":500}`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadFitConfig(path)
	if err != nil {
		t.Fatalf("LoadFitConfig: %v", err)
	}
	if got := cfg.GetModel(); got != "point" {
		t.Errorf("GetModel = %q, want point", got)
	}
	if got := cfg.GetSamples(); got != 500 {
		t.Errorf("GetSamples = %d, want 500", got)
	}
	// Unnamed fields fall back to defaults.
	if got := cfg.GetProposalStd(); got != 0.5 {
		t.Errorf("GetProposalStd = %v, want 0.5", got)
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadFitConfig(filepath.Join(dir, "fit.yaml")); err == nil {
		t.Error("accepted a non-json extension")
	}
	if _, err := LoadFitConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("accepted a missing file")
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFitConfig(bad); err == nil {
		t.Error("accepted malformed json")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	model := "point"
	samples := 123
	cfg := &FitConfig{Model: &model, Samples: &samples}
	path := filepath.Join(t.TempDir(), "fit.json")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	back, err := LoadFitConfig(path)
	if err != nil {
		t.Fatalf("LoadFitConfig: %v", err)
	}
	if back.GetModel() != "point" || back.GetSamples() != 123 {
		t.Errorf("round trip gave (%q, %d)", back.GetModel(), back.GetSamples())
	}
}
