package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMatchesSpecDefaults(t *testing.T) {
	c := Default()
	if c.TickRateHz != 20 {
		t.Errorf("TickRateHz = %d, want 20", c.TickRateHz)
	}
	if c.Physics.DirectThreshold != 1000 {
		t.Errorf("DirectThreshold = %d, want 1000", c.Physics.DirectThreshold)
	}
	if c.RateLimit.PerMinute != 10 || c.RateLimit.Burst != 3 {
		t.Errorf("rate limit defaults = %+v", c.RateLimit)
	}
}

func TestLoadFromEnvOverridesDefaults(t *testing.T) {
	t.Setenv("OWNWORLD_TICK_RATE_HZ", "30")
	t.Setenv("OWNWORLD_PERSISTENCE_COMPRESSION", "lz4")
	t.Setenv("OWNWORLD_AUTOSAVE_INTERVAL", "2m")

	c, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if c.TickRateHz != 30 {
		t.Errorf("TickRateHz = %d, want 30", c.TickRateHz)
	}
	if c.Persistence.Compression != "lz4" {
		t.Errorf("Compression = %s, want lz4", c.Persistence.Compression)
	}
	if c.AutosaveInterval.String() != "2m0s" {
		t.Errorf("AutosaveInterval = %s, want 2m0s", c.AutosaveInterval)
	}
}

func TestLoadFromEnvRejectsMalformedValue(t *testing.T) {
	t.Setenv("OWNWORLD_TICK_RATE_HZ", "not-a-number")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("expected error for malformed tick rate")
	}
}

func TestLoadFromEnvLoadsTuningFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	content := "creation_costs:\n  planet: 750\nupgrade_base_costs:\n  energy_efficiency: 200\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write tuning file: %v", err)
	}
	t.Setenv("OWNWORLD_TUNING_FILE", path)

	c, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if c.Tuning.CreationCosts["planet"] != 750 {
		t.Errorf("creation cost override = %d, want 750", c.Tuning.CreationCosts["planet"])
	}
}
