package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "AdmitGuard" {
		t.Errorf("expected Name=AdmitGuard, got %s", cfg.Name)
	}
	if cfg.Rules.MinPercentage != 60.0 {
		t.Errorf("expected MinPercentage=60, got %v", cfg.Rules.MinPercentage)
	}
	if cfg.Rules.ExceptionBufferCGPA != 0.1 {
		t.Errorf("expected ExceptionBufferCGPA=0.1, got %v", cfg.Rules.ExceptionBufferCGPA)
	}
	if cfg.Pipeline.Workers != 4 {
		t.Errorf("expected Workers=4, got %d", cfg.Pipeline.Workers)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("ADMITGUARD_DB", "")
	t.Setenv("ADMITGUARD_LOG_LEVEL", "")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "admitguard.yaml")

	cfg := DefaultConfig()
	cfg.Rules.MinPercentage = 65.0
	cfg.Rules.ExceptionBufferPct = 2.0

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Rules.MinPercentage != 65.0 {
		t.Errorf("expected MinPercentage=65, got %v", loaded.Rules.MinPercentage)
	}
	if loaded.Rules.ExceptionBufferPct != 2.0 {
		t.Errorf("expected ExceptionBufferPct=2, got %v", loaded.Rules.ExceptionBufferPct)
	}
}

func TestConfig_LoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("ADMITGUARD_DB", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Rules.MinCGPA != 6.0 {
		t.Errorf("expected default MinCGPA=6.0, got %v", cfg.Rules.MinCGPA)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	os.Setenv("ADMITGUARD_DB", "/tmp/env-admitguard.db")
	defer os.Unsetenv("ADMITGUARD_DB")

	os.Setenv("ADMITGUARD_LOG_LEVEL", "debug")
	defer os.Unsetenv("ADMITGUARD_LOG_LEVEL")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	if cfg.Database.Path != "/tmp/env-admitguard.db" {
		t.Errorf("expected DB path override, got %s", cfg.Database.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level=debug, got %s", cfg.Logging.Level)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid default config, got error: %v", err)
	}

	cfg.Rules.ExceptionBufferPct = -1.0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for negative buffer")
	}

	cfg = DefaultConfig()
	cfg.Pipeline.Workers = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for zero workers")
	}

	cfg = DefaultConfig()
	cfg.Logging.Level = "chatty"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unknown log level")
	}
}

func TestConfig_Helpers(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.GetRunTimeout() == 0 {
		t.Error("GetRunTimeout should return non-zero duration")
	}

	cfg.Pipeline.RunTimeout = "not-a-duration"
	if cfg.GetRunTimeout() == 0 {
		t.Error("GetRunTimeout should fall back to a sane default")
	}

	rules := cfg.Screening()
	if rules.MinPercentage != cfg.Rules.MinPercentage {
		t.Error("Screening() should mirror the rules config")
	}
}
