package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
  "dev": {
    "LogDirectory": "/tmp/bagkeeper-dev",
    "LogToStderr": true,
    "DefaultOutputDirectory": "/tmp/bags"
  },
  "prod": {
    "LogDirectory": "/var/log/bagkeeper",
    "DefaultProfilePath": "/etc/bagkeeper/aptrust.json"
  }
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadReturnsNamedConfig(t *testing.T) {
	path := writeConfigFixture(t)

	cfg, err := Load(path, "dev")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ActiveConfig != "dev" {
		t.Errorf("ActiveConfig = %q, want dev", cfg.ActiveConfig)
	}
	if cfg.LogDirectory != "/tmp/bagkeeper-dev" || !cfg.LogToStderr {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadUnknownNameErrors(t *testing.T) {
	path := writeConfigFixture(t)

	if _, err := Load(path, "staging"); err == nil {
		t.Fatal("expected an error for an unrecognized configuration name")
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json"), "dev"); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
