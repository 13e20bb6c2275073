package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Repo != "." {
		t.Errorf("Repo = %q, want .", cfg.Repo)
	}
	if cfg.Pipeline.MaxSweeps != 16 {
		t.Errorf("MaxSweeps = %d, want 16", cfg.Pipeline.MaxSweeps)
	}
	if cfg.Audit.MinChainLength != 3 {
		t.Errorf("MinChainLength = %d, want 3", cfg.Audit.MinChainLength)
	}
	if cfg.Output.Dir != ".miglens" {
		t.Errorf("Output.Dir = %q, want .miglens", cfg.Output.Dir)
	}
	if !cfg.IsInspectorEnabled("source-kind") || !cfg.IsInspectorEnabled("census") {
		t.Error("built-in inspectors should be enabled by default")
	}
	if !cfg.IsRendererEnabled("summary") {
		t.Error("summary renderer should be enabled by default")
	}
}

func TestLoad(t *testing.T) {
	content := `
repo: /some/repo
inspectors:
  - source-kind
pipeline:
  max_sweeps: 4
audit:
  min_chain_length: 5
facts:
  registry:
    - SOURCE_DETECTED
  strict: true
`
	path := filepath.Join(t.TempDir(), "miglens.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Repo != "/some/repo" {
		t.Errorf("Repo = %q", cfg.Repo)
	}
	if cfg.Pipeline.MaxSweeps != 4 {
		t.Errorf("MaxSweeps = %d, want 4", cfg.Pipeline.MaxSweeps)
	}
	if cfg.Audit.MinChainLength != 5 {
		t.Errorf("MinChainLength = %d, want 5", cfg.Audit.MinChainLength)
	}
	if !cfg.Facts.Strict {
		t.Error("Facts.Strict should be true")
	}
	if len(cfg.Facts.Registry) != 1 || cfg.Facts.Registry[0] != "SOURCE_DETECTED" {
		t.Errorf("Facts.Registry = %v", cfg.Facts.Registry)
	}

	// Overridden list replaces the default roster entirely.
	if cfg.IsInspectorEnabled("census") {
		t.Error("census should be disabled by the explicit inspector list")
	}
	if !cfg.IsInspectorEnabled("source-kind") {
		t.Error("source-kind should remain enabled")
	}

	// Unset sections keep their defaults.
	if cfg.Output.Dir != ".miglens" {
		t.Errorf("Output.Dir = %q, want default", cfg.Output.Dir)
	}
	if len(cfg.Ignore) == 0 {
		t.Error("default ignore patterns should survive a partial config")
	}
}

func TestLoad_BackfillsInvalidValues(t *testing.T) {
	content := `
pipeline:
  max_sweeps: -1
audit:
  min_chain_length: 0
output:
  dir: ""
`
	path := filepath.Join(t.TempDir(), "miglens.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pipeline.MaxSweeps != 16 {
		t.Errorf("MaxSweeps = %d, want backfilled 16", cfg.Pipeline.MaxSweeps)
	}
	if cfg.Audit.MinChainLength != 3 {
		t.Errorf("MinChainLength = %d, want backfilled 3", cfg.Audit.MinChainLength)
	}
	if cfg.Output.Dir != ".miglens" {
		t.Errorf("Output.Dir = %q, want backfilled .miglens", cfg.Output.Dir)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("repo: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}
