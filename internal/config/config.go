package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the miglens.yaml configuration.
type Config struct {
	Repo       string       `yaml:"repo"`
	Ignore     []string     `yaml:"ignore"`
	Inspectors []string     `yaml:"inspectors"`
	Renderers  []string     `yaml:"renderers"`
	Pipeline   Pipeline     `yaml:"pipeline"`
	Audit      AuditConfig  `yaml:"audit"`
	Facts      FactsConfig  `yaml:"facts"`
	Output     OutputConfig `yaml:"output"`
}

// Pipeline controls the multi-phase scheduler.
type Pipeline struct {
	// MaxSweeps bounds each fixpoint phase. The bound is mandatory; it is
	// the only guard against non-terminating schedules from malformed
	// descriptors.
	MaxSweeps int `yaml:"max_sweeps"`
}

// AuditConfig tunes the ecosystem audit.
type AuditConfig struct {
	MinChainLength int `yaml:"min_chain_length"`
}

// FactsConfig configures the canonical fact-name registry used by the
// strict validation pass.
type FactsConfig struct {
	// Registry lists canonical fact names inline.
	Registry []string `yaml:"registry"`
	// RegistryFile points at a YAML file with additional names.
	RegistryFile string `yaml:"registry_file"`
	// Strict makes unrecognized required facts abort the session.
	Strict bool `yaml:"strict"`
}

// OutputConfig controls where output artifacts are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Repo: ".",
		Ignore: []string{
			"vendor/**",
			"node_modules/**",
			".git/**",
			"target/**",
			"build/**",
			".miglens/**",
		},
		Inspectors: []string{
			"source-kind", "line-metrics", "large-file", "source-digest",
			"archive-kind", "archive-entries", "archive-digest", "census",
		},
		Renderers: []string{"summary"},
		Pipeline:  Pipeline{MaxSweeps: 16},
		Audit:     AuditConfig{MinChainLength: 3},
		Output:    OutputConfig{Dir: ".miglens"},
	}
}

// Load reads a configuration file from the given path.
// Missing fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Ensure required defaults
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = ".miglens"
	}
	if cfg.Pipeline.MaxSweeps <= 0 {
		cfg.Pipeline.MaxSweeps = 16
	}
	if cfg.Audit.MinChainLength <= 0 {
		cfg.Audit.MinChainLength = 3
	}

	return cfg, nil
}

// IsInspectorEnabled returns true if the named inspector is enabled.
func (c *Config) IsInspectorEnabled(name string) bool {
	return contains(c.Inspectors, name)
}

// IsRendererEnabled returns true if the named renderer is enabled.
func (c *Config) IsRendererEnabled(name string) bool {
	return contains(c.Renderers, name)
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
