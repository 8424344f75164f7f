package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the optional project configuration loaded from
// engage.yaml. All fields have working zero-value defaults, so a
// missing or partial file is fine.
type Config struct {
	// Backend selects the default execution engine.
	Backend string `yaml:"backend"`

	// TaskWorkers caps concurrently running tasks. Zero is
	// unlimited.
	TaskWorkers int `yaml:"task_workers"`

	// SourceExts lists extra file extensions treated as source, in
	// addition to the built-in one.
	SourceExts []string `yaml:"source_extensions"`
}

func Default() *Config {
	return &Config{Backend: BackendVM}
}

// Load reads engage.yaml from dir; a missing file yields the
// defaults.
func Load(dir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates configuration file contents.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ConfigFileName, err)
	}
	if cfg.Backend != BackendTree && cfg.Backend != BackendVM {
		return nil, fmt.Errorf("%s: unknown backend %q", ConfigFileName, cfg.Backend)
	}
	if cfg.TaskWorkers < 0 {
		return nil, fmt.Errorf("%s: task_workers must not be negative", ConfigFileName)
	}
	return cfg, nil
}

// IsSourceFile reports whether path carries a recognized source
// extension.
func (c *Config) IsSourceFile(path string) bool {
	ext := filepath.Ext(path)
	if ext == SourceFileExt {
		return true
	}
	for _, extra := range c.SourceExts {
		if ext == extra {
			return true
		}
	}
	return false
}
