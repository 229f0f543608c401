package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrNoConfig is returned by LoadLocal and LoadGlobal when there is no file
// to read. It matches fs.ErrNotExist; any other error means a config file
// exists but could not be used.
var ErrNoConfig = fmt.Errorf("no config file: %w", fs.ErrNotExist)

// FileConfig is the on-disk YAML configuration shape for codegate. Every field
// is optional; nil means "not set here".
type FileConfig struct {
	Policy          *string `yaml:"policy"`
	Include         *string `yaml:"include"`
	Exclude         *string `yaml:"exclude"`
	Name            *string `yaml:"name"`
	Languages       *string `yaml:"languages"`
	MaxBytes        *int64  `yaml:"max_bytes"`
	Threads         *int    `yaml:"threads"`
	Recursive       *bool   `yaml:"recursive"`
	DefaultExcludes *bool   `yaml:"default_excludes"`
	FailOn          *string `yaml:"fail_on"`
	NoColor         *bool   `yaml:"no_color"`
	Baseline        *string `yaml:"baseline"`

	Audit *AuditConfig `yaml:"audit"`
}

// AuditConfig controls the JSONL audit log.
type AuditConfig struct {
	// Enabled overrides the policy's logging.enabled flag when set.
	Enabled *bool `yaml:"enabled"`

	// Path is an explicit log file. If empty, the log lives next to the
	// scanned repository (under .git when present).
	Path *string `yaml:"path"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadLocal searches for a repo-local config file in the given root.
// It supports .codegate.yml/.yaml and codegate.yml/.yaml.
func LoadLocal(repoRoot string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range []string{".codegate.yml", ".codegate.yaml", "codegate.yml", "codegate.yaml"} {
		p := filepath.Join(repoRoot, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, ErrNoConfig
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return cfg, ErrNoConfig
	}
	p := filepath.Join(base, "codegate", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, ErrNoConfig
}

// GetAuditConfig returns the audit configuration, never nil.
func (fc FileConfig) GetAuditConfig() AuditConfig {
	if fc.Audit == nil {
		return AuditConfig{}
	}
	return *fc.Audit
}

// IsEnabled resolves the audit switch against the policy default.
func (ac AuditConfig) IsEnabled(policyDefault bool) bool {
	if ac.Enabled == nil {
		return policyDefault
	}
	return *ac.Enabled
}

// GetPath returns the configured log path or empty string.
func (ac AuditConfig) GetPath() string {
	if ac.Path == nil {
		return ""
	}
	return *ac.Path
}
