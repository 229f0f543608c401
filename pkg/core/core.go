package core

import (
	"context"

	"github.com/codegate/codegate/internal/discover"
	"github.com/codegate/codegate/internal/engine"
	"github.com/codegate/codegate/internal/policy"
	"github.com/codegate/codegate/internal/types"
	"github.com/rs/zerolog"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type Policy = policy.Spec
type PatternRule = policy.PatternRule
type Verdict = types.ScanVerdict
type Finding = types.Finding
type Severity = types.Severity
type Result = engine.Result
type Engine = engine.Engine

var ErrInvalidPolicy = policy.ErrInvalidPolicy

// Config selects what Scan discovers and how it scans.
type Config struct {
	// Policy is a policy file path; empty uses the built-in default profile.
	Policy          string
	Paths           []string
	Recursive       bool
	IncludeGlobs    string
	ExcludeGlobs    string
	MaxBytes        int64
	DefaultExcludes bool
	Threads         int
	Logger          *zerolog.Logger
}

// LoadPolicy reads and validates a policy file. An empty path returns the
// default profile.
func LoadPolicy(path string) (Policy, error) { return policy.Load(path) }

// ParsePolicy validates a YAML or JSON policy document.
func ParsePolicy(data []byte) (Policy, error) { return policy.Parse(data) }

// DefaultPolicy returns the built-in default-secure profile.
func DefaultPolicy() (Policy, error) { return policy.Default() }

// NewEngine compiles p for repeated, concurrent use.
func NewEngine(p Policy) *Engine { return engine.New(p) }

// ScanFile scans one file against p. Callers scanning many files should
// build an Engine once instead.
func ScanFile(p Policy, path string) Verdict {
	return engine.New(p).ScanFile(path)
}

// Scan is the stable entrypoint for other programs: discover files under
// cfg.Paths and scan them against the configured policy.
func Scan(ctx context.Context, cfg Config) ([]Result, error) {
	spec, err := policy.Load(cfg.Policy)
	if err != nil {
		return nil, err
	}
	files, err := discover.Discover(discover.Config{
		Recursive:       cfg.Recursive,
		Include:         cfg.IncludeGlobs,
		Exclude:         cfg.ExcludeGlobs,
		MaxBytes:        cfg.MaxBytes,
		DefaultExcludes: cfg.DefaultExcludes,
		Logger:          cfg.Logger,
	}, cfg.Paths)
	if err != nil {
		return nil, err
	}
	opts := []engine.Option{engine.WithThreads(cfg.Threads)}
	if cfg.Logger != nil {
		opts = append(opts, engine.WithLogger(*cfg.Logger))
	}
	batch, err := engine.New(spec, opts...).ScanFiles(ctx, files)
	if err != nil {
		return nil, err
	}
	return batch.Results, nil
}
