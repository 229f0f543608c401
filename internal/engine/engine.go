package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"
	"unicode/utf8"

	"github.com/codegate/codegate/internal/content"
	"github.com/codegate/codegate/internal/pathmatch"
	"github.com/codegate/codegate/internal/policy"
	"github.com/codegate/codegate/internal/rules"
	"github.com/codegate/codegate/internal/types"
	"github.com/codegate/codegate/internal/verdict"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrNotText marks content that is not valid UTF-8 text.
var ErrNotText = errors.New("not a valid text file")

// Engine scans files against one compiled policy.
type Engine struct {
	spec    policy.Spec
	rules   *rules.RuleSet
	log     zerolog.Logger
	threads int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for compile warnings and per-file debug
// output. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithThreads bounds ScanFiles parallelism (0 = GOMAXPROCS).
func WithThreads(n int) Option {
	return func(e *Engine) { e.threads = n }
}

// New compiles spec and returns a ready engine. Invalid rules are dropped
// with a warning; see Rules().Skipped().
func New(spec policy.Spec, opts ...Option) *Engine {
	e := &Engine{spec: spec, log: zerolog.Nop()}
	for _, o := range opts {
		o(e)
	}
	if e.threads <= 0 {
		e.threads = runtime.GOMAXPROCS(0)
	}
	e.rules = rules.Compile(spec, e.log)
	return e
}

// Policy returns the policy the engine was built from.
func (e *Engine) Policy() policy.Spec { return e.spec }

// Rules returns the compiled rule set.
func (e *Engine) Rules() *rules.RuleSet { return e.rules }

// CheckPath evaluates path against the blocked-path rules.
func (e *Engine) CheckPath(path string) verdict.PathResult {
	blocked, reason := pathmatch.IsBlocked(filepath.ToSlash(path), e.spec.BlockedPathPatterns)
	return verdict.PathResult{Blocked: blocked, Reason: reason}
}

// ScanContent runs the compiled rules against text.
func (e *Engine) ScanContent(text string) []types.Finding {
	return content.Scan(text, e.rules)
}

// Source is a file's text as read by the caller, or the reason it could
// not be read. Err wrapping ErrNotText yields the not-text verdict.
type Source struct {
	Text string
	Size int64
	Err  error
}

// Evaluate decides a verdict for text the caller already read. A read
// failure wins over everything else; then a blocked path; then content.
func (e *Engine) Evaluate(path string, src Source) types.ScanVerdict {
	if src.Err != nil {
		return readFailure(src.Err, src.Size)
	}
	return e.compose(path, e.CheckPath(path), src.Text, src.Size)
}

// ScanFile stats, path-checks, reads and scans one file. Files whose path is
// blocked are never read.
func (e *Engine) ScanFile(path string) types.ScanVerdict {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return e.logged(path, verdict.Failure("File not found: "+path, 0))
		}
		return e.logged(path, verdict.Failure(fmt.Sprintf("Error reading file: %v", err), 0))
	}
	if !info.Mode().IsRegular() {
		return e.logged(path, verdict.Failure("Not a file: "+path, 0))
	}
	size := info.Size()

	pr := e.CheckPath(path)
	if pr.Blocked {
		return e.logged(path, verdict.Compose(pr, nil, size, ""))
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return e.logged(path, readFailure(err, size))
	}
	if !utf8.Valid(b) {
		return e.logged(path, readFailure(ErrNotText, size))
	}
	return e.compose(path, pr, string(b), size)
}

func (e *Engine) compose(path string, pr verdict.PathResult, text string, size int64) types.ScanVerdict {
	var findings []types.Finding
	if !pr.Blocked {
		findings = e.ScanContent(text)
	}
	return e.logged(path, verdict.Compose(pr, findings, size, text))
}

func (e *Engine) logged(path string, v types.ScanVerdict) types.ScanVerdict {
	e.log.Debug().Str("path", path).Str("status", v.Status()).Int("findings", len(v.Findings)).Msg(v.Reason)
	return v
}

func readFailure(err error, size int64) types.ScanVerdict {
	if errors.Is(err, ErrNotText) {
		return verdict.Failure(verdict.ReasonNotText, size)
	}
	return verdict.Failure(fmt.Sprintf("Error reading file: %v", err), size)
}

// Result pairs a scanned path with its verdict.
type Result struct {
	Path    string            `json:"path"`
	Verdict types.ScanVerdict `json:"verdict"`
}

// Batch is the outcome of ScanFiles.
type Batch struct {
	Results  []Result
	Duration time.Duration
}

// ScanFiles scans paths on a bounded worker pool and returns results in the
// order of paths. A per-file failure is an error verdict, not a Go error;
// only context cancellation stops the batch.
func (e *Engine) ScanFiles(ctx context.Context, paths []string) (Batch, error) {
	started := time.Now()
	results := make([]Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.threads)
	for i, p := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Result{Path: p, Verdict: e.ScanFile(p)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Batch{}, fmt.Errorf("batch scan: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Batch{}, fmt.Errorf("batch scan: %w", err)
	}
	return Batch{Results: results, Duration: time.Since(started)}, nil
}

// Summary counts batch outcomes.
type Summary struct {
	Total   int `json:"total"`
	Allowed int `json:"allowed"`
	Blocked int `json:"blocked"`
	Errors  int `json:"errors"`
}

// Summarize counts allowed, blocked and errored verdicts.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Verdict.Status() {
		case "allowed":
			s.Allowed++
		case "error":
			s.Errors++
		default:
			s.Blocked++
		}
	}
	return s
}
