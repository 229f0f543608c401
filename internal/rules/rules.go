// Package rules compiles a policy's sensitive-content rules into immutable
// matchers. A RuleSet is built once per policy load and is safe for
// concurrent use by any number of scans.
package rules

import (
	"fmt"
	"regexp"

	"github.com/codegate/codegate/internal/policy"
	"github.com/codegate/codegate/internal/types"
	"github.com/rs/zerolog"
)

// MaxPatternLength bounds the source length of a single rule. Go's regexp
// engine runs in time linear in the input, so pattern size is the remaining
// cost lever for user-supplied rules.
const MaxPatternLength = 4096

// CompileError describes a rule that was dropped at compile time.
type CompileError struct {
	Rule    string
	Pattern string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("rule %q: invalid pattern %q: %v", e.Rule, e.Pattern, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// CompiledRule is a ready-to-match sensitive-content rule.
type CompiledRule struct {
	name        string
	description string
	severity    types.Severity
	re          *regexp.Regexp
}

func (r *CompiledRule) Name() string             { return r.name }
func (r *CompiledRule) Description() string      { return r.description }
func (r *CompiledRule) Severity() types.Severity { return r.severity }

// FindAll returns every non-overlapping match of the rule in s, in order.
func (r *CompiledRule) FindAll(s string) []string {
	return r.re.FindAllString(s, -1)
}

// RuleSet is the ordered result of compiling a policy.
type RuleSet struct {
	rules   []*CompiledRule
	skipped []*CompileError
}

// Rules returns the compiled rules in declaration order.
func (rs *RuleSet) Rules() []*CompiledRule {
	if rs == nil {
		return nil
	}
	out := make([]*CompiledRule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Len reports the number of usable rules.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// Skipped lists the rules that failed to compile.
func (rs *RuleSet) Skipped() []*CompileError {
	if rs == nil {
		return nil
	}
	out := make([]*CompileError, len(rs.skipped))
	copy(out, rs.skipped)
	return out
}

// Compile builds a RuleSet from spec. Rules whose pattern does not compile
// are logged at warn level and left out; the rest of the policy is kept.
// Matching is case-insensitive.
func Compile(spec policy.Spec, logger zerolog.Logger) *RuleSet {
	rs := &RuleSet{rules: make([]*CompiledRule, 0, len(spec.SensitivePatterns))}
	for _, pr := range spec.SensitivePatterns {
		cr, err := compileRule(pr)
		if err != nil {
			logger.Warn().Str("rule", pr.Name).Str("pattern", pr.Pattern).Err(err.Err).Msg("Invalid regex pattern, rule skipped")
			rs.skipped = append(rs.skipped, err)
			continue
		}
		rs.rules = append(rs.rules, cr)
	}
	return rs
}

func compileRule(pr policy.PatternRule) (*CompiledRule, *CompileError) {
	if len(pr.Pattern) > MaxPatternLength {
		return nil, &CompileError{Rule: pr.Name, Pattern: pr.Pattern, Err: fmt.Errorf("pattern longer than %d bytes", MaxPatternLength)}
	}
	re, err := regexp.Compile("(?i)" + pr.Pattern)
	if err != nil {
		return nil, &CompileError{Rule: pr.Name, Pattern: pr.Pattern, Err: err}
	}
	sev := pr.Severity
	if !sev.Valid() {
		sev = types.SevMed
	}
	return &CompiledRule{
		name:        pr.Name,
		description: pr.Description,
		severity:    sev,
		re:          re,
	}, nil
}
