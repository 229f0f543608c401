package policy

import "github.com/codegate/codegate/internal/types"

// Spec is a validated security policy.
type Spec struct {
	Name        string
	Version     string
	Description string

	// BlockedPathPatterns is evaluated in order; the first match wins.
	BlockedPathPatterns []string

	// SensitivePatterns keeps declaration order. Names are unique.
	SensitivePatterns []PatternRule

	// LoggingEnabled mirrors the optional logging.enabled document key.
	LoggingEnabled bool
}

// PatternRule is one sensitive-content rule as declared in the document.
type PatternRule struct {
	Name        string
	Pattern     string
	Description string
	Severity    types.Severity
}

// Rule returns the rule declared under name.
func (s Spec) Rule(name string) (PatternRule, bool) {
	for _, r := range s.SensitivePatterns {
		if r.Name == name {
			return r, true
		}
	}
	return PatternRule{}, false
}

// Info is the policy metadata shown by "policy show".
type Info struct {
	Name              string `json:"name"`
	Version           string `json:"version"`
	Description       string `json:"description"`
	BlockedPatterns   int    `json:"blocked_patterns_count"`
	SensitivePatterns int    `json:"sensitive_patterns_count"`
}

func (s Spec) Info() Info {
	return Info{
		Name:              s.Name,
		Version:           s.Version,
		Description:       s.Description,
		BlockedPatterns:   len(s.BlockedPathPatterns),
		SensitivePatterns: len(s.SensitivePatterns),
	}
}
