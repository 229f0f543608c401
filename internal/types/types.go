package types

// Severity is a coarse-grained risk level for a finding.
type Severity string

const (
	SevCritical Severity = "critical"
	SevHigh     Severity = "high"
	SevMed      Severity = "medium"
	SevLow      Severity = "low"
)

// Severities lists every severity from most to least severe.
var Severities = []Severity{SevCritical, SevHigh, SevMed, SevLow}

// Rank orders severities so that critical > high > medium > low.
// Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SevCritical:
		return 4
	case SevHigh:
		return 3
	case SevMed:
		return 2
	case SevLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is one of the four declared severities.
func (s Severity) Valid() bool { return s.Rank() > 0 }

// Finding summarizes the matches of a single sensitive-content rule in one
// file. Examples holds at most three redacted match strings.
type Finding struct {
	Pattern     string   `json:"pattern"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	MatchCount  int      `json:"match_count"`
	Examples    []string `json:"examples"`
}

// ScanVerdict is the decision for one file. Content is set only when the file
// was read successfully and the path itself was not blocked.
type ScanVerdict struct {
	Allowed  bool      `json:"allowed"`
	Reason   string    `json:"reason"`
	Findings []Finding `json:"findings"`
	FileSize int64     `json:"file_size"`
	IsError  bool      `json:"is_error"`
	Content  *string   `json:"content,omitempty"`
}

// Status collapses a verdict into the audit/report vocabulary.
func (v ScanVerdict) Status() string {
	switch {
	case v.IsError:
		return "error"
	case v.Allowed:
		return "allowed"
	default:
		return "blocked"
	}
}

// Text returns the verdict content or "" when it is absent.
func (v ScanVerdict) Text() string {
	if v.Content == nil {
		return ""
	}
	return *v.Content
}
