package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/codegate/codegate/internal/types"
)

// DefaultFileName is used when no explicit log path is configured.
const DefaultFileName = ".codegate-audit.jsonl"

// Record is one audited decision. Content itself is never stored; Hash is
// an xxhash fingerprint of it.
type Record struct {
	Timestamp  time.Time `json:"timestamp"`
	Path       string    `json:"path"`
	Action     string    `json:"action"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	Findings   string    `json:"findings,omitempty"`
	FileSize   int64     `json:"file_size"`
	Hash       string    `json:"content_hash,omitempty"`
	PolicyName string    `json:"policy,omitempty"`
	PolicyVer  string    `json:"policy_version,omitempty"`
}

// Stats summarizes the log.
type Stats struct {
	Total        int            `json:"total_requests"`
	StatusCounts map[string]int `json:"status_counts"`
	Recent24h    int            `json:"recent_24h"`
}

// Log is an append-only JSONL audit log. It is safe for concurrent use
// within one process.
type Log struct {
	mu      sync.Mutex
	logPath string
	now     func() time.Time
}

// New returns a log writing to path.
func New(path string) *Log {
	return &Log{logPath: path, now: time.Now}
}

// NewForRoot places the log under root/.git when root is a git checkout,
// otherwise directly in root.
func NewForRoot(root string) *Log {
	gitDir := filepath.Join(root, ".git")
	logPath := filepath.Join(root, DefaultFileName)
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		logPath = filepath.Join(gitDir, strings.TrimPrefix(DefaultFileName, "."))
	}
	return New(logPath)
}

// Path returns the file the log writes to.
func (a *Log) Path() string { return a.logPath }

// NewRecord builds the audit record for a verdict.
func NewRecord(path, action string, v types.ScanVerdict) Record {
	return Record{
		Path:     path,
		Action:   action,
		Status:   v.Status(),
		Reason:   v.Reason,
		Findings: FlattenFindings(v.Findings),
		FileSize: v.FileSize,
		Hash:     contentHash(v),
	}
}

// Append writes rec, stamping the time when unset.
func (a *Log) Append(rec Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = a.now().UTC()
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Restrict permissions to owner-only for audit log containing finding metadata
	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(rec); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

// LoadHistory returns all records, newest first. A missing log is empty.
func (a *Log) LoadHistory() ([]Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.Open(a.logPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var records []Record
	decoder := json.NewDecoder(f)
	for decoder.More() {
		var record Record
		if err := decoder.Decode(&record); err != nil {
			break
		}
		records = append(records, record)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// Recent returns up to limit records, newest first, optionally filtered by
// status. limit <= 0 means no limit.
func (a *Log) Recent(limit int, status string) ([]Record, error) {
	records, err := a.LoadHistory()
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, r := range records {
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Statistics counts records by status and over the last 24 hours.
func (a *Log) Statistics() (Stats, error) {
	records, err := a.LoadHistory()
	if err != nil {
		return Stats{}, err
	}
	st := Stats{Total: len(records), StatusCounts: map[string]int{}}
	cutoff := a.now().Add(-24 * time.Hour)
	for _, r := range records {
		st.StatusCounts[r.Status]++
		if r.Timestamp.After(cutoff) {
			st.Recent24h++
		}
	}
	return st, nil
}

// FlattenFindings renders findings as "name(severity): N matches; ...".
func FlattenFindings(findings []types.Finding) string {
	parts := make([]string, 0, len(findings))
	for _, f := range findings {
		parts = append(parts, fmt.Sprintf("%s(%s): %d matches", f.Pattern, f.Severity, f.MatchCount))
	}
	return strings.Join(parts, "; ")
}

func contentHash(v types.ScanVerdict) string {
	if v.Content == nil {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(*v.Content))
}
