package policy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/codegate/codegate/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return p
}

const samplePolicy = `
name: team
version: 2.1
description: team policy
blocked_path_patterns:
  - "**/secrets/**"
  - "**/payment*"
sensitive_patterns:
  zeta_rule:
    pattern: 'zeta\d+'
    description: zeta
    severity: LOW
  alpha_rule:
    pattern: 'alpha'
  mid_rule:
    pattern: 'mid'
    description: mid
    severity: critical
`

func TestParse_PreservesDeclarationOrder(t *testing.T) {
	spec, err := Parse([]byte(samplePolicy))
	require.NoError(t, err)

	assert.Equal(t, "team", spec.Name)
	assert.Equal(t, "2.1", spec.Version)
	assert.Equal(t, "team policy", spec.Description)
	assert.Equal(t, []string{"**/secrets/**", "**/payment*"}, spec.BlockedPathPatterns)
	require.Len(t, spec.SensitivePatterns, 3)

	names := []string{}
	for _, r := range spec.SensitivePatterns {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"zeta_rule", "alpha_rule", "mid_rule"}, names)
	assert.Equal(t, types.SevLow, spec.SensitivePatterns[0].Severity)
	assert.Equal(t, types.SevMed, spec.SensitivePatterns[1].Severity, "missing severity defaults to medium")
	assert.Equal(t, types.SevCritical, spec.SensitivePatterns[2].Severity)
	assert.True(t, spec.LoggingEnabled)
}

func TestParse_JSONDocument(t *testing.T) {
	doc := `{"name":"j","version":"1","blocked_path_patterns":[],"sensitive_patterns":{"b":{"pattern":"x","severity":"high"},"a":{"pattern":"y"}},"logging":{"enabled":false}}`
	spec, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, spec.SensitivePatterns, 2)
	assert.Equal(t, "b", spec.SensitivePatterns[0].Name)
	assert.Equal(t, "a", spec.SensitivePatterns[1].Name)
	assert.False(t, spec.LoggingEnabled)
	assert.Empty(t, spec.BlockedPathPatterns)
}

func TestParse_EmptyCollectionsAllowed(t *testing.T) {
	spec, err := Parse([]byte("name: n\nversion: v\nblocked_path_patterns: []\nsensitive_patterns: {}\n"))
	require.NoError(t, err)
	assert.Empty(t, spec.BlockedPathPatterns)
	assert.Empty(t, spec.SensitivePatterns)

	spec, err = Parse([]byte("name: n\nversion: v\nblocked_path_patterns:\nsensitive_patterns:\n"))
	require.NoError(t, err)
	assert.NotNil(t, spec.BlockedPathPatterns)
	assert.NotNil(t, spec.SensitivePatterns)
}

func TestParse_LegacyBlockedKey(t *testing.T) {
	spec, err := Parse([]byte("name: n\nversion: v\nblocked_file_patterns: ['**/*.pem']\nsensitive_patterns: {}\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"**/*.pem"}, spec.BlockedPathPatterns)
}

func TestParse_RuleAliases(t *testing.T) {
	doc := `
name: n
version: v
blocked_path_patterns: []
common: &common
  pattern: 'token_[a-z]+'
  severity: high
sensitive_patterns:
  api_token: *common
  ci_token: *common
`
	spec, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, spec.SensitivePatterns, 2)
	for i, name := range []string{"api_token", "ci_token"} {
		assert.Equal(t, name, spec.SensitivePatterns[i].Name)
		assert.Equal(t, "token_[a-z]+", spec.SensitivePatterns[i].Pattern)
		assert.Equal(t, types.SevHigh, spec.SensitivePatterns[i].Severity)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"missing name", "version: v\nblocked_path_patterns: []\nsensitive_patterns: {}\n", "name"},
		{"missing version", "name: n\nblocked_path_patterns: []\nsensitive_patterns: {}\n", "version"},
		{"missing blocked", "name: n\nversion: v\nsensitive_patterns: {}\n", "blocked_path_patterns"},
		{"missing sensitive", "name: n\nversion: v\nblocked_path_patterns: []\n", "sensitive_patterns"},
		{"blocked not list", "name: n\nversion: v\nblocked_path_patterns: nope\nsensitive_patterns: {}\n", "blocked_path_patterns"},
		{"sensitive not map", "name: n\nversion: v\nblocked_path_patterns: []\nsensitive_patterns: [a]\n", "sensitive_patterns"},
		{"rule without pattern", "name: n\nversion: v\nblocked_path_patterns: []\nsensitive_patterns:\n  r:\n    description: d\n", "sensitive_patterns.r.pattern"},
		{"bad severity", "name: n\nversion: v\nblocked_path_patterns: []\nsensitive_patterns:\n  r:\n    pattern: x\n    severity: urgent\n", "sensitive_patterns.r.severity"},
		{"duplicate rule", "name: n\nversion: v\nblocked_path_patterns: []\nsensitive_patterns:\n  r:\n    pattern: x\n  r:\n    pattern: y\n", "sensitive_patterns.r"},
		{"name mismatch", "name: n\nversion: v\nblocked_path_patterns: []\nsensitive_patterns:\n  r:\n    name: other\n    pattern: x\n", "sensitive_patterns.r.name"},
		{"not a mapping", "- a\n- b\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPolicy))
			var le *LoadError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, tt.field, le.Field)
		})
	}
}

func TestFromMap_OrdersRulesByName(t *testing.T) {
	spec, err := FromMap(map[string]any{
		"name":                  "m",
		"version":               "1",
		"blocked_path_patterns": []any{"**/x/**"},
		"sensitive_patterns": map[string]any{
			"zz": map[string]any{"pattern": "z", "severity": "low"},
			"aa": map[string]any{"pattern": "a", "severity": "high"},
		},
	})
	require.NoError(t, err)
	require.Len(t, spec.SensitivePatterns, 2)
	assert.Equal(t, "aa", spec.SensitivePatterns[0].Name)
	assert.Equal(t, "zz", spec.SensitivePatterns[1].Name)

	r, ok := spec.Rule("zz")
	require.True(t, ok)
	assert.Equal(t, types.SevLow, r.Severity)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "policy.yaml", samplePolicy)
	spec, err := LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, Info{Name: "team", Version: "2.1", Description: "team policy", BlockedPatterns: 2, SensitivePatterns: 3}, spec.Info())

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPolicy)
	assert.Contains(t, err.Error(), "policy file not found")

	bad := writeTemp(t, dir, "bad.yaml", "name: [\n")
	_, err = LoadFile(bad)
	assert.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestDefault(t *testing.T) {
	spec, err := Default()
	require.NoError(t, err)
	assert.Equal(t, "default-secure", spec.Name)
	assert.NotEmpty(t, spec.BlockedPathPatterns)

	cc, ok := spec.Rule("credit_card")
	require.True(t, ok)
	assert.Equal(t, types.SevCritical, cc.Severity)
	ak, ok := spec.Rule("api_key")
	require.True(t, ok)
	assert.Equal(t, types.SevHigh, ak.Severity)

	viaLoad, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, spec, viaLoad)
}
