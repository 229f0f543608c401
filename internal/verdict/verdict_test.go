package verdict

import (
	"testing"

	"github.com/codegate/codegate/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReason_SeverityOrder(t *testing.T) {
	fs := []types.Finding{
		{Pattern: "api_key", Severity: types.SevHigh},
		{Pattern: "email", Severity: types.SevLow},
		{Pattern: "credit_card", Severity: types.SevCritical},
		{Pattern: "password", Severity: types.SevHigh},
		{Pattern: "internal_ip", Severity: types.SevMed},
	}
	assert.Equal(t,
		"Sensitive content detected - Critical: credit_card; High: api_key, password; Medium: internal_ip; Low: email",
		Reason(fs))
}

func TestReason_OmitsEmptyGroups(t *testing.T) {
	fs := []types.Finding{
		{Pattern: "api_key", Severity: types.SevHigh},
		{Pattern: "credit_card", Severity: types.SevCritical},
	}
	assert.Equal(t, "Sensitive content detected - Critical: credit_card; High: api_key", Reason(fs))

	assert.Equal(t, "Sensitive content detected - Low: email", Reason([]types.Finding{{Pattern: "email", Severity: types.SevLow}}))
}

func TestCompose_PathBlockedDropsFindings(t *testing.T) {
	fs := []types.Finding{{Pattern: "api_key", Severity: types.SevHigh, MatchCount: 1}}
	v := Compose(PathResult{Blocked: true, Reason: "File path matches blocked pattern: **/secrets/**"}, fs, 42, "api_key=...")
	assert.False(t, v.Allowed)
	assert.False(t, v.IsError)
	assert.Equal(t, "File path matches blocked pattern: **/secrets/**", v.Reason)
	assert.Empty(t, v.Findings)
	assert.NotNil(t, v.Findings)
	assert.Nil(t, v.Content)
	assert.Equal(t, int64(42), v.FileSize)
}

func TestCompose_FindingsBlock(t *testing.T) {
	fs := []types.Finding{{Pattern: "credit_card", Severity: types.SevCritical, MatchCount: 1}}
	v := Compose(PathResult{}, fs, 10, "body")
	assert.False(t, v.Allowed)
	assert.False(t, v.IsError)
	assert.Equal(t, fs, v.Findings)
	require.NotNil(t, v.Content)
	assert.Equal(t, "body", *v.Content)
	assert.Equal(t, "blocked", v.Status())
}

func TestCompose_Allowed(t *testing.T) {
	v := Compose(PathResult{}, nil, 3, "ok\n")
	assert.True(t, v.Allowed)
	assert.Equal(t, ReasonAllowed, v.Reason)
	assert.Empty(t, v.Findings)
	assert.NotNil(t, v.Findings)
	assert.Equal(t, "ok\n", v.Text())
	assert.Equal(t, "allowed", v.Status())
}

func TestFailure(t *testing.T) {
	v := Failure(ReasonNotText, 99)
	assert.False(t, v.Allowed)
	assert.True(t, v.IsError)
	assert.Empty(t, v.Findings)
	assert.Nil(t, v.Content)
	assert.Equal(t, int64(99), v.FileSize)
	assert.Equal(t, "error", v.Status())

	assert.NotEmpty(t, Failure("", 0).Reason)
}
