package codegate

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/codegate/codegate/internal/audit"
	"github.com/codegate/codegate/internal/config"
	"github.com/codegate/codegate/internal/policy"
	git "github.com/go-git/go-git/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func fixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clean.py"), []byte("print('ok')\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "billing.py"), []byte("card = '4532-1234-5678-9010'\n"), 0o644))
	return dir
}

type scanDoc struct {
	Summary struct {
		Total   int `json:"total"`
		Allowed int `json:"allowed"`
		Blocked int `json:"blocked"`
		Errors  int `json:"errors"`
	} `json:"summary"`
	Results []struct {
		Path    string `json:"path"`
		Status  string `json:"status"`
		Reason  string `json:"reason"`
		IsError bool   `json:"is_error"`
	} `json:"results"`
}

func decodeScan(t *testing.T, out string) scanDoc {
	t.Helper()
	var doc scanDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc), out)
	return doc
}

func TestCLI_ScanJSON(t *testing.T) {
	dir := fixture(t)
	out, err := run(t, "scan", "--json", "--no-audit", "--fail-on", "none", dir)
	require.NoError(t, err)

	var doc struct {
		Policy  policy.Info `json:"policy"`
		Summary struct {
			Total   int `json:"total"`
			Allowed int `json:"allowed"`
			Blocked int `json:"blocked"`
		} `json:"summary"`
		Results []struct {
			Path   string `json:"path"`
			Status string `json:"status"`
			Reason string `json:"reason"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc), out)
	assert.Equal(t, "default-secure", doc.Policy.Name)
	assert.Equal(t, 2, doc.Summary.Total)
	assert.Equal(t, 1, doc.Summary.Allowed)
	assert.Equal(t, 1, doc.Summary.Blocked)
	for _, r := range doc.Results {
		if filepath.Base(r.Path) == "billing.py" {
			assert.Equal(t, "blocked", r.Status)
			assert.Equal(t, "Sensitive content detected - Critical: credit_card", r.Reason)
		}
	}
}

func TestCLI_ScanFailThreshold(t *testing.T) {
	dir := fixture(t)
	_, err := run(t, "scan", "--no-audit", dir)
	assert.ErrorIs(t, err, errThreshold)

	_, err = run(t, "scan", "--no-audit", "--fail-on", "none", dir)
	assert.NoError(t, err)
}

func TestCLI_ScanSARIF(t *testing.T) {
	dir := fixture(t)
	out, err := run(t, "scan", "--sarif", "--no-audit", "--fail-on", "none", dir)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "2.1.0", doc["version"])
}

func TestCLI_ScanWritesAuditAndAuditCommandReadsIt(t *testing.T) {
	dir := fixture(t)
	logPath := filepath.Join(t.TempDir(), "audit.jsonl")
	_, err := run(t, "scan", "--audit-log", logPath, "--fail-on", "none", dir)
	require.NoError(t, err)

	out, err := run(t, "audit", "--log", logPath, "--json")
	require.NoError(t, err)
	var recs []audit.Record
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.Equal(t, "default-secure", r.PolicyName)
	}

	out, err = run(t, "audit", "--log", logPath, "--status", "blocked", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "credit_card(critical): 1 matches", recs[0].Findings)

	out, err = run(t, "audit", "--log", logPath, "--stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Total requests: 2")

	_, err = run(t, "audit", "--log", logPath, "--status", "weird")
	assert.Error(t, err)
}

func TestCLI_ScanBaseline(t *testing.T) {
	dir := fixture(t)
	bl := filepath.Join(t.TempDir(), "baseline.json")
	_, err := run(t, "scan", "--no-audit", "--baseline", bl, "--update-baseline", "--fail-on", "none", dir)
	require.NoError(t, err)

	_, err = run(t, "scan", "--no-audit", "--baseline", bl, dir)
	assert.NoError(t, err, "baselined block must not trip the threshold")
}

func TestCLI_PolicyValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "p.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`name: p
version: "1"
blocked_path_patterns: ["**/x/**"]
sensitive_patterns:
  ok:
    pattern: 'abc'
  broken:
    pattern: '(unclosed'
`), 0o644))
	out, err := run(t, "policy", "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "warning:")
	assert.Contains(t, out, "1 of 2 rules compiled")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("name: p\n"), 0o644))
	_, err = run(t, "policy", "validate", bad)
	assert.ErrorIs(t, err, policy.ErrInvalidPolicy)

	_, err = run(t, "policy", "validate")
	assert.Error(t, err)
}

func TestCLI_PolicyShowAndInit(t *testing.T) {
	out, err := run(t, "policy", "show", "--json")
	require.NoError(t, err)
	var info policy.Info
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "default-secure", info.Name)

	out, err = run(t, "policy", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "credit_card")

	dest := filepath.Join(t.TempDir(), "policy.yaml")
	_, err = run(t, "policy", "init", "--output", dest)
	require.NoError(t, err)
	spec, err := policy.LoadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "default-secure", spec.Name)

	_, err = run(t, "policy", "init", "--output", dest)
	assert.Error(t, err, "refuses to overwrite without --force")
	_, err = run(t, "policy", "init", "--output", dest, "--force")
	assert.NoError(t, err)
}

func TestCLI_ConfigInit(t *testing.T) {
	dest := filepath.Join(t.TempDir(), ".codegate.yml")
	_, err := run(t, "config", "init", "--output", dest, "--languages", "go,python", "--fail-on", "high")
	require.NoError(t, err)
	cfg, err := config.LoadFile(dest)
	require.NoError(t, err)
	require.NotNil(t, cfg.FailOn)
	assert.Equal(t, "high", *cfg.FailOn)
	require.NotNil(t, cfg.Languages)
	assert.Equal(t, "go,python", *cfg.Languages)
	assert.True(t, cfg.GetAuditConfig().IsEnabled(false))

	_, err = run(t, "config", "init", "--output", dest, "--languages", "klingon")
	assert.Error(t, err)
}

func TestCLI_ScanExplicitFiles(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	pem := filepath.Join(dir, "server.pem")
	missing := filepath.Join(dir, "missing.py")
	require.NoError(t, os.WriteFile(env, []byte("DEBUG=1\n"), 0o644))
	require.NoError(t, os.WriteFile(pem, []byte("not a key\n"), 0o644))

	out, err := run(t, "scan", "--json", "--no-audit", "--fail-on", "none", env, pem, missing)
	require.NoError(t, err)
	doc := decodeScan(t, out)
	assert.Equal(t, 3, doc.Summary.Total)
	require.Len(t, doc.Results, 3)
	assert.Equal(t, "blocked", doc.Results[0].Status)
	assert.Equal(t, "File path matches blocked pattern: **/.env", doc.Results[0].Reason)
	assert.Equal(t, "blocked", doc.Results[1].Status)
	assert.Equal(t, "File path matches blocked pattern: **/*.pem", doc.Results[1].Reason)
	assert.True(t, doc.Results[2].IsError)
	assert.Equal(t, "File not found: "+missing, doc.Results[2].Reason)

	_, err = run(t, "scan", "--no-audit", env)
	assert.ErrorIs(t, err, errThreshold)
}

func TestCLI_AuditDefaultLogFollowsRepository(t *testing.T) {
	repo := t.TempDir()
	_, err := git.PlainInit(repo, false)
	require.NoError(t, err)
	src := filepath.Join(repo, "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "clean.py"), []byte("print('ok')\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "billing.py"), []byte("card = '4532-1234-5678-9010'\n"), 0o644))
	t.Chdir(repo)

	out, err := run(t, "audit", "--json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)

	_, err = run(t, "scan", "--fail-on", "none", "src")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(repo, ".git", "codegate-audit.jsonl"))
	assert.NoFileExists(t, filepath.Join(src, audit.DefaultFileName))

	out, err = run(t, "audit", "--json")
	require.NoError(t, err)
	var recs []audit.Record
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	assert.Len(t, recs, 2)

	t.Chdir(src)
	out, err = run(t, "audit", "--json", "--status", "blocked")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	assert.Len(t, recs, 1)
}

func TestCLI_MalformedLocalConfigFailsScan(t *testing.T) {
	dir := fixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".codegate.yml"), []byte("policy: strict.yaml\nthreads: [oops\n"), 0o644))
	_, err := run(t, "scan", "--json", "--no-audit", "--fail-on", "none", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".codegate.yml")
}

func TestCLI_MaxBytesFromConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.py"), []byte("x = 'padding padding padding'\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".codegate.yml"), []byte("max_bytes: 5\n"), 0o644))

	out, err := run(t, "scan", "--json", "--no-audit", "--fail-on", "none", dir)
	require.NoError(t, err)
	assert.Equal(t, 0, decodeScan(t, out).Summary.Total)

	out, err = run(t, "scan", "--json", "--no-audit", "--fail-on", "none", "--max-bytes", "1024", dir)
	require.NoError(t, err)
	assert.Equal(t, 1, decodeScan(t, out).Summary.Total)
}

func TestCLI_CorruptBaselineReportsEverything(t *testing.T) {
	dir := fixture(t)
	bl := filepath.Join(t.TempDir(), "baseline.json")
	require.NoError(t, os.WriteFile(bl, []byte("{not json"), 0o644))
	_, err := run(t, "scan", "--no-audit", "--baseline", bl, dir)
	assert.ErrorIs(t, err, errThreshold)
}
