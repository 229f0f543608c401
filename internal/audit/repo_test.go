package audit

import (
	"os"
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func realpath(t *testing.T, p string) string {
	t.Helper()
	r, err := filepath.EvalSymlinks(p)
	require.NoError(t, err)
	return r
}

func TestRepoRoot(t *testing.T) {
	root := t.TempDir()
	_, err := git.PlainInit(root, false)
	require.NoError(t, err)
	sub := filepath.Join(root, "src", "pkg")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	assert.Equal(t, realpath(t, root), realpath(t, RepoRoot(sub)))
	assert.Equal(t, realpath(t, root), realpath(t, RepoRoot(root)))
	assert.Equal(t, "", RepoRoot(t.TempDir()))
}

func TestDefaultRoot(t *testing.T) {
	repo := t.TempDir()
	_, err := git.PlainInit(repo, false)
	require.NoError(t, err)
	sub := filepath.Join(repo, "src")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	plain := t.TempDir()

	// a scan of a subdirectory and an audit from the repo root land on one log
	fromScan := NewForRoot(DefaultRoot(sub, plain)).Path()
	fromAudit := NewForRoot(DefaultRoot("", repo)).Path()
	assert.Equal(t, realpath(t, filepath.Join(repo, ".git")), realpath(t, filepath.Dir(fromScan)))
	assert.Equal(t, fromScan, fromAudit)

	// target outside any repository falls back to the cwd's repository
	assert.Equal(t, realpath(t, repo), realpath(t, DefaultRoot(plain, sub)))

	// neither in a repository
	other := t.TempDir()
	assert.Equal(t, other, DefaultRoot(other, other))
}
