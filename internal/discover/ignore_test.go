package discover

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIgnoreMatch(t *testing.T) {
	m, err := ParseIgnore(strings.NewReader("node_modules/\n*.pem\n# comment\n\nsecret.env\n/build/out\n!keep.pem\n"))
	require.NoError(t, err)

	cases := []struct {
		rel   string
		isDir bool
		want  bool
	}{
		{"node_modules/pkg/index.js", false, true},
		{"web/node_modules", true, true},
		{"certs/key.pem", false, true},
		{"keep.pem", false, true},
		{"secret.env", false, true},
		{"build/out/gen.go", false, true},
		{"build/out", true, true},
		{"src/build/out/gen.go", false, false},
		{"src/app.go", false, false},
		{"node_modules.go", false, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, m.Match(tc.rel, tc.isDir), tc.rel)
	}
}

func TestLoadIgnore_Missing(t *testing.T) {
	m, err := LoadIgnore(filepath.Join(t.TempDir(), IgnoreFileName))
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.False(t, m.Match("anything.go", false))
}

func TestDiscover_HonorsIgnoreFile(t *testing.T) {
	root := setupTree(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, IgnoreFileName), []byte("pkg/deep/\nDockerfile\n"), 0o644))

	files, err := Discover(Config{Recursive: true, DefaultExcludes: true}, []string{root})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"main.go", "README.md", "pkg/util.py", "web/app.js"}, rels(t, root, files))
}
