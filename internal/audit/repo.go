package audit

import (
	"path/filepath"

	git "github.com/go-git/go-git/v5"
)

// RepoRoot returns the work tree root of the git repository containing dir,
// or "" when dir is not inside one (or the repository is bare).
func RepoRoot(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	wt, err := repo.Worktree()
	if err != nil {
		return ""
	}
	return wt.Filesystem.Root()
}

// DefaultRoot is the directory the default log is placed in: the repository
// enclosing target, else the repository enclosing cwd, else cwd itself.
// scan and audit both resolve through here so they agree on one file.
func DefaultRoot(target, cwd string) string {
	for _, dir := range []string{target, cwd} {
		if dir == "" {
			continue
		}
		if root := RepoRoot(dir); root != "" {
			return root
		}
	}
	if abs, err := filepath.Abs(cwd); err == nil {
		return abs
	}
	return cwd
}
