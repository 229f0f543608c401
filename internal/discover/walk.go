// Package discover expands file and directory arguments into the list of
// source files a batch scan should visit.
package discover

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
)

// Config controls which files Discover returns.
type Config struct {
	// Recursive descends into subdirectories of directory arguments.
	Recursive bool
	// NamePattern, when set, must match the file's base name.
	NamePattern string
	// Include and Exclude are comma-separated doublestar globs matched
	// against the path relative to the argument it was found under.
	Include string
	Exclude string
	// MaxBytes skips larger files (0 = no limit).
	MaxBytes int64
	// DefaultExcludes skips vendored, generated and lock files.
	DefaultExcludes bool
	// Extensions restricts files to these extensions or exact names.
	// Nil means every supported language.
	Extensions map[string]bool
	Logger     *zerolog.Logger
}

// Discover returns the files under paths that pass cfg, de-duplicated in
// first-seen order. Directory arguments are walked and filtered. Any other
// argument, including one that does not exist, is returned as given so the
// engine reports a verdict for it: extension, hidden-name, name and glob
// filters only apply inside directories. MaxBytes still applies to an
// explicit file and the skip is logged at warn level.
func Discover(cfg Config, paths []string) ([]string, error) {
	exts := cfg.Extensions
	if exts == nil {
		exts = AllExtensions()
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	includes := ParseGlobList(cfg.Include)
	excludes := ParseGlobList(cfg.Exclude)

	seen := map[string]bool{}
	var out []string
	add := func(p string) {
		key := p
		if abs, err := filepath.Abs(p); err == nil {
			key = abs
		}
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, p)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			logger.Debug().Str("path", root).Err(err).Msg("Cannot stat argument, passing through")
			add(root)
			continue
		}
		if !info.IsDir() {
			if cfg.MaxBytes > 0 && info.Mode().IsRegular() && info.Size() > cfg.MaxBytes {
				logger.Warn().Str("path", root).Int64("size", info.Size()).Int64("max_bytes", cfg.MaxBytes).Msg("File exceeds max bytes, skipping")
				continue
			}
			add(root)
			continue
		}
		ig, err := LoadIgnore(filepath.Join(root, IgnoreFileName))
		if err != nil {
			logger.Warn().Str("path", root).Err(err).Msg("Could not read ignore file")
		}
		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Debug().Str("path", p).Err(err).Msg("Walk error, skipping")
				return nil
			}
			if p == root {
				return nil
			}
			rel, _ := filepath.Rel(root, p)
			if d.IsDir() {
				name := d.Name()
				if !cfg.Recursive || isHidden(name) || name == "__pycache__" {
					return filepath.SkipDir
				}
				if cfg.DefaultExcludes && isDefaultDirExcluded(name) {
					return filepath.SkipDir
				}
				if ig.Match(rel, true) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || ig.Match(rel, false) {
				return nil
			}
			var size int64
			if fi, err := d.Info(); err == nil {
				size = fi.Size()
			}
			if keepFile(cfg, p, rel, size, exts, includes, excludes) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func keepFile(cfg Config, p, rel string, size int64, exts map[string]bool, includes, excludes []string) bool {
	if !supported(p, exts) {
		return false
	}
	if isHidden(filepath.Base(p)) {
		return false
	}
	if cfg.NamePattern != "" {
		if ok, _ := doublestar.Match(cfg.NamePattern, filepath.Base(p)); !ok {
			return false
		}
	}
	if !allowedByGlobs(rel, includes, excludes) {
		return false
	}
	if cfg.MaxBytes > 0 && size > cfg.MaxBytes {
		return false
	}
	if cfg.DefaultExcludes && isDefaultFileExcluded(strings.ToLower(filepath.ToSlash(rel))) {
		return false
	}
	return true
}

// GroupByDir groups files by their parent directory, keeping input order
// within each group.
func GroupByDir(files []string) map[string][]string {
	out := map[string][]string{}
	for _, f := range files {
		dir := filepath.Dir(f)
		out[dir] = append(out[dir], f)
	}
	return out
}
