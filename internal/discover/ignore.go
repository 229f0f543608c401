package discover

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// IgnoreFileName is read from the top of every directory argument.
const IgnoreFileName = ".codegateignore"

// Ignore holds gitignore-style patterns: "name/" skips a directory at any
// depth, a pattern without "/" matches base names, and anything else is a
// doublestar glob anchored at the argument root. Negations ("!") are not
// supported and are dropped.
type Ignore struct {
	dirs     []string
	names    []string
	anchored []string
}

// LoadIgnore reads an ignore file. A missing file yields a nil *Ignore,
// which matches nothing.
func LoadIgnore(path string) (*Ignore, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	return ParseIgnore(f)
}

func ParseIgnore(r io.Reader) (*Ignore, error) {
	ig := &Ignore{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		line = filepath.ToSlash(line)
		switch {
		case strings.HasSuffix(line, "/") && !strings.Contains(strings.TrimSuffix(line, "/"), "/"):
			ig.dirs = append(ig.dirs, strings.TrimSuffix(line, "/"))
		case !strings.Contains(line, "/"):
			ig.names = append(ig.names, line)
		default:
			ig.anchored = append(ig.anchored, strings.TrimSuffix(strings.TrimPrefix(line, "/"), "/"))
		}
	}
	return ig, sc.Err()
}

// Match reports whether rel (relative to the argument root) is ignored.
func (ig *Ignore) Match(rel string, isDir bool) bool {
	if ig == nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	segs := strings.Split(rel, "/")
	dirSegs := segs
	if !isDir {
		dirSegs = segs[:len(segs)-1]
	}
	for _, d := range ig.dirs {
		for _, s := range dirSegs {
			if ok, _ := doublestar.Match(d, s); ok {
				return true
			}
		}
	}
	base := segs[len(segs)-1]
	for _, n := range ig.names {
		if ok, _ := doublestar.Match(n, base); ok {
			return true
		}
	}
	for _, a := range ig.anchored {
		if ok, _ := doublestar.Match(a, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(a+"/**", rel); ok {
			return true
		}
	}
	return false
}
