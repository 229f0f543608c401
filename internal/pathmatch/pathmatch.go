// Package pathmatch evaluates file paths against ordered blocked-path globs.
//
// Patterns and paths are split on "/". A "**" segment matches zero or more
// whole segments, "*" inside a segment matches any run of characters within
// that segment, and every other character is literal. Backslashes in paths
// are treated as separators so Windows paths match the same rules.
package pathmatch

import "strings"

const doubleStar = "**"

// IsBlocked reports whether path matches any pattern, checked in order. The
// reason cites the first matching pattern and is empty when nothing matched.
func IsBlocked(path string, patterns []string) (bool, string) {
	for _, p := range patterns {
		if Match(p, path) {
			return true, "File path matches blocked pattern: " + p
		}
	}
	return false, ""
}

// Match reports whether path matches the glob pattern.
func Match(pattern, path string) bool {
	return matchSegments(split(pattern), split(path))
}

func split(s string) []string {
	if strings.Contains(s, `\`) {
		s = strings.ReplaceAll(s, `\`, "/")
	}
	return strings.Split(s, "/")
}

// matchSegments walks pattern and path left to right. On a mismatch it
// backtracks to the most recent "**" and lets it absorb one more segment.
func matchSegments(pattern, path []string) bool {
	pIdx, sIdx := 0, 0
	starPattern, starPath := -1, 0

	for sIdx < len(path) {
		if pIdx < len(pattern) {
			if pattern[pIdx] == doubleStar {
				starPattern = pIdx
				starPath = sIdx
				pIdx++
				continue
			}
			if matchSegment(pattern[pIdx], path[sIdx]) {
				pIdx++
				sIdx++
				continue
			}
		}
		if starPattern >= 0 {
			pIdx = starPattern + 1
			starPath++
			sIdx = starPath
			continue
		}
		return false
	}

	for pIdx < len(pattern) && pattern[pIdx] == doubleStar {
		pIdx++
	}
	return pIdx == len(pattern)
}

// matchSegment matches one segment where "*" is the only wildcard.
func matchSegment(pattern, segment string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == segment
	}

	pIdx, sIdx := 0, 0
	starPattern, starInput := -1, 0

	for sIdx < len(segment) {
		if pIdx < len(pattern) && pattern[pIdx] != '*' && pattern[pIdx] == segment[sIdx] {
			pIdx++
			sIdx++
			continue
		}
		if pIdx < len(pattern) && pattern[pIdx] == '*' {
			starPattern = pIdx
			pIdx++
			starInput = sIdx
			continue
		}
		if starPattern >= 0 {
			pIdx = starPattern + 1
			starInput++
			sIdx = starInput
			continue
		}
		return false
	}

	for pIdx < len(pattern) && pattern[pIdx] == '*' {
		pIdx++
	}
	return pIdx == len(pattern)
}
