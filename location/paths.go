package location

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ResolvePattern expands a path or glob pattern to concrete directories.
// Supports single-level wildcards (*) and recursive wildcards (**):
//
//   - "./plugins/*" → ["./plugins/shop", "./plugins/seo", ...]
//   - "./app"       → ["./app"]
//
// Returns only directories. A non-glob path is returned as-is (absolute)
// even when it does not exist, so registration stays path-lenient; a glob
// that matches nothing resolves to an empty list.
func ResolvePattern(pattern string) ([]string, error) {
	if !containsGlob(pattern) {
		absPath, err := filepath.Abs(pattern)
		if err != nil {
			return nil, err
		}
		return []string{absPath}, nil
	}

	absPattern, err := makeAbsolutePattern(pattern)
	if err != nil {
		return nil, err
	}

	matches, err := doublestar.FilepathGlob(absPattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}

	var dirs []string
	seen := make(map[string]bool)
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue // Skip paths that can't be stat'd
		}
		if info.IsDir() && !seen[match] {
			seen[match] = true
			dirs = append(dirs, match)
		}
	}

	return dirs, nil
}

// containsGlob checks if a pattern contains glob characters.
func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}

// makeAbsolutePattern converts a relative pattern to absolute, preserving
// glob characters in the pattern.
func makeAbsolutePattern(pattern string) (string, error) {
	globIdx := -1
	for i, c := range pattern {
		if c == '*' || c == '?' || c == '[' {
			globIdx = i
			break
		}
	}

	if globIdx == -1 {
		return filepath.Abs(pattern)
	}

	// Split at the last separator before the first glob character.
	dirPart := pattern[:globIdx]
	if lastSep := strings.LastIndex(dirPart, string(filepath.Separator)); lastSep >= 0 {
		dirPart = pattern[:lastSep]
	} else if lastSep := strings.LastIndex(dirPart, "/"); lastSep >= 0 {
		dirPart = pattern[:lastSep]
	} else {
		dirPart = "."
	}

	globPart := pattern[len(dirPart):]

	absDir, err := filepath.Abs(dirPart)
	if err != nil {
		return "", err
	}

	return absDir + filepath.FromSlash(globPart), nil
}
