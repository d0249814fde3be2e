package paths

import (
	"path/filepath"
	"strings"
)

// IsIgnored reports whether the path matches any of the exclude patterns.
// Patterns containing glob metacharacters are matched against both the full
// path and the base name; plain patterns act as case-insensitive path
// prefixes so a directory subtree can be excluded by naming it.
func IsIgnored(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.ContainsAny(pattern, "*?[") {
			if ok, err := filepath.Match(pattern, path); err == nil && ok {
				return true
			}
			if ok, err := filepath.Match(pattern, filepath.Base(path)); err == nil && ok {
				return true
			}
			continue
		}

		if strings.HasPrefix(strings.ToLower(path), strings.ToLower(pattern)) {
			return true
		}
	}

	return false
}
