package watcher

import (
	"path/filepath"
	"strings"
)

// DefaultExcludes are directory names skipped in every Next.js workspace.
var DefaultExcludes = []string{"node_modules", ".git", ".next", "dist", "build", "coverage"}

// ExcludeMatcher decides whether a path should be skipped during walks and
// watching. Each pattern is matched against every path segment with
// filepath.Match semantics; a bare name like "node_modules" excludes the
// directory anywhere in the tree.
type ExcludeMatcher struct {
	patterns []string
}

// NewExcludeMatcher creates a matcher from the given patterns plus the
// default excludes.
func NewExcludeMatcher(patterns []string) *ExcludeMatcher {
	all := make([]string, 0, len(DefaultExcludes)+len(patterns))
	all = append(all, DefaultExcludes...)
	all = append(all, patterns...)
	return &ExcludeMatcher{patterns: all}
}

// Match returns true if the given path should be ignored.
func (m *ExcludeMatcher) Match(path string) bool {
	segments := strings.Split(filepath.ToSlash(path), "/")
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		for _, pattern := range m.patterns {
			if ok, err := filepath.Match(pattern, seg); err == nil && ok {
				return true
			}
		}
	}
	return false
}
