package discovery

import (
	"path/filepath"
	"strings"

	"scriptest/internal/domain"
)

// Filter filters test files by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName keeps refs whose file name matches pattern.
// Supports patterns like "*login_test.js" or "*form*"; a pattern without wildcards is a substring match.
func (f *Filter) FilterByName(refs []domain.TestFileRef, pattern string) []domain.TestFileRef {
	if pattern == "" {
		return refs
	}

	var filtered []domain.TestFileRef
	for _, ref := range refs {
		if matchName(ref.Name, pattern) {
			filtered = append(filtered, ref)
		}
	}
	return filtered
}

// FilterByPaths keeps refs whose absolute path is in paths
func (f *Filter) FilterByPaths(refs []domain.TestFileRef, paths map[string]struct{}) []domain.TestFileRef {
	var filtered []domain.TestFileRef
	for _, ref := range refs {
		if _, ok := paths[ref.Path]; ok {
			filtered = append(filtered, ref)
			continue
		}
		if abs, err := filepath.Abs(ref.Path); err == nil {
			if _, ok := paths[abs]; ok {
				filtered = append(filtered, ref)
			}
		}
	}
	return filtered
}

func matchName(name, pattern string) bool {
	// filepath.Match supports * and ? wildcards
	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(name, pattern)
	}

	// Looser match for patterns like "*form*": every literal part must appear in order
	if !strings.Contains(pattern, "*") {
		return false
	}
	rest := name
	matchedPart := false
	for _, part := range strings.Split(pattern, "*") {
		if part == "" {
			continue
		}
		idx := strings.Index(rest, part)
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(part):]
		matchedPart = true
	}
	return matchedPart
}
