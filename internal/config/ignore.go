package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/monochromegane/go-gitignore"

	"github.com/temirov/itree/internal/utils"
)

// IgnoreMatcher decides which directories are shown collapsed and never descended into.
type IgnoreMatcher struct {
	suffixes  []string
	gitIgnore gitignore.IgnoreMatcher
}

// NewIgnoreMatcher builds a matcher from directory path suffixes. When useGitignore is set,
// directories matched by the .gitignore at rootDirectory are ignored as well; a missing
// .gitignore is not an error.
func NewIgnoreMatcher(rootDirectory string, suffixes []string, useGitignore bool) (*IgnoreMatcher, error) {
	matcher := &IgnoreMatcher{suffixes: utils.DeduplicatePatterns(suffixes)}
	if !useGitignore {
		return matcher, nil
	}
	gitIgnorePath := filepath.Join(rootDirectory, utils.GitIgnoreFileName)
	if _, statErr := os.Stat(gitIgnorePath); statErr != nil {
		if os.IsNotExist(statErr) {
			return matcher, nil
		}
		return nil, fmt.Errorf("stat %s: %w", gitIgnorePath, statErr)
	}
	loadedMatcher, loadErr := gitignore.NewGitIgnore(gitIgnorePath, rootDirectory)
	if loadErr != nil {
		return nil, fmt.Errorf("load %s: %w", gitIgnorePath, loadErr)
	}
	matcher.gitIgnore = loadedMatcher
	return matcher, nil
}

// IsIgnored reports whether the directory at directoryPath matches an ignore rule.
func (matcher *IgnoreMatcher) IsIgnored(directoryPath string) bool {
	if matcher == nil {
		return false
	}
	for _, suffix := range matcher.suffixes {
		if utils.HasPathSuffix(directoryPath, suffix) {
			return true
		}
	}
	return matcher.gitIgnore != nil && matcher.gitIgnore.Match(directoryPath, true)
}

// NameFilter restricts rendered files to names matching a glob pattern.
type NameFilter struct {
	pattern string
}

// NewNameFilter validates pattern once. An empty pattern yields a nil filter that matches everything.
func NewNameFilter(pattern string) (*NameFilter, error) {
	if pattern == "" {
		return nil, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid filter pattern %q", pattern)
	}
	return &NameFilter{pattern: pattern}, nil
}

// Matches reports whether fileName passes the filter. Match errors count as no match.
func (filter *NameFilter) Matches(fileName string) bool {
	if filter == nil {
		return true
	}
	matched, matchErr := doublestar.Match(filter.pattern, fileName)
	return matchErr == nil && matched
}

// Pattern returns the glob the filter was built from.
func (filter *NameFilter) Pattern() string {
	if filter == nil {
		return ""
	}
	return filter.pattern
}
