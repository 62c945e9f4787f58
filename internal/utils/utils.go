// Package utils contains general helper functions used across the itree tool.
package utils

import (
	"path/filepath"
	"strings"
)

// Configuration file and directory names used across the project.
const (
	// GlobalConfigDirectoryName is the directory under the user home holding global configuration.
	GlobalConfigDirectoryName = ".itree"
	// LocalConfigDirectoryName is the directory under the working directory holding local configuration.
	LocalConfigDirectoryName = ".itree"
	// SettingsFileName is the name of the settings file.
	SettingsFileName = "settings.json"
	// IconsFileName is the name of the icon table file.
	IconsFileName = "icons.json"
	// ColorsFileName is the name of the color table file.
	ColorsFileName = "colors.json"
	// GlyphsFileName is the name of the glyph table file.
	GlyphsFileName = "glyphs.json"
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
)

const pathSegmentSeparator = "/"

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept. Blank patterns are dropped.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if trimmedPattern == "" {
			continue
		}
		if _, exists := encounteredPatterns[trimmedPattern]; !exists {
			encounteredPatterns[trimmedPattern] = struct{}{}
			result = append(result, trimmedPattern)
		}
	}
	return result
}

// RelativePathOrSelf calculates the relative path from root to fullPath.
// Returns the cleaned fullPath if relative calculation fails.
// Returns "." if fullPath and root resolve to the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	absoluteRoot, err := filepath.Abs(root)
	if err != nil {
		return cleanPath
	}
	cleanAbsoluteRoot := filepath.Clean(absoluteRoot)

	if cleanPath == cleanAbsoluteRoot {
		return "."
	}

	relativePath, relErr := filepath.Rel(cleanAbsoluteRoot, cleanPath)
	if relErr != nil {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}

// HasPathSuffix reports whether the trailing path segments of candidatePath equal
// the segments of suffix. Matching is segment-wise, so "modules" does not match
// "node_modules" while "vendor/cache" matches "/src/vendor/cache".
func HasPathSuffix(candidatePath string, suffix string) bool {
	normalizedSuffix := strings.Trim(strings.ReplaceAll(suffix, "\\", pathSegmentSeparator), pathSegmentSeparator)
	if normalizedSuffix == "" {
		return false
	}
	normalizedPath := strings.TrimRight(filepath.ToSlash(candidatePath), pathSegmentSeparator)
	pathSegments := strings.Split(normalizedPath, pathSegmentSeparator)
	suffixSegments := strings.Split(normalizedSuffix, pathSegmentSeparator)
	if len(suffixSegments) > len(pathSegments) {
		return false
	}
	offset := len(pathSegments) - len(suffixSegments)
	for segmentIndex, suffixSegment := range suffixSegments {
		if pathSegments[offset+segmentIndex] != suffixSegment {
			return false
		}
	}
	return true
}
