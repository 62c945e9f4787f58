// Package config loads settings and theme tables and assembles the immutable per-run configuration.
package config

import (
	"fmt"

	"github.com/temirov/itree/internal/types"
)

// Configuration is the read-only context shared by every pipeline stage for one run.
type Configuration struct {
	FoldThreshold  int
	FoldingEnabled bool
	ColorMode      string
	Ignore         *IgnoreMatcher
	Filter         *NameFilter
	Theme          *Theme
}

// NewConfiguration resolves settings into matchers for the traversal rooted at rootDirectory.
// The filter pattern is validated here so that a malformed glob is reported once, before any traversal.
func NewConfiguration(rootDirectory string, settings Settings, theme *Theme) (*Configuration, error) {
	if validationErr := settings.Validate(); validationErr != nil {
		return nil, validationErr
	}
	if theme == nil {
		theme = DefaultTheme()
	}

	useGitignore := settings.UseGitignore != nil && *settings.UseGitignore
	ignoreMatcher, ignoreErr := NewIgnoreMatcher(rootDirectory, settings.IgnoredDirectories, useGitignore)
	if ignoreErr != nil {
		return nil, fmt.Errorf("build ignore rules: %w", ignoreErr)
	}
	nameFilter, filterErr := NewNameFilter(settings.FilterValue())
	if filterErr != nil {
		return nil, filterErr
	}

	colorMode := settings.Color
	if colorMode == "" {
		colorMode = types.ColorModeAuto
	}

	// A zero threshold would fold every extension, so it disables folding instead.
	foldThreshold := settings.FoldThresholdValue()
	unfold := settings.Unfold != nil && *settings.Unfold

	return &Configuration{
		FoldThreshold:  foldThreshold,
		FoldingEnabled: !unfold && foldThreshold > 0,
		ColorMode:      colorMode,
		Ignore:         ignoreMatcher,
		Filter:         nameFilter,
		Theme:          theme,
	}, nil
}
