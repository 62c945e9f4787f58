// Package types defines cross-package constants and data structures used by the itree CLI.
package types

const (
	ColorModeAuto   = "auto"
	ColorModeAlways = "always"
	ColorModeNever  = "never"
)

// ValidatedPath is an absolute input path that already passed existence checks.
type ValidatedPath struct {
	AbsolutePath string
	IsDir        bool
}

// IsSupportedColorMode reports whether mode is one of the recognized color modes.
func IsSupportedColorMode(mode string) bool {
	switch mode {
	case ColorModeAuto, ColorModeAlways, ColorModeNever:
		return true
	default:
		return false
	}
}

// DiscoveredItem is one filesystem entry in traversal order. Depth counts the directories
// between the root and the entry, so the root's direct children sit at depth 0.
type DiscoveredItem struct {
	Path          string
	IsDirectory   bool
	Depth         int
	IsLastSibling bool
	// IsIgnored is only ever set for directories.
	IsIgnored bool
}

