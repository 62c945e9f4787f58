package config

import "strings"

// Glyph table keys for tree connectors.
const (
	GlyphPipeVertical   = "pipe-v"
	GlyphPipeTee        = "pipe-t"
	GlyphPipeEnd        = "pipe-e"
	GlyphPipeHorizontal = "pipe-h"
	GlyphWarning        = "warning"
)

var connectorFallbacks = map[string]string{
	GlyphPipeVertical:   "│",
	GlyphPipeTee:        "├",
	GlyphPipeEnd:        "└",
	GlyphPipeHorizontal: "──",
	GlyphWarning:        "!",
}

// Glyph returns the glyph stored under key, falling back to a plain box-drawing
// character for the connector keys.
func (theme *Theme) Glyph(key string) string {
	if glyph, ok := theme.Glyphs[key]; ok && glyph != "" {
		return glyph
	}
	return connectorFallbacks[key]
}

// FileGlyph resolves the icon glyph for a file name.
func (theme *Theme) FileGlyph(fileName string) string {
	icons := theme.Icons.Files
	if icon, ok := icons.WellKnown[fileName]; ok {
		return theme.iconGlyph(icon, icons.Default)
	}
	if icon, ok := findByExtension(icons.Extensions, fileName); ok {
		return theme.iconGlyph(icon, icons.Default)
	}
	return theme.iconGlyph(icons.Default, icons.Default)
}

// FileColor resolves the hex color for a file name.
func (theme *Theme) FileColor(fileName string) string {
	colors := theme.Colors.Files
	if color, ok := colors.WellKnown[fileName]; ok {
		return color
	}
	if color, ok := findByExtension(colors.Extensions, fileName); ok {
		return color
	}
	return colors.Default
}

// ExtensionGlyph resolves the icon glyph for a bare extension such as "log" or "tar.gz".
func (theme *Theme) ExtensionGlyph(extension string) string {
	icons := theme.Icons.Files
	if icon, ok := icons.Extensions[extension]; ok {
		return theme.iconGlyph(icon, icons.Default)
	}
	return theme.iconGlyph(icons.Default, icons.Default)
}

// ExtensionColor resolves the hex color for a bare extension.
func (theme *Theme) ExtensionColor(extension string) string {
	if color, ok := theme.Colors.Files.Extensions[extension]; ok {
		return color
	}
	return theme.Colors.Files.Default
}

// DirectoryGlyph resolves the icon glyph for a directory name.
func (theme *Theme) DirectoryGlyph(directoryName string) string {
	icons := theme.Icons.Directories
	if icon, ok := icons.WellKnown[directoryName]; ok {
		return theme.iconGlyph(icon, icons.Default)
	}
	return theme.iconGlyph(icons.Default, icons.Default)
}

// DirectoryColor resolves the hex color for a directory name.
func (theme *Theme) DirectoryColor(directoryName string) string {
	colors := theme.Colors.Directories
	if color, ok := colors.WellKnown[directoryName]; ok {
		return color
	}
	return colors.Default
}

// IgnoredDirectoryColor returns the color used for ignored directories.
func (theme *Theme) IgnoredDirectoryColor() string {
	if theme.Colors.Directories.Ignored != "" {
		return theme.Colors.Directories.Ignored
	}
	return theme.Colors.Directories.Default
}

// DiagnosticColor returns the color used for diagnostic lines.
func (theme *Theme) DiagnosticColor() string {
	if theme.Colors.Diagnostic != "" {
		return theme.Colors.Diagnostic
	}
	return theme.Colors.Files.Default
}

func (theme *Theme) iconGlyph(iconName string, fallbackIconName string) string {
	if glyph, ok := theme.Glyphs[iconName]; ok {
		return glyph
	}
	return theme.Glyphs[fallbackIconName]
}

// findByExtension looks fileName up as an exact key first and then by every dotted suffix
// from the longest to the shortest, so "archive.tar.gz" tries "tar.gz" before "gz".
func findByExtension(table map[string]string, fileName string) (string, bool) {
	if value, ok := table[fileName]; ok {
		return value, true
	}
	for position := 0; position < len(fileName); position++ {
		if fileName[position] != '.' || position+1 >= len(fileName) {
			continue
		}
		if value, ok := table[fileName[position+1:]]; ok {
			return value, true
		}
	}
	return "", false
}

// FileExtension returns the final dotted suffix of fileName without the dot, or an empty
// string for extensionless names and dot files such as ".bashrc".
func FileExtension(fileName string) string {
	dotIndex := strings.LastIndexByte(fileName, '.')
	if dotIndex <= 0 || dotIndex == len(fileName)-1 {
		return ""
	}
	return fileName[dotIndex+1:]
}
