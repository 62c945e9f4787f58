package config

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/temirov/itree/internal/utils"
)

const defaultsDirectoryName = "defaults"

//go:embed defaults/*.json
var defaultFiles embed.FS

var defaultSettingsData = mustReadDefault(utils.SettingsFileName)

// DirectoryIconSet maps directory names to icon names.
type DirectoryIconSet struct {
	Default   string            `json:"default"`
	WellKnown map[string]string `json:"wellknown"`
}

// FileIconSet maps file names and extensions to icon names.
type FileIconSet struct {
	Default    string            `json:"default"`
	WellKnown  map[string]string `json:"wellknown"`
	Extensions map[string]string `json:"extensions"`
}

// IconSet groups the directory and file icon tables.
type IconSet struct {
	Directories DirectoryIconSet `json:"directories"`
	Files       FileIconSet      `json:"files"`
}

// DirectoryColorSet maps directory names to hex colors.
type DirectoryColorSet struct {
	Default   string            `json:"default"`
	Ignored   string            `json:"ignored"`
	WellKnown map[string]string `json:"wellknown"`
}

// FileColorSet maps file names and extensions to hex colors.
type FileColorSet struct {
	Default    string            `json:"default"`
	WellKnown  map[string]string `json:"wellknown"`
	Extensions map[string]string `json:"extensions"`
}

// ColorSet groups the directory and file color tables.
type ColorSet struct {
	Directories DirectoryColorSet `json:"directories"`
	Files       FileColorSet      `json:"files"`
	Diagnostic  string            `json:"diagnostic"`
}

// Theme holds the icon, color, and glyph tables. It is immutable once loaded.
type Theme struct {
	Icons  IconSet
	Colors ColorSet
	Glyphs map[string]string
}

// LoadTheme loads the theme tables from themeDirectory. Every table missing from the
// directory falls back to the embedded default. An empty themeDirectory selects
// ~/.itree when it exists.
func LoadTheme(themeDirectory string) (*Theme, error) {
	if themeDirectory == "" {
		if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
			themeDirectory = filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
		}
	}

	theme := &Theme{}
	if err := loadThemeTable(themeDirectory, utils.IconsFileName, &theme.Icons); err != nil {
		return nil, err
	}
	if err := loadThemeTable(themeDirectory, utils.ColorsFileName, &theme.Colors); err != nil {
		return nil, err
	}
	if err := loadThemeTable(themeDirectory, utils.GlyphsFileName, &theme.Glyphs); err != nil {
		return nil, err
	}
	return theme, nil
}

// DefaultTheme returns the embedded theme.
func DefaultTheme() *Theme {
	theme := &Theme{}
	for fileName, target := range map[string]any{
		utils.IconsFileName:  &theme.Icons,
		utils.ColorsFileName: &theme.Colors,
		utils.GlyphsFileName: &theme.Glyphs,
	} {
		if err := json.Unmarshal(mustReadDefault(fileName), target); err != nil {
			panic(fmt.Errorf("decode embedded %s: %w", fileName, err))
		}
	}
	return theme
}

// loadThemeTable decodes fileName from directory, or from the embedded defaults when the
// file does not exist there. Theme keys are file names and dotted extensions, so the tables are
// decoded with encoding/json rather than viper, which lower-cases keys and splits them on dots.
func loadThemeTable(directory string, fileName string, target any) error {
	data := mustReadDefault(fileName)
	source := "embedded " + fileName
	if directory != "" {
		candidatePath := filepath.Join(directory, fileName)
		// #nosec G304
		fileData, readErr := os.ReadFile(candidatePath)
		switch {
		case readErr == nil:
			data = fileData
			source = candidatePath
		case !os.IsNotExist(readErr):
			return fmt.Errorf("read theme table %s: %w", candidatePath, readErr)
		}
	}
	if decodeErr := json.Unmarshal(data, target); decodeErr != nil {
		return fmt.Errorf("decode theme table %s: %w", source, decodeErr)
	}
	return nil
}

func mustReadDefault(fileName string) []byte {
	data, err := defaultFiles.ReadFile(defaultsDirectoryName + "/" + fileName)
	if err != nil {
		panic(fmt.Errorf("embedded default %s missing: %w", fileName, err))
	}
	return data
}
