package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/temirov/itree/internal/types"
	"github.com/temirov/itree/internal/utils"
)

const (
	settingsConfigType = "json"
	listSeparator      = ","
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// Settings holds the tree rendering settings. Pointer fields distinguish "unset" from zero values
// so that later sources only override what they actually specify.
type Settings struct {
	IgnoredDirectories []string `mapstructure:"ignored_dirs"`
	FoldThreshold      *int     `mapstructure:"extensions_fold_count"`
	Unfold             *bool    `mapstructure:"unfold"`
	Filter             *string  `mapstructure:"filter"`
	Color              string   `mapstructure:"color"`
	UseGitignore       *bool    `mapstructure:"use_gitignore"`
}

// LoadSettings loads settings from the embedded defaults, the global file, and the local file,
// in increasing order of precedence.
func LoadSettings(options LoadOptions) (Settings, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return Settings{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	merged, defaultsErr := loadDefaultSettings()
	if defaultsErr != nil {
		return Settings{}, defaultsErr
	}

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.SettingsFileName)
		globalSettings, loadErr := loadSettingsFromPath(globalPath)
		if loadErr != nil {
			return Settings{}, loadErr
		}
		merged = merged.Merge(globalSettings)
	}

	localPath := resolveLocalSettingsPath(workingDirectory, options.ExplicitFilePath)
	localSettings, loadErr := loadSettingsFromPath(localPath)
	if loadErr != nil {
		return Settings{}, loadErr
	}
	merged = merged.Merge(localSettings)

	if validationErr := merged.Validate(); validationErr != nil {
		return Settings{}, validationErr
	}
	return merged, nil
}

// Validate reports settings values that cannot be used.
func (settings Settings) Validate() error {
	if settings.FoldThreshold != nil && *settings.FoldThreshold < 0 {
		return fmt.Errorf("extensions_fold_count must not be negative, got %d", *settings.FoldThreshold)
	}
	if settings.Color != "" && !types.IsSupportedColorMode(settings.Color) {
		return fmt.Errorf("unsupported color mode %q", settings.Color)
	}
	return nil
}

// Merge overlays override onto the receiver returning the combined settings.
func (settings Settings) Merge(override Settings) Settings {
	result := settings
	if len(override.IgnoredDirectories) > 0 {
		result.IgnoredDirectories = append([]string{}, utils.DeduplicatePatterns(override.IgnoredDirectories)...)
	}
	if override.FoldThreshold != nil {
		result.FoldThreshold = cloneInt(override.FoldThreshold)
	}
	if override.Unfold != nil {
		result.Unfold = cloneBool(override.Unfold)
	}
	if override.Filter != nil {
		result.Filter = cloneString(override.Filter)
	}
	if override.Color != "" {
		result.Color = override.Color
	}
	if override.UseGitignore != nil {
		result.UseGitignore = cloneBool(override.UseGitignore)
	}
	return result
}

// FoldThresholdValue returns the configured fold threshold or zero when unset.
func (settings Settings) FoldThresholdValue() int {
	if settings.FoldThreshold == nil {
		return 0
	}
	return *settings.FoldThreshold
}

// FilterValue returns the configured filter pattern or an empty string when unset.
func (settings Settings) FilterValue() string {
	if settings.Filter == nil {
		return ""
	}
	return *settings.Filter
}

func resolveLocalSettingsPath(workingDirectory, explicitPath string) string {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) || workingDirectory == "" {
			return explicitPath
		}
		return filepath.Join(workingDirectory, explicitPath)
	}
	return filepath.Join(workingDirectory, utils.LocalConfigDirectoryName, utils.SettingsFileName)
}

func loadDefaultSettings() (Settings, error) {
	reader := viper.New()
	reader.SetConfigType(settingsConfigType)
	if readErr := reader.ReadConfig(bytes.NewReader(defaultSettingsData)); readErr != nil {
		return Settings{}, fmt.Errorf("read default settings: %w", readErr)
	}
	return decodeSettings(reader, "embedded defaults")
}

func loadSettingsFromPath(path string) (Settings, error) {
	if path == "" {
		return Settings{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return Settings{}, nil
		}
		return Settings{}, fmt.Errorf("stat settings %s: %w", path, statErr)
	}
	if info.IsDir() {
		return Settings{}, fmt.Errorf("settings path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType(settingsConfigType)
	if readErr := reader.ReadInConfig(); readErr != nil {
		return Settings{}, fmt.Errorf("read settings from %s: %w", path, readErr)
	}
	return decodeSettings(reader, path)
}

// decodeSettings accepts ignored_dirs either as a list or as a comma separated string.
func decodeSettings(reader *viper.Viper, source string) (Settings, error) {
	var settings Settings
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToSliceHookFunc(listSeparator),
	))
	if decodeErr := reader.Unmarshal(&settings, decodeHook); decodeErr != nil {
		return Settings{}, fmt.Errorf("decode settings from %s: %w", source, decodeErr)
	}
	settings.IgnoredDirectories = utils.DeduplicatePatterns(settings.IgnoredDirectories)
	return settings, nil
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
