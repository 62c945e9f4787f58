package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/temirov/itree/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"
)

var initializedFileNames = []string{
	utils.SettingsFileName,
	utils.IconsFileName,
	utils.ColorsFileName,
	utils.GlyphsFileName,
}

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// InitializeConfiguration writes the default settings and theme tables to the requested
// target and returns the directory they were written to.
func InitializeConfiguration(options InitOptions) (string, error) {
	target := options.Target
	if target == "" {
		target = InitTargetLocal
	}
	var configurationDirectory string
	switch target {
	case InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("determine working directory for configuration: %w", err)
			}
			workingDirectory = current
		}
		configurationDirectory = filepath.Join(workingDirectory, utils.LocalConfigDirectoryName)
	case InitTargetGlobal:
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory for configuration: %w", err)
		}
		configurationDirectory = filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
	default:
		return "", fmt.Errorf("unsupported init target %q", target)
	}

	if !options.Force {
		for _, fileName := range initializedFileNames {
			destinationPath := filepath.Join(configurationDirectory, fileName)
			if _, err := os.Stat(destinationPath); err == nil {
				return "", fmt.Errorf("configuration file already exists at %s", destinationPath)
			} else if !os.IsNotExist(err) {
				return "", fmt.Errorf("inspect configuration path %s: %w", destinationPath, err)
			}
		}
	}

	if err := os.MkdirAll(configurationDirectory, 0o755); err != nil {
		return "", fmt.Errorf("create configuration directory %s: %w", configurationDirectory, err)
	}
	for _, fileName := range initializedFileNames {
		destinationPath := filepath.Join(configurationDirectory, fileName)
		if err := os.WriteFile(destinationPath, mustReadDefault(fileName), 0o600); err != nil {
			return "", fmt.Errorf("write configuration to %s: %w", destinationPath, err)
		}
	}
	return configurationDirectory, nil
}
