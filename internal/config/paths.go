package config

import (
	"os"
	"path/filepath"
)

const (
	appDir         = "relnotes"
	projectDir     = ".relnotes"
	configFileName = "config.yml"
	legacyFileName = "config.json"
	legacyUserDir  = ".relnotes"
)

// UserConfigPath returns the user config file, config.yml under
// os.UserConfigDir (XDG_CONFIG_HOME or ~/.config on Linux,
// ~/Library/Application Support on macOS, %AppData% on Windows).
func UserConfigPath() (string, error) {
	dir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// UserConfigDir returns the directory holding the user config file.
func UserConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appDir), nil
}

// ProjectConfigPath returns .relnotes/config.yml relative to the working
// directory.
func ProjectConfigPath() string {
	return filepath.Join(projectDir, configFileName)
}

// ProjectConfigDir returns the project config directory.
func ProjectConfigDir() string {
	return projectDir
}

// LegacyUserConfigPath returns ~/.relnotes/config.json.
func LegacyUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, legacyUserDir, legacyFileName), nil
}

// LegacyProjectConfigPath returns .relnotes/config.json.
func LegacyProjectConfigPath() string {
	return filepath.Join(projectDir, legacyFileName)
}
