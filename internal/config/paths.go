package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns the path to the user-level config file.
// This follows the XDG Base Directory Specification:
// - Linux: ~/.config/gxctl/config.yml
// - macOS: ~/Library/Application Support/gxctl/config.yml
// - Windows: %APPDATA%\gxctl\config.yml
//
// When only config.json exists there, that file is returned instead.
func UserConfigPath() (string, error) {
	dir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	yml := filepath.Join(dir, "config.yml")
	if fileExists(yml) {
		return yml, nil
	}
	if js := filepath.Join(dir, "config.json"); fileExists(js) {
		return js, nil
	}
	return yml, nil
}

// UserConfigDir returns the path to the user-level config directory.
func UserConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "gxctl"), nil
}
