// Package config provides configuration management for learnadmin.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	homedir "github.com/mitchellh/go-homedir"
)

// ConfigDir is the configuration directory name under the user config root.
const ConfigDir = "learnadmin"

// configRoot returns the platform-appropriate parent of ConfigDir.
//   - Windows: %APPDATA%
//   - Unix: ~/.config
func configRoot() (string, error) {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return appData, nil
		}
		return "", errors.New("APPDATA environment variable not set")
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config"), nil
}

// DefaultConfigPath returns the default path of the INI config file.
func DefaultConfigPath() (string, error) {
	root, err := configRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, ConfigDir, "config"), nil
}

// CredentialsDirectory returns the directory of the on-disk credential store.
func CredentialsDirectory() (string, error) {
	root, err := configRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, ConfigDir, "credentials"), nil
}

// LogDirectory returns the log directory, falling back to the temp dir.
func LogDirectory() string {
	root, err := configRoot()
	if err != nil {
		return filepath.Join(os.TempDir(), "learnadmin-logs")
	}
	return filepath.Join(root, ConfigDir, "logs")
}

// ExpandPath expands a leading "~" to the user's home directory.
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand path %q: %w", path, err)
	}
	return expanded, nil
}
