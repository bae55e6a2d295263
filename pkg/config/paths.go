package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigDir returns the path to the tool's config directory (~/.sitelogs).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".sitelogs"), nil
}

// EnsureConfigDir creates the config directory if it does not exist.
func EnsureConfigDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}
	return dir, nil
}

// DefaultPath returns the path to the config file (~/.sitelogs/config.yaml).
// If name is already an absolute path, it returns it as-is.
func DefaultPath(name string) (string, error) {
	if name == "" {
		name = "config.yaml"
	}
	if filepath.IsAbs(name) {
		return name, nil
	}

	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// DefaultLogRoot returns where synchronized logs land when nothing else is
// configured (~/.sitelogs/site-logs).
func DefaultLogRoot() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "site-logs"), nil
}
