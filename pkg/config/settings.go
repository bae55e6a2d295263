package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// SettingLogRoot is the key under which the log root directory is persisted.
const SettingLogRoot = "log-root"

var knownSettings = map[string]bool{
	SettingLogRoot: true,
}

// Settings is a small user-scoped key/value store persisted as YAML next to
// the config file.
type Settings struct {
	path   string
	values map[string]string
}

// SettingsPath returns the path to the settings file (~/.sitelogs/settings.yaml).
func SettingsPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, "settings.yaml"), nil
}

// LoadSettings loads the settings from the default location.
func LoadSettings() (*Settings, error) {
	path, err := SettingsPath()
	if err != nil {
		return nil, err
	}
	return LoadSettingsFrom(path)
}

// LoadSettingsFrom loads settings from path. A missing file yields an empty store.
func LoadSettingsFrom(path string) (*Settings, error) {
	s := &Settings{path: path, values: make(map[string]string)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if s.values == nil {
		s.values = make(map[string]string)
	}
	return s, nil
}

// Get returns the value stored under key, or "" when unset.
func (s *Settings) Get(key string) string {
	return s.values[key]
}

// Set stores value under key. Only known keys are accepted.
func (s *Settings) Set(key, value string) error {
	if !knownSettings[key] {
		return fmt.Errorf("unknown setting %q (known: %v)", key, KnownSettings())
	}
	s.values[key] = value
	return nil
}

// Save writes the settings back to disk, creating the directory if needed.
func (s *Settings) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// KnownSettings lists the accepted keys in sorted order.
func KnownSettings() []string {
	keys := make([]string, 0, len(knownSettings))
	for k := range knownSettings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
