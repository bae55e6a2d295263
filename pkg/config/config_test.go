package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogRoot = t.TempDir()

	errs := cfg.Validate()
	assert.Empty(t, errs)
	assert.Equal(t, "drush.in", cfg.Resolver.DomainSuffix)
	assert.Equal(t, 2222, cfg.Sync.SSHPort)
	assert.Equal(t, 4, cfg.Sync.Workers)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".sitelogs", "site-logs"), cfg.LogRoot)
	assert.Equal(t, 10*time.Minute, cfg.Sync.Timeout)
	assert.Equal(t, filepath.Join(home, ".sitelogs", "history.db"), cfg.History.Path)
}

func TestLoadFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, "config.yaml")
	body := `log_root: /srv/logs
sync:
  workers: 8
  retries: 2
sites:
  acme: 0f1e2d3c
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/logs", cfg.LogRoot)
	assert.Equal(t, 8, cfg.Sync.Workers)
	assert.Equal(t, 2, cfg.Sync.Retries)
	assert.Equal(t, 2222, cfg.Sync.SSHPort, "unset keys keep defaults")
	assert.Equal(t, "0f1e2d3c", cfg.SiteID("acme"))
	assert.Equal(t, "other", cfg.SiteID("other"))
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bogus: 1\n"), 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadRejectsMultipleDocuments(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_root: /a\n---\nlog_root: /b\n"), 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single YAML document")
}

func TestLoadExpandsHomeInLogRoot(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_root: ~/work/logs\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "work", "logs"), cfg.LogRoot)
}

func TestLoadUsesPersistedLogRoot(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	s, err := LoadSettings()
	require.NoError(t, err)
	require.NoError(t, s.Set(SettingLogRoot, "/data/site-logs"))
	require.NoError(t, s.Save())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/data/site-logs", cfg.LogRoot)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogRoot = t.TempDir()
	cfg.Sync.Workers = 0
	cfg.Sync.SSHPort = 70000
	cfg.Resolver.DomainSuffix = ".bad."
	cfg.Resolver.Nameserver = "8.8.8.8"
	cfg.Logging.Level = "loud"
	cfg.Sites = map[string]string{"../x": ""}

	errs := cfg.Validate()

	var paths []string
	for _, e := range errs {
		ve, ok := e.(ValidationError)
		require.True(t, ok, "unexpected error type %T", e)
		paths = append(paths, ve.Path)
	}
	joined := strings.Join(paths, ",")
	for _, want := range []string{"sync.workers", "sync.ssh_port", "resolver.domain_suffix", "resolver.nameserver", "logging.level", "sites.../x"} {
		assert.Contains(t, joined, want)
	}
}

func TestSettingsRejectUnknownKey(t *testing.T) {
	s, err := LoadSettingsFrom(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)

	assert.Error(t, s.Set("color", "blue"))
	assert.Equal(t, "", s.Get(SettingLogRoot))
}

func TestSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")

	s, err := LoadSettingsFrom(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(SettingLogRoot, "/tmp/logs"))
	require.NoError(t, s.Save())

	again, err := LoadSettingsFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/logs", again.Get(SettingLogRoot))
}
