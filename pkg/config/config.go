package config

import (
	"fmt"
	"os"
	"time"

	"github.com/DeBrosOfficial/sitelogs/pkg/config/validate"
)

// Config represents the full configuration of the log sync tool
type Config struct {
	LogRoot  string            `yaml:"log_root"` // Local root of the <site>/<env>/<host> layout
	Resolver ResolverConfig    `yaml:"resolver"`
	Sync     SyncConfig        `yaml:"sync"`
	Analyze  AnalyzeConfig     `yaml:"analyze"`
	Logging  LoggingConfig     `yaml:"logging"`
	History  HistoryConfig     `yaml:"history"`
	Sites    map[string]string `yaml:"sites"` // Site name -> platform site ID
}

// ResolverConfig controls host discovery
type ResolverConfig struct {
	DomainSuffix string        `yaml:"domain_suffix"` // e.g. drush.in
	Nameserver   string        `yaml:"nameserver"`    // host:port; empty uses /etc/resolv.conf
	Timeout      time.Duration `yaml:"timeout"`       // Per query
}

// SyncConfig controls the transfer fan-out
type SyncConfig struct {
	Workers   int           `yaml:"workers"`    // Hosts transferred concurrently
	Retries   int           `yaml:"retries"`    // Extra attempts for transient failures
	Backoff   time.Duration `yaml:"backoff"`    // First retry delay, doubled per attempt
	Timeout   time.Duration `yaml:"timeout"`    // Per transfer invocation
	SSHPort   int           `yaml:"ssh_port"`   // Remote secure-shell port
	RsyncPath string        `yaml:"rsync_path"` // rsync binary
}

// AnalyzeConfig names the external digesting tools
type AnalyzeConfig struct {
	PtQueryDigest string `yaml:"pt_query_digest"`
	MysqlDumpSlow string `yaml:"mysqldumpslow"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	OutputFile string `yaml:"output_file"` // Empty for stderr
}

// HistoryConfig controls the local ledger of sync runs
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // Empty uses ~/.sitelogs/history.db
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		LogRoot: "", // Filled from DefaultLogRoot at load time
		Resolver: ResolverConfig{
			DomainSuffix: "drush.in",
			Nameserver:   "",
			Timeout:      5 * time.Second,
		},
		Sync: SyncConfig{
			Workers:   4,
			Retries:   0,
			Backoff:   2 * time.Second,
			Timeout:   10 * time.Minute,
			SSHPort:   2222,
			RsyncPath: "rsync",
		},
		Analyze: AnalyzeConfig{
			PtQueryDigest: "pt-query-digest",
			MysqlDumpSlow: "mysqldumpslow",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Sites: make(map[string]string),
	}
}

// Load reads the config file at path on top of the defaults. A missing file
// is not an error. The persisted log-root setting wins over an empty
// log_root, and the home-directory default fills whatever is still empty.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		f, err := os.Open(path)
		switch {
		case err == nil:
			defer f.Close()
			if err := DecodeStrict(f, cfg); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
	}

	if cfg.LogRoot == "" {
		if settings, err := LoadSettings(); err == nil {
			cfg.LogRoot = settings.Get(SettingLogRoot)
		}
	}
	if cfg.LogRoot == "" {
		def, err := DefaultLogRoot()
		if err != nil {
			return nil, err
		}
		cfg.LogRoot = def
	}
	root, err := validate.ExpandHome(cfg.LogRoot)
	if err != nil {
		return nil, err
	}
	cfg.LogRoot = root
	if cfg.History.Enabled && cfg.History.Path == "" {
		cfg.History.Path, err = DefaultPath("history.db")
	} else {
		cfg.History.Path, err = validate.ExpandHome(cfg.History.Path)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Sites == nil {
		cfg.Sites = make(map[string]string)
	}

	return cfg, nil
}
