// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all daybreak configuration.
type Config struct {
	DataDir string `toml:"data_dir"`
	DBPath  string `toml:"db_path"` // defaults to <data_dir>/daybreak.db when empty

	Server    ServerConfig    `toml:"server"`
	Analytics AnalyticsConfig `toml:"analytics"`
	Ingest    IngestConfig    `toml:"ingest"`
	Export    ExportConfig    `toml:"export"`
}

// ServerConfig controls the daemon's listen surface.
type ServerConfig struct {
	Addr          string `toml:"addr"`
	AllowedOrigin string `toml:"allowed_origin"`
}

// AnalyticsConfig controls the offload worker and the risk window.
type AnalyticsConfig struct {
	WindowDays int `toml:"window_days"` // recent-history window for risk input
	QueueSize  int `toml:"queue_size"`  // offload request queue
}

// IngestConfig controls the journal drop-directory watcher.
type IngestConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// ExportConfig controls history exports.
type ExportConfig struct {
	Dir string `toml:"dir"`
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DataDir: "~/.local/share/daybreak",
		Server: ServerConfig{
			Addr: "127.0.0.1:8642",
		},
		Analytics: AnalyticsConfig{
			WindowDays: 14,
			QueueSize:  64,
		},
		Ingest: IngestConfig{
			Enabled: false,
			Dir:     "~/.local/share/daybreak/inbox",
		},
		Export: ExportConfig{
			Dir: "~/.local/share/daybreak/exports",
		},
	}
}

// Load reads config from the standard path, falling back to defaults.
// DAYBREAK_ADDR, DAYBREAK_DB, and DAYBREAK_QUEUE_SIZE override the file so
// the daemon can be repointed without editing it.
func Load() (Config, error) {
	cfg := DefaultConfig()

	for _, p := range configPaths() {
		if _, err := os.Stat(p); err == nil {
			if _, err := toml.DecodeFile(p, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", p, err)
			}
			break
		}
	}

	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.Ingest.Dir = expandHome(cfg.Ingest.Dir)
	cfg.Export.Dir = expandHome(cfg.Export.Dir)
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "daybreak.db")
	} else {
		cfg.DBPath = expandHome(cfg.DBPath)
	}

	if addr := os.Getenv("DAYBREAK_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if db := os.Getenv("DAYBREAK_DB"); db != "" {
		cfg.DBPath = expandHome(db)
	}
	if qs := os.Getenv("DAYBREAK_QUEUE_SIZE"); qs != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(qs)); err == nil {
			cfg.Analytics.QueueSize = n
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}
	if c.Analytics.WindowDays <= 0 {
		return fmt.Errorf("analytics.window_days must be > 0")
	}
	if c.Analytics.QueueSize <= 0 {
		return fmt.Errorf("analytics.queue_size must be > 0")
	}
	if c.Ingest.Enabled && c.Ingest.Dir == "" {
		return fmt.Errorf("ingest.dir cannot be empty when ingest is enabled")
	}
	return nil
}

func configPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "daybreak", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "daybreak", "config.toml"))
	}

	return paths
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
