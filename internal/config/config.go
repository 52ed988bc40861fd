// Package config resolves application configuration from environment
// variables layered over an optional YAML file in the state directory.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the client needs to reach the backend.
type Config struct {
	// APIURL is the backend base URL, e.g. "https://api.pipe.co". Required.
	APIURL string `yaml:"api_url"`

	// WSURL is the optional live-refresh websocket endpoint. Empty disables it.
	WSURL string `yaml:"ws_url"`

	// StateDir is where session.json, theme.json and config.yaml live.
	StateDir string `yaml:"-"`

	// RequestTimeout bounds every HTTP request.
	RequestTimeout string `yaml:"request_timeout"` // e.g. "12s"

	// Stale windows per resource volatility class.
	StalePedidos string `yaml:"stale_pedidos"`  // e.g. "15s"
	StaleEtapas  string `yaml:"stale_etapas"`   // e.g. "20s"
	StaleCatalog string `yaml:"stale_catalogo"` // e.g. "60s"
}

// Default returns the built-in configuration, state dir included.
func Default() Config {
	dir := os.Getenv("PIPE_STATE_DIR")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".pipeapp")
		} else {
			dir = ".pipeapp"
		}
	}
	return Config{
		StateDir:       dir,
		RequestTimeout: "12s",
		StalePedidos:   "15s",
		StaleEtapas:    "20s",
		StaleCatalog:   "60s",
	}
}

// Load resolves the effective configuration: defaults, then config.yaml from
// the state dir if present, then environment overrides. A missing or broken
// YAML file is ignored.
func Load() Config {
	cfg := Default()

	if data, err := os.ReadFile(filepath.Join(cfg.StateDir, "config.yaml")); err == nil {
		var fileCfg Config
		if yaml.Unmarshal(data, &fileCfg) == nil {
			cfg.merge(fileCfg)
		}
	}

	if v := os.Getenv("PIPE_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("PIPE_WS_URL"); v != "" {
		cfg.WSURL = v
	}

	return cfg
}

func (c *Config) merge(o Config) {
	if o.APIURL != "" {
		c.APIURL = o.APIURL
	}
	if o.WSURL != "" {
		c.WSURL = o.WSURL
	}
	if o.RequestTimeout != "" {
		c.RequestTimeout = o.RequestTimeout
	}
	if o.StalePedidos != "" {
		c.StalePedidos = o.StalePedidos
	}
	if o.StaleEtapas != "" {
		c.StaleEtapas = o.StaleEtapas
	}
	if o.StaleCatalog != "" {
		c.StaleCatalog = o.StaleCatalog
	}
}

// GetRequestTimeout returns the parsed request timeout.
func (c Config) GetRequestTimeout() time.Duration {
	return parseDuration(c.RequestTimeout, 12*time.Second)
}

// GetStalePedidos returns the staleness window for order lists.
func (c Config) GetStalePedidos() time.Duration {
	return parseDuration(c.StalePedidos, 15*time.Second)
}

// GetStaleEtapas returns the staleness window for stage records.
func (c Config) GetStaleEtapas() time.Duration {
	return parseDuration(c.StaleEtapas, 20*time.Second)
}

// GetStaleCatalog returns the staleness window for slow-moving catalogs
// (clients, users, machines, schedules).
func (c Config) GetStaleCatalog() time.Duration {
	return parseDuration(c.StaleCatalog, 60*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
