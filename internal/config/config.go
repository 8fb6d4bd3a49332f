package config

import "time"

// TrackerConfig is the root configuration for a tracker instance.
type TrackerConfig struct {
	API      APIConfig      `yaml:"api"`
	Store    StoreConfig    `yaml:"store"`
	Poller   PollerConfig   `yaml:"poller"`
	Trackers []WatchConfig  `yaml:"trackers"`
	Server   ServerConfig   `yaml:"server"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Archive  ArchiveConfig  `yaml:"archive"`
}

// APIConfig holds DonutSMP API settings.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Token      string        `yaml:"token"` // account API token, sent as Authorization
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// StoreConfig holds the transaction log location.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// PollerConfig holds ingestion loop settings.
type PollerConfig struct {
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

// WatchConfig is one configured tracker.
type WatchConfig struct {
	Kind  string `yaml:"kind"` // "item", "price" or "market-cap"
	Name  string `yaml:"name"`
	Pages int    `yaml:"pages"`
}

// ServerConfig holds the query API settings.
type ServerConfig struct {
	Addr     string        `yaml:"addr"`
	StatsTTL time.Duration `yaml:"stats_ttl"`
	LiveFeed bool          `yaml:"live_feed"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// ArchiveConfig holds the optional Postgres mirror settings.
type ArchiveConfig struct {
	Enabled       bool          `yaml:"enabled"`
	DSN           string        `yaml:"dsn"`
	MinConns      int           `yaml:"min_conns"`
	MaxConns      int           `yaml:"max_conns"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}
