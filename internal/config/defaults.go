package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL       = "https://api.donutsmp.net/v1"
	DefaultAPITimeout    = 15 * time.Second
	DefaultMaxRetries    = 3
	DefaultStorePath     = "market_history.jsonl"
	DefaultPollInterval  = 45 * time.Second
	DefaultPollTimeout   = 20 * time.Second
	DefaultTrackerPages  = 1
	DefaultServerAddr    = ":8080"
	DefaultStatsTTL      = 5 * time.Minute
	DefaultMetricsAddr   = ":9090"
	DefaultMetricsPath   = "/metrics"
	DefaultArchiveBatch  = 500
	DefaultArchiveFlush  = 2 * time.Second
	DefaultMinConns      = 1
	DefaultMaxConns      = 4
)

func (c *TrackerConfig) applyDefaults() {
	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}

	// Store defaults
	if c.Store.Path == "" {
		c.Store.Path = DefaultStorePath
	}

	// Poller defaults
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}
	if c.Poller.Timeout == 0 {
		c.Poller.Timeout = DefaultPollTimeout
	}

	// Tracker defaults: with nothing configured, track the whole market.
	if len(c.Trackers) == 0 {
		c.Trackers = []WatchConfig{{Kind: "market-cap", Name: "market", Pages: 1}}
	}
	for i := range c.Trackers {
		if c.Trackers[i].Pages == 0 {
			c.Trackers[i].Pages = DefaultTrackerPages
		}
	}

	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Server.StatsTTL == 0 {
		c.Server.StatsTTL = DefaultStatsTTL
	}

	// Metrics defaults
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = DefaultMetricsAddr
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Archive defaults
	if c.Archive.BatchSize == 0 {
		c.Archive.BatchSize = DefaultArchiveBatch
	}
	if c.Archive.FlushInterval == 0 {
		c.Archive.FlushInterval = DefaultArchiveFlush
	}
	if c.Archive.MinConns == 0 {
		c.Archive.MinConns = DefaultMinConns
	}
	if c.Archive.MaxConns == 0 {
		c.Archive.MaxConns = DefaultMaxConns
	}
}
