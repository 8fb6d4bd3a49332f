package config

import (
	"errors"
	"fmt"
)

var validTrackerKinds = map[string]bool{
	"item":       true,
	"price":      true,
	"market-cap": true,
}

// Validate checks that all required fields are set and values are valid.
func (c *TrackerConfig) Validate() error {
	if c.API.Token == "" {
		return errors.New("api.token is required")
	}

	if c.Store.Path == "" {
		return errors.New("store.path is required")
	}

	if c.Poller.Interval <= 0 {
		return errors.New("poller.interval must be positive")
	}
	if c.Poller.Timeout <= 0 {
		return errors.New("poller.timeout must be positive")
	}
	if c.Poller.Timeout > c.Poller.Interval {
		return fmt.Errorf("poller.timeout (%s) cannot exceed poller.interval (%s)",
			c.Poller.Timeout, c.Poller.Interval)
	}

	for i, tr := range c.Trackers {
		if !validTrackerKinds[tr.Kind] {
			return fmt.Errorf("trackers[%d].kind %q must be one of item, price, market-cap", i, tr.Kind)
		}
		if tr.Pages < 1 {
			return fmt.Errorf("trackers[%d].pages must be >= 1", i)
		}
	}

	if c.Archive.Enabled && c.Archive.DSN == "" {
		return errors.New("archive.dsn is required when archive is enabled")
	}
	if c.Archive.MinConns > c.Archive.MaxConns {
		return fmt.Errorf("archive.min_conns (%d) cannot exceed max_conns (%d)",
			c.Archive.MinConns, c.Archive.MaxConns)
	}

	return nil
}
