package config

import (
	"fmt"
	"time"
)

// Validate clamps tunables into their documented bounds and rejects values
// that cannot be clamped into something sensible. It mutates the receiver.
func (c *AppConfig) Validate() error {
	if c.MaxPages < 1 {
		c.MaxPages = 1
	}
	if c.MaxPages > MaxPagesLimit {
		c.MaxPages = MaxPagesLimit
	}

	if c.TimeBudget < MinTimeBudget {
		c.TimeBudget = MinTimeBudget
	}
	if c.TimeBudget > MaxTimeBudget {
		c.TimeBudget = MaxTimeBudget
	}

	if c.FetchTimeout <= 0 {
		c.FetchTimeout = Defaults().FetchTimeout
	}
	if c.FetchTimeout > c.TimeBudget {
		c.FetchTimeout = c.TimeBudget
	}

	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", c.MaxBodyBytes)
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max_redirects must be in [0,10], got %d", c.MaxRedirects)
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.MaxRetries > 3 {
		c.MaxRetries = 3
	}
	if c.InitialRetryDelay <= 0 {
		c.InitialRetryDelay = Defaults().InitialRetryDelay
	}
	if c.MaxRetryDelay < c.InitialRetryDelay {
		c.MaxRetryDelay = c.InitialRetryDelay
	}
	if c.PageDelay < 0 {
		c.PageDelay = 0
	}
	if c.PageDelay > 5*time.Second {
		c.PageDelay = 5 * time.Second
	}

	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	if c.Concurrency > MaxTargetConcurrency {
		c.Concurrency = MaxTargetConcurrency
	}

	if c.DefaultRegion == "" {
		c.DefaultRegion = "US"
	}
	if len(c.DefaultRegion) != 2 {
		return fmt.Errorf("default_region must be a two-letter region code, got %q", c.DefaultRegion)
	}
	if c.UserAgent == "" {
		c.UserAgent = Defaults().UserAgent
	}
	return nil
}
