package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Bounds enforced by Validate. Callers can request less, never more.
const (
	MaxPagesLimit        = 5
	MaxTimeBudget        = 30 * time.Second
	MinTimeBudget        = 5 * time.Second
	MaxTargetsPerBatch   = 5
	MaxTargetConcurrency = 3
)

// AppConfig holds every knob of the extraction engine. Zero values are filled
// in by Defaults; Validate clamps anything that escapes the documented bounds.
type AppConfig struct {
	MaxPages          int           `yaml:"max_pages"`      // page budget per target (1..5)
	TimeBudget        time.Duration `yaml:"time_budget"`    // wall-clock budget per target (5s..30s)
	FetchTimeout      time.Duration `yaml:"fetch_timeout"`  // hard cap on one fetch incl. DNS and TLS
	MaxBodyBytes      int64         `yaml:"max_body_bytes"` // response body cap
	MaxRedirects      int           `yaml:"max_redirects"`
	MaxRetries        int           `yaml:"max_retries"` // extra attempts for transient failures
	InitialRetryDelay time.Duration `yaml:"initial_retry_delay"`
	MaxRetryDelay     time.Duration `yaml:"max_retry_delay"`
	PageDelay         time.Duration `yaml:"page_delay"`      // polite pause between pages of one target
	Concurrency       int           `yaml:"concurrency"`     // concurrent targets in a batch (1..3)
	Render            bool          `yaml:"render"`          // use the browser rendering path
	RenderFallback    bool          `yaml:"render_fallback"` // render only when the static page is thin
	RespectRobots     bool          `yaml:"respect_robots"`
	DefaultRegion     string        `yaml:"default_region"` // region hint for phone parsing
	UserAgent         string        `yaml:"user_agent"`
	AllowPrivateHosts bool          `yaml:"allow_private_hosts"` // test escape hatch; leave off in production

	HTTPClientSettings HTTPClientConfig `yaml:"http_client_settings,omitempty"`
}

// HTTPClientConfig holds transport-level settings for the shared HTTP client.
type HTTPClientConfig struct {
	MaxIdleConns        int           `yaml:"max_idle_conns,omitempty"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host,omitempty"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout,omitempty"`
	TLSHandshakeTimeout time.Duration `yaml:"tls_handshake_timeout,omitempty"`
	DialerTimeout       time.Duration `yaml:"dialer_timeout,omitempty"`
	DialerKeepAlive     time.Duration `yaml:"dialer_keep_alive,omitempty"`
}

// Defaults returns the configuration used when no file or flags override it.
func Defaults() AppConfig {
	return AppConfig{
		MaxPages:          3,
		TimeBudget:        15 * time.Second,
		FetchTimeout:      6 * time.Second,
		MaxBodyBytes:      200 * 1024,
		MaxRedirects:      5,
		MaxRetries:        2,
		InitialRetryDelay: 250 * time.Millisecond,
		MaxRetryDelay:     2 * time.Second,
		PageDelay:         500 * time.Millisecond,
		Concurrency:       3,
		RespectRobots:     true,
		DefaultRegion:     "US",
		UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		HTTPClientSettings: HTTPClientConfig{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     30 * time.Second,
			TLSHandshakeTimeout: 5 * time.Second,
			DialerTimeout:       5 * time.Second,
			DialerKeepAlive:     15 * time.Second,
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}
