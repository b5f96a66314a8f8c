// Package config loads runtime configuration for the admin CLI: built-in
// defaults, then an optional JSON file (-c / -config), then flags.
//
//	-a string   base URL of the REST API
//	-i int      reachability check interval (seconds)
//	-t int      per-request timeout (seconds)
//
// JSON keys: server_url, online_check_interval, request_timeout. Durations
// accept "3s" or integer nanoseconds.
package config

import "time"

// Config holds runtime settings for the admin CLI.
type Config struct {
	ServerURL           string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.OnlineCheckInterval = 5 * time.Second
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
