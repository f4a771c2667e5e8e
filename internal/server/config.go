package server

import "time"

// Config holds the HTTP server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":3001", "127.0.0.1:0").
	ListenAddr string

	// Metrics exposes Prometheus metrics on /metrics.
	Metrics bool

	// RateLimit is the sustained requests per second allowed per client IP.
	// Zero disables rate limiting.
	RateLimit float64

	// RateBurst is the burst size allowed per client IP.
	RateBurst int

	// ShutdownTimeout bounds graceful shutdown in Stop.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ListenAddr:      ":3001",
		Metrics:         true,
		RateBurst:       20,
		ShutdownTimeout: 5 * time.Second,
	}
}

// ConfigOption is a function that modifies the Config.
type ConfigOption func(*Config)

// WithListenAddr sets the listen address.
func WithListenAddr(addr string) ConfigOption {
	return func(c *Config) {
		c.ListenAddr = addr
	}
}

// WithMetrics enables or disables the /metrics endpoint.
func WithMetrics(enable bool) ConfigOption {
	return func(c *Config) {
		c.Metrics = enable
	}
}

// WithRateLimit sets the per-IP rate limit. A zero rate disables limiting.
func WithRateLimit(perSecond float64, burst int) ConfigOption {
	return func(c *Config) {
		c.RateLimit = perSecond
		c.RateBurst = burst
	}
}

// WithShutdownTimeout sets how long Stop waits for in-flight requests.
func WithShutdownTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.ShutdownTimeout = d
	}
}

// NewConfig creates a new Config with the given options applied to defaults.
func NewConfig(opts ...ConfigOption) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
