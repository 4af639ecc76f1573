package authstate

import "log/slog"

// Option configures the Controller.
type Option func(*Controller)

// WithConfig replaces the full controller configuration.
func WithConfig(cfg Config) Option {
	return func(c *Controller) {
		c.cfg = cfg
	}
}

// WithBootPolicy overrides only the bootstrap policy.
func WithBootPolicy(p BootPolicy) Option {
	return func(c *Controller) {
		c.cfg.BootPolicy = p
	}
}

// WithCacheStore replaces the default in-memory session cache.
func WithCacheStore(cache CacheStore) Option {
	return func(c *Controller) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// WithLogger sets the controller logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}
