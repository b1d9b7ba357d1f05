package resilience

import (
	"time"
)

// FromConfig converts config values to a RetryConfig with linear backoff.
// Non-positive values keep the defaults.
func FromConfig(maxAttempts, stepMs int) RetryConfig {
	cfg := DefaultRetryConfig()
	if maxAttempts > 0 {
		cfg.MaxAttempts = maxAttempts
	}
	if stepMs > 0 {
		cfg.Backoff = LinearBackoff(time.Duration(stepMs) * time.Millisecond)
	}
	return cfg
}

// WithLogger returns a copy of cfg that logs retries for the named operation.
func (c RetryConfig) WithLogger(service, operation string) RetryConfig {
	c.OnRetry = RetryLogger(service, operation)
	return c
}
