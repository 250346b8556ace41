package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timing values.
// These values can be customized via environment variables.
type Timeouts struct {
	RequestTimeout   time.Duration // Per-attempt REST call timeout
	PollTimeout      time.Duration // Overall wait for an async operation to reach a terminal state
	PollInterval     time.Duration // Sleep between successful, non-terminal status checks
	RetryMaxAttempts int           // Total attempts per logical call
	RetryBaseDelay   time.Duration // Backoff delay before the second attempt
	RetryMaxDelay    time.Duration // Backoff clamp
}

// LoadTimeouts loads timing configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - PROVISOR_REQUEST_TIMEOUT (default: 30s)
//   - PROVISOR_POLL_TIMEOUT (default: 30m)
//   - PROVISOR_POLL_INTERVAL (default: 15s)
//   - PROVISOR_RETRY_MAX_ATTEMPTS (default: 5)
//   - PROVISOR_RETRY_BASE_DELAY (default: 2s)
//   - PROVISOR_RETRY_MAX_DELAY (default: 30s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		RequestTimeout:   parseDuration("PROVISOR_REQUEST_TIMEOUT", 30*time.Second),
		PollTimeout:      parseDuration("PROVISOR_POLL_TIMEOUT", 30*time.Minute),
		PollInterval:     parseDuration("PROVISOR_POLL_INTERVAL", 15*time.Second),
		RetryMaxAttempts: parseInt("PROVISOR_RETRY_MAX_ATTEMPTS", 5),
		RetryBaseDelay:   parseDuration("PROVISOR_RETRY_BASE_DELAY", 2*time.Second),
		RetryMaxDelay:    parseDuration("PROVISOR_RETRY_MAX_DELAY", 30*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
