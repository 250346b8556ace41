// Package config loads and validates client configuration: the control
// plane endpoint, the bearer token, and the timeout bundle.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Environment variables consulted by Load when no explicit values are given.
const (
	EnvHost  = "PROVISOR_HOST"
	EnvToken = "PROVISOR_TOKEN"
)

// Config is the explicit configuration bundle for one orchestration run.
// There is no other discovery mechanism: a missing host or token is a
// fatal validation error surfaced before any network activity.
type Config struct {
	Host  string
	Token string
}

// ValidationError reports unusable configuration.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

// Load builds a Config from explicit values, falling back to the
// PROVISOR_HOST / PROVISOR_TOKEN environment variables, and validates it.
func Load(host, token string) (*Config, error) {
	if host == "" {
		host = os.Getenv(EnvHost)
	}
	if token == "" {
		token = os.Getenv(EnvToken)
	}

	cfg := &Config{Host: strings.TrimSpace(host), Token: strings.TrimSpace(token)}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the bundle locally; no network call is made.
func (c *Config) Validate() error {
	if c.Host == "" {
		return &ValidationError{Field: "host", Reason: "is required (set " + EnvHost + " or pass --host)"}
	}

	u, err := url.Parse(c.Host)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ValidationError{Field: "host", Reason: fmt.Sprintf("%q is not a valid URL with scheme and host", c.Host)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Field: "host", Reason: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}

	if c.Token == "" {
		return &ValidationError{Field: "token", Reason: "is required (set " + EnvToken + " or pass --token)"}
	}

	return nil
}
