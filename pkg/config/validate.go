package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingAPIKey is returned by RequireAPIKey when the guard is enabled
// without a key.
var ErrMissingAPIKey = errors.New("auth.api_key is required unless auth.disabled is set")

// Validate performs business-rule validation on the loaded configuration.
// Load calls it automatically.
func (c *Config) Validate() error {
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be >= 1 (got %d)", c.Batch.Workers)
	}
	if c.Batch.JitterMin < 0 {
		return fmt.Errorf("batch.jitter_min must be >= 0 (got %s)", c.Batch.JitterMin)
	}
	if c.Batch.JitterMax < c.Batch.JitterMin {
		return fmt.Errorf("batch.jitter_max (%s) must be >= batch.jitter_min (%s)", c.Batch.JitterMax, c.Batch.JitterMin)
	}
	if c.Scrape.Timeout <= 0 {
		return fmt.Errorf("scrape.timeout must be > 0 (got %s)", c.Scrape.Timeout)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path must be set")
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json (got %q)", c.Log.Format)
	}
	return nil
}

// RequireAPIKey checks that serving the API is possible with these settings.
func (c *Config) RequireAPIKey() error {
	if c.Auth.Disabled || c.Auth.APIKey != "" {
		return nil
	}
	return ErrMissingAPIKey
}
