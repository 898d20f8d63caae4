package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Config holds runtime settings for the client. Each field maps to a
// CAMPUS_SHOP_<FIELD_NAME> variable; only the prefixed name is read.
type Config struct {
	APIBaseURL           string        `split_words:"true"`
	DatabasePath         string        `split_words:"true"`
	RequestTimeout       time.Duration `split_words:"true"`
	ReadRetries          int           `split_words:"true"`
	RetryBackoff         time.Duration `split_words:"true"`
	PaymentRedirectDelay time.Duration `split_words:"true"`
	LogLevel             string        `split_words:"true"`
	LogFormat            string        `split_words:"true"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000/api"
	c.DatabasePath = "campus_shop.db"
	c.RequestTimeout = 10 * time.Second
	c.ReadRetries = 2
	c.RetryBackoff = 200 * time.Millisecond
	c.PaymentRedirectDelay = 3 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// Validate rejects values the client cannot work with.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api base url must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.ReadRetries < 0 {
		return fmt.Errorf("read retries must not be negative, got %d", c.ReadRetries)
	}
	return nil
}

// Load builds a Config from defaults, the JSON file named by the "config"
// flag, the process environment and finally any flag in fs that was set
// explicitly. fs must have been prepared with RegisterFlags.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	path, err := fs.GetString(flagConfig)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := parseJSON(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := parseEnv(cfg); err != nil {
		return nil, err
	}

	if err := applyFlags(cfg, fs); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
