package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8000/api", c.APIBaseURL)
	assert.Equal(t, "campus_shop.db", c.DatabasePath)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, 2, c.ReadRetries)
	assert.Equal(t, 3*time.Second, c.PaymentRedirectDelay)
	assert.NoError(t, c.Validate())
}

func TestLoad_DefaultsWhenNothingSet(t *testing.T) {
	cfg, err := Load(newFlagSet(t))
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, want, *cfg)
}

func TestLoad_EnvOverridesDefaults_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("CAMPUS_SHOP_API_BASE_URL", "https://env.example/api")
	t.Setenv("CAMPUS_SHOP_REQUEST_TIMEOUT", "4s")
	t.Setenv("CAMPUS_SHOP_LOG_FORMAT", "json")

	cfg, err := Load(newFlagSet(t, "--api", "https://flag.example/api"))
	require.NoError(t, err)

	assert.Equal(t, "https://flag.example/api", cfg.APIBaseURL)
	assert.Equal(t, 4*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_EnvCoversEveryField(t *testing.T) {
	env := map[string]string{
		"CAMPUS_SHOP_API_BASE_URL":           "https://env.example/api",
		"CAMPUS_SHOP_DATABASE_PATH":          "/tmp/shop.db",
		"CAMPUS_SHOP_REQUEST_TIMEOUT":        "7s",
		"CAMPUS_SHOP_READ_RETRIES":           "5",
		"CAMPUS_SHOP_RETRY_BACKOFF":          "1s",
		"CAMPUS_SHOP_PAYMENT_REDIRECT_DELAY": "1s",
		"CAMPUS_SHOP_LOG_LEVEL":              "debug",
		"CAMPUS_SHOP_LOG_FORMAT":             "json",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := Load(newFlagSet(t))
	require.NoError(t, err)

	assert.Equal(t, Config{
		APIBaseURL:           "https://env.example/api",
		DatabasePath:         "/tmp/shop.db",
		RequestTimeout:       7 * time.Second,
		ReadRetries:          5,
		RetryBackoff:         time.Second,
		PaymentRedirectDelay: time.Second,
		LogLevel:             "debug",
		LogFormat:            "json",
	}, *cfg)
}

func TestLoad_IgnoresUnprefixedEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_PATH", "/var/other.db")

	cfg, err := Load(newFlagSet(t))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "campus_shop.db", cfg.DatabasePath)
}

func TestLoad_InvalidEnvValue(t *testing.T) {
	t.Setenv("CAMPUS_SHOP_READ_RETRIES", "many")

	_, err := Load(newFlagSet(t))
	require.ErrorContains(t, err, "READ_RETRIES")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "empty url", mutate: func(c *Config) { c.APIBaseURL = "" }},
		{name: "zero timeout", mutate: func(c *Config) { c.RequestTimeout = 0 }},
		{name: "negative retries", mutate: func(c *Config) { c.ReadRetries = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			require.Error(t, c.Validate())
		})
	}
}
