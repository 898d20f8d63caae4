package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Duration unmarshals from either a Go duration string ("3s") or an integer
// number of nanoseconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

// jsonConfig is a DTO used only for unmarshalling. Pointer fields let us tell
// "absent" from "zero" so a partial file only overrides what it names.
type jsonConfig struct {
	APIBaseURL           *string   `json:"api_base_url"`
	DatabasePath         *string   `json:"database_path"`
	RequestTimeout       *Duration `json:"request_timeout"`
	ReadRetries          *int      `json:"read_retries"`
	RetryBackoff         *Duration `json:"retry_backoff"`
	PaymentRedirectDelay *Duration `json:"payment_redirect_delay"`
	LogLevel             *string   `json:"log_level"`
	LogFormat            *string   `json:"log_format"`
}

func parseJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.APIBaseURL != nil {
		cfg.APIBaseURL = *jc.APIBaseURL
	}
	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.ReadRetries != nil {
		cfg.ReadRetries = *jc.ReadRetries
	}
	if jc.RetryBackoff != nil {
		cfg.RetryBackoff = jc.RetryBackoff.Duration
	}
	if jc.PaymentRedirectDelay != nil {
		cfg.PaymentRedirectDelay = jc.PaymentRedirectDelay.Duration
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.LogFormat != nil {
		cfg.LogFormat = *jc.LogFormat
	}
	return nil
}
