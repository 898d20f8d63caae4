package config

import (
	"github.com/spf13/pflag"
)

const (
	flagConfig        = "config"
	flagAPI           = "api"
	flagDatabase      = "db"
	flagTimeout       = "timeout"
	flagRetries       = "retries"
	flagRedirectDelay = "redirect-delay"
	flagLogLevel      = "log-level"
	flagLogFormat     = "log-format"
)

// RegisterFlags declares the client flags on fs. Flag defaults mirror
// LoadDefaults so --help shows real values.
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(flagConfig, "c", "", "path to JSON config file")
	fs.StringP(flagAPI, "a", d.APIBaseURL, "base URL of the shop API")
	fs.String(flagDatabase, d.DatabasePath, "path to the local SQLite store")
	fs.Duration(flagTimeout, d.RequestTimeout, "per-request timeout")
	fs.Int(flagRetries, d.ReadRetries, "retries for idempotent reads")
	fs.Duration(flagRedirectDelay, d.PaymentRedirectDelay, "delay before leaving the payment result screen")
	fs.String(flagLogLevel, d.LogLevel, "log level (debug, info, warn, error)")
	fs.String(flagLogFormat, d.LogFormat, "log format (text, json)")
}

// applyFlags copies only explicitly set flags, so JSON and env values survive
// when the user did not pass the flag.
func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	var err error

	if fs.Changed(flagAPI) {
		if cfg.APIBaseURL, err = fs.GetString(flagAPI); err != nil {
			return err
		}
	}
	if fs.Changed(flagDatabase) {
		if cfg.DatabasePath, err = fs.GetString(flagDatabase); err != nil {
			return err
		}
	}
	if fs.Changed(flagTimeout) {
		if cfg.RequestTimeout, err = fs.GetDuration(flagTimeout); err != nil {
			return err
		}
	}
	if fs.Changed(flagRetries) {
		if cfg.ReadRetries, err = fs.GetInt(flagRetries); err != nil {
			return err
		}
	}
	if fs.Changed(flagRedirectDelay) {
		if cfg.PaymentRedirectDelay, err = fs.GetDuration(flagRedirectDelay); err != nil {
			return err
		}
	}
	if fs.Changed(flagLogLevel) {
		if cfg.LogLevel, err = fs.GetString(flagLogLevel); err != nil {
			return err
		}
	}
	if fs.Changed(flagLogFormat) {
		if cfg.LogFormat, err = fs.GetString(flagLogFormat); err != nil {
			return err
		}
	}
	return nil
}
