// Package config loads runtime configuration for the campus shop client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with --config / -c.
//  3. Environment variables prefixed with CAMPUS_SHOP_.
//  4. Command-line flags registered by RegisterFlags, which override earlier
//     values only when explicitly set.
//
// # JSON schema
//
// Durations accept either strings like "3s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://shop.example.edu/api",
//	  "database_path": "campus_shop.db",
//	  "request_timeout": "10s",
//	  "read_retries": 2,
//	  "retry_backoff": "200ms",
//	  "payment_redirect_delay": "3s",
//	  "log_level": "info",
//	  "log_format": "text"
//	}
//
// # Environment
//
//	CAMPUS_SHOP_API_BASE_URL, CAMPUS_SHOP_DATABASE_PATH,
//	CAMPUS_SHOP_REQUEST_TIMEOUT, CAMPUS_SHOP_READ_RETRIES,
//	CAMPUS_SHOP_RETRY_BACKOFF, CAMPUS_SHOP_PAYMENT_REDIRECT_DELAY,
//	CAMPUS_SHOP_LOG_LEVEL, CAMPUS_SHOP_LOG_FORMAT
package config
