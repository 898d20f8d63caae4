package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "CAMPUS_SHOP"

// parseEnv overrides cfg with every CAMPUS_SHOP_* variable that is set.
// Unset variables leave the current value alone.
func parseEnv(cfg *Config) error {
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return nil
}
