package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv overlays SHOPACCOUNTS_* environment variables. Unset variables
// leave the current values alone; malformed values panic.
func parseEnv(config *Config) {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(fmt.Errorf("parse env: %w", err))
	}
}
