package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment override, e.g. OYSTERDASH_HTTP_PORT
const EnvPrefix = "OYSTERDASH_"

// ApplyEnv overlays environment variables onto cfg. Unset variables leave the
// existing values alone.
func ApplyEnv(cfg *ConfigData) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
