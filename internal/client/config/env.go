package config

import (
	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every variable name declared in Config's env tags.
const EnvPrefix = "ACCOUNTKEEPER_"

// parseEnv overlays cfg with ACCOUNTKEEPER_* environment variables. Unset
// variables leave the current values alone. A malformed value panics, like
// the JSON and flag loaders.
func parseEnv(cfg *Config) {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
