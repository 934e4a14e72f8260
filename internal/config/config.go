// Package config loads vecgen defaults from the environment and builds the
// process logger.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every variable name below.
const EnvPrefix = "VECGEN_"

// Config holds the defaults for every command. Command-line flags
// override these values.
type Config struct {
	Generator   string `env:"GENERATOR" envDefault:"stdvector"`
	Output      string `env:"OUTPUT"`
	Format      string `env:"FORMAT"`
	Compression string `env:"COMPRESSION"`
	// Seed and Entries use -1 for "the generator's default".
	Seed       int64 `env:"SEED" envDefault:"-1"`
	Entries    int64 `env:"ENTRIES" envDefault:"-1"`
	BasketSize int   `env:"BASKET_SIZE"`

	// Catalog is the bbolt catalog path. An empty variable counts as unset;
	// only the --catalog "" flag selects an in-memory catalog.
	Catalog string `env:"CATALOG" envDefault:"var/vecgen.db"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"logfmt"`
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return parse(env.Options{Prefix: EnvPrefix})
}

// LoadFrom reads the configuration from the given variables instead of the
// process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Prefix: EnvPrefix, Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Seed > 1<<32-1 {
		return Config{}, fmt.Errorf("parse env: %sSEED %d does not fit in 32 bits", EnvPrefix, cfg.Seed)
	}
	return cfg, nil
}
