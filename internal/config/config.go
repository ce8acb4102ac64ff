// Package config loads the runtime configuration for the serving binary.
// The extraction engine itself takes no runtime configuration; everything
// here concerns the outer surfaces (HTTP, worker pool, output).
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Config is the YAML runtime configuration.
type Config struct {
	// Addr is the HTTP listen address for -serve mode.
	Addr string `yaml:"addr"`
	// Workers bounds the cross-document extraction pool.
	Workers int `yaml:"workers"`
	// IncludeFailures adds failed blocks to CSV output.
	IncludeFailures bool `yaml:"include_failures"`
	// LogJSON switches logging to JSON for machine consumption.
	LogJSON bool `yaml:"log_json"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Addr:            ":8080",
		Workers:         4,
		IncludeFailures: true,
	}
}

// Load reads a YAML config file, applying defaults for unset fields.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %q", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parse config %q", path)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}
