package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	// EnvConfigPath names the variable that points at the YAML file.
	EnvConfigPath = "OWL_CONFIG_PATH"
	// DefaultConfigPath is tried when EnvConfigPath is unset. Unlike an
	// explicit path it may be missing.
	DefaultConfigPath = "owl.yaml"
)

// Load builds the configuration from env-default tags, the YAML file and the
// environment, each overriding the previous one, then validates it.
func Load() (*Config, error) {
	cfg, err := read(os.Getenv(EnvConfigPath))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

func read(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		if _, err := os.Stat(DefaultConfigPath); errors.Is(err, fs.ErrNotExist) {
			if err := cleanenv.ReadEnv(&cfg); err != nil {
				return nil, fmt.Errorf("config: read env: %w", err)
			}
			return &cfg, nil
		}
		path = DefaultConfigPath
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return &cfg, nil
}
