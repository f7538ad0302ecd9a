package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config interface {
	EnvConfig
	CommerceConfig
	StorageConfig
	LoggingConfig
}

type EnvConfig interface {
	GetAppName() string
}

type mainConfig struct {
	EnvVars
	Commerce
	Storage
	Logging
}

func New() Config {
	return mainConfig{}
}

// Load reads variables from the .env file at path into the environment and
// returns the configuration. Variables already set in the environment win.
// A missing file is not an error.
func Load(path string) (Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				return nil, errors.Wrapf(err, "[config.Load] %s", path)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "[config.Load] %s", path)
		}
	}
	return New(), nil
}
