package main

import (
	"time"

	"sayit/ratelimit"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	APIURL string `envconfig:"SAYIT_API_URL" default:"http://localhost:5000"`
	// SAYIT_STATE_FILE overrides where the submission record is kept.
	StateFile  string        `envconfig:"SAYIT_STATE_FILE"`
	AdminToken string        `envconfig:"SAYIT_ADMIN_TOKEN"`
	Colours    bool          `envconfig:"SAYIT_COLOURS" default:"true"`
	Timeout    time.Duration `envconfig:"SAYIT_TIMEOUT" default:"15s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if cfg.StateFile == "" {
		path, err := ratelimit.DefaultStatePath()
		if err != nil {
			return Config{}, err
		}
		cfg.StateFile = path
	}
	return cfg, nil
}
