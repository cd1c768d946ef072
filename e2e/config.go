package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_API_URL points at a running server; scenarios are skipped when it is empty.
	APIURL string `envconfig:"E2E_API_URL"`
	// E2E_ADMIN_PASSWORD enables the delete scenario against a server started with ADMIN_PASSWORD_HASH.
	AdminPassword string `envconfig:"E2E_ADMIN_PASSWORD"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
