// Package config loads the planner client's runtime configuration from the
// environment.
package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/pkg/errors"
)

// Config is everything the CLI and client need at startup.
type Config struct {
	AppName string `env:"APP_NAME" envDefault:"SGDEA Planner"`

	// BaseURL is the backend root, e.g. https://api.planner.example
	BaseURL string `env:"PLANNER_API_URL"`

	// InactivityLimit is how long the session may idle before being
	// forcibly logged out.
	InactivityLimit time.Duration `env:"PLANNER_INACTIVITY_LIMIT" envDefault:"20m"`

	// TokenFile is where the file-backed token store lives.
	TokenFile string `env:"PLANNER_TOKEN_FILE" envDefault:".planner/session.json"`

	// RedisAddr switches the token store to redis when set.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// New parses the environment into a Config.
func New() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, errors.Wrap(err, "[config New] parsing environment")
	}

	if strings.TrimSpace(c.BaseURL) == "" {
		return Config{}, errors.New("[config New] PLANNER_API_URL is required")
	}
	if c.InactivityLimit <= 0 {
		return Config{}, errors.New("[config New] PLANNER_INACTIVITY_LIMIT must be positive")
	}

	return c, nil
}
