package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings holds the process-level configuration read from the environment.
// Command-line flags take precedence over these values.
type Settings struct {
	Host string `env:"HOST" envDefault:"localhost"`
	Port int    `env:"PORT" envDefault:"8080"`

	LevelsDir    string `env:"LEVELS_DIR"    envDefault:"levels"`
	DefaultLevel string `env:"DEFAULT_LEVEL" envDefault:"classic"`

	SessionTTL             time.Duration `env:"SESSION_TTL"              envDefault:"24h"`
	SessionCleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"1h"`

	Debug bool `env:"DEBUG"`

	NgrokEnabled   bool   `env:"NGROK_ENABLED"`
	NgrokAuthToken string `env:"NGROK_AUTHTOKEN"`
	NgrokDomain    string `env:"NGROK_DOMAIN"`
}

// LoadSettings parses Settings from the environment
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	if s.Port <= 0 || s.Port > 65535 {
		return Settings{}, fmt.Errorf("parse env: PORT %d out of range", s.Port)
	}
	if s.SessionTTL <= 0 {
		return Settings{}, fmt.Errorf("parse env: SESSION_TTL must be positive")
	}
	if s.SessionCleanupInterval <= 0 {
		return Settings{}, fmt.Errorf("parse env: SESSION_CLEANUP_INTERVAL must be positive")
	}
	return s, nil
}
