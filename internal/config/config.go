package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Execution backend selectors for ExecBackend.
const (
	BackendPiston = "piston"
	BackendDocker = "docker"
)

type Config struct {
	Port         int           `envconfig:"PORT" default:"3001"`
	PistonURL    string        `envconfig:"PISTON_URL" default:"https://emkc.org/api/v2/piston"`
	ExecBackend  string        `envconfig:"EXEC_BACKEND" default:"piston"`
	RuntimesTTL  time.Duration `envconfig:"RUNTIMES_TTL" default:"10m"`
	MaxCodeChars int           `envconfig:"MAX_CODE_CHARS" default:"10000"`
	CORSOrigins  []string      `envconfig:"CORS_ORIGINS"`

	// Per-run deadline bounds applied to the upstream execute call.
	DefaultTimeout time.Duration `envconfig:"DEFAULT_TIMEOUT" default:"5s"`
	MaxTimeout     time.Duration `envconfig:"MAX_TIMEOUT" default:"30s"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the environment, after a best-effort .env load for local
// development.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("read env config: %w", err)
	}

	if cfg.ExecBackend != BackendPiston && cfg.ExecBackend != BackendDocker {
		return Config{}, fmt.Errorf("unknown EXEC_BACKEND %q", cfg.ExecBackend)
	}
	return cfg, nil
}
