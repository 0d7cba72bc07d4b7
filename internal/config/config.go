package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const DefaultAPIURL = "https://api.producthunt.com/v2/api/graphql"

type Config struct {
	// Token may be empty; every fetch then fails before any request is made.
	Token    string        `env:"PRODUCTHUNT_TOKEN"`
	APIURL   string        `env:"PRODUCTHUNT_API_URL" envDefault:"https://api.producthunt.com/v2/api/graphql"`
	Timeout  time.Duration `env:"PRODUCTHUNT_TIMEOUT" envDefault:"30s"`
	HTTPAddr string        `env:"HTTP_ADDR"           envDefault:":8080"`
	LogLevel string        `env:"LOG_LEVEL"           envDefault:"info"`
}

func LoadConfig() (Config, error) {
	return parse(env.Options{})
}

// LoadConfigFrom reads the configuration from the given variables instead of
// the process environment.
func LoadConfigFrom(environment map[string]string) (Config, error) {
	return parse(env.Options{Environment: environment})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Token = strings.TrimSpace(cfg.Token)
	cfg.APIURL = strings.TrimSpace(cfg.APIURL)
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}

	if cfg.Timeout <= 0 {
		return Config{}, fmt.Errorf("PRODUCTHUNT_TIMEOUT must be positive (got %s)", cfg.Timeout)
	}

	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("parse LOG_LEVEL (value = %q): %w", s, err)
	}

	return level, nil
}
