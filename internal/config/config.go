package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

const DefaultServerURL = "http://localhost:8080"

type Config struct {
	ServerURL    string        `env:"SERVER_URL" envDefault:"http://localhost:8080"`
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"3s"`
	PollTimeout  time.Duration `env:"POLL_TIMEOUT" envDefault:"10s"`
	// HistoryRetention bounds the local poll history; zero keeps everything.
	HistoryRetention time.Duration `env:"HISTORY_RETENTION" envDefault:"168h"`
}

// Read parses the WEXT_-prefixed environment of the CLI.
func Read() (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: "WEXT_"})
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid WEXT_SERVER_URL %q", c.ServerURL)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("WEXT_POLL_INTERVAL must be positive")
	}
	if c.PollTimeout <= 0 {
		return fmt.Errorf("WEXT_POLL_TIMEOUT must be positive")
	}
	if c.HistoryRetention < 0 {
		return fmt.Errorf("WEXT_HISTORY_RETENTION must not be negative")
	}
	return nil
}
