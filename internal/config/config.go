package config

import (
	"fmt"
	"time"
)

type Config struct {
	Server  ServerConfig
	Oracle  OracleConfig
	Storage StorageConfig
	Batch   BatchConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port     int
	APIToken string // optional; empty disables bearer auth on admin routes
}

type OracleConfig struct {
	ForecastURL string
	ReorderURL  string
	PricingURL  string
	Timeout     string // duration string, e.g. "60s"
}

type StorageConfig struct {
	DataDir string
}

type BatchConfig struct {
	Concurrency      int
	SchedulerEnabled bool
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4600,
		},
		Oracle: OracleConfig{
			ForecastURL: "http://localhost:8600/forecast",
			ReorderURL:  "http://localhost:8600/inventory",
			PricingURL:  "http://localhost:8600/priceOptimization",
			Timeout:     "60s",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Batch: BatchConfig{
			Concurrency:      4,
			SchedulerEnabled: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the config file (a flat JSON object at
// $XDG_CONFIG_HOME/stockcast/config.json) with STOCKCAST_* environment
// variables overriding file values.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if _, err := time.ParseDuration(cfg.Oracle.Timeout); err != nil {
		return Config{}, fmt.Errorf("invalid oracle.timeout %q: %w", cfg.Oracle.Timeout, err)
	}

	return cfg, nil
}

// OracleTimeout returns the parsed oracle request timeout. Load has already
// validated the value.
func (c Config) OracleTimeout() time.Duration {
	d, err := time.ParseDuration(c.Oracle.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}
