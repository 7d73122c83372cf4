package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kBool
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "STOCKCAST_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.api_token", typ: kString, env: "STOCKCAST_API_TOKEN",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Server.APIToken = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.APIToken },
	},
	{
		key: "oracle.forecast_url", typ: kString, env: "STOCKCAST_ORACLE_FORECAST_URL",
		apply:   func(cfg *Config, v any) { cfg.Oracle.ForecastURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Oracle.ForecastURL },
	},
	{
		key: "oracle.reorder_url", typ: kString, env: "STOCKCAST_ORACLE_REORDER_URL",
		apply:   func(cfg *Config, v any) { cfg.Oracle.ReorderURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Oracle.ReorderURL },
	},
	{
		key: "oracle.pricing_url", typ: kString, env: "STOCKCAST_ORACLE_PRICING_URL",
		apply:   func(cfg *Config, v any) { cfg.Oracle.PricingURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Oracle.PricingURL },
	},
	{
		key: "oracle.timeout", typ: kString, env: "STOCKCAST_ORACLE_TIMEOUT",
		apply:   func(cfg *Config, v any) { cfg.Oracle.Timeout = v.(string) },
		extract: func(cfg Config) any { return cfg.Oracle.Timeout },
	},
	{
		key: "storage.data_dir", typ: kString, env: "STOCKCAST_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "batch.concurrency", typ: kInt, env: "STOCKCAST_BATCH_CONCURRENCY",
		apply:   func(cfg *Config, v any) { cfg.Batch.Concurrency = v.(int) },
		extract: func(cfg Config) any { return cfg.Batch.Concurrency },
	},
	{
		key: "batch.scheduler_enabled", typ: kBool, env: "STOCKCAST_BATCH_SCHEDULER_ENABLED",
		apply:   func(cfg *Config, v any) { cfg.Batch.SchedulerEnabled = v.(bool) },
		extract: func(cfg Config) any { return cfg.Batch.SchedulerEnabled },
	},
	{
		key: "log.level", typ: kString, env: "STOCKCAST_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kBool:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok && v != "" {
				if bv, err := strconv.ParseBool(v); err == nil {
					s.apply(cfg, bv)
				} else {
					fmt.Fprintf(os.Stderr, "[WARN] could not parse bool from config key %s=%q: %v. Using default value.\n", s.key, v, err)
				}
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		case kBool:
			if b, err := strconv.ParseBool(raw); err == nil {
				s.apply(cfg, b)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse bool from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
