package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full shell runtime configuration.
type Config struct {
	Loop    LoopConfig    `yaml:"loop" json:"loop"`
	Bridge  BridgeConfig  `yaml:"bridge" json:"bridge"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// LoopConfig configures the event loop.
type LoopConfig struct {
	Workers         int `yaml:"workers" json:"workers"`
	QueueSize       int `yaml:"queue_size" json:"queue_size"`
	RetryIntervalMS int `yaml:"retry_interval_ms" json:"retry_interval_ms"`
}

// RetryInterval returns the dispatch retry interval as a duration.
func (c LoopConfig) RetryInterval() time.Duration {
	return time.Duration(c.RetryIntervalMS) * time.Millisecond
}

// BridgeConfig configures the front-end WebSocket endpoint.
type BridgeConfig struct {
	Addr string `yaml:"addr" json:"addr"`
	Path string `yaml:"path" json:"path"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Loop: LoopConfig{
			Workers:         10,
			QueueSize:       256,
			RetryIntervalMS: 10,
		},
		Bridge: BridgeConfig{
			Addr: "127.0.0.1:7420",
			Path: "/bridge",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    "127.0.0.1:9470",
		},
	}
}

// Load reads the configuration file (YAML or JSON by extension), applies
// environment variable overrides and validates the result. An empty path
// yields the defaults, still subject to env overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		var err error
		if strings.HasSuffix(path, ".json") {
			err = LoadJSON(path, &cfg)
		} else {
			err = LoadYAML(path, &cfg)
		}
		if err != nil {
			return Config{}, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides fields from SHELLKIT_* environment variables.
func (c *Config) applyEnv() {
	overrideInt("SHELLKIT_LOOP_WORKERS", &c.Loop.Workers)
	overrideInt("SHELLKIT_LOOP_QUEUE_SIZE", &c.Loop.QueueSize)
	overrideInt("SHELLKIT_LOOP_RETRY_INTERVAL_MS", &c.Loop.RetryIntervalMS)
	overrideString("SHELLKIT_BRIDGE_ADDR", &c.Bridge.Addr)
	overrideString("SHELLKIT_BRIDGE_PATH", &c.Bridge.Path)
	overrideBool("SHELLKIT_METRICS_ENABLED", &c.Metrics.Enabled)
	overrideString("SHELLKIT_METRICS_ADDR", &c.Metrics.Addr)
}

// Validate checks the configuration for values the runtime cannot work with.
func (c Config) Validate() error {
	if c.Loop.Workers < 1 {
		return fmt.Errorf("loop.workers must be at least 1, got %d", c.Loop.Workers)
	}
	if c.Loop.QueueSize < 1 {
		return fmt.Errorf("loop.queue_size must be at least 1, got %d", c.Loop.QueueSize)
	}
	if c.Loop.RetryIntervalMS < 1 {
		return fmt.Errorf("loop.retry_interval_ms must be at least 1, got %d", c.Loop.RetryIntervalMS)
	}
	if c.Bridge.Addr == "" {
		return fmt.Errorf("bridge.addr cannot be empty")
	}
	if !strings.HasPrefix(c.Bridge.Path, "/") {
		return fmt.Errorf("bridge.path must start with /, got %q", c.Bridge.Path)
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr cannot be empty when metrics are enabled")
	}
	return nil
}

func overrideString(key string, target *string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func overrideInt(key string, target *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		}
	}
}

func overrideBool(key string, target *bool) {
	if v := os.Getenv(key); v != "" {
		*target = strings.EqualFold(v, "true") || v == "1"
	}
}
