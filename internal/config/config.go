// Package config provides application configuration loaded from defaults,
// an optional YAML file, and environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// ScanInterval is the time between generated coins.
	ScanInterval time.Duration `yaml:"scan_interval"`

	// StoreCapacity is the number of most recent coins kept.
	StoreCapacity int `yaml:"store_capacity"`

	// HTTPAddr is the listen address of the API server.
	HTTPAddr string `yaml:"http_addr"`

	// MetricsNamespace prefixes every Prometheus metric.
	MetricsNamespace string `yaml:"metrics_namespace"`

	// LogLevel is a logrus level name (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format"`

	// RateLimit is the sustained API request rate per second. 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit"`

	// RateBurst is the API burst size.
	RateBurst int `yaml:"rate_burst"`

	// Seed makes generation reproducible. 0 uses system entropy.
	Seed uint64 `yaml:"seed"`

	// Names overrides the built-in coin name pool when non-empty.
	Names []string `yaml:"names"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ScanInterval:     5 * time.Minute,
		StoreCapacity:    20,
		HTTPAddr:         ":8080",
		MetricsNamespace: "meme_coin_tracker",
		LogLevel:         "info",
		LogFormat:        "text",
		RateLimit:        20,
		RateBurst:        40,
	}
}

// Load builds the configuration. path may be empty to skip the YAML file.
// A .env file in the working directory is loaded first if present; variables
// already set in the environment win over it.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports configuration that cannot run.
func (c *Config) Validate() error {
	var errs []error
	if c.ScanInterval <= 0 {
		errs = append(errs, fmt.Errorf("scan interval must be positive, got %v", c.ScanInterval))
	}
	if c.StoreCapacity <= 0 {
		errs = append(errs, fmt.Errorf("store capacity must be positive, got %d", c.StoreCapacity))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate limit must not be negative, got %v", c.RateLimit))
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		errs = append(errs, fmt.Errorf("rate burst must be positive when rate limiting, got %d", c.RateBurst))
	}
	for i, name := range c.Names {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Errorf("names[%d] is empty", i))
		}
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log format must be text or json, got %q", c.LogFormat))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides fields from environment variables.
func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("TRACKER_SCAN_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TRACKER_SCAN_INTERVAL: %w", err)
		}
		c.ScanInterval = d
	}
	if err := envInt("TRACKER_STORE_CAPACITY", &c.StoreCapacity); err != nil {
		return err
	}
	c.HTTPAddr = getEnv("TRACKER_HTTP_ADDR", c.HTTPAddr)
	c.MetricsNamespace = getEnv("METRICS_NAMESPACE", c.MetricsNamespace)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	if v, ok := os.LookupEnv("TRACKER_RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("TRACKER_RATE_LIMIT: %w", err)
		}
		c.RateLimit = f
	}
	if err := envInt("TRACKER_RATE_BURST", &c.RateBurst); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("TRACKER_SEED"); ok {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TRACKER_SEED: %w", err)
		}
		c.Seed = seed
	}
	if v := getEnv("TRACKER_NAMES", ""); v != "" {
		var names []string
		for _, n := range strings.Split(v, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		c.Names = names
	}
	return nil
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func envInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
