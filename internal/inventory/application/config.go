package application

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines the inventory pipeline configuration.
type Config struct {
	WatchPath      string `yaml:"watch_path"`
	PollIntervalMS int    `yaml:"poll_interval_ms"`
	HTTPAddr       string `yaml:"http_addr"`
}

// LoadConfig loads config from env, with an optional yaml overlay named in
// INVENTORY_CONFIG.
func LoadConfig() (Config, error) {
	cfg := Config{
		WatchPath:      getenvDefault("WATCH_PATH", filepath.FromSlash("data/inventory.xlsx")),
		PollIntervalMS: getenvIntDefault("POLL_INTERVAL_MS", 200),
		HTTPAddr:       getenvDefault("HTTP_ADDR", ":8080"),
	}

	if path := os.Getenv("INVENTORY_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.WatchPath == "" {
		return cfg, errors.New("config: watch path required")
	}
	if cfg.PollIntervalMS <= 0 {
		cfg.PollIntervalMS = 200
	}
	return cfg, nil
}

// PollInterval returns the poll interval as a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
