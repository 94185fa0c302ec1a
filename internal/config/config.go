// Package config loads the server's YAML configuration file, grounded
// on aretext-aretext/app/config.go's load-or-default shape: read the
// file if present, fall back to built-in defaults if not, and always
// validate before handing the result back.
package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the server's tunable surface: where it listens, a log level,
// how long an idle connection may sit before the server closes it, and
// whether sessions get a shared test sink wired to test_utils.out.
// LogLevel is checked by Validate; the server's logging does not vary
// with it.
type Config struct {
	ListenAddr          string `yaml:"listen_addr"`
	LogLevel            string `yaml:"log_level"`
	SessionIdleTimeoutS int    `yaml:"session_idle_timeout_seconds"`
	EnableTestSink      bool   `yaml:"enable_test_sink"`
}

// Default returns the configuration used when no file is given or found.
func Default() Config {
	return Config{
		ListenAddr:          ":7777",
		LogLevel:            "info",
		SessionIdleTimeoutS: 300,
		EnableTestSink:      false,
	}
}

// Load reads and parses the YAML file at path. A missing file is not an
// error: it logs and returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Printf("config: %q not found, using defaults", path)
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %q: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects a configuration the server cannot usefully start
// with.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.SessionIdleTimeoutS < 0 {
		return fmt.Errorf("session_idle_timeout_seconds must not be negative")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q must be one of debug/info/warn/error", c.LogLevel)
	}
	return nil
}
