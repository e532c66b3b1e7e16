package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/vk/statetree/internal/publish"
	"github.com/vk/statetree/internal/watcher"
)

// Config holds all the necessary configuration for an App instance to run.
// Every field can be set from the environment; CLI flags override it.
type Config struct {
	DefinitionPath string   `env:"STATETREE_DEFINITIONS"` // hcl file or directory
	LuaScripts     []string `env:"STATETREE_LUA" envSeparator:","`

	LogFormat string `env:"STATETREE_LOG_FORMAT" envDefault:"text"`
	LogLevel  string `env:"STATETREE_LOG_LEVEL" envDefault:"info"`

	PublishURL   string        `env:"STATETREE_PUBLISH_URL"`
	PublishEvent string        `env:"STATETREE_PUBLISH_EVENT"`
	Debounce     time.Duration `env:"STATETREE_DEBOUNCE" envDefault:"200ms"`
}

// ConfigFromEnv reads a Config from STATETREE_* variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.DefinitionPath == "" {
		return nil, errors.New("DefinitionPath is a required configuration field and cannot be empty")
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, ok := logLevels[cfg.LogLevel]; !ok {
		return nil, fmt.Errorf("invalid log level %q: must be one of 'debug', 'info', 'warn', 'error'", cfg.LogLevel)
	}

	if cfg.PublishEvent == "" {
		cfg.PublishEvent = publish.DefaultEvent
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = watcher.DefaultDelay
	}

	return &cfg, nil
}
