package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	koanfjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

// Default configuration values.
const (
	defaultBaseURL    = "https://mastermind.darkube.app"
	defaultUA         = "mastermind-cli/1.0"
	defaultExitGrace  = 2 * time.Second
	defaultConfigPath = "mastermind.json"
	defaultLogLevel   = "info"
)

// appConfig holds the application configuration.
type appConfig struct {
	BaseURL        string        `json:"base_url" env:"MASTERMIND_BASE_URL"`
	UserAgent      string        `json:"user_agent" env:"MASTERMIND_USER_AGENT"`
	RequestTimeout time.Duration `json:"request_timeout" env:"MASTERMIND_REQUEST_TIMEOUT"`
	ExitGrace      time.Duration `json:"exit_grace" env:"MASTERMIND_EXIT_GRACE"`
	LogLevel       string        `json:"log_level" env:"MASTERMIND_LOG_LEVEL"`
}

func defaultConfig() appConfig {
	return appConfig{
		BaseURL:   defaultBaseURL,
		UserAgent: defaultUA,
		ExitGrace: defaultExitGrace,
		LogLevel:  defaultLogLevel,
	}
}

// loadConfig layers defaults, the optional JSON file at path and MASTERMIND_*
// environment variables, in that order. A missing file is not an error.
func loadConfig(path string) (appConfig, error) {
	cfg := defaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			k := koanf.New(".")
			if err := k.Load(file.Provider(path), koanfjson.Parser()); err != nil {
				return appConfig{}, fmt.Errorf("load config: %w", err)
			}
			if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
				return appConfig{}, fmt.Errorf("unmarshal config: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return appConfig{}, fmt.Errorf("stat config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return appConfig{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.UserAgent = strings.TrimSpace(cfg.UserAgent)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUA
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if err := cfg.validate(); err != nil {
		return appConfig{}, err
	}
	return cfg, nil
}

func (c appConfig) validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base_url %q: scheme and host are required", c.BaseURL)
	}
	if c.RequestTimeout < 0 {
		return errors.New("request_timeout must be >= 0")
	}
	if c.ExitGrace < 0 {
		return errors.New("exit_grace must be >= 0")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return nil
}
