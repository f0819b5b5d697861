// Package config loads mailsift settings shared by the CLI binaries.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the settings every binary needs. Precedence is
// environment (MAILSIFT_ prefix) > config file > defaults.
type Config struct {
	DBPath         string
	RulesFile      string
	AuthDir        string
	RequestsPerSec int
	ActionInterval time.Duration
	PageSize       int
	MaxFetch       int
	Workers        int
	MaxRetries     int
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath:         "mailsift.db",
		RulesFile:      "rules.json",
		AuthDir:        filepath.Join(os.Getenv("HOME"), ".gmailctl"),
		RequestsPerSec: 4,
		ActionInterval: time.Second,
		PageSize:       100,
		MaxFetch:       0,
		Workers:        4,
		MaxRetries:     3,
	}
}

// Load reads configuration from an optional file plus the environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("db_path", def.DBPath)
	v.SetDefault("rules_file", def.RulesFile)
	v.SetDefault("auth_dir", def.AuthDir)
	v.SetDefault("requests_per_sec", def.RequestsPerSec)
	v.SetDefault("action_interval", def.ActionInterval.String())
	v.SetDefault("page_size", def.PageSize)
	v.SetDefault("max_fetch", def.MaxFetch)
	v.SetDefault("workers", def.Workers)
	v.SetDefault("max_retries", def.MaxRetries)

	v.SetEnvPrefix("MAILSIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		DBPath:         v.GetString("db_path"),
		RulesFile:      v.GetString("rules_file"),
		AuthDir:        v.GetString("auth_dir"),
		RequestsPerSec: v.GetInt("requests_per_sec"),
		ActionInterval: v.GetDuration("action_interval"),
		PageSize:       v.GetInt("page_size"),
		MaxFetch:       v.GetInt("max_fetch"),
		Workers:        v.GetInt("workers"),
		MaxRetries:     v.GetInt("max_retries"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.RulesFile == "" {
		return fmt.Errorf("rules_file must not be empty")
	}
	if c.RequestsPerSec <= 0 {
		return fmt.Errorf("requests_per_sec must be positive, got %d", c.RequestsPerSec)
	}
	if c.ActionInterval <= 0 {
		return fmt.Errorf("action_interval must be positive, got %v", c.ActionInterval)
	}
	if c.PageSize <= 0 || c.PageSize > 500 {
		return fmt.Errorf("page_size must be between 1 and 500, got %d", c.PageSize)
	}
	if c.MaxFetch < 0 {
		return fmt.Errorf("max_fetch must not be negative, got %d", c.MaxFetch)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries)
	}
	return nil
}
