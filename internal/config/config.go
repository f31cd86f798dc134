// Package config provides centralized configuration management using Viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultAPIURL      = "http://localhost:8080/api"
	DefaultTimeout     = "30s"
	DefaultReadRetries = 3
	DefaultDataDir     = ".census"
	DefaultMaxMembers  = 10
)

// Config holds all configuration values for census.
type Config struct {
	APIURL      string `mapstructure:"api_url" yaml:"api_url"`
	Timeout     string `mapstructure:"timeout" yaml:"timeout"`
	ReadRetries int    `mapstructure:"read_retries" yaml:"read_retries"`
	DataDir     string `mapstructure:"data_dir" yaml:"data_dir"`
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxMembers  int    `mapstructure:"max_members" yaml:"max_members"`
	Editor      string `mapstructure:"editor" yaml:"editor"`
}

var envKeys = []string{
	"api_url",
	"timeout",
	"read_retries",
	"data_dir",
	"log_level",
	"log_file",
	"max_members",
	"editor",
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars (.env included) > project config > XDG global config > defaults
func Load() (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("census")

	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("read_retries", DefaultReadRetries)
	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("max_members", DefaultMaxMembers)
	v.SetDefault("editor", "")

	// Setup ENV binding with CENSUS_ prefix
	v.SetEnvPrefix("CENSUS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit ENV bindings so Unmarshal sees keys that only exist in the env
	for _, key := range envKeys {
		if err := v.BindEnv(key, "CENSUS_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	// Load global config first (if exists)
	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	// Merge project config on top (if exists)
	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// LoadDotEnv reads ./.env into the process environment. Variables that
// are already set win.
func LoadDotEnv() error {
	if !fileExists(".env") {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// Validate checks values that would otherwise fail later, deep inside a
// request.
func (c *Config) Validate() error {
	var errs []error
	if c.APIURL == "" {
		errs = append(errs, errors.New("api_url is required"))
	} else if u, err := url.Parse(c.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api_url %q is not an absolute URL", c.APIURL))
	}
	if _, err := c.RequestTimeout(); err != nil {
		errs = append(errs, err)
	}
	if c.ReadRetries < 1 {
		errs = append(errs, errors.New("read_retries must be at least 1"))
	}
	if c.MaxMembers < 1 {
		errs = append(errs, errors.New("max_members must be at least 1"))
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel))
	}
	return errors.Join(errs...)
}

// RequestTimeout parses Timeout. An empty value means the default.
func (c *Config) RequestTimeout() (time.Duration, error) {
	raw := c.Timeout
	if raw == "" {
		raw = DefaultTimeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("timeout %q is not a positive duration", c.Timeout)
	}
	return d, nil
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/census/census.yml or $XDG_CONFIG_HOME/census/census.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "census", "census.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "census", "census.yml")
}

// ProjectPath returns the project-local config path.
// Returns ./census.yml in the current working directory.
func ProjectPath() string {
	return "census.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()

	// Create parent directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
