// Package config loads console configuration from built-in defaults, an
// optional YAML file and AUTOGEST_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "AUTOGEST_"

// PathEnvVar overrides the config file location.
const PathEnvVar = "AUTOGEST_CONFIG"

// DefaultPaths are searched in order when PathEnvVar is unset.
var DefaultPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/autogest/config.yaml",
}

// Config is the full console configuration.
type Config struct {
	App        AppConfig        `koanf:"app"`
	Log        LogConfig        `koanf:"log"`
	API        APIConfig        `koanf:"api"`
	Auth       AuthConfig       `koanf:"auth"`
	Storage    StorageConfig    `koanf:"storage"`
	Breaker    BreakerConfig    `koanf:"breaker"`
	Cache      CacheConfig      `koanf:"cache"`
	Validation ValidationConfig `koanf:"validation"`
}

type AppConfig struct {
	Name    string `koanf:"name"`
	Version string `koanf:"version"`
	Env     string `koanf:"env"`
	Port    int    `koanf:"port"`
}

type LogConfig struct {
	Level       string `koanf:"level"`
	Development bool   `koanf:"development"`
}

// APIConfig points at the rental backend.
type APIConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// AuthConfig holds the session storage keys and the login path.
type AuthConfig struct {
	TokenKey  string `koanf:"token_key"`
	UserKey   string `koanf:"user_key"`
	LoginPath string `koanf:"login_path"`
}

// StorageConfig selects where session material lives.
// Driver is "badger" (durable, at Path) or "memory".
type StorageConfig struct {
	Driver string `koanf:"driver"`
	Path   string `koanf:"path"`
}

type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// CacheConfig controls the vehicle listing cache. A zero TTL disables it.
type CacheConfig struct {
	VehiclesTTL time.Duration `koanf:"vehicles_ttl"`
}

type ValidationConfig struct {
	PasswordMinLength int `koanf:"password_min_length"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:    "Sistema de Alquiler de Vehículos",
			Version: "1.0.0",
			Env:     "development",
			Port:    8080,
		},
		Log: LogConfig{
			Level:       "info",
			Development: true,
		},
		API: APIConfig{
			BaseURL: "https://localhost:7057/api",
			Timeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			TokenKey:  "token",
			UserKey:   "user",
			LoginPath: "/login",
		},
		Storage: StorageConfig{
			Driver: "badger",
			Path:   "data/session",
		},
		Breaker: BreakerConfig{
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			MinRequests:  5,
			FailureRatio: 0.6,
		},
		Cache: CacheConfig{
			VehiclesTTL: 30 * time.Second,
		},
		Validation: ValidationConfig{
			PasswordMinLength: 6,
		},
	}
}

// Load builds the configuration: defaults, then the config file if one is
// found, then environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// AUTOGEST_API_BASE_URL -> api.base_url
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// envKey maps an environment variable to a koanf path. Only the first
// underscore after the prefix separates section from field.
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if key == "config" {
		return ""
	}
	section, field, ok := strings.Cut(key, "_")
	if !ok {
		return ""
	}
	return section + "." + field
}

func findFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Validate checks the configuration for values the console cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("app.port out of range: %d", c.App.Port))
	}
	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url must be an absolute URL: %q", c.API.BaseURL))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("api.timeout must be positive"))
	}
	if c.Auth.TokenKey == "" || c.Auth.UserKey == "" {
		errs = append(errs, errors.New("auth.token_key and auth.user_key are required"))
	}
	if c.Auth.TokenKey == c.Auth.UserKey {
		errs = append(errs, errors.New("auth.token_key and auth.user_key must differ"))
	}
	if !strings.HasPrefix(c.Auth.LoginPath, "/") {
		errs = append(errs, fmt.Errorf("auth.login_path must be absolute: %q", c.Auth.LoginPath))
	}
	switch c.Storage.Driver {
	case "memory":
	case "badger":
		if c.Storage.Path == "" {
			errs = append(errs, errors.New("storage.path is required for the badger driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		errs = append(errs, fmt.Errorf("breaker.failure_ratio must be in (0, 1]: %v", c.Breaker.FailureRatio))
	}
	if c.Cache.VehiclesTTL < 0 {
		errs = append(errs, errors.New("cache.vehicles_ttl must not be negative"))
	}
	if c.Validation.PasswordMinLength < 1 {
		errs = append(errs, errors.New("validation.password_min_length must be at least 1"))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the console runs in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
