// Package config loads careerhub settings from .env, an optional YAML file and
// CAREERHUB_* environment variables, in that order of precedence (last wins).
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

const envPrefix = "CAREERHUB_"

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port        string   `yaml:"port"`
	LogLevel    string   `yaml:"log_level"`
	Development bool     `yaml:"development"`
	CORSOrigins []string `yaml:"cors_origins"`

	Database struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`

	Upstream struct {
		BaseURL   string        `yaml:"base_url"`
		APIKey    string        `yaml:"api_key"`
		Timeout   time.Duration `yaml:"timeout"`
		RateLimit float64       `yaml:"rate_limit"`
		Burst     int           `yaml:"burst"`
	} `yaml:"upstream"`

	Autocomplete struct {
		Wait      time.Duration `yaml:"wait"`
		MinLength int           `yaml:"min_length"`
		// CacheSize bounds the suggestion cache; 0 keeps every result for the process lifetime.
		CacheSize int `yaml:"cache_size"`
		Clients   int `yaml:"clients"`
	} `yaml:"autocomplete"`

	Auth struct {
		SessionTTL         time.Duration `yaml:"session_ttl"`
		GoogleClientID     string        `yaml:"google_client_id"`
		GoogleClientSecret string        `yaml:"google_client_secret"`
		GoogleRedirectURL  string        `yaml:"google_redirect_url"`
	} `yaml:"auth"`

	LLM struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"llm"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	c := &Config{
		Port:        "8080",
		LogLevel:    "info",
		CORSOrigins: []string{"*"},
	}
	c.Database.Driver = DriverPostgres
	c.Database.DSN = "host=localhost user=postgres password=password dbname=careerhub port=5432 sslmode=disable"
	c.Upstream.Timeout = 10 * time.Second
	c.Upstream.RateLimit = 10
	c.Upstream.Burst = 20
	c.Autocomplete.Wait = 300 * time.Millisecond
	c.Autocomplete.MinLength = 2
	c.Autocomplete.Clients = 4096
	c.Auth.SessionTTL = 72 * time.Hour
	c.LLM.Model = "gemini-2.5-flash"
	return c
}

// Load reads .env (if present), the YAML file named by CAREERHUB_CONFIG (if set)
// and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	c := Default()
	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := c.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// GetEnvVarName returns the environment variable that overrides key.
func GetEnvVarName(key string) string {
	return envPrefix + strings.ToUpper(key)
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(GetEnvVarName(key)); v != "" {
			*dst = v
		}
	}
	var errs []error
	dur := func(key string, dst *time.Duration) {
		if v := getenv(GetEnvVarName(key)); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", GetEnvVarName(key), err))
				return
			}
			*dst = d
		}
	}
	num := func(key string, dst *int) {
		if v := getenv(GetEnvVarName(key)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", GetEnvVarName(key), err))
				return
			}
			*dst = n
		}
	}

	str("port", &c.Port)
	str("log_level", &c.LogLevel)
	if v := getenv(GetEnvVarName("development")); v != "" {
		c.Development, _ = strconv.ParseBool(v)
	}
	if v := getenv(GetEnvVarName("cors_origins")); v != "" {
		c.CORSOrigins = strings.Split(v, ",")
	}
	str("db_driver", &c.Database.Driver)
	str("db_dsn", &c.Database.DSN)
	str("upstream_url", &c.Upstream.BaseURL)
	str("upstream_api_key", &c.Upstream.APIKey)
	dur("upstream_timeout", &c.Upstream.Timeout)
	if v := getenv(GetEnvVarName("upstream_rate_limit")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", GetEnvVarName("upstream_rate_limit"), err))
		} else {
			c.Upstream.RateLimit = f
		}
	}
	num("upstream_burst", &c.Upstream.Burst)
	dur("autocomplete_wait", &c.Autocomplete.Wait)
	num("autocomplete_min_length", &c.Autocomplete.MinLength)
	num("autocomplete_cache_size", &c.Autocomplete.CacheSize)
	num("autocomplete_clients", &c.Autocomplete.Clients)
	dur("session_ttl", &c.Auth.SessionTTL)
	str("google_client_id", &c.Auth.GoogleClientID)
	str("google_client_secret", &c.Auth.GoogleClientSecret)
	str("google_redirect_url", &c.Auth.GoogleRedirectURL)
	str("llm_model", &c.LLM.Model)
	str("llm_api_key", &c.LLM.APIKey)
	// the key name used by earlier deployments
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = getenv("GEMINI_API_KEY")
	}
	return errors.Join(errs...)
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Autocomplete.Wait <= 0 {
		return errors.New("autocomplete wait must be positive")
	}
	if c.Autocomplete.CacheSize < 0 {
		return errors.New("autocomplete cache size must not be negative")
	}
	if c.Auth.SessionTTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	return nil
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c *Config) GoogleEnabled() bool {
	return c.Auth.GoogleClientID != "" && c.Auth.GoogleClientSecret != ""
}
