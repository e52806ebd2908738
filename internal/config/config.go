// Package config loads IssueHub settings from <home>/config.yaml, .env
// files and ISSUEHUB_* environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/issuehub/internal/errors"
	"github.com/felixgeelhaar/issuehub/internal/log"
)

const (
	// DirName is the default home directory name under the user's home
	DirName = ".issuehub"

	// FileName is the config file name inside the home directory
	FileName = "config.yaml"

	DefaultAPIURL   = "http://localhost:8000/api/v1"
	DefaultTimeout  = 30 * time.Second
	DefaultPageSize = 10
)

// Environment variables, highest precedence after flags
const (
	EnvAPIURL   = "ISSUEHUB_API_URL"
	EnvHome     = "ISSUEHUB_HOME"
	EnvLogLevel = "ISSUEHUB_LOG_LEVEL"
	EnvFormat   = "ISSUEHUB_FORMAT"
)

// Config is the IssueHub configuration
type Config struct {
	API      APIConfig      `yaml:"api" json:"api"`
	Defaults DefaultsConfig `yaml:"defaults" json:"defaults"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// APIConfig locates and constrains the REST API
type APIConfig struct {
	URL            string        `yaml:"url,omitempty" json:"url,omitempty"`
	Timeout        time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	StrictContract bool          `yaml:"strict_contract,omitempty" json:"strict_contract,omitempty"`
}

// DefaultsConfig holds command defaults
type DefaultsConfig struct {
	Format   string `yaml:"format,omitempty" json:"format,omitempty"` // "text", "json", "yaml"
	NoColor  bool   `yaml:"no_color,omitempty" json:"no_color,omitempty"`
	PageSize int    `yaml:"page_size,omitempty" json:"page_size,omitempty"`
}

// LoggingConfig configures the stderr logger
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty" json:"level,omitempty"`   // "debug", "info", "warn", "error"
	Format string `yaml:"format,omitempty" json:"format,omitempty"` // "text", "json"
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		API: APIConfig{
			URL:     DefaultAPIURL,
			Timeout: DefaultTimeout,
		},
		Defaults: DefaultsConfig{
			Format:   "text",
			PageSize: DefaultPageSize,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// ResolveHome picks the home directory: the flag value, then
// ISSUEHUB_HOME, then ~/.issuehub
func ResolveHome(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv(EnvHome); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeConfigLoad, "failed to get home directory", err).
			WithSuggestion("Set --home or " + EnvHome)
	}
	return filepath.Join(home, DirName), nil
}

// Path returns the config file path for home
func Path(home string) string {
	return filepath.Join(home, FileName)
}

// LoadDotEnv loads .env from the working directory and from home.
// Missing files are ignored and variables already set are kept.
func LoadDotEnv(home string) {
	for _, p := range []string{".env", filepath.Join(home, ".env")} {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			log.DefaultLogger().Warn("ignoring unreadable env file", "path", p, "error", err)
		}
	}
}

// Load reads <home>/config.yaml over the defaults. A missing file yields
// the defaults.
func Load(home string) (*Config, error) {
	cfg := Default()
	path := Path(home)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(errors.ErrCodeConfigLoad, "failed to read config", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewFileUnmarshalError(path, "YAML", err)
	}
	return cfg, nil
}

// Save writes the config to <home>/config.yaml
func (c *Config) Save(home string) error {
	if err := os.MkdirAll(home, 0700); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, "failed to create config directory", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileMarshal, "failed to marshal config", err)
	}

	if err := os.WriteFile(Path(home), data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write config", err)
	}
	return nil
}

// ApplyEnv overrides values from ISSUEHUB_* variables looked up with lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIURL); ok && v != "" {
		c.API.URL = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup(EnvFormat); ok && v != "" {
		c.Defaults.Format = v
	}
}

// Validate checks value ranges
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("api.url must be an http(s) URL, got %q", c.API.URL)).
			WithSuggestion("Example: issuehub config set api.url " + DefaultAPIURL)
	}
	if c.API.Timeout < 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "api.timeout must not be negative")
	}
	switch c.Defaults.Format {
	case "text", "json", "yaml":
	default:
		return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("defaults.format must be text, json or yaml, got %q", c.Defaults.Format))
	}
	if c.Defaults.PageSize < 1 {
		return errors.New(errors.ErrCodeConfigInvalid, "defaults.page_size must be at least 1")
	}
	var level log.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "invalid logging.level", err)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("logging.format must be text or json, got %q", c.Logging.Format))
	}
	return nil
}

// Keys lists the dot-notation keys accepted by Get and Set
func Keys() []string {
	return []string{
		"api.url",
		"api.timeout",
		"api.strict_contract",
		"defaults.format",
		"defaults.no_color",
		"defaults.page_size",
		"logging.level",
		"logging.format",
	}
}

// Get returns a value by dot-notation key
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "api.url":
		return c.API.URL, nil
	case "api.timeout":
		return c.API.Timeout.String(), nil
	case "api.strict_contract":
		return strconv.FormatBool(c.API.StrictContract), nil
	case "defaults.format":
		return c.Defaults.Format, nil
	case "defaults.no_color":
		return strconv.FormatBool(c.Defaults.NoColor), nil
	case "defaults.page_size":
		return strconv.Itoa(c.Defaults.PageSize), nil
	case "logging.level":
		return c.Logging.Level, nil
	case "logging.format":
		return c.Logging.Format, nil
	default:
		return "", errors.NewConfigUnknownKeyError(key)
	}
}

// Set assigns a value by dot-notation key. The result is validated.
func (c *Config) Set(key, value string) error {
	next := *c
	switch key {
	case "api.url":
		next.API.URL = strings.TrimSpace(value)
	case "api.timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return errors.NewInvalidInputError(key, value, "a duration such as 30s or 1m")
		}
		next.API.Timeout = d
	case "api.strict_contract":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.NewInvalidInputError(key, value, "true, false")
		}
		next.API.StrictContract = b
	case "defaults.format":
		next.Defaults.Format = strings.ToLower(value)
	case "defaults.no_color":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.NewInvalidInputError(key, value, "true, false")
		}
		next.Defaults.NoColor = b
	case "defaults.page_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return errors.NewInvalidInputError(key, value, "a positive integer")
		}
		next.Defaults.PageSize = n
	case "logging.level":
		next.Logging.Level = strings.ToLower(value)
	case "logging.format":
		next.Logging.Format = strings.ToLower(value)
	default:
		return errors.NewConfigUnknownKeyError(key)
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// LogConfig converts the logging section into a logger configuration
func (c *Config) LogConfig() log.Config {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(c.Logging.Level)
	cfg.Format = log.ParseFormat(c.Logging.Format)
	return cfg
}
