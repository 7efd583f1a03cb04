// Package config handles the XDG configuration directory, the optional
// config.json file, and environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tailscale/hujson"
)

const (
	// AppName is the application directory name.
	AppName = "sprintsync"

	// TokenFile is the stored session token filename.
	TokenFile = "token.json"

	// ConfigFile is the optional settings filename (JSON with comments).
	ConfigFile = "config.json"

	// HistoryFile keeps shell command history.
	HistoryFile = "history"

	// DefaultAPIURL is used when nothing else is configured.
	DefaultAPIURL = "http://localhost:8000"

	// DefaultTimeout bounds every API call.
	DefaultTimeout = 10 * time.Second
)

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Environment variables.
const (
	EnvAPIURL   = "SPRINTSYNC_API_URL"
	EnvTimeout  = "SPRINTSYNC_TIMEOUT"
	EnvOutput   = "SPRINTSYNC_OUTPUT"
	EnvPassword = "SPRINTSYNC_PASSWORD"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// APIURL is the SprintSync server base URL.
	APIURL string

	// Timeout bounds each API call.
	Timeout time.Duration

	// Output is one of text, json, yaml.
	Output string

	// LogLevel and LogEncoding tune --debug output.
	LogLevel    string
	LogEncoding string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// fileConfig is the on-disk shape of config.json.
type fileConfig struct {
	APIURL      string `json:"api_url"`
	Timeout     string `json:"timeout"`
	Output      string `json:"output"`
	LogLevel    string `json:"log_level"`
	LogEncoding string `json:"log_encoding"`
}

// New creates a Config with defaults and the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/sprintsync or $HOME/.config/sprintsync.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:     dir,
		APIURL:  DefaultAPIURL,
		Timeout: DefaultTimeout,
		Output:  OutputText,
	}, nil
}

// Load builds a Config from defaults, config.json, .env and the environment,
// in increasing order of precedence. Flags are applied by the caller.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}

	// .env files are optional; existing environment variables win.
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(cfg.Dir, ".env"))

	fc, err := loadFile(cfg.ConfigPath())
	if err != nil {
		return nil, err
	}
	if err := cfg.apply(fc); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", cfg.ConfigPath(), err)
	}

	env := fileConfig{
		APIURL:  os.Getenv(EnvAPIURL),
		Timeout: os.Getenv(EnvTimeout),
		Output:  os.Getenv(EnvOutput),
	}
	if err := cfg.apply(env); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	return cfg, nil
}

// loadFile reads config.json. A missing file yields a zero config.
func loadFile(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileConfig{}, nil
		}
		return fileConfig{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parseFile(data)
}

func parseFile(data []byte) (fileConfig, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
	}
	var fc fileConfig
	if err := json.Unmarshal(standardized, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return fc, nil
}

// apply overlays non-empty values.
func (c *Config) apply(fc fileConfig) error {
	if fc.APIURL != "" {
		if err := c.SetAPIURL(fc.APIURL); err != nil {
			return err
		}
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid timeout: %s", fc.Timeout)
		}
		c.Timeout = d
	}
	if fc.Output != "" {
		if err := c.SetOutput(fc.Output); err != nil {
			return err
		}
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.LogEncoding != "" {
		c.LogEncoding = fc.LogEncoding
	}
	return nil
}

// SetOutput validates and sets the output format.
func (c *Config) SetOutput(format string) error {
	switch format {
	case OutputText, OutputJSON, OutputYAML:
		c.Output = format
		return nil
	}
	return fmt.Errorf("invalid output format: %s (want text, json or yaml)", format)
}

// SetAPIURL validates and sets the server base URL.
func (c *Config) SetAPIURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid api url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid api url %q: missing host", raw)
	}
	c.APIURL = strings.TrimRight(u.String(), "/")
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// TokenPath returns the path to the stored session token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// ConfigPath returns the path to config.json.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// HistoryPath returns the path to the shell history file.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Dir, HistoryFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

