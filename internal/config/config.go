// Package config loads CLI settings from defaults, $CALMORA_CONFIG_DIR/config.yaml
// and CALMORA_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	envPrefix      = "CALMORA"
)

// Session backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Session SessionConfig `mapstructure:"session"`
	Logging LoggingConfig `mapstructure:"logging"`

	path string
}

type SessionConfig struct {
	Backend  string        `mapstructure:"backend"`
	Path     string        `mapstructure:"path"`      // file backend; empty means $HOME/.calmora/session.yaml
	RedisURL string        `mapstructure:"redis_url"` // redis backend
	RedisKey string        `mapstructure:"redis_key"`
	TTL      time.Duration `mapstructure:"ttl"` // redis backend; zero keeps the key forever
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Default() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		Session: SessionConfig{
			Backend: BackendFile,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Dir returns the configuration directory.
func Dir() (string, error) {
	if dir := os.Getenv("CALMORA_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".calmora"), nil
}

// Load reads configuration. An empty cfgFile means config.yaml in Dir, which
// may be absent. A cfgFile named by the caller must exist.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("base_url", def.BaseURL)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("session.backend", def.Session.Backend)
	v.SetDefault("session.path", "")
	v.SetDefault("session.redis_url", "")
	v.SetDefault("session.redis_key", "")
	v.SetDefault("session.ttl", time.Duration(0))
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)

	explicit := cfgFile != ""
	if !explicit {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		cfgFile = filepath.Join(dir, "config.yaml")
	}
	v.SetConfigFile(cfgFile)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Short aliases for the settings most often overridden in scripts
	_ = v.BindEnv("session.backend", "CALMORA_SESSION_BACKEND", "CALMORA_SESSION")
	_ = v.BindEnv("session.redis_url", "CALMORA_SESSION_REDIS_URL", "CALMORA_REDIS_URL")
	_ = v.BindEnv("logging.level", "CALMORA_LOGGING_LEVEL", "CALMORA_LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil && (explicit || !isNotExist(err)) {
		return nil, fmt.Errorf("failed to read config %s: %w", cfgFile, err)
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.path = cfgFile
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return cfg, nil
}

// Path is the config file Load looked at.
func (c *Config) Path() string {
	return c.path
}

// Validate rejects settings that cannot produce a working client.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid base_url %q: must be an absolute http(s) URL", c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("invalid timeout %s: must not be negative", c.Timeout)
	}

	switch c.Session.Backend {
	case BackendFile, BackendMemory:
	case BackendRedis:
		if c.Session.RedisURL == "" {
			return fmt.Errorf("session.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown session backend %q (want %s, %s or %s)",
			c.Session.Backend, BackendFile, BackendRedis, BackendMemory)
	}
	return nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}
