package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "HANGMAN"

type Config struct {
	Service ServiceConfig `mapstructure:"service"`
	Breaker BreakerConfig `mapstructure:"breaker"`
	Log     LogConfig     `mapstructure:"log"`
	Web     WebConfig     `mapstructure:"web"`

	v         *viper.Viper
	mu        sync.Mutex
	listeners []func(*Config)
}

// ServiceConfig points at the external game service.
type ServiceConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// BreakerConfig tunes the circuit breaker in front of the game service.
type BreakerConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxFailures uint32        `mapstructure:"max_failures"`
	OpenTimeout time.Duration `mapstructure:"open_timeout"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // "json" or "text"
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// WebConfig configures the local browser front end.
type WebConfig struct {
	Addr         string        `mapstructure:"addr"`
	MaxSessions  int           `mapstructure:"max_sessions"`
	PollTimeout  time.Duration `mapstructure:"poll_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	EvictEvery   time.Duration `mapstructure:"evict_every"`
	MailboxSize  int           `mapstructure:"mailbox_size"`
	SecureCookie bool          `mapstructure:"secure_cookie"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.base_url", "http://127.0.0.1:8000")
	v.SetDefault("service.timeout", 10*time.Second)

	v.SetDefault("breaker.enabled", true)
	v.SetDefault("breaker.max_failures", 5)
	v.SetDefault("breaker.open_timeout", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)

	v.SetDefault("web.addr", "127.0.0.1:8080")
	v.SetDefault("web.max_sessions", 1024)
	v.SetDefault("web.poll_timeout", 30*time.Second)
	v.SetDefault("web.idle_timeout", 30*time.Minute)
	v.SetDefault("web.evict_every", 5*time.Minute)
	v.SetDefault("web.mailbox_size", 64)
	v.SetDefault("web.secure_cookie", false)
}

// [FLAG_BINDINGS] command line flag -> viper key
var flagKeys = map[string]string{
	"api_url":    "service.base_url",
	"timeout":    "service.timeout",
	"log_level":  "log.level",
	"log_format": "log.format",
	"log_file":   "log.file",
	"web_addr":   "web.addr",
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("hangman-client", pflag.ContinueOnError)
	fs.String("config_file", "", "Path to the configuration file")
	fs.String("api_url", "", "Base URL of the game service")
	fs.Duration("timeout", 0, "Timeout of a single request to the game service")
	fs.String("log_level", "", "Log level (debug, info, warn, error)")
	fs.String("log_format", "", "Log format (json, text)")
	fs.String("log_file", "", "Write logs to this file instead of stderr")
	fs.String("web_addr", "", "Listen address of the web front end")
	return fs
}

// LoadConfig resolves configuration from defaults, an optional config file,
// a .env file, HANGMAN_* environment variables and the given flags, in
// increasing order of precedence.
func LoadConfig(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	flags := newFlagSet()
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("config: parse flags: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("config: bind flag %s: %w", name, err)
		}
	}

	if path, _ := flags.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg := &Config{v: v}
	next, err := cfg.decode()
	if err != nil {
		return nil, err
	}
	cfg.apply(next)
	return cfg, nil
}

// decode reads the current viper state into a fresh Config and validates it.
// The receiver is left untouched, so a bad reload never leaks into live values.
func (c *Config) decode() (*Config, error) {
	next := &Config{}
	if err := c.v.Unmarshal(next); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return next, nil
}

func (c *Config) apply(next *Config) {
	c.Service = next.Service
	c.Breaker = next.Breaker
	c.Log = next.Log
	c.Web = next.Web
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	if c.Service.BaseURL == "" {
		return errors.New("config: service.base_url is required")
	}
	if c.Service.Timeout <= 0 {
		return errors.New("config: service.timeout must be positive")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: unknown log.format %q", c.Log.Format)
	}
	if c.Web.MaxSessions <= 0 {
		return errors.New("config: web.max_sessions must be positive")
	}
	return nil
}

// OnChange registers fn to run after the config file changed and was decoded again.
func (c *Config) OnChange(fn func(*Config)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Watch starts following the config file, if one was loaded. A reload that
// fails validation is logged and dropped; the previous values stay in place.
// Only values that are safe to swap at runtime are expected to be consumed by listeners.
func (c *Config) Watch(logger *slog.Logger) bool {
	if c.v == nil || c.v.ConfigFileUsed() == "" {
		return false
	}

	c.v.OnConfigChange(func(e fsnotify.Event) {
		next, err := c.decode()
		if err != nil {
			logger.Warn("CONFIG_RELOAD_FAILED",
				slog.String("file", e.Name),
				slog.Any("err", err),
			)
			return
		}

		c.mu.Lock()
		c.apply(next)
		listeners := slices.Clone(c.listeners)
		c.mu.Unlock()

		logger.Debug("CONFIG_RELOADED", slog.String("file", e.Name))
		for _, fn := range listeners {
			fn(c)
		}
	})
	c.v.WatchConfig()
	return true
}
