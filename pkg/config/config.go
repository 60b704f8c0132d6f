package config

import (
	"errors"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const redacted = "***REDACTED***"

// Config is the wrapper around viper with extra helpers.
type Config struct {
	*viper.Viper

	// private
	mu            sync.Mutex
	hasSource     bool
	sensitiveKeys map[string]struct{}
	onChange      []func()
}

// Option is a functional option for New.
type Option func(*Config) error

// New creates a Config instance. Options apply in order; a config file is
// read only when WithFile or WithConfigNamePaths named one.
// Example:
//
//	fs := pflag.NewFlagSet("sync", pflag.ExitOnError)
//	config.ClientFlags(fs)
//	_ = fs.Parse(os.Args[1:])
//	cfg := config.New(
//	  config.WithDefaults(map[string]any{"http.timeout": "30s"}),
//	  config.WithFile("restkit.yaml"),
//	  config.WithEnv("RESTKIT"),
//	  config.WithPFlags(fs),
//	)
func New(opts ...Option) *Config {
	cfg := &Config{
		Viper:         viper.New(),
		sensitiveKeys: map[string]struct{}{},
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			log.Fatalf("config: applying option failed: %v", err)
		}
	}

	if cfg.hasSource {
		if err := cfg.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				// non-fatal; env, flags and defaults still apply
				log.Printf("config: read config warning: %v", err)
			}
		}
	}

	return cfg
}

/* ---------------------------
   Options
----------------------------*/

// WithDefaults sets default values. Keys are dotted paths, e.g. "http.timeout".
func WithDefaults(defaults map[string]any) Option {
	return func(c *Config) error {
		for k, v := range defaults {
			c.SetDefault(k, v)
		}
		return nil
	}
}

// WithFile sets an exact config file; the extension selects the format.
func WithFile(path string) Option {
	return func(c *Config) error {
		if path == "" {
			return nil
		}
		c.SetConfigFile(path)
		if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
			c.SetConfigType(ext)
		}
		c.hasSource = true
		return nil
	}
}

// WithConfigNamePaths searches name (without extension) in paths.
// A missing file is not an error.
func WithConfigNamePaths(name string, paths ...string) Option {
	return func(c *Config) error {
		if name == "" {
			return nil
		}
		c.SetConfigName(name)
		if len(paths) == 0 {
			paths = []string{".", "/etc/restkit"}
		}
		for _, p := range paths {
			c.AddConfigPath(p)
		}
		c.hasSource = true
		return nil
	}
}

// WithEnv enables environment variable overrides.
// prefix "APP" maps http.timeout to APP_HTTP_TIMEOUT.
func WithEnv(prefix string) Option {
	return func(c *Config) error {
		if prefix != "" {
			c.SetEnvPrefix(prefix)
		}
		c.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		c.AutomaticEnv()
		return nil
	}
}

// WithPFlags binds an already parsed flag set. Only flags that were set on
// the command line override other sources. nil binds pflag.CommandLine.
func WithPFlags(flags *pflag.FlagSet) Option {
	return func(c *Config) error {
		if flags == nil {
			flags = pflag.CommandLine
		}
		return c.BindPFlags(flags)
	}
}

// WithWatch reloads the config file on change and calls onChange afterwards.
func WithWatch(onChange func()) Option {
	return func(c *Config) error {
		if onChange != nil {
			c.onChange = append(c.onChange, onChange)
		}
		c.OnConfigChange(func(e fsnotify.Event) {
			log.Printf("config: file changed: %s", e.Name)
			c.mu.Lock()
			hooks := append([]func(){}, c.onChange...)
			c.mu.Unlock()
			for _, fn := range hooks {
				fn()
			}
		})
		c.WatchConfig()
		return nil
	}
}

// WithSensitiveKeys registers keys which should be redacted when printing/logging.
func WithSensitiveKeys(keys ...string) Option {
	return func(c *Config) error {
		for _, k := range keys {
			c.sensitiveKeys[strings.ToLower(k)] = struct{}{}
		}
		return nil
	}
}

/* ---------------------------
   Typed getters with defaults
----------------------------*/

// GetStringD returns string or def
func (c *Config) GetStringD(key, def string) string {
	if val := c.GetString(key); val != "" {
		return val
	}
	return def
}

// GetIntD returns int or def
func (c *Config) GetIntD(key string, def int) int {
	if c.IsSet(key) {
		return c.GetInt(key)
	}
	return def
}

// GetFloat64D returns float64 or def
func (c *Config) GetFloat64D(key string, def float64) float64 {
	if c.IsSet(key) {
		return c.GetFloat64(key)
	}
	return def
}

// GetBoolD returns bool or def
func (c *Config) GetBoolD(key string, def bool) bool {
	if c.IsSet(key) {
		return c.GetBool(key)
	}
	return def
}

// GetDurationD returns time.Duration or def
func (c *Config) GetDurationD(key string, def time.Duration) time.Duration {
	if c.IsSet(key) {
		return c.GetDuration(key)
	}
	return def
}

// MaskedSettings returns every effective key in dotted form with sensitive
// values redacted. It is safe to log.
func (c *Config) MaskedSettings() map[string]any {
	out := map[string]any{}
	for _, k := range c.AllKeys() {
		if _, ok := c.sensitiveKeys[k]; ok {
			out[k] = redacted
			continue
		}
		out[k] = c.Get(k)
	}
	return out
}
