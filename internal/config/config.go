// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

// Package config loads runtime configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// command-line flags. Secrets and environment toggles come from ONEBOT_*
// variables and never from the file.
package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config is the complete runtime configuration.
type Config struct {
	Log     LogConfig     `koanf:"log"`
	Modules ModulesConfig `koanf:"modules"`
	Music   MusicConfig   `koanf:"music"`
	Metrics ServerConfig  `koanf:"metrics"`
	Admin   ServerConfig  `koanf:"admin"`
	Console ConsoleConfig `koanf:"console"`

	Env Env `koanf:"-"`
}

// LogConfig configures logging.
type LogConfig struct {
	Format string `koanf:"format"` // json or text
	Level  string `koanf:"level"`  // debug, info, warn, error
}

// ModulesConfig configures module discovery and lifecycle bounds.
type ModulesConfig struct {
	Dir               string        `koanf:"dir"`
	Disabled          []string      `koanf:"disabled"` // glob patterns of module names
	ActivationTimeout time.Duration `koanf:"activation_timeout"`
	CommandsTimeout   time.Duration `koanf:"commands_timeout"`
}

// MusicConfig configures the music module.
type MusicConfig struct {
	AdapterTimeout time.Duration `koanf:"adapter_timeout"`
	Fixtures       string        `koanf:"fixtures"`
	Cache          CacheConfig   `koanf:"cache"`
}

// CacheConfig configures the optional Redis search cache.
type CacheConfig struct {
	Addr string        `koanf:"addr"`
	TTL  time.Duration `koanf:"ttl"`
}

// ServerConfig is a listen address; empty disables the server.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// ConsoleConfig configures the local console gateway.
type ConsoleConfig struct {
	User string `koanf:"user"`
}

// Env holds values read only from the environment.
type Env struct {
	Token         string   `env:"ONEBOT_TOKEN"`
	SendUsageData bool     `env:"ONEBOT_SEND_USAGE_DATA" envDefault:"false"`
	Operators     []string `env:"ONEBOT_OPERATORS"       envSeparator:","`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Log: LogConfig{Format: "json", Level: "info"},
		Modules: ModulesConfig{
			Dir:               "modules",
			ActivationTimeout: 30 * time.Second,
			CommandsTimeout:   30 * time.Second,
		},
		Music: MusicConfig{
			AdapterTimeout: 10 * time.Second,
			Cache:          CacheConfig{TTL: 6 * time.Hour},
		},
		Metrics: ServerConfig{Addr: "127.0.0.1:9100"},
		Console: ConsoleConfig{User: "operator"},
	}
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"log-format":     "log.format",
	"log-level":      "log.level",
	"modules-dir":    "modules.dir",
	"disable-module": "modules.disabled",
	"music-fixtures": "music.fixtures",
	"cache-addr":     "music.cache.addr",
	"metrics-addr":   "metrics.addr",
	"admin-addr":     "admin.addr",
	"console-user":   "console.user",
}

// BindFlags registers the overridable settings on fs with default values.
func BindFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("config", "", "path to a YAML config file")
	fs.String("log-format", d.Log.Format, "log format (json or text)")
	fs.String("log-level", d.Log.Level, "log level (debug, info, warn, error)")
	fs.String("modules-dir", d.Modules.Dir, "directory scanned for module.yaml manifests")
	fs.StringSlice("disable-module", nil, "module name patterns to skip (repeatable)")
	fs.String("music-fixtures", d.Music.Fixtures, "YAML catalog backing the music adapters")
	fs.String("cache-addr", d.Music.Cache.Addr, "Redis address for the music search cache (empty = disabled)")
	fs.String("metrics-addr", d.Metrics.Addr, "metrics/health HTTP address (empty = disabled)")
	fs.String("admin-addr", d.Admin.Addr, "admin API HTTP address (empty = disabled)")
	fs.String("console-user", d.Console.User, "author name of console input")
}

// Load builds the configuration from the file named by the "config" flag,
// the flags in fs, and the environment. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	var path string
	if fs != nil {
		if f := fs.Lookup("config"); f != nil {
			path = f.Value.String()
		}
	}
	return load(path, fs, env.Options{})
}

func load(path string, fs *pflag.FlagSet, envOpts env.Options) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.In("config").With("path", path).Wrapf(err, "load config file")
		}
	}

	if fs != nil {
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(fs, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.In("config").Wrapf(err, "load flags")
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.In("config").Wrapf(err, "decode config")
	}

	if err := env.ParseWithOptions(&cfg.Env, envOpts); err != nil {
		return nil, oops.In("config").Wrapf(err, "parse env")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return invalid("log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	for key, d := range map[string]time.Duration{
		"modules.activation_timeout": c.Modules.ActivationTimeout,
		"modules.commands_timeout":   c.Modules.CommandsTimeout,
		"music.adapter_timeout":      c.Music.AdapterTimeout,
		"music.cache.ttl":            c.Music.Cache.TTL,
	} {
		if d < 0 {
			return invalid("%s must not be negative, got %s", key, d)
		}
	}
	for _, id := range c.Env.Operators {
		if strings.TrimSpace(id) == "" {
			return invalid("ONEBOT_OPERATORS contains an empty id")
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return oops.In("config").Code("INVALID_CONFIG").Errorf(format, args...)
}
