// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/bricks/internal/discovery"
	"github.com/holomush/bricks/internal/logging"
	"github.com/holomush/bricks/pkg/cache"
)

// envPrefix marks environment variables that override configuration.
// BRICKS_CACHE_DIR sets cache-dir.
const envPrefix = "BRICKS_"

// configFileName is looked up in the user config directory when no
// --config is given.
const configFileName = "bricks.yaml"

// Cache backends.
const (
	backendFile     = "file"
	backendPostgres = "postgres"
)

// Config is the CLI configuration.
type Config struct {
	InstalledPath string   `koanf:"installed"`
	ConfigDir     string   `koanf:"config-dir"`
	CacheDir      string   `koanf:"cache-dir"`
	CacheMode     string   `koanf:"cache-mode"`
	CacheBackend  string   `koanf:"cache-backend"`
	DatabaseURL   string   `koanf:"database-url"`
	LogFormat     string   `koanf:"log-format"`
	LogLevel      string   `koanf:"log-level"`
	ScanExclude   []string `koanf:"scan-exclude"`
}

func defaults() map[string]any {
	return map[string]any{
		"installed":     "installed.yaml",
		"config-dir":    "config",
		"cache-mode":    string(cache.ModeProd),
		"cache-backend": backendFile,
		"log-format":    logging.FormatText,
		"log-level":     "warn",
	}
}

// Validate checks that the configuration is usable.
func (cfg *Config) Validate() error {
	if cfg.InstalledPath == "" {
		return oops.Code("CONFIG_INVALID").Errorf("installed is required")
	}
	if _, err := cache.ParseMode(cfg.CacheMode); err != nil {
		return invalidConfig("cache-mode", cfg.CacheMode, err)
	}
	switch cfg.CacheBackend {
	case backendFile:
	case backendPostgres:
		if cfg.DatabaseURL == "" {
			return oops.Code("CONFIG_INVALID").
				Hint("set database-url or BRICKS_DATABASE_URL").
				Errorf("database-url is required for the %s cache backend", backendPostgres)
		}
	default:
		return oops.Code("CONFIG_INVALID").
			With("cache_backend", cfg.CacheBackend).
			Errorf("cache-backend must be %q or %q, got %q", backendFile, backendPostgres, cfg.CacheBackend)
	}
	if _, err := logging.ParseFormat(cfg.LogFormat); err != nil {
		return invalidConfig("log-format", cfg.LogFormat, err)
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return invalidConfig("log-level", cfg.LogLevel, err)
	}
	if _, err := discovery.NewScanner(cfg.ScanExclude...); err != nil {
		return invalidConfig("scan-exclude", strings.Join(cfg.ScanExclude, ","), err)
	}
	return nil
}

// defaultConfigFile returns bricks.yaml in the user config directory, or ""
// when there is none.
func defaultConfigFile(configDir func() (string, error)) string {
	dir, err := configDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, configFileName)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// invalidConfig reports a bad value. The cause is flattened into the message
// so CONFIG_INVALID stays the reported code.
func invalidConfig(key, value string, cause error) error {
	return oops.Code("CONFIG_INVALID").
		With("key", key).
		With("value", value).
		Errorf("invalid %s: %v", key, cause)
}

// pathKeys are config keys holding paths. Relative values in a config file
// are resolved against the file's directory.
var pathKeys = []string{"installed", "config-dir", "cache-dir"}

// loadConfig merges, lowest precedence first: defaults, the YAML file at
// path (when set), BRICKS_* environment variables and changed flags.
func loadConfig(flags *pflag.FlagSet, path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrapf(err, "load defaults")
	}
	if path != "" {
		fk := koanf.New(".")
		if err := fk.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_INVALID").With("path", path).Wrapf(err, "load config file")
		}
		for _, key := range pathKeys {
			v := fk.String(key)
			if v == "" || filepath.IsAbs(v) {
				continue
			}
			if err := fk.Set(key, filepath.Join(filepath.Dir(path), v)); err != nil {
				return nil, oops.Code("CONFIG_INVALID").With("key", key).Wrap(err)
			}
		}
		if err := k.Merge(fk); err != nil {
			return nil, oops.Code("CONFIG_INVALID").With("path", path).Wrap(err)
		}
	}
	if err := k.Load(env.ProviderWithValue(envPrefix, ".", envKey), nil); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrapf(err, "load environment")
	}
	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_INVALID").Wrapf(err, "load flags")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrapf(err, "decode config")
	}
	return &cfg, nil
}

// listKeys hold comma separated values when set from the environment.
var listKeys = map[string]bool{"scan-exclude": true}

// envKey maps BRICKS_CACHE_DIR=x to cache-dir: x. Empty variables are
// ignored.
func envKey(name, value string) (string, any) {
	if value == "" {
		return "", nil
	}
	key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, envPrefix)), "_", "-")
	if listKeys[key] {
		return key, strings.Split(value, ",")
	}
	return key, value
}
