// Package config provides hierarchical configuration for lineal using
// koanf. Values are loaded with priority: environment variables >
// user config (~/.config/lineal/config.json) > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "LINEAL_"

// Config is the resolved lineal configuration.
type Config struct {
	// CacheDir stores cached remote graph documents. Empty disables
	// the file cache.
	CacheDir string `koanf:"cache_dir"`
	// CacheTTL controls how long cached documents stay fresh.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	Remote RemoteConfig `koanf:"remote"`
	Redis  RedisConfig  `koanf:"redis"`
	Mongo  MongoConfig  `koanf:"mongo"`
	Render RenderConfig `koanf:"render"`
	Server ServerConfig `koanf:"server"`
}

// RemoteConfig points at a knowledge-graph service.
type RemoteConfig struct {
	// URL is the base URL of the service. Empty means no remote.
	URL string `koanf:"url"`
	// Timeout bounds a single HTTP request.
	Timeout time.Duration `koanf:"timeout"`
}

// RedisConfig selects a Redis cache backend when Addr is set.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// MongoConfig selects a MongoDB graph store when URI is set.
type MongoConfig struct {
	URI        string `koanf:"uri"`
	Database   string `koanf:"database"`
	Collection string `koanf:"collection"`
}

// RenderConfig carries default render options.
type RenderConfig struct {
	Compact    bool `koanf:"compact"`
	Separators bool `koanf:"separators"`
}

// ServerConfig carries defaults for the serve command.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		CacheTTL: 24 * time.Hour,
		Remote: RemoteConfig{
			Timeout: 30 * time.Second,
		},
		Mongo: MongoConfig{
			Database:   "lineal",
			Collection: "graphs",
		},
		Render: RenderConfig{
			Compact:    true,
			Separators: true,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// UserConfigPath returns the user-level config file location,
// following the XDG base directory convention via os.UserConfigDir.
func UserConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lineal", "config.json"), nil
}

// Load resolves the configuration from defaults, the user config file,
// and LINEAL_* environment variables, in increasing priority.
func Load() (*Config, error) {
	path, _ := UserConfigPath()
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit config file path. A missing file
// is not an error; a malformed one is.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	loadDefaults(k)

	if path != "" && fileExists(path) {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func loadDefaults(k *koanf.Koanf) {
	d := Defaults()
	k.Set("cache_ttl", d.CacheTTL)
	k.Set("remote.timeout", d.Remote.Timeout)
	k.Set("mongo.database", d.Mongo.Database)
	k.Set("mongo.collection", d.Mongo.Collection)
	k.Set("render.compact", d.Render.Compact)
	k.Set("render.separators", d.Render.Separators)
	k.Set("server.addr", d.Server.Addr)
}

// envTransform converts environment variable names to config keys.
// Example: LINEAL_REDIS__ADDR -> redis.addr, LINEAL_CACHE_DIR -> cache_dir.
// A double underscore separates nesting levels so that keys containing
// single underscores survive the mapping.
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
