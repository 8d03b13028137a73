// Package config loads autocachectl settings from YAML with AUTOCACHE_* overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	RouterRendezvous = "rendezvous"
	RouterRing       = "ring"
)

// RedisConfig is shared by every shard client.
type RedisConfig struct {
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RegistryConfig points at the Redis holding shared auto-load entries.
// An empty Addr disables registry resets.
type RegistryConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

type Config struct {
	Namespace  string            `yaml:"namespace"`
	Router     string            `yaml:"router"`
	Shards     map[string]string `yaml:"shards"` // shard name -> addr
	DefaultTTL time.Duration     `yaml:"default_ttl"`
	Redis      RedisConfig       `yaml:"redis"`
	Registry   RegistryConfig    `yaml:"registry"`
	Log        LogConfig         `yaml:"log"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Router:     RouterRendezvous,
		Shards:     map[string]string{"shard-0": "localhost:6379"},
		DefaultTTL: 10 * time.Minute,
		Redis: RedisConfig{
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
// A shards block replaces the default shard set.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	cfg.Shards = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if cfg.Shards == nil {
		cfg.Shards = DefaultConfig().Shards
	}
	return cfg, nil
}

// LoadFromEnv applies environment variable overrides to the config.
// AUTOCACHE_SHARDS is a comma-separated list of name=addr pairs.
func LoadFromEnv(cfg *Config) error {
	if v := os.Getenv("AUTOCACHE_NAMESPACE"); v != "" {
		cfg.Namespace = v
	}
	if v := os.Getenv("AUTOCACHE_ROUTER"); v != "" {
		cfg.Router = v
	}
	if v := os.Getenv("AUTOCACHE_SHARDS"); v != "" {
		shards, err := ParseShards(v)
		if err != nil {
			return err
		}
		cfg.Shards = shards
	}
	if v := os.Getenv("AUTOCACHE_DEFAULT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("AUTOCACHE_DEFAULT_TTL: %w", err)
		}
		cfg.DefaultTTL = d
	}
	if v := os.Getenv("AUTOCACHE_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("AUTOCACHE_REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AUTOCACHE_REDIS_DB: %w", err)
		}
		cfg.Redis.DB = db
	}
	if v := os.Getenv("AUTOCACHE_REGISTRY_ADDR"); v != "" {
		cfg.Registry.Addr = v
	}
	if v := os.Getenv("AUTOCACHE_REGISTRY_PASSWORD"); v != "" {
		cfg.Registry.Password = v
	}
	if v := os.Getenv("AUTOCACHE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("AUTOCACHE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	return nil
}

// ParseShards parses "a=host:6379,b=host:6380".
func ParseShards(s string) (map[string]string, error) {
	out := map[string]string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, addr, ok := strings.Cut(part, "=")
		name, addr = strings.TrimSpace(name), strings.TrimSpace(addr)
		if !ok || name == "" || addr == "" {
			return nil, fmt.Errorf("shard %q: want name=addr", part)
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("shard %q listed twice", name)
		}
		out[name] = addr
	}
	return out, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Router {
	case RouterRendezvous, RouterRing:
	default:
		errs = append(errs, fmt.Errorf("router %q: want %s or %s", c.Router, RouterRendezvous, RouterRing))
	}
	if len(c.Shards) == 0 {
		errs = append(errs, errors.New("no shards configured"))
	}
	for _, name := range c.ShardNames() {
		if c.Shards[name] == "" {
			errs = append(errs, fmt.Errorf("shard %q has no address", name))
		}
	}
	if strings.ContainsAny(c.Namespace, "*?") {
		errs = append(errs, fmt.Errorf("namespace %q contains '*' or '?'", c.Namespace))
	}
	if c.DefaultTTL < 0 {
		errs = append(errs, fmt.Errorf("default_ttl %v is negative", c.DefaultTTL))
	}
	return errors.Join(errs...)
}

// ShardNames returns the configured shard names, sorted.
func (c *Config) ShardNames() []string {
	names := make([]string, 0, len(c.Shards))
	for n := range c.Shards {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
