// Package config loads the storefront's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

var ErrUnknownDriver = errors.New("unknown store driver")

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// StoreConfig selects the key-value backend. DSN is a file path for
// sqlite and a connection string for postgres.
type StoreConfig struct {
	Driver string      `yaml:"driver"`
	DSN    string      `yaml:"dsn"`
	Redis  RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8082"},
		Store: StoreConfig{
			Driver: DriverSQLite,
			DSN:    "storefront.db",
			Redis:  RedisConfig{Addr: "localhost:6379", Prefix: "storefront:"},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults (an empty path skips the file), then
// applies STOREFRONT_* environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"STOREFRONT_ADDR":           &c.Server.Addr,
		"STOREFRONT_STORE_DRIVER":   &c.Store.Driver,
		"STOREFRONT_STORE_DSN":      &c.Store.DSN,
		"STOREFRONT_REDIS_ADDR":     &c.Store.Redis.Addr,
		"STOREFRONT_REDIS_PASSWORD": &c.Store.Redis.Password,
		"STOREFRONT_REDIS_PREFIX":   &c.Store.Redis.Prefix,
		"STOREFRONT_LOG_LEVEL":      &c.Log.Level,
	}
	for name, dst := range str {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	if v, ok := lookup("STOREFRONT_REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STOREFRONT_REDIS_DB: %w", err)
		}
		c.Store.Redis.DB = n
	}
	if v, ok := lookup("STOREFRONT_LOG_DEVELOPMENT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("STOREFRONT_LOG_DEVELOPMENT: %w", err)
		}
		c.Log.Development = b
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverRedis:
	case DriverSQLite, DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for %s", c.Store.Driver)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Store.Driver)
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	return nil
}
