// Package config loads the ledger configuration: an optional YAML file overlaid by
// TRADECOIN_* environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "TRADECOIN_"

// Store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config is the process configuration.
type Config struct {
	Admin    string        `yaml:"admin" env:"ADMIN"`
	LogLevel string        `yaml:"log_level" env:"LOG_LEVEL"`
	LockTTL  time.Duration `yaml:"lock_ttl" env:"LOCK_TTL"`
	Store    StoreConfig   `yaml:"store" envPrefix:"STORE_"`
	HTTP     HTTPConfig    `yaml:"http" envPrefix:"HTTP_"`
}

// StoreConfig selects and configures the snapshot store.
type StoreConfig struct {
	Kind  string `yaml:"kind" env:"KIND"`
	Path  string `yaml:"path" env:"PATH"`
	Codec string `yaml:"codec" env:"CODEC"`
	// EncryptionKey is a hex encoded 32 byte AES key. Empty disables encryption.
	EncryptionKey string      `yaml:"encryption_key" env:"ENCRYPTION_KEY"`
	Redis         RedisConfig `yaml:"redis" envPrefix:"REDIS_"`
}

// RedisConfig configures the redis store and the distributed lock.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
	Prefix   string `yaml:"prefix" env:"PREFIX"`
	// Lock serializes operations across replicas sharing the store.
	Lock bool `yaml:"lock" env:"LOCK"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Port    int  `yaml:"port" env:"PORT"`
	Metrics bool `yaml:"metrics" env:"METRICS"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LogLevel: "info",
		LockTTL:  30 * time.Second,
		Store: StoreConfig{
			Kind:  StoreMemory,
			Codec: "json",
			Redis: RedisConfig{Addr: "localhost:6379", Prefix: "tradecoin:"},
		},
		HTTP: HTTPConfig{Port: 8080, Metrics: true},
	}
}

// Load reads path (if not empty) over the defaults, then applies the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be checked by the decoders.
func (c Config) Validate() error {
	var errs []error
	switch c.Store.Kind {
	case StoreMemory, StoreFile, StoreRedis, StoreSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown store kind %q", c.Store.Kind))
	}
	switch c.Store.Codec {
	case "", "json", "cbor":
	default:
		errs = append(errs, fmt.Errorf("unknown codec %q", c.Store.Codec))
	}
	if c.Store.Kind == StoreSQLite && c.Store.Path == "" {
		errs = append(errs, errors.New("sqlite store requires a path"))
	}
	if _, err := c.Store.Key(); err != nil {
		errs = append(errs, err)
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid http port %d", c.HTTP.Port))
	}
	return errors.Join(errs...)
}

// Key decodes the encryption key. It returns nil when encryption is disabled.
func (s StoreConfig) Key() ([]byte, error) {
	if s.EncryptionKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(s.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key must be hex encoded: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
