// Package config loads and validates the flowboard.yml configuration file.
package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "flowboard.yml"

// Config is the top-level flowboard.yml configuration.
type Config struct {
	Version      string      `yaml:"version"`
	Instance     string      `yaml:"instance"`
	Redis        RedisConfig `yaml:"redis,omitempty"`
	GateProfiles string      `yaml:"gate_profiles,omitempty"` // optional JSON profile file replacing the built-in table
}

// RedisConfig specifies the Redis connection the Board store uses.
type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

// instanceNamePattern keeps instance names usable as Redis key segments.
var instanceNamePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// Load reads and validates a config file. Missing optional fields get
// defaults; FLOWBOARD_REDIS_ADDR overrides the configured Redis address.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a config usable without a file: instance "default",
// local Redis.
func Default() *Config {
	cfg := &Config{Version: "1", Instance: "default"}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if addr := os.Getenv("FLOWBOARD_REDIS_ADDR"); addr != "" {
		c.Redis.Addr = addr
	}
}

// Validate performs strict validation on the configuration.
func (c *Config) Validate() error {
	if c.Version != "1" {
		return fmt.Errorf("unsupported config version: %q (expected: 1)", c.Version)
	}

	if !instanceNamePattern.MatchString(c.Instance) {
		return fmt.Errorf("invalid instance name %q: must match %s", c.Instance, instanceNamePattern)
	}

	if c.Redis.DB < 0 {
		return fmt.Errorf("redis.db must be >= 0, got %d", c.Redis.DB)
	}

	if c.GateProfiles != "" {
		if _, err := os.Stat(c.GateProfiles); err != nil {
			return fmt.Errorf("gate_profiles file %q: %w", c.GateProfiles, err)
		}
	}

	return nil
}

// RedisOptions builds the go-redis options for the configured connection.
func (c *Config) RedisOptions() *redis.Options {
	return &redis.Options{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}
}
