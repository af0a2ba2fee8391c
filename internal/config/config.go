// Package config loads service configuration from defaults, an optional
// YAML file and ITEMS_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Sternrassler/item-service/pkg/engine"
	"github.com/Sternrassler/item-service/pkg/logging"
	"github.com/Sternrassler/item-service/pkg/workerpool"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete service configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Pool   PoolConfig   `yaml:"pool"`
	Engine EngineConfig `yaml:"engine"`
	Store  StoreConfig  `yaml:"store"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// PoolConfig configures the batch worker pool.
type PoolConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

// EngineConfig configures batch processing.
type EngineConfig struct {
	Delay time.Duration `yaml:"delay"`
}

// StoreConfig selects and configures the item store.
type StoreConfig struct {
	Backend       string `yaml:"backend"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	KeyPrefix     string `yaml:"key_prefix"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 15 * time.Second,
		},
		Log: LogConfig{
			Level: string(logging.LevelInfo),
		},
		Pool: PoolConfig{
			Workers: workerpool.DefaultWorkers,
		},
		Engine: EngineConfig{
			Delay: engine.DefaultDelay,
		},
		Store: StoreConfig{
			Backend:   BackendMemory,
			RedisAddr: "localhost:6379",
			KeyPrefix: "items",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is not empty), then environment overrides read through lookupEnv.
// The result is validated.
func Load(path string, lookupEnv func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("open config file: %w", err)
		}
		defer f.Close()

		if err := decodeYAML(f, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	if err := applyEnv(&cfg, lookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeYAML(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// applyEnv overrides fields from ITEMS_* variables
func applyEnv(cfg *Config, lookupEnv func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) error {
		v, ok := lookupEnv(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, v, err)
		}
		*dst = n
		return nil
	}
	duration := func(key string, dst *time.Duration) error {
		v, ok := lookupEnv(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, v, err)
		}
		*dst = d
		return nil
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookupEnv(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, v, err)
		}
		*dst = b
		return nil
	}

	str("ITEMS_ADDR", &cfg.Server.Addr)
	str("ITEMS_LOG_LEVEL", &cfg.Log.Level)
	str("ITEMS_STORE", &cfg.Store.Backend)
	str("ITEMS_REDIS_ADDR", &cfg.Store.RedisAddr)
	str("ITEMS_REDIS_PASSWORD", &cfg.Store.RedisPassword)
	str("ITEMS_KEY_PREFIX", &cfg.Store.KeyPrefix)

	for _, err := range []error{
		duration("ITEMS_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout),
		boolean("ITEMS_LOG_PRETTY", &cfg.Log.Pretty),
		integer("ITEMS_WORKERS", &cfg.Pool.Workers),
		integer("ITEMS_QUEUE_SIZE", &cfg.Pool.QueueSize),
		duration("ITEMS_DELAY", &cfg.Engine.Delay),
		integer("ITEMS_REDIS_DB", &cfg.Store.RedisDB),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the configuration for values the service cannot run with.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalid)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: server.shutdown_timeout must be > 0 (got %s)", ErrInvalid, c.Server.ShutdownTimeout)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	if c.Pool.Workers <= 0 {
		return fmt.Errorf("%w: pool.workers must be > 0 (got %d)", ErrInvalid, c.Pool.Workers)
	}
	if c.Pool.QueueSize < 0 {
		return fmt.Errorf("%w: pool.queue_size must be >= 0 (got %d)", ErrInvalid, c.Pool.QueueSize)
	}
	if c.Engine.Delay < 0 {
		return fmt.Errorf("%w: engine.delay must be >= 0 (got %s)", ErrInvalid, c.Engine.Delay)
	}
	switch c.Store.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("%w: store.redis_addr is required for the redis backend", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalid, c.Store.Backend)
	}
	return nil
}

// Logging returns the logger configuration writing to out.
func (c Config) Logging(out io.Writer) logging.Config {
	level, _ := logging.ParseLevel(c.Log.Level)
	return logging.Config{
		Level:  level,
		Pretty: c.Log.Pretty,
		Output: out,
	}
}

// WorkerPool returns the pool configuration.
func (c Config) WorkerPool() workerpool.Config {
	return workerpool.Config{
		Workers:   c.Pool.Workers,
		QueueSize: c.Pool.QueueSize,
	}
}

// BatchEngine returns the engine configuration.
func (c Config) BatchEngine() engine.Config {
	return engine.Config{
		Delay: c.Engine.Delay,
	}
}
