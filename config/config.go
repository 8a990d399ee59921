// Package config reads the process configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/jmgilman/go/errors"

	"github.com/krisalay/filesoup/directory"
	"github.com/krisalay/filesoup/idgen"
	"github.com/krisalay/filesoup/reaper"
	"github.com/krisalay/filesoup/shard"
)

// Environment variables.
const (
	EnvAddr             = "FILESOUP_ADDR"
	EnvSweepInterval    = "FILESOUP_SWEEP_INTERVAL"
	EnvMaxIdle          = "FILESOUP_MAX_IDLE"
	EnvIDLength         = "FILESOUP_ID_LENGTH"
	EnvIDSeparator      = "FILESOUP_ID_SEPARATOR"
	EnvShards           = "FILESOUP_SHARDS"
	EnvStore            = "FILESOUP_STORE"
	EnvMaxPayload       = "FILESOUP_MAX_PAYLOAD"
	EnvCollisionRetries = "FILESOUP_COLLISION_RETRIES"
	EnvLogPath          = "FILESOUP_LOG"
	EnvLogLevel         = "FILESOUP_LOG_LEVEL"
)

const (
	DefaultAddr   = ":8000"
	DefaultShards = 16
)

// Config is the validated process configuration.
type Config struct {
	Addr             string
	SweepInterval    time.Duration
	MaxIdle          time.Duration
	IDLength         int
	IDSeparator      string
	Shards           int
	Store            shard.Backend
	MaxPayloadLength int
	CollisionRetries int
	LogPath          string // empty => stderr
	LogLevel         string
}

// Default returns the configuration used when no variable is set.
func Default() Config {
	return Config{
		Addr:             DefaultAddr,
		SweepInterval:    reaper.DefaultInterval,
		MaxIdle:          reaper.DefaultMaxIdle,
		IDLength:         idgen.DefaultLength,
		IDSeparator:      idgen.DefaultSeparator,
		Shards:           DefaultShards,
		Store:            shard.Map,
		MaxPayloadLength: directory.DefaultMaxPayloadLength,
		CollisionRetries: 0,
		LogLevel:         "info",
	}
}

// FromEnv reads the configuration from the process environment.
func FromEnv() (Config, error) {
	return Load(os.LookupEnv)
}

// Load builds a Config from lookup, starting from Default.
// Every malformed variable is reported with CodeInvalidConfig.
func Load(lookup func(string) (string, bool)) (Config, error) {
	c := Default()

	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Addr = v
	}
	if v, ok := lookup(EnvIDSeparator); ok && v != "" {
		c.IDSeparator = v
	}
	if v, ok := lookup(EnvStore); ok && v != "" {
		c.Store = shard.Backend(v)
	}
	if v, ok := lookup(EnvLogPath); ok {
		c.LogPath = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}

	var err error
	if c.SweepInterval, err = duration(lookup, EnvSweepInterval, c.SweepInterval); err != nil {
		return Config{}, err
	}
	if c.MaxIdle, err = duration(lookup, EnvMaxIdle, c.MaxIdle); err != nil {
		return Config{}, err
	}
	if c.IDLength, err = integer(lookup, EnvIDLength, c.IDLength); err != nil {
		return Config{}, err
	}
	if c.Shards, err = integer(lookup, EnvShards, c.Shards); err != nil {
		return Config{}, err
	}
	if c.MaxPayloadLength, err = integer(lookup, EnvMaxPayload, c.MaxPayloadLength); err != nil {
		return Config{}, err
	}
	if c.CollisionRetries, err = integer(lookup, EnvCollisionRetries, c.CollisionRetries); err != nil {
		return Config{}, err
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.SweepInterval <= 0:
		return invalid(EnvSweepInterval, c.SweepInterval, "sweep interval must be positive")
	case c.MaxIdle <= 0:
		return invalid(EnvMaxIdle, c.MaxIdle, "max idle duration must be positive")
	case c.IDLength < 1:
		return invalid(EnvIDLength, c.IDLength, "identifier length must be at least 1")
	case c.Shards < 1:
		return invalid(EnvShards, c.Shards, "shard count must be at least 1")
	case c.Store != shard.Map && c.Store != shard.MemDB:
		return invalid(EnvStore, c.Store, "store must be \"map\" or \"memdb\"")
	case c.MaxPayloadLength < len(directory.MagnetPrefix):
		return invalid(EnvMaxPayload, c.MaxPayloadLength, "max payload length is too small")
	case c.CollisionRetries < 0:
		return invalid(EnvCollisionRetries, c.CollisionRetries, "collision retries must not be negative")
	}
	return nil
}

func invalid(key string, value interface{}, msg string) error {
	return errors.WithContextMap(
		errors.New(errors.CodeInvalidConfig, msg),
		map[string]interface{}{"variable": key, "value": value})
}

func duration(lookup func(string) (string, bool), key string, def time.Duration) (time.Duration, error) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.WithContext(
			errors.Wrap(err, errors.CodeInvalidConfig, "invalid duration"), "variable", key)
	}
	return d, nil
}

func integer(lookup func(string) (string, bool), key string, def int) (int, error) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.WithContext(
			errors.Wrap(err, errors.CodeInvalidConfig, "invalid integer"), "variable", key)
	}
	return n, nil
}
