// Package config loads colloquy.yaml, the project file read by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/colloquy/internal/compiler"
	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/domain"
	"gopkg.in/yaml.v3"
)

// FileName is the project file looked up in the project directory.
const FileName = "colloquy.yaml"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// Config represents the structure of colloquy.yaml.
type Config struct {
	// Graphs is the directory holding graph documents, relative to the project.
	Graphs string `yaml:"graphs"`
	// Entry is the graph started by `colloquy run` when none is given.
	Entry string `yaml:"entry"`
	// Globals are project-wide defaults, declared before any graph's own.
	Globals map[string]any `yaml:"globals"`

	MaxSkipHops int `yaml:"max_skip_hops"`

	Log    LogConfig    `yaml:"log"`
	Store  StoreConfig  `yaml:"store"`
	Server ServerConfig `yaml:"server"`

	dir string
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StoreConfig selects where player profiles are saved.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	// Path is the profile directory of the file driver.
	Path  string      `yaml:"path"`
	Redis RedisConfig `yaml:"redis"`
	// EncryptionKeyEnv names the environment variable holding the AES key.
	// Profiles are stored in plain JSON when it is empty.
	EncryptionKeyEnv string `yaml:"encryption_key_env"`
	// Redact lists global names masked before a profile is written.
	Redact []string `yaml:"redact"`
	// LockTTL bounds profile locks taken across processes (redis only).
	LockTTL time.Duration `yaml:"lock_ttl"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

type ServerConfig struct {
	Addr    string `yaml:"addr"`
	Metrics bool   `yaml:"metrics"`
}

// Default returns the configuration used when no project file exists.
func Default() *Config {
	return &Config{
		Graphs: ".",
		Entry:  "start",
		Log:    LogConfig{Level: "warn", Format: string(logging.FormatText)},
		Store: StoreConfig{
			Driver: DriverFile,
			Path:   filepath.Join(".colloquy", "profiles"),
			Redis:  RedisConfig{Addr: "localhost:6379", Prefix: "colloquy:"},
		},
		Server: ServerConfig{Addr: ":8080", Metrics: true},
	}
}

// Load reads colloquy.yaml from dir. A missing file yields the defaults.
// Environment variables COLLOQUY_LOG_LEVEL and COLLOQUY_REDIS_ADDR override the file.
func Load(dir string) (*Config, error) {
	cfg := Default()
	cfg.dir = dir

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
		}
	}

	if v := os.Getenv("COLLOQUY_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("COLLOQUY_REDIS_ADDR"); v != "" {
		cfg.Store.Redis.Addr = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", FileName, err)
	}
	return cfg, nil
}

// Validate checks enumerations and the globals block.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		errs = append(errs, err)
	}
	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q (want memory, file or redis)", c.Store.Driver))
	}
	if _, err := c.Defaults(); err != nil {
		errs = append(errs, err)
	}
	if c.MaxSkipHops < 0 {
		errs = append(errs, errors.New("max_skip_hops must not be negative"))
	}
	return errors.Join(errs...)
}

// Defaults converts the globals block into a variable snapshot.
func (c *Config) Defaults() (domain.VariableSnapshot, error) {
	snap, err := compiler.CompileGlobals(c.Globals)
	if err != nil {
		return snap, fmt.Errorf("globals: %w", err)
	}
	return snap, nil
}

// Resolve makes p absolute against the project directory.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.dir, p)
}

// GraphsDir is the resolved graph directory.
func (c *Config) GraphsDir() string {
	return c.Resolve(c.Graphs)
}

// ProfilesDir is the resolved profile directory of the file driver.
func (c *Config) ProfilesDir() string {
	return c.Resolve(c.Store.Path)
}

// EncryptionKey reads the key from the configured environment variable.
// Keys are given as 32 raw characters (AES-256).
func (c *Config) EncryptionKey() ([]byte, error) {
	if c.Store.EncryptionKeyEnv == "" {
		return nil, nil
	}
	key := strings.TrimSpace(os.Getenv(c.Store.EncryptionKeyEnv))
	if key == "" {
		return nil, fmt.Errorf("environment variable %s is empty", c.Store.EncryptionKeyEnv)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%s: key must be 32 bytes, got %d", c.Store.EncryptionKeyEnv, len(key))
	}
	return []byte(key), nil
}
