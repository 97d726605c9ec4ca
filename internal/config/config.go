// Package config loads abacus settings from an optional YAML file, an
// optional .env file and ABACUS_* environment variables, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "ABACUS_"

// DefaultEnvFile is read when present, without being required.
const DefaultEnvFile = ".env"

// Config is the resolved configuration.
type Config struct {
	// History selects the history backend: memory, loam or redis.
	History      string `mapstructure:"history" yaml:"history"`
	HistoryDir   string `mapstructure:"history_dir" yaml:"history_dir"`
	HistoryLimit int    `mapstructure:"history_limit" yaml:"history_limit"`

	// Store selects the session store: memory, file or redis.
	Store    string `mapstructure:"store" yaml:"store"`
	StoreDir string `mapstructure:"store_dir" yaml:"store_dir"`

	// StoreKey, when set, encrypts stored sessions. It is a base64 AES-256
	// key; StoreOldKeys still decrypt sessions sealed before a rotation.
	StoreKey     string   `mapstructure:"store_key" yaml:"store_key"`
	StoreOldKeys []string `mapstructure:"store_old_keys" yaml:"store_old_keys"`

	Redis RedisConfig `mapstructure:"redis" yaml:"redis"`
	HTTP  HTTPConfig  `mapstructure:"http" yaml:"http"`

	Metrics bool `mapstructure:"metrics" yaml:"metrics"`
	Debug   bool `mapstructure:"debug" yaml:"debug"`
}

// RedisConfig configures the redis history, store and locker.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Port int `mapstructure:"port" yaml:"port"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		History:      "memory",
		HistoryDir:   ".abacus/history",
		HistoryLimit: 10,
		Store:        "memory",
		StoreDir:     ".abacus/sessions",
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "abacus:",
		},
		HTTP: HTTPConfig{Port: 8080},
	}
}

// envKeys maps environment variable suffixes to config paths.
var envKeys = map[string][]string{
	"HISTORY":        {"history"},
	"HISTORY_DIR":    {"history_dir"},
	"HISTORY_LIMIT":  {"history_limit"},
	"STORE":          {"store"},
	"STORE_DIR":      {"store_dir"},
	"STORE_KEY":      {"store_key"},
	"STORE_OLD_KEYS": {"store_old_keys"},
	"REDIS_ADDR":     {"redis", "addr"},
	"REDIS_PASSWORD": {"redis", "password"},
	"REDIS_DB":       {"redis", "db"},
	"REDIS_PREFIX":   {"redis", "prefix"},
	"REDIS_TTL":      {"redis", "ttl"},
	"HTTP_PORT":      {"http", "port"},
	"METRICS":        {"metrics"},
	"DEBUG":          {"debug"},
}

type loadOptions struct {
	envFile   string
	lookupEnv func(string) (string, bool)
}

// Option configures Load.
type Option func(*loadOptions)

// WithEnvFile reads dotenv values from path instead of DefaultEnvFile.
// A missing file is ignored.
func WithEnvFile(path string) Option {
	return func(o *loadOptions) {
		o.envFile = path
	}
}

// WithLookupEnv replaces os.LookupEnv.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(o *loadOptions) {
		o.lookupEnv = fn
	}
}

// Load resolves the configuration. An empty path skips the YAML file;
// a non-empty path must exist.
func Load(path string, opts ...Option) (Config, error) {
	o := loadOptions{envFile: DefaultEnvFile, lookupEnv: os.LookupEnv}
	for _, opt := range opts {
		opt(&o)
	}

	raw := map[string]any{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	}

	dotenv, err := readDotEnv(o.envFile)
	if err != nil {
		return Config{}, err
	}
	for suffix, keyPath := range envKeys {
		name := EnvPrefix + suffix
		if v, ok := o.lookupEnv(name); ok {
			setPath(raw, keyPath, v)
		} else if v, ok := dotenv[name]; ok {
			setPath(raw, keyPath, v)
		}
	}

	cfg := Default()
	if err := decode(raw, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return values, nil
}

func setPath(m map[string]any, path []string, v string) {
	for _, key := range path[:len(path)-1] {
		next, ok := m[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[key] = next
		}
		m = next
	}
	m[path[len(path)-1]] = v
}

func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Validate checks backend names and numeric ranges.
func (c Config) Validate() error {
	var errs []error
	switch c.History {
	case "memory", "loam", "redis":
	default:
		errs = append(errs, fmt.Errorf("config: unknown history backend %q (memory, loam, redis)", c.History))
	}
	switch c.Store {
	case "memory", "file", "redis":
	default:
		errs = append(errs, fmt.Errorf("config: unknown store %q (memory, file, redis)", c.Store))
	}
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("config: http port %d out of range", c.HTTP.Port))
	}
	if c.HistoryLimit < 0 {
		errs = append(errs, errors.New("config: history_limit must not be negative"))
	}
	if c.Redis.TTL < 0 {
		errs = append(errs, errors.New("config: redis ttl must not be negative"))
	}
	return errors.Join(errs...)
}

// UsesRedis reports whether any backend needs a redis connection.
func (c Config) UsesRedis() bool {
	return c.History == "redis" || c.Store == "redis"
}

// String renders the configuration as YAML with secrets masked.
func (c Config) String() string {
	mask := strings.Repeat("*", 8)
	if c.Redis.Password != "" {
		c.Redis.Password = mask
	}
	if c.StoreKey != "" {
		c.StoreKey = mask
	}
	if len(c.StoreOldKeys) > 0 {
		c.StoreOldKeys = []string{mask}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err.Error()
	}
	return string(data)
}
