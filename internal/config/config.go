package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LANTERN_"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config is the runtime configuration of the lantern binary.
type Config struct {
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Remote  RemoteConfig  `mapstructure:"remote" yaml:"remote"`
	Journey JourneyConfig `mapstructure:"journey" yaml:"journey"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	HTTP    HTTPConfig    `mapstructure:"http" yaml:"http"`
}

// StoreConfig selects and configures the snapshot substrate.
type StoreConfig struct {
	Backend       string      `mapstructure:"backend" yaml:"backend"`
	Key           string      `mapstructure:"key" yaml:"key"`
	Dir           string      `mapstructure:"dir" yaml:"dir"`                       // file backend
	SQLitePath    string      `mapstructure:"sqlite_path" yaml:"sqlite_path"`       // sqlite backend
	EncryptionKey string      `mapstructure:"encryption_key" yaml:"encryption_key"` // base64, 32 bytes; SENSITIVE
	Redis         RedisConfig `mapstructure:"redis" yaml:"redis"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Lock     bool          `mapstructure:"lock" yaml:"lock"` // serialize writers across processes
}

// RemoteConfig points at the lantern service. An empty BaseURL runs offline.
type RemoteConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	APIKey  string        `mapstructure:"api_key" yaml:"api_key"` // SENSITIVE
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// JourneyConfig tunes the controller.
type JourneyConfig struct {
	Resume        string `mapstructure:"resume" yaml:"resume"` // "writing" or "done"
	ShareBaseURL  string `mapstructure:"share_base_url" yaml:"share_base_url"`
	MaxWishLength int    `mapstructure:"max_wish_length" yaml:"max_wish_length"`
}

// LogConfig configures the slog logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// HTTPConfig configures the host API server.
type HTTPConfig struct {
	Port        int `mapstructure:"port" yaml:"port"`
	MaxSessions int `mapstructure:"max_sessions" yaml:"max_sessions"` // least recently used sessions are closed beyond this
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Backend:    BackendFile,
			Key:        "appState",
			Dir:        ".lantern/state",
			SQLitePath: ".lantern/lantern.db",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "lantern:journey:",
			},
		},
		Remote: RemoteConfig{
			Timeout: 10 * time.Second,
		},
		Journey: JourneyConfig{
			Resume:        "writing",
			MaxWishLength: 150,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		HTTP: HTTPConfig{
			Port:        8080,
			MaxSessions: 1000,
		},
	}
}

// keys lists every dotted setting that can be overridden from the environment.
// store.redis.addr is read from LANTERN_STORE_REDIS_ADDR.
var keys = []string{
	"store.backend", "store.key", "store.dir", "store.sqlite_path", "store.encryption_key",
	"store.redis.addr", "store.redis.password", "store.redis.db", "store.redis.prefix",
	"store.redis.ttl", "store.redis.lock",
	"remote.base_url", "remote.api_key", "remote.timeout",
	"journey.resume", "journey.share_base_url", "journey.max_wish_length",
	"log.level", "log.format",
	"http.port", "http.max_sessions",
}

// EnvName returns the environment variable that overrides a dotted key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty or missing), then LANTERN_* variables.
func Load(path string) (Config, error) {
	raw := map[string]any{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &raw); err != nil {
				return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
			if raw == nil {
				raw = map[string]any{}
			}
		}
	}

	for _, key := range keys {
		if v, ok := os.LookupEnv(EnvName(key)); ok {
			set(raw, strings.Split(key, "."), v)
		}
	}

	cfg := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerations and ranges.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendSQLite:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Key == "" {
		return errors.New("store key cannot be empty")
	}
	switch c.Journey.Resume {
	case "writing", "done":
	default:
		return fmt.Errorf("unknown resume policy %q (want writing or done)", c.Journey.Resume)
	}
	if c.Journey.MaxWishLength <= 0 {
		return fmt.Errorf("max wish length must be positive, got %d", c.Journey.MaxWishLength)
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port %d", c.HTTP.Port)
	}
	if c.HTTP.MaxSessions < 1 {
		return fmt.Errorf("http.max_sessions must be positive, got %d", c.HTTP.MaxSessions)
	}
	return nil
}

// set stores value at path, creating nested maps as needed.
func set(m map[string]any, path []string, value any) {
	for _, part := range path[:len(path)-1] {
		next, ok := m[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[part] = next
		}
		m = next
	}
	m[path[len(path)-1]] = value
}
