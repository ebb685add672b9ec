// Package config provides configuration management for the iiko bot.
// It loads a YAML document, applies environment overrides on top of it and
// writes the allow-list back into the same document when operators change it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither the --config flag nor IIKO_BOT_CONFIG is set.
const DefaultPath = "/etc/iiko-bot/config.yaml"

const (
	// StoreMemory keeps conversation state in process
	StoreMemory = "memory"
	// StoreRedis keeps conversation state in Redis
	StoreRedis = "redis"
)

// Config holds all configuration for the application.
type Config struct {
	// Log configures the zap logger
	Log LogConfig `yaml:"log"`
	// Bot configures the Telegram client
	Bot BotConfig `yaml:"bot"`
	// Access is the allow-list
	Access AccessConfig `yaml:"access"`
	// IIKO configures the iiko API clients
	IIKO IIKOConfig `yaml:"iiko"`
	// Store selects the conversation state store
	Store StoreConfig `yaml:"store"`
	// Metrics configures the OTLP exporter
	Metrics MetricsConfig `yaml:"metrics"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is a zap level name such as "info" or "debug"
	Level string `yaml:"level"`
}

// BotConfig configures the Telegram side.
type BotConfig struct {
	// Token is the Bot API token obtained from BotFather.
	// An empty token starts the bot in dry-run mode.
	Token string `yaml:"token"`
	// PollTimeout is the long polling timeout in seconds.
	PollTimeout int `yaml:"poll_timeout"`
	// Workers bounds how many updates are handled at once.
	Workers int `yaml:"workers"`
	// Debug enables Bot API request logging.
	Debug bool `yaml:"debug"`
}

// AccessConfig lists the chat handles allowed to use the bot.
// Accounts is rewritten at runtime; Admins is read-only.
type AccessConfig struct {
	// Accounts are handles allowed to use the bot
	Accounts []string `yaml:"accounts"`
	// Admins are handles allowed to edit Accounts
	Admins []string `yaml:"admins"`
}

// IIKOConfig holds the credentials shared by every server and the server list.
type IIKOConfig struct {
	// Login is the iiko API user
	Login string `yaml:"login"`
	// Pass is the plain password
	Pass string `yaml:"pass"`
	// TokenTTL is how long a session key is reused
	TokenTTL time.Duration `yaml:"token_ttl"`
	// RequestTimeout bounds one HTTP request
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// MaxRetries bounds retries of transient failures
	MaxRetries int `yaml:"max_retries"`
	// Servers lists the iiko servers; the first is the default
	Servers []ServerConfig `yaml:"servers"`
}

// ServerConfig is one iiko server entry.
type ServerConfig struct {
	// Name is the alias shown to operators
	Name string `yaml:"name"`
	// Address is "host[:port]" or a full base URL
	Address string `yaml:"address"`
}

// StoreConfig selects where per-chat conversation state lives.
type StoreConfig struct {
	// Type is StoreMemory or StoreRedis
	Type string `yaml:"type"`
	// TTL expires idle conversations
	TTL time.Duration `yaml:"ttl"`
	// Redis is used when Type is StoreRedis
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig is the Redis connection.
type RedisConfig struct {
	// Addr is "host:port"
	Addr string `yaml:"addr"`
	// Password is optional
	Password string `yaml:"password"`
	// DB is the database index
	DB int `yaml:"db"`
}

// MetricsConfig enables the OTLP exporter when Endpoint is set.
type MetricsConfig struct {
	// Endpoint is the OTLP gRPC collector address
	Endpoint string `yaml:"endpoint"`
	// Insecure disables TLS to the collector
	Insecure bool `yaml:"insecure"`
	// Interval is the export period
	Interval time.Duration `yaml:"interval"`
}

// Default returns the configuration used before the file and environment
// are applied.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Bot: BotConfig{
			PollTimeout: 60,
			Workers:     4,
		},
		IIKO: IIKOConfig{
			TokenTTL:       time.Hour,
			RequestTimeout: 2 * time.Second,
			MaxRetries:     3,
		},
		Store: StoreConfig{
			Type: StoreMemory,
			TTL:  24 * time.Hour,
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		Metrics: MetricsConfig{
			Insecure: true,
			Interval: 30 * time.Second,
		},
	}
}

// ResolvePath picks the config file location.
// It follows the following precedence:
// 1. The explicit path, usually the --config flag
// 2. IIKO_BOT_CONFIG environment variable
// 3. DefaultPath
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v := os.Getenv("IIKO_BOT_CONFIG"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads the YAML file at path over Default and applies environment
// overrides. A missing file is not an error.
//
// Environment overrides:
// - BOT_TOKEN, LOG_LEVEL
// - IIKO_LOGIN, IIKO_PASS, IIKO_REQUEST_TIMEOUT, IIKO_TOKEN_TTL
// - STORE_TYPE, REDIS_ADDR, REDIS_PASSWORD, REDIS_DB
// - METRICS_ENDPOINT
//
// Parameters:
//   - path: YAML file location
//
// Returns:
//   - Config: the merged configuration
//   - error: when the file or an override cannot be parsed
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the settings every command depends on.
//
// Returns:
//   - error: the first missing or invalid setting
func (c Config) Validate() error {
	if strings.TrimSpace(c.IIKO.Login) == "" {
		return errors.New("iiko.login is required")
	}
	if len(c.IIKO.Servers) == 0 {
		return errors.New("iiko.servers must not be empty")
	}
	seen := make(map[string]struct{}, len(c.IIKO.Servers))
	for i, server := range c.IIKO.Servers {
		if strings.TrimSpace(server.Name) == "" {
			return fmt.Errorf("iiko.servers[%d]: name is required", i)
		}
		if strings.TrimSpace(server.Address) == "" {
			return fmt.Errorf("iiko.servers[%d]: address is required", i)
		}
		if _, ok := seen[server.Name]; ok {
			return fmt.Errorf("iiko.servers: duplicate name %q", server.Name)
		}
		seen[server.Name] = struct{}{}
	}
	switch c.Store.Type {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("store.type: unknown store %q", c.Store.Type)
	}
	if c.Bot.Workers < 1 {
		return errors.New("bot.workers must be positive")
	}
	return nil
}

func loadFromYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("unmarshal config yaml: %w", err)
	}

	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.Bot.Token = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := os.Getenv("IIKO_LOGIN"); v != "" {
		cfg.IIKO.Login = v
	}
	if v := os.Getenv("IIKO_PASS"); v != "" {
		cfg.IIKO.Pass = v
	}
	if err := overrideDuration("IIKO_REQUEST_TIMEOUT", &cfg.IIKO.RequestTimeout); err != nil {
		return err
	}
	if err := overrideDuration("IIKO_TOKEN_TTL", &cfg.IIKO.TokenTTL); err != nil {
		return err
	}

	if v := os.Getenv("STORE_TYPE"); v != "" {
		cfg.Store.Type = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Store.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Store.Redis.Password = v
	}
	if err := overrideInt("REDIS_DB", &cfg.Store.Redis.DB); err != nil {
		return err
	}

	if v := os.Getenv("METRICS_ENDPOINT"); v != "" {
		cfg.Metrics.Endpoint = v
	}

	return nil
}

func overrideDuration(key string, target *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s duration: %w", key, err)
	}
	*target = d
	return nil
}

func overrideInt(key string, target *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s int: %w", key, err)
	}
	*target = n
	return nil
}
