// Package config loads runtime settings from BANK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	sharedredis "github.com/eaglebank/ledger-service/shared/redis"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Port           string `envconfig:"PORT" default:"8080"`
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"redis"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	RedisDialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	RedisReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	RedisWriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
	RedisPoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`

	DatabaseURL string `envconfig:"DATABASE_URL"`

	JWTSecret     string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL      time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	AdminPassword string        `envconfig:"ADMIN_PASSWORD" default:"admin123"`
	SecureCookie  bool          `envconfig:"SECURE_COOKIE" default:"false"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// LoginRateLimit is requests per second per client IP. Zero disables it.
	LoginRateLimit float64 `envconfig:"LOGIN_RATE_LIMIT" default:"1"`
	LoginBurst     int     `envconfig:"LOGIN_BURST" default:"5"`

	EventsEnabled bool  `envconfig:"EVENTS_ENABLED" default:"true"`
	EventsMaxLen  int64 `envconfig:"EVENTS_MAX_LEN" default:"10000"`
}

// Load processes the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("bank", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	c.Port = strings.TrimSpace(c.Port)

	switch c.StorageBackend {
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("BANK_REDIS_ADDR is required for the redis backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("BANK_DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}

	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("BANK_JWT_SECRET is required")
	}
	if len(c.AdminPassword) > 72 {
		return errors.New("BANK_ADMIN_PASSWORD must not exceed 72 bytes")
	}
	if c.TokenTTL <= 0 {
		return errors.New("BANK_TOKEN_TTL must be positive")
	}
	if c.RedisDialTimeout < 0 || c.RedisReadTimeout < 0 || c.RedisWriteTimeout < 0 || c.RedisPoolSize < 0 {
		return errors.New("redis timeouts and pool size must not be negative")
	}
	if c.LoginRateLimit < 0 || c.LoginBurst < 0 {
		return errors.New("login rate limit settings must not be negative")
	}
	if c.Port == "" {
		c.Port = "8080"
	}
	return nil
}

func (c *Config) RedisOptions() sharedredis.Options {
	return sharedredis.Options{
		Addr:         c.RedisAddr,
		Password:     c.RedisPassword,
		DB:           c.RedisDB,
		DialTimeout:  c.RedisDialTimeout,
		ReadTimeout:  c.RedisReadTimeout,
		WriteTimeout: c.RedisWriteTimeout,
		PoolSize:     c.RedisPoolSize,
	}
}

// NewLogger builds the process logger from LogLevel and LogFormat.
func (c *Config) NewLogger() (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	logger.SetLevel(level)

	switch strings.ToLower(c.LogFormat) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	return logger, nil
}
