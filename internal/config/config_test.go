package config

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BANK_JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendRedis, cfg.StorageBackend)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "admin123", cfg.AdminPassword)
	assert.True(t, cfg.EventsEnabled)
	assert.Equal(t, 5*time.Second, cfg.RedisDialTimeout)
	assert.Equal(t, 10, cfg.RedisPoolSize)
}

func TestRedisOptions(t *testing.T) {
	t.Setenv("BANK_JWT_SECRET", "s3cret")
	t.Setenv("BANK_REDIS_ADDR", "cache:6380")
	t.Setenv("BANK_REDIS_DB", "3")
	t.Setenv("BANK_REDIS_READ_TIMEOUT", "500ms")
	t.Setenv("BANK_REDIS_POOL_SIZE", "25")

	cfg, err := Load()
	require.NoError(t, err)

	opts := cfg.RedisOptions()
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, 500*time.Millisecond, opts.ReadTimeout)
	assert.Equal(t, 3*time.Second, opts.WriteTimeout)
	assert.Equal(t, 25, opts.PoolSize)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BANK_JWT_SECRET", "s3cret")
	t.Setenv("BANK_STORAGE_BACKEND", "Postgres")
	t.Setenv("BANK_DATABASE_URL", "postgres://bank@localhost/bank?sslmode=disable")
	t.Setenv("BANK_TOKEN_TTL", "2h")
	t.Setenv("BANK_LOGIN_RATE_LIMIT", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.StorageBackend)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Zero(t, cfg.LoginRateLimit)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("BANK_JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port: "8080", StorageBackend: BackendRedis, RedisAddr: "localhost:6379",
			JWTSecret: "s3cret", TokenTTL: time.Hour,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown backend", mutate: func(c *Config) { c.StorageBackend = "mongo" }, wantErr: true},
		{name: "postgres without dsn", mutate: func(c *Config) { c.StorageBackend = BackendPostgres }, wantErr: true},
		{name: "blank secret", mutate: func(c *Config) { c.JWTSecret = "   " }, wantErr: true},
		{name: "zero ttl", mutate: func(c *Config) { c.TokenTTL = 0 }, wantErr: true},
		{name: "negative burst", mutate: func(c *Config) { c.LoginBurst = -1 }, wantErr: true},
		{name: "negative redis timeout", mutate: func(c *Config) { c.RedisReadTimeout = -time.Second }, wantErr: true},
		{name: "admin password too long", mutate: func(c *Config) { c.AdminPassword = strings.Repeat("a", 73) }, wantErr: true},
	}

	for _, tt := range tests {
		cfg := valid()
		tt.mutate(&cfg)
		err := cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("[%s] wantErr %v got %v", tt.name, tt.wantErr, err)
		}
	}
}

func TestNewLogger(t *testing.T) {
	cfg := Config{LogLevel: "debug", LogFormat: "json"}
	logger, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	_, err = (&Config{LogLevel: "loud"}).NewLogger()
	assert.Error(t, err)

	_, err = (&Config{LogLevel: "info", LogFormat: "xml"}).NewLogger()
	assert.Error(t, err)
}
