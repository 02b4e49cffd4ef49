// Package config loads runtime configuration from the environment, with
// optional .env support for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates everything a deployment needs to wire the engine and its
// stores.
type Config struct {
	Auth     AuthConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Logger   LoggerConfig
	Cleanup  CleanupConfig
}

// AuthConfig holds the token-lifecycle inputs. TTLs are configured in
// milliseconds on the wire and carried as durations from here on.
type AuthConfig struct {
	SecretBase64    string
	SigningMethod   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// RedisConfig holds liveness-index connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// PostgresConfig holds session-store connection values.
type PostgresConfig struct {
	DSN      string
	MaxConns int32
	MinConns int32
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// CleanupConfig controls the expired-session sweep.
type CleanupConfig struct {
	Interval time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where sensible. A missing AUTH_JWT_SECRET is an error: there is no safe
// default for signing material.
func Load() (*Config, error) {
	_ = godotenv.Load()

	secret := os.Getenv("AUTH_JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET is required (base64-encoded signing secret)")
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		Auth: AuthConfig{
			SecretBase64:    secret,
			SigningMethod:   getEnv("AUTH_JWT_SIGNING_METHOD", "HS256"),
			AccessTokenTTL:  time.Duration(getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MS", 900000)) * time.Millisecond,
			RefreshTokenTTL: time.Duration(getEnvAsInt("AUTH_REFRESH_TOKEN_TTL_MS", 604800000)) * time.Millisecond,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Postgres: PostgresConfig{
			DSN:      os.Getenv("POSTGRES_DSN"),
			MaxConns: int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns: int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Cleanup: CleanupConfig{
			Interval: time.Duration(getEnvAsInt("CLEANUP_INTERVAL_SECONDS", 3600)) * time.Second,
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
