// Package config reads server settings from the environment.
package config

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrMissingConn = errors.New("POSTGRES_CONN is required")

// DefaultSessionSecret is only meant for local development.
const DefaultSessionSecret = "greenhome-dev-secret-change-me"

type Config struct {
	PostgresConn    string
	ServerAddress   string
	SessionSecret   string
	SessionMaxAge   time.Duration
	SessionSecure   bool
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	UploadDir       string
	EnableTestLogin bool
	LogLevel        slog.Level
	MaxBodyBytes    int64
	MaxUploadBytes  int64
}

func defaults(v *viper.Viper) {
	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("SESSION_SECRET", DefaultSessionSecret)
	v.SetDefault("SESSION_MAX_AGE", 7*24*time.Hour)
	v.SetDefault("SESSION_SECURE", false)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("ENABLE_TEST_LOGIN", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_BODY_BYTES", 1<<20)
	v.SetDefault("MAX_UPLOAD_BYTES", 20<<20)
	v.SetDefault("POSTGRES_CONN", "")
}

// Load reads the configuration. Values come from environment variables
// and, when present, from a .env style file named by GREENHOME_CONFIG.
func Load() (*Config, error) {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	if file := v.GetString("GREENHOME_CONFIG"); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		PostgresConn:    v.GetString("POSTGRES_CONN"),
		ServerAddress:   v.GetString("SERVER_ADDRESS"),
		SessionSecret:   v.GetString("SESSION_SECRET"),
		SessionMaxAge:   v.GetDuration("SESSION_MAX_AGE"),
		SessionSecure:   v.GetBool("SESSION_SECURE"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		RedisDB:         v.GetInt("REDIS_DB"),
		UploadDir:       v.GetString("UPLOAD_DIR"),
		EnableTestLogin: v.GetBool("ENABLE_TEST_LOGIN"),
		LogLevel:        parseLevel(v.GetString("LOG_LEVEL")),
		MaxBodyBytes:    v.GetInt64("MAX_BODY_BYTES"),
		MaxUploadBytes:  v.GetInt64("MAX_UPLOAD_BYTES"),
	}
	if cfg.PostgresConn == "" {
		return nil, ErrMissingConn
	}
	return cfg, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
