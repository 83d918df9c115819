package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresConn(t *testing.T) {
	t.Setenv("POSTGRES_CONN", "")
	_, err := Load()
	require.ErrorIs(t, err, ErrMissingConn)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_CONN", "postgres://localhost/greenhome")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:8080", cfg.ServerAddress)
	require.Equal(t, 7*24*time.Hour, cfg.SessionMaxAge)
	require.Equal(t, "uploads", cfg.UploadDir)
	require.True(t, cfg.EnableTestLogin)
	require.Empty(t, cfg.RedisAddr)
	require.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	require.Equal(t, int64(20<<20), cfg.MaxUploadBytes)
	require.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("POSTGRES_CONN", "postgres://db/greenhome")
	t.Setenv("SERVER_ADDRESS", ":9000")
	t.Setenv("SESSION_MAX_AGE", "2h")
	t.Setenv("ENABLE_TEST_LOGIN", "false")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.ServerAddress)
	require.Equal(t, 2*time.Hour, cfg.SessionMaxAge)
	require.False(t, cfg.EnableTestLogin)
	require.Equal(t, "redis:6379", cfg.RedisAddr)
	require.Equal(t, 3, cfg.RedisDB)
	require.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadFromFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "greenhome.env")
	require.NoError(t, os.WriteFile(file, []byte("POSTGRES_CONN=postgres://file/db\nUPLOAD_DIR=/var/greenhome\n"), 0o600))
	t.Setenv("POSTGRES_CONN", "")
	t.Setenv("GREENHOME_CONFIG", file)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "postgres://file/db", cfg.PostgresConn)
	require.Equal(t, "/var/greenhome", cfg.UploadDir)
}
