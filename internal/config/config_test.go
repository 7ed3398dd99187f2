package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	for _, key := range []string{"ENV", "DB_DRIVER", "STORAGE_BACKEND", "TRACK_DEFAULT_STATUS", "STRICT_GENRE_SELECTION", "ANONYMOUS_UPLOADS", "AUDIO_URL_TTL_MINUTES"} {
		t.Setenv(key, "")
	}

	cfg := New()
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "local", cfg.StorageBackend)
	assert.Equal(t, "pending", cfg.TrackDefaultStatus)
	assert.True(t, cfg.StrictGenreSelection)
	assert.False(t, cfg.AnonymousUploads)
	assert.Equal(t, 15*time.Minute, cfg.AudioURLTTL)
	require.NoError(t, cfg.Validate())
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("STRICT_GENRE_SELECTION", "false")
	t.Setenv("ANONYMOUS_UPLOADS", "1")
	t.Setenv("RATE_LIMIT_DURATION", "30s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg := New()
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.False(t, cfg.StrictGenreSelection)
	assert.True(t, cfg.AnonymousUploads)
	assert.Equal(t, 30*time.Second, cfg.RateLimitDuration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("JWT_ACCESS_TOKEN_DURATION", "soon")

	cfg := New()
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, time.Hour, cfg.JWTAccessTokenDuration)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := New()
	cfg.DBDriver = "mysql"
	cfg.StorageBackend = "ftp"
	cfg.TrackDefaultStatus = "hidden"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")
	assert.Contains(t, err.Error(), "STORAGE_BACKEND")
	assert.Contains(t, err.Error(), "TRACK_DEFAULT_STATUS")
}

func TestValidateProductionSecret(t *testing.T) {
	cfg := New()
	cfg.Env = "production"
	cfg.JWTSecret = "your-secret-key"
	assert.Error(t, cfg.Validate())

	cfg.JWTSecret = "a-real-secret"
	assert.NoError(t, cfg.Validate())
}
