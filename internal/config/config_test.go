package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_DRIVER", "SCHOOL_DB_PATH", "SESSION_TTL", "SESSION_SECRET", "QUIZ_DEFAULT_SECONDS", "QUIZ_TIMER_ENABLED", "LOG_MODE"} {
		t.Setenv(key, "")
	}
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "file", cfg.Store.Driver)
	assert.Equal(t, "/tmp/lastday-school-db.json", cfg.Store.Path)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 45, cfg.Quiz.DefaultSeconds)
	assert.True(t, cfg.Quiz.TimerEnabled)
	assert.True(t, cfg.UsesDefaultSecret())
	assert.False(t, cfg.Log.IsProd())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SCHOOL_DB_PATH", "/data/school.json")
	t.Setenv("SESSION_TTL", "3600")
	t.Setenv("PDF_RENDER_TIMEOUT", "5s")
	t.Setenv("PDF_RENDER_DPI", "-3")
	t.Setenv("QUIZ_TIMER_ENABLED", "no")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("LOG_MODE", "prod")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "/data/school.json", cfg.Store.Path)
	assert.Equal(t, time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 5*time.Second, cfg.PDF.RenderTimeout)
	assert.Equal(t, 110.0, cfg.PDF.DPI)
	assert.False(t, cfg.Quiz.TimerEnabled)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.True(t, cfg.Log.IsProd())
}
