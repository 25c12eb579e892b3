package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(overrides map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{"JWT_SECRET": "s"}))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "gpt-4o-mini", cfg.SenpaiModel)
	assert.Equal(t, 300, cfg.SenpaiMaxTokens)
	assert.Equal(t, 0.3, cfg.SenpaiSampleRate)
	assert.Equal(t, 10*time.Minute, cfg.SenpaiMaxDelay)
	assert.Equal(t, "@every 4h", cfg.SenpaiSweepSpec)
	assert.Equal(t, "0 6 * * *", cfg.ArchiveSpec)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestFromViper_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
	}{
		{"missing secret", map[string]any{}},
		{"bad port", map[string]any{"JWT_SECRET": "s", "PORT": 70000}},
		{"bad sample rate", map[string]any{"JWT_SECRET": "s", "SENPAI_SAMPLE_RATE": 1.5}},
		{"zero ttl", map[string]any{"JWT_SECRET": "s", "TOKEN_TTL": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromViper(newViper(tt.overrides))
			assert.Error(t, err)
		})
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
