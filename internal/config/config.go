// Package config loads process configuration from the environment.
//
// An optional .env file is read first; real environment variables win.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the typed process configuration.
type Config struct {
	Port     int
	DBPath   string
	LogLevel slog.Level

	JWTSecret string
	TokenTTL  time.Duration

	// RedisURL enables the background queue. Empty disables it.
	RedisURL string

	OpenAIBaseURL    string
	OpenAIAPIKey     string
	SenpaiModel      string
	SenpaiMaxTokens  int
	SenpaiTimeout    time.Duration
	SenpaiSampleRate float64
	SenpaiMaxDelay   time.Duration
	SenpaiSweepSpec  string
	ArchiveSpec      string

	RateLimitRPS   float64
	RateLimitBurst int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8080)
	v.SetDefault("DB_PATH", "./data/crewchat.db")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("SENPAI_MODEL", "gpt-4o-mini")
	v.SetDefault("SENPAI_MAX_TOKENS", 300)
	v.SetDefault("SENPAI_TIMEOUT", "30s")
	v.SetDefault("SENPAI_SAMPLE_RATE", 0.3)
	v.SetDefault("SENPAI_MAX_DELAY", "10m")
	v.SetDefault("SENPAI_SWEEP_SPEC", "@every 4h")
	v.SetDefault("ARCHIVE_SPEC", "0 6 * * *")
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn(".env file could not be loaded", "error", err)
	}
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:             v.GetInt("PORT"),
		DBPath:           v.GetString("DB_PATH"),
		LogLevel:         ParseLevel(v.GetString("LOG_LEVEL")),
		JWTSecret:        v.GetString("JWT_SECRET"),
		TokenTTL:         v.GetDuration("TOKEN_TTL"),
		RedisURL:         v.GetString("REDIS_URL"),
		OpenAIBaseURL:    v.GetString("OPENAI_BASE_URL"),
		OpenAIAPIKey:     v.GetString("OPENAI_API_KEY"),
		SenpaiModel:      v.GetString("SENPAI_MODEL"),
		SenpaiMaxTokens:  v.GetInt("SENPAI_MAX_TOKENS"),
		SenpaiTimeout:    v.GetDuration("SENPAI_TIMEOUT"),
		SenpaiSampleRate: v.GetFloat64("SENPAI_SAMPLE_RATE"),
		SenpaiMaxDelay:   v.GetDuration("SENPAI_MAX_DELAY"),
		SenpaiSweepSpec:  v.GetString("SENPAI_SWEEP_SPEC"),
		ArchiveSpec:      v.GetString("ARCHIVE_SPEC"),
		RateLimitRPS:     v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:   v.GetInt("RATE_LIMIT_BURST"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT out of range: %d", c.Port)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("config: TOKEN_TTL must be positive")
	}
	if c.SenpaiSampleRate < 0 || c.SenpaiSampleRate > 1 {
		return fmt.Errorf("config: SENPAI_SAMPLE_RATE must be within [0, 1]")
	}
	return nil
}

// ParseLevel maps debug, warn and error to slog levels; anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
