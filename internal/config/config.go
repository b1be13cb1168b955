// internal/config/config.go
//
// Environment configuration for the matchstick server.
// Load reads .env (if present) through godotenv, then the process
// environment, applying defaults and validating numbers and durations.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	Port     string
	LogLevel zerolog.Level
	DBPath   string

	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	ClientOrigin   string
	Production     bool
	DailySalt      string

	LLMAPIKey         string
	LLMBaseURL        string
	LLMModel          string
	LLMFallbackModels []string
	LLMTimeout        time.Duration
	HintLanguage      string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	RateLimit  int
	RateWindow time.Duration
}

// Load reads .env from the working directory and then the environment.
// A missing .env is not an error.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	c := Config{
		Port:              envOr("PORT", "5175"),
		DBPath:            envOr("DB_PATH", "./data/app.db"),
		JWTSecret:         envOr("JWT_SECRET", "dev_secret_change_me"),
		CookieName:        envOr("COOKIE_NAME", "matchstick_token"),
		ClientOrigin:      envOr("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:        os.Getenv("NODE_ENV") == "production",
		DailySalt:         envOr("DAILY_SALT", "local_dev_salt"),
		LLMAPIKey:         os.Getenv("LLM_API_KEY"),
		LLMBaseURL:        envOr("LLM_BASE_URL", "https://openrouter.ai/api/v1"),
		LLMModel:          envOr("LLM_MODEL", "google/gemini-2.5-flash"),
		LLMFallbackModels: parseList(os.Getenv("LLM_FALLBACK_MODELS")),
		HintLanguage:      envOr("HINT_LANGUAGE", "en"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(envOr("LOG_LEVEL", "info")))
	if err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	c.LogLevel = lvl

	ints := []struct {
		key  string
		def  int
		min  int
		dest *int
	}{
		{"JWT_EXPIRES_DAYS", 14, 1, &c.JWTExpiresDays},
		{"REDIS_DB", 0, 0, &c.RedisDB},
		{"RATE_LIMIT", 30, 1, &c.RateLimit},
	}
	for _, f := range ints {
		if *f.dest, err = envInt(f.key, f.def, f.min); err != nil {
			return Config{}, err
		}
	}

	durations := []struct {
		key  string
		def  time.Duration
		dest *time.Duration
	}{
		{"LLM_TIMEOUT", 10 * time.Second, &c.LLMTimeout},
		{"SESSION_TTL", 24 * time.Hour, &c.SessionTTL},
		{"RATE_WINDOW", time.Minute, &c.RateWindow},
	}
	for _, f := range durations {
		if *f.dest, err = envDuration(f.key, f.def); err != nil {
			return Config{}, err
		}
	}

	if c.Production && c.JWTSecret == "dev_secret_change_me" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set when NODE_ENV=production")
	}
	return c, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, def, min int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if n < min {
		return 0, fmt.Errorf("invalid %s %q: must be >= %d", key, v, min)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, v)
	}
	return d, nil
}

func parseList(s string) []string {
	var out []string
	for _, m := range strings.Split(s, ",") {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}
