// main.go
//
// Entry point for the matchstick server.
// Loads config, opens SQLite, picks the session store and rate limiter
// (Redis when REDIS_ADDR is set, in-memory otherwise), wires the AI client
// when an API key is configured, and serves until SIGINT/SIGTERM.

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/matchstick/internal/catalog"
	"github.com/robalobadob/matchstick/internal/config"
	"github.com/robalobadob/matchstick/internal/db"
	"github.com/robalobadob/matchstick/internal/httpserver"
	"github.com/robalobadob/matchstick/internal/llm"
	"github.com/robalobadob/matchstick/internal/puzzle"
	"github.com/robalobadob/matchstick/internal/ratelimit"
	"github.com/robalobadob/matchstick/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)
	if !cfg.Production {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if err := catalog.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load puzzle catalog")
	}

	sqlDB, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open db")
	}
	defer sqlDB.Close()
	if err := db.Migrate(sqlDB); err != nil {
		log.Fatal().Err(err).Msg("migrate db")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		st  store.Store
		lim ratelimit.Limiter
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping")
		}
		st = store.NewRedisStore(rdb, "", cfg.SessionTTL)
		lim = ratelimit.NewRedis(rdb, "", cfg.RateLimit, cfg.RateWindow)
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis sessions")
	} else {
		st = store.NewMemoryStore(cfg.SessionTTL)
		lim = ratelimit.NewMemory(cfg.RateLimit, cfg.RateWindow)
	}

	var (
		gen    puzzle.Generator
		hinter puzzle.Hinter
	)
	if cfg.LLMAPIKey != "" {
		c := llm.NewClient(&http.Client{Timeout: cfg.LLMTimeout}, llm.Options{
			APIKey:         cfg.LLMAPIKey,
			BaseURL:        cfg.LLMBaseURL,
			Model:          cfg.LLMModel,
			FallbackModels: cfg.LLMFallbackModels,
			Language:       cfg.HintLanguage,
		}, log.Logger)
		gen, hinter = c, c
	} else {
		log.Warn().Msg("LLM_API_KEY not set, serving the fallback puzzle")
	}
	prov := puzzle.NewProvider(gen, hinter, log.Logger)

	srv := httpserver.New(cfg, st, sqlDB, prov, lim)
	log.Info().Str("port", cfg.Port).Msg("starting matchstick server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}
