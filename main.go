package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/raine/produce-shelf-life/config"
	"github.com/raine/produce-shelf-life/internal/llm"
	"github.com/raine/produce-shelf-life/internal/session"
	"github.com/raine/produce-shelf-life/internal/storage"
	"github.com/raine/produce-shelf-life/internal/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	config.LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg)

	if missing := cfg.Validate(); len(missing) > 0 {
		log.Fatal().Str("predictor", cfg.Predictor).Msgf("missing required config: %s", strings.Join(missing, ", "))
	}

	// Create context that cancels on SIGINT or SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	predictor, err := llm.NewPredictor(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize predictor")
	}
	log.Info().Str("predictor", predictor.Name()).Msg("predictor initialized")

	// Wrap with cache
	if cfg.VisionCachePath != config.CacheOff {
		store, err := storage.NewSQLiteStore(cfg.VisionCachePath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize annotation cache")
		}
		defer store.Close()
		predictor = llm.NewCachedPredictor(predictor, store)
		log.Info().Str("dbPath", cfg.VisionCachePath).Msg("annotation caching enabled")
	}

	gin.SetMode(gin.ReleaseMode)
	registry := session.NewRegistry(cfg.SessionTTL)
	handler := web.NewHandler(registry, predictor, web.Options{
		InferenceTimeout: cfg.InferenceTimeout,
		MaxUploadBytes:   cfg.MaxUploadBytes(),
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           web.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", cfg.ListenAddr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("stopping http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("shutdown with error")
	} else {
		log.Info().Msg("shutdown complete")
	}
}

func setupLogging(cfg *config.Config) {
	if cfg.LogFormat == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
