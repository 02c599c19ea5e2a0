package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/donutdot/internal/api"
	"github.com/dom/donutdot/internal/api/handlers"
	"github.com/dom/donutdot/internal/cache"
	"github.com/dom/donutdot/internal/config"
	"github.com/dom/donutdot/internal/notify"
	"github.com/dom/donutdot/internal/repository/postgres"
	"github.com/dom/donutdot/internal/service"
	"github.com/dom/donutdot/internal/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	log.Info().Msg("database connection established")

	rdb, err := cache.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	repos := postgres.NewRepositories(db)

	hub := websocket.NewHub()
	go hub.Run()

	notifiers := notify.Multi{hub}
	if cfg.TelegramToken != "" {
		notifiers = append(notify.Multi{notify.NewTelegram(cfg.TelegramAPIBase, cfg.TelegramToken)}, notifiers...)
	} else {
		log.Warn().Msg("no telegram token configured, notifications go to websockets only")
	}

	services := service.NewServices(service.Deps{
		Repos:      repos,
		Onboarding: cache.NewOnboardingStore(rdb, cfg.OnboardingTTL),
		Browse:     cache.NewBrowseTracker(rdb, cfg.BrowsePassTTL),
		Verify:     cache.NewVerificationStore(rdb, cfg.VerificationTTL),
		Notifier:   notifiers,
		Config:     cfg,
	})

	router := api.NewRouter(api.RouterDeps{
		Services: services,
		Hub:      hub,
		Limiter:  cache.NewRateLimiter(rdb, cfg.RateLimitWindow),
		Health: map[string]handlers.Pinger{
			"postgres": postgres.NewPinger(db),
			"redis":    rdb,
		},
		Config: cfg,
	})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	go services.Session.RunSweeper(ctx, cfg.SweepInterval)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("environment", cfg.Environment).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	hub.Stop()

	log.Info().Msg("server stopped")
}

func setupLogger(cfg *config.Config) {
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	switch cfg.LogLevel {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
