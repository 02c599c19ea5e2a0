package api

import (
	"net/http"
	"time"

	"github.com/dom/donutdot/internal/api/handlers"
	"github.com/dom/donutdot/internal/api/middleware"
	"github.com/dom/donutdot/internal/config"
	"github.com/dom/donutdot/internal/service"
	"github.com/dom/donutdot/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps are the collaborators the HTTP surface needs beyond services.
type RouterDeps struct {
	Services *service.Services
	Hub      *websocket.Hub
	Limiter  middleware.Limiter
	Health   map[string]handlers.Pinger
	Config   *config.Config
}

func NewRouter(deps RouterDeps) http.Handler {
	services := deps.Services
	cfg := deps.Config

	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS())

	healthHandler := handlers.NewHealthHandler(deps.Health)
	r.Get("/health", healthHandler.Check)
	r.Handle("/metrics", promhttp.Handler())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	onboardingHandler := handlers.NewOnboardingHandler(services.Onboarding)
	profileHandler := handlers.NewProfileHandler(services.Profile, services.Candidate)
	candidateHandler := handlers.NewCandidateHandler(services.Candidate)
	matchHandler := handlers.NewMatchHandler(services.Match)
	sessionHandler := handlers.NewSessionHandler(services.Session)
	passHandler := handlers.NewPassHandler(services.Pass, services.Payment)
	paymentHandler := handlers.NewPaymentHandler(services.Payment)
	reportHandler := handlers.NewReportHandler(services.Moderation)
	adminHandler := handlers.NewAdminHandler(services.Moderation)
	verificationHandler := handlers.NewVerificationHandler(services.Moderation)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, services.Auth)

	r.Route("/api/v1", func(r chi.Router) {
		// Machine callers authenticate with shared secrets.
		r.With(middleware.RequireSecret(middleware.HeaderChannelSecret, cfg.ChannelSecret)).
			Post("/auth/token", authHandler.IssueToken)
		r.With(middleware.RequireSecret(middleware.HeaderChannelSecret, cfg.ChannelSecret)).
			Post("/verification/tokens", verificationHandler.Issue)
		r.With(middleware.RequireSecret(middleware.HeaderPaymentSecret, cfg.PaymentSecret)).
			Post("/payments/events", paymentHandler.HandleEvent)
		r.With(middleware.RequireSecret(middleware.HeaderCronSecret, cfg.CronSecret)).
			Post("/cron/expire-sessions", sessionHandler.Sweep)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(services.Auth))
			r.Get("/reports", adminHandler.ListReports)
			r.Post("/reports/{id}/resolve", adminHandler.ResolveReport)
			r.Post("/users/{userId}/ban", adminHandler.Ban)
			r.Post("/users/{userId}/unban", adminHandler.Unban)
			r.Post("/users/{userId}/verify", adminHandler.Verify)
			r.Post("/users/{userId}/grant-pass", adminHandler.GrantPass)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))
			r.Use(chiMiddleware.Timeout(30 * time.Second))
			if deps.Limiter != nil {
				r.Use(middleware.RateLimit(deps.Limiter))
			}

			r.Route("/onboarding", func(r chi.Router) {
				r.Post("/start", onboardingHandler.Start)
				r.Post("/reply", onboardingHandler.Reply)
				r.Post("/edit", onboardingHandler.BeginEdit)
			})

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", profileHandler.GetProfile)
				r.Get("/preferences", profileHandler.GetPreferences)
				r.Put("/preferences", profileHandler.UpdatePreferences)
			})

			r.Get("/candidates/next", candidateHandler.Next)
			r.Post("/likes", matchHandler.Like)
			r.Post("/skips", matchHandler.Skip)

			r.Route("/matches", func(r chi.Router) {
				r.Get("/", matchHandler.List)
				r.Post("/{id}/session", matchHandler.StartSession)
			})

			r.Get("/sessions/active", sessionHandler.Active)

			r.Route("/passes", func(r chi.Router) {
				r.Get("/", passHandler.List)
				r.Post("/reference", passHandler.NewReference)
			})

			r.Post("/reports", reportHandler.Create)
		})

		r.Get("/verify-email", verificationHandler.Confirm)

		// WebSocket endpoint
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
