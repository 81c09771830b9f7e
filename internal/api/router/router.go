// Package router wires HTTP routes for the API service.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/prospecta/prospecta-platform/internal/feedback"
	httpmiddleware "github.com/prospecta/prospecta-platform/internal/http/middleware"
	"github.com/prospecta/prospecta-platform/internal/identity"
	"github.com/prospecta/prospecta-platform/internal/prospects"
	"github.com/prospecta/prospecta-platform/internal/settings"
	"github.com/prospecta/prospecta-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger           *logging.Logger
	IdentityHandler  *identity.Handler
	ProspectsHandler *prospects.Handler
	SettingsHandler  *settings.Handler
	FeedbackHandler  *feedback.Handler
	MetricsHandler   http.Handler

	// SessionSecret verifies the bearer tokens on /api/v1 routes.
	SessionSecret      string
	CORSAllowedOrigins []string

	// Per-IP rate limit for the public auth endpoints. Zero disables it.
	AuthRatePerSecond float64
	AuthRateBurst     int
}

// New creates the chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints.
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.IdentityHandler != nil {
			public.Route("/auth", func(auth chi.Router) {
				if cfg.AuthRatePerSecond > 0 {
					auth.Use(httpmiddleware.RateLimit(cfg.AuthRatePerSecond, cfg.AuthRateBurst))
				}
				auth.Post("/signup", cfg.IdentityHandler.SignUp)
				auth.Post("/login", cfg.IdentityHandler.Login)
				auth.Post("/logout", cfg.IdentityHandler.Logout)
				auth.Post("/refresh", cfg.IdentityHandler.Refresh)
				auth.Post("/password-reset", cfg.IdentityHandler.RequestPasswordReset)
			})
		}
	})

	// Session-scoped API.
	r.Route("/api/v1", func(api chi.Router) {
		api.Use(httpmiddleware.SessionAuth(cfg.SessionSecret))

		if cfg.IdentityHandler != nil {
			api.Patch("/profile", cfg.IdentityHandler.UpdateProfile)
		}

		if cfg.ProspectsHandler != nil {
			api.Route("/prospects", func(p chi.Router) {
				p.Post("/search", cfg.ProspectsHandler.Search)
				p.Get("/", cfg.ProspectsHandler.List)
				p.Get("/last-found", cfg.ProspectsHandler.LastFound)
				p.Get("/export", cfg.ProspectsHandler.Export)
				p.Delete("/", cfg.ProspectsHandler.ClearAll)
				p.Route("/{id}", func(one chi.Router) {
					one.Patch("/", cfg.ProspectsHandler.Update)
					one.Delete("/", cfg.ProspectsHandler.Delete)
					one.Put("/status", cfg.ProspectsHandler.ChangeStatus)
					one.Post("/contacted", cfg.ProspectsHandler.MarkContacted)
					one.Post("/messages", cfg.ProspectsHandler.GenerateMessages)
					one.Post("/interaction-analysis", cfg.ProspectsHandler.AnalyzeInteraction)
					one.Post("/suggest-action", cfg.ProspectsHandler.SuggestAction)
				})
			})
		}

		if cfg.SettingsHandler != nil {
			api.Route("/settings", func(s chi.Router) {
				s.Get("/", cfg.SettingsHandler.Get)
				s.Patch("/", cfg.SettingsHandler.Update)
				s.Get("/feedback-prompt", cfg.SettingsHandler.FeedbackPrompt)
				s.Post("/feedback-prompt", cfg.SettingsHandler.MarkFeedbackPrompted)
			})
		}

		if cfg.FeedbackHandler != nil {
			api.Post("/feedback", cfg.FeedbackHandler.Submit)
		}
	})

	return r
}
