package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/prospecta/prospecta-platform/internal/ai"
	"github.com/prospecta/prospecta-platform/internal/api/router"
	"github.com/prospecta/prospecta-platform/internal/baas"
	appconfig "github.com/prospecta/prospecta-platform/internal/config"
	"github.com/prospecta/prospecta-platform/internal/feedback"
	"github.com/prospecta/prospecta-platform/internal/identity"
	"github.com/prospecta/prospecta-platform/internal/notify"
	"github.com/prospecta/prospecta-platform/internal/observability/metrics"
	"github.com/prospecta/prospecta-platform/internal/prospects"
	"github.com/prospecta/prospecta-platform/internal/settings"
	"github.com/prospecta/prospecta-platform/pkg/logging"
)

func main() {
	// Missing .env is normal in production.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting prospecta API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"store_backend", cfg.StoreBackend,
	)

	ctx := context.Background()

	identityClient, err := identity.New(identity.Config{
		BaseURL: cfg.BaaSBaseURL,
		AnonKey: cfg.BaaSAnonKey,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to create identity client", "error", err)
		os.Exit(1)
	}

	prospectsRepo, feedbackRepo, cleanup, err := buildRepositories(ctx, cfg, identityClient, logger)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	redisOpts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()
	settingsStore := settings.NewStore(redisClient)

	aiMetrics := metrics.NewAIMetrics(nil)
	aiService := ai.NewService(ai.GeminiFactory{ModelID: cfg.GeminiModelID}, logger, aiMetrics)

	manager := prospects.NewManager(prospects.ManagerConfig{
		Repo:              prospectsRepo,
		AI:                aiService,
		Logger:            logger,
		Metrics:           aiMetrics,
		SuggestionTimeout: cfg.SuggestionTimeout,
		DiscoveryTimeout:  cfg.DiscoveryTimeout,
	})

	var sender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		sender = sg
	} else {
		sender = notify.NewStubEmailSender(logger)
	}
	feedbackService := feedback.NewService(feedback.ServiceConfig{
		Repo:          feedbackRepo,
		Sender:        sender,
		NotifyAddress: cfg.FeedbackNotifyAddress,
		Logger:        logger,
	})

	r := router.New(&router.Config{
		Logger:             logger,
		IdentityHandler:    identity.NewHandler(identityClient, logger),
		ProspectsHandler:   prospects.NewHandler(manager, aiService, settingsStore, cfg.GeminiAPIKey, logger),
		SettingsHandler:    settings.NewHandler(settingsStore, logger),
		FeedbackHandler:    feedback.NewHandler(feedbackService, logger),
		MetricsHandler:     promhttp.Handler(),
		SessionSecret:      cfg.SessionJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AuthRatePerSecond:  cfg.RateLimitPerSecond,
		AuthRateBurst:      cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 4 * time.Minute, // discovery calls wait on the AI provider
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// buildRepositories selects the storage backend for prospects and
// feedback: a direct Postgres pool, the hosted BaaS REST API, or memory
// for local development.
func buildRepositories(ctx context.Context, cfg *appconfig.Config, refresher baas.Refresher, logger *logging.Logger) (prospects.Repository, feedback.Repository, func(), error) {
	switch cfg.StoreBackend {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return prospects.NewPostgresRepository(pool), feedback.NewPostgresRepository(pool), pool.Close, nil

	case "baas":
		client, err := baas.New(baas.Config{
			BaseURL:   cfg.BaaSBaseURL,
			AnonKey:   cfg.BaaSAnonKey,
			Refresher: refresher,
			Logger:    logger,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return prospects.NewBaaSRepository(client), feedback.NewBaaSRepository(client), func() {}, nil

	default:
		logger.Warn("using in-memory storage, data is lost on restart")
		return prospects.NewInMemoryRepository(), feedback.NewInMemoryRepository(), func() {}, nil
	}
}
