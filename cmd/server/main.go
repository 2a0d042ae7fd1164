package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farmcloud/internal/config"
	"farmcloud/internal/database"
	"farmcloud/internal/handlers"
	"farmcloud/internal/logger"
	"farmcloud/internal/middleware"
	"farmcloud/internal/migrations"
	"farmcloud/internal/observability"
	"farmcloud/internal/redis"
	"farmcloud/internal/repository"
	"farmcloud/internal/services"
	"farmcloud/pkg/whatsapp"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Initialize(cfg.DatabaseURL, database.Options{Debug: cfg.DBDebug, Logger: log})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := migrations.RunMigrations(context.Background(), db, cfg, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	repos := repository.New(db)

	checks := map[string]handlers.HealthCheck{"database": repos.Ping}

	// Redis is optional. The interfaces below stay nil without it.
	var (
		settingsCache services.SettingsCache
		limiter       middleware.Limiter
		sequence      services.SequenceAllocator = services.DatabaseSequence{}
	)
	if cfg.RedisURL != "" {
		redisClient, err := redis.Initialize(cfg.RedisURL)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()

		settingsCache = redisClient
		limiter = redisClient
		checks["redis"] = redisClient.Ping
		if cfg.OrderSequenceBackend == config.SequenceBackendRedis {
			sequence = services.RedisSequence{Counter: redisClient}
		}
	}

	var sender services.MessageSender
	if cfg.WhatsAppEnabled() {
		sender = whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppUsername, cfg.WhatsAppPassword, cfg.WhatsAppPath)
	} else {
		log.Info("whatsapp gateway not configured, order alerts disabled")
	}

	settings := services.NewSettingsService(repos.Settings, settingsCache, cfg.SettingsCacheTTL, log)
	svc := handlers.Services{
		Customers:  services.NewCustomerService(repos),
		Inventory:  services.NewInventoryService(repos),
		Orders:     services.NewOrderService(repos, settings, sequence, services.NewNotificationService(sender, log), log),
		Deliveries: services.NewDeliveryService(repos),
		Settings:   settings,
		Users:      services.NewUserService(repos.Users),
	}

	metrics := observability.NewMetrics()
	router := handlers.NewRouter(handlers.RouterConfig{
		Handler: handlers.NewHandler(svc, metrics, log),
		Metrics: metrics,
		Log:     log,
		Secure: middleware.SecureOptions{
			AllowedHosts: cfg.AllowedHosts,
			Production:   cfg.IsProduction(),
		},
		CORSOrigins: cfg.CORSAllowedOrigins,
		Limiter:     limiter,
		RateLimit:   cfg.RateLimitWrites,
		RateWindow:  cfg.RateLimitWindow,
		Checks:      checks,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.ServerPort), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
}
