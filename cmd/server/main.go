package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"cleanorder-api/internal/adapters/http/handlers"
	"cleanorder-api/internal/adapters/http/middleware"
	"cleanorder-api/internal/adapters/http/routes"
	"cleanorder-api/internal/adapters/persistence/cache"
	"cleanorder-api/internal/adapters/persistence/models"
	"cleanorder-api/internal/adapters/persistence/repositories"
	"cleanorder-api/internal/config"
	"cleanorder-api/internal/core/services"
	"cleanorder-api/internal/pkg/jwt"
	"cleanorder-api/internal/pkg/logger"
	"cleanorder-api/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	_ "cleanorder-api/docs" // Swagger docs
)

// @title CleanOrder API
// @version 1.0
// @description Service order API for cleaning crews

// @contact.name API Support

// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.IsDev())
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Connect to database
	db, err := config.ConnectDatabase(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer config.CloseDatabase()

	if err := models.AutoMigrate(db); err != nil {
		zlog.Fatal("failed to auto migrate", zap.Error(err))
	}
	zlog.Info("database migration completed")

	if err := config.NewSeeder(db, cfg, zlog).Run(); err != nil {
		zlog.Warn("failed to seed data", zap.Error(err))
	}

	// Revocation cache
	rdb := cache.NewRedis(cfg.Redis, zlog)
	defer rdb.Close()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	authority := jwt.NewAuthority(jwt.Options{
		Secret:           cfg.JWT.Secret,
		Issuer:           cfg.JWT.Issuer,
		Audience:         cfg.JWT.Audience,
		TTL:              cfg.JWT.AccessTokenTTL(),
		RefreshThreshold: cfg.JWT.RefreshThreshold(),
	})

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	revokedRepo := repositories.NewRevokedTokenRepository(db)

	// Initialize services
	revocationService := services.NewRevocationService(revokedRepo, cache.NewRevocationCache(rdb.Client), zlog.Named("revocation"))
	authService := services.NewAuthService(userRepo, authority, revocationService, collector, zlog.Named("auth"))
	orderService := services.NewOrderService(orderRepo, userRepo, collector, zlog.Named("orders"))
	userService := services.NewUserService(userRepo)

	// Purge expired revocation rows
	cronService, err := services.NewCronService(cfg.Cron.RevocationCleanupSpec, revocationService, zlog.Named("cron"))
	if err != nil {
		zlog.Fatal("invalid cron schedule", zap.Error(err))
	}
	cronService.Start()
	defer cronService.Stop()

	app := fiber.New(fiber.Config{
		AppName:      "CleanOrder API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	middleware.Setup(app, cfg, zlog)

	routes.Setup(app, routes.Handlers{
		Health: handlers.NewHealthHandler(cfg.AppMode, map[string]handlers.Check{
			"database": config.HealthCheck,
			"redis":    rdb.Ping,
		}),
		Auth:  handlers.NewAuthHandler(authService, cfg.Cookie),
		Order: handlers.NewOrderHandler(orderService),
		User:  handlers.NewUserHandler(userService),
	}, middleware.AuthConfig{
		Authority:   authority,
		Revocations: revocationService,
		Cookie:      cfg.Cookie,
		Metrics:     collector,
		Logger:      zlog.Named("auth"),
	}, metrics.Handler(registry))

	// Graceful shutdown
	go gracefulShutdown(app, zlog)

	zlog.Info("server starting", zap.String("port", cfg.Port), zap.String("mode", cfg.AppMode))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, zlog *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
	zlog.Info("server stopped")
}
