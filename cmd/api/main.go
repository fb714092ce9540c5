package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/orlie/affiliatehub-backend/api/controllers"
	"github.com/orlie/affiliatehub-backend/api/routes"
	"github.com/orlie/affiliatehub-backend/internal/accounts"
	"github.com/orlie/affiliatehub-backend/internal/analytics"
	claimsvc "github.com/orlie/affiliatehub-backend/internal/claims"
	productsvc "github.com/orlie/affiliatehub-backend/internal/products"
	"github.com/orlie/affiliatehub-backend/pkg/auth/session"
	"github.com/orlie/affiliatehub-backend/pkg/config"
	"github.com/orlie/affiliatehub-backend/pkg/db"
	"github.com/orlie/affiliatehub-backend/pkg/logger"
	"github.com/orlie/affiliatehub-backend/pkg/metrics"
	"github.com/orlie/affiliatehub-backend/pkg/migrate"
	"github.com/orlie/affiliatehub-backend/pkg/outbox"
	"github.com/orlie/affiliatehub-backend/pkg/qr"
	"github.com/orlie/affiliatehub-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	accountsRepo := accounts.NewRepository(dbClient.DB())
	productsRepo := productsvc.NewRepository(dbClient.DB())
	claimsRepo := claimsvc.NewRepository(dbClient.DB())

	accountsService, err := accounts.NewService(accounts.ServiceParams{
		Repo:           accountsRepo,
		Sessions:       sessionManager,
		Resets:         redisClient,
		Tx:             dbClient,
		Events:         outboxService,
		Topics:         cfg.PubSub,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create accounts service", err)
		os.Exit(1)
	}

	productsService, err := productsvc.NewService(productsvc.ServiceParams{
		Repo:      productsRepo,
		Tx:        dbClient,
		Events:    outboxService,
		Topics:    cfg.PubSub,
		ImportCfg: cfg.Import,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	claimsService, err := claimsvc.NewService(claimsvc.ServiceParams{
		Repo:     claimsRepo,
		Users:    accountsRepo,
		Products: productsRepo,
		Tx:       dbClient,
		Events:   outboxService,
		QR:       qr.NewGenerator(cfg.QR.ImageSize),
		Topics:   cfg.PubSub,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create claims service", err)
		os.Exit(1)
	}

	analyticsService, err := analytics.NewService(claimsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			Redis:       redisClient,
			Session:     sessionManager,
			Accounts:    accountsService,
			Products:    productsService,
			Claims:      claimsService,
			Analytics:   analyticsService,
			HTTPMetrics: httpMetrics,
			Gatherer:    registry,
			ReadyChecks: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
			},
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
