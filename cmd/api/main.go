package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/licimar/licimar-backend/api/routes"
	"github.com/licimar/licimar-backend/internal/auditlog"
	authsvc "github.com/licimar/licimar-backend/internal/auth"
	"github.com/licimar/licimar-backend/internal/billingrules"
	"github.com/licimar/licimar-backend/internal/catalog"
	"github.com/licimar/licimar-backend/internal/consignments"
	"github.com/licimar/licimar-backend/internal/debts"
	"github.com/licimar/licimar-backend/internal/orders"
	"github.com/licimar/licimar-backend/internal/parties"
	"github.com/licimar/licimar-backend/internal/reports"
	"github.com/licimar/licimar-backend/internal/users"
	"github.com/licimar/licimar-backend/pkg/auth/session"
	"github.com/licimar/licimar-backend/pkg/config"
	"github.com/licimar/licimar-backend/pkg/db"
	"github.com/licimar/licimar-backend/pkg/logger"
	"github.com/licimar/licimar-backend/pkg/metrics"
	"github.com/licimar/licimar-backend/pkg/migrate"
	"github.com/licimar/licimar-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
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

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	jobMetrics := metrics.NewJobMetrics(registry)

	gormDB := dbClient.DB()

	userRepo := users.NewRepository(gormDB)
	partyRepo := parties.NewRepository(gormDB)
	catalogRepo := catalog.NewRepository(gormDB)
	ruleRepo := billingrules.NewRepository(gormDB)
	orderRepo := orders.NewRepository(gormDB)
	debtRepo := debts.NewRepository(gormDB)
	consignmentRepo := consignments.NewRepository(gormDB)
	auditRepo := auditlog.NewRepository(gormDB)

	auditService, err := auditlog.NewService(auditRepo, cfg.Audit.RetentionDays, logg, jobMetrics)
	fatalOn(logg, "audit service", err)

	authService, err := authsvc.NewService(userRepo, sessionManager, cfg.JWT, auditService, logg)
	fatalOn(logg, "auth service", err)

	userService, err := users.NewService(userRepo, dbClient, cfg.Password)
	fatalOn(logg, "user service", err)

	partyService, err := parties.NewService(partyRepo, dbClient)
	fatalOn(logg, "party service", err)

	catalogService, err := catalog.NewService(catalogRepo, dbClient)
	fatalOn(logg, "catalog service", err)

	ruleService, err := billingrules.NewService(ruleRepo)
	fatalOn(logg, "billing rule service", err)

	orderService, err := orders.NewService(orderRepo, dbClient, partyRepo)
	fatalOn(logg, "order service", err)

	debtService, err := debts.NewService(debtRepo, dbClient)
	fatalOn(logg, "debt service", err)

	consignmentService, err := consignments.NewService(consignmentRepo, dbClient, partyRepo, catalogRepo)
	fatalOn(logg, "consignment service", err)

	reportService, err := reports.NewService(gormDB)
	fatalOn(logg, "report service", err)

	handler := routes.NewRouter(routes.Deps{
		Config:       cfg,
		Logger:       logg,
		DB:           dbClient,
		Redis:        redisClient,
		Sessions:     sessionManager,
		Registry:     registry,
		HTTP:         httpMetrics,
		Auth:         authService,
		Users:        userService,
		Parties:      partyService,
		Catalog:      catalogService,
		BillingRules: ruleService,
		Orders:       orderService,
		Debts:        debtService,
		Consignments: consignmentService,
		Reports:      reportService,
		Audit:        auditService,
	})

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
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	logg.Info(ctx, "api server stopped")
}

func fatalOn(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+resource, err)
	os.Exit(1)
}
