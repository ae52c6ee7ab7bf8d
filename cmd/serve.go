package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"property-service/internal/handler"
	mid "property-service/internal/middleware"
	"property-service/internal/repository"
	"property-service/internal/service"
	"property-service/pkg/cache"
	"property-service/pkg/database"
	"property-service/pkg/jwtutil"
	"property-service/pkg/tracing"
	"property-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "run database migrations before serving")
	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("Starting property-service",
		zap.String("environment", cfg.Server.Env),
		zap.String("port", cfg.Server.Port))

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", cfg.Metrics.Prefix))

	shutdownTracing, err := tracing.Init(ctx, cfg.ServiceName, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("Failed to flush traces", zap.Error(err))
		}
	}()

	// Initialize database
	db, err := database.InitDB(&cfg.DB, log)
	if err != nil {
		return err
	}
	if migrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Info("Database migrations completed")
	}

	catalogCache := cache.NewCatalogCache(cfg.Cache)
	defer catalogCache.Close()

	properties := service.NewPropertyService(
		repository.NewPropertyRepository(db),
		repository.NewUserRepository(db),
		repository.NewCatalogRepository(db, catalogCache),
	)
	jwt := jwtutil.NewJWTUtil(&cfg.JWT)

	// Initialize Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	// Middleware, order matters
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware(cfg.ServiceName))
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Routes
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", handler.NewHealthHandler(db).HealthCheck)

	handler.NewPropertyHandler(properties).Register(e.Group("/api/properties"), mid.AuthMiddleware(jwt))

	// Start server
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return e.Shutdown(shutdownCtx)
}
