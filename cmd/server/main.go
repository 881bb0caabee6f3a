// Package main runs the sales tracking API server.
package main

import (
	"context"
	"database/sql"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	app "github.com/storyst/salestrack/internal/app"
	"github.com/storyst/salestrack/internal/app/httpapi"
	"github.com/storyst/salestrack/internal/app/metrics"
	"github.com/storyst/salestrack/internal/app/storage/postgres"
	"github.com/storyst/salestrack/internal/auth"
	"github.com/storyst/salestrack/internal/config"
	"github.com/storyst/salestrack/internal/logging"
	"github.com/storyst/salestrack/internal/middleware"
	"github.com/storyst/salestrack/internal/platform/migrations"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to configuration file")
	addr := flag.String("addr", "", "Listen address override")
	flag.Parse()

	// A missing .env is not an error; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.NewDefault("server").WithError(err).Error("load configuration")
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	log := logging.New("salestrack", cfg.Log.Level, cfg.Log.Format)
	codec := auth.NewTokenCodec([]byte(cfg.Auth.Secret), cfg.TokenTTL())

	stores := app.Stores{}
	if cfg.Database.DSN != "" {
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			log.WithError(err).Error("open database")
			os.Exit(1)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := migrations.Apply(ctx, db); err != nil {
			cancel()
			log.WithError(err).Error("apply migrations")
			os.Exit(1)
		}
		cancel()

		store := postgres.New(db)
		stores.Customers = store
		stores.Sales = store
	} else {
		log.Warn("database dsn not set; using in-memory store")
	}

	application, err := app.New(stores, codec, log)
	if err != nil {
		log.WithError(err).Error("build application")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := application.Start(ctx); err != nil {
		log.WithError(err).Error("start application")
		os.Exit(1)
	}
	defer application.Stop(context.Background())

	authMW := middleware.NewAuthMiddleware(codec, log, httpapi.PublicPaths)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)
	cors := middleware.NewCORSMiddleware(cfg.CORS.AllowedOrigins)

	api := httpapi.NewHandler(application, log)
	chain := cors.Handler(authMW.Handler(limiter.Handler(api)))

	root := http.NewServeMux()
	root.Handle("/metrics", metrics.Handler())
	root.Handle("/", chain)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           metrics.InstrumentHandler(root),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("server listening")
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("shutting down")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("server error")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("graceful shutdown failed")
	}
}
