package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pet-registry/internal/adapters/auth/jwtauth"
	pg "pet-registry/internal/adapters/storage/postgres"
	"pet-registry/internal/config"
	"pet-registry/internal/platform/logger"
	"pet-registry/internal/router"
)

func main() {
	// Sin .env alcanza con las env del proceso.
	_ = godotenv.Load()

	cfg := config.Load()

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    "pet-registry",
	})

	if cfg.IsProduction() && cfg.JWTSecret == "" {
		log.Error("JWT_SECRET must be set in production")
		os.Exit(1)
	}

	opts := router.Options{Logger: log}

	// Con secret hay verifier real; sin secret queda el modo dev
	// (X-Debug-User-ID), solo fuera de producción.
	if cfg.JWTSecret != "" {
		v := jwtauth.New(cfg.JWTSecret, cfg.JWTExpiry)
		opts.AuthVerifier = v
		opts.TokenIssuer = v
	} else {
		opts.TokenIssuer = jwtauth.New("dev-secret-change-me", cfg.JWTExpiry)
	}

	if cfg.DatabaseDSN != "" {
		db, err := pg.Open(cfg.DatabaseDSN)
		if err != nil {
			log.Error("database connection failed", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
		opts.DB = db
	} else {
		log.Warn("no DB_DSN set, using in-memory repositories")
	}

	r := router.NewRouter(opts)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err.Error())
	}
	log.Info("server stopped")
}
