package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/quantix-mfg/qc-admin-api/api/swagger"
	"github.com/quantix-mfg/qc-admin-api/internal/mail"
	"github.com/quantix-mfg/qc-admin-api/internal/router"
	"github.com/quantix-mfg/qc-admin-api/pkg/cache"
	"github.com/quantix-mfg/qc-admin-api/pkg/config"
	"github.com/quantix-mfg/qc-admin-api/pkg/database"
	"github.com/quantix-mfg/qc-admin-api/pkg/logger"
)

// @title QC Admin API
// @version 1.0.0
// @description Administration backend for manufacturing quality control
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	secondary, err := database.NewSecondary(cfg.Secondary)
	if err != nil {
		logr.Sugar().Warnw("secondary database unavailable", "error", err)
	}
	if secondary != nil {
		defer secondary.Close()
	}

	rdb, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("redis connection failed", "error", err)
	}
	defer rdb.Close()

	var mailer mail.Transport
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPTransport(cfg.SMTP)
	}

	r, err := router.New(router.Options{
		Config:      cfg,
		Logger:      logr,
		DB:          db,
		SecondaryDB: secondary,
		Redis:       rdb,
		Mailer:      mailer,
	})
	if err != nil {
		logr.Sugar().Fatalw("router setup failed", "error", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Sugar().Errorw("shutdown incomplete", "error", err)
	}
}
