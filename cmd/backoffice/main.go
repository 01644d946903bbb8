// Package main is the entry point for the evetabi back-office admin server.
// Runs on its own port and exposes staff-only endpoints protected by an IP
// allowlist and role-scoped JWT auth.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/evetabi/hotornot/internal/backoffice"
	"github.com/evetabi/hotornot/internal/cache"
	"github.com/evetabi/hotornot/internal/config"
	"github.com/evetabi/hotornot/internal/infra"
	"github.com/evetabi/hotornot/internal/ledger"
	"github.com/evetabi/hotornot/internal/repository"
	"github.com/evetabi/hotornot/internal/service"
)

func main() {
	// ── Config + logger ───────────────────────────────────────────────────────
	cfg := config.MustLoad()

	var logHandler slog.Handler
	if cfg.IsProd() {
		logHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	logger.Info("starting hotornot backoffice server",
		"env", cfg.Server.Env, "port", cfg.Server.BackofficePort)

	// ── Database ──────────────────────────────────────────────────────────────
	db, err := sqlx.Connect("postgres", cfg.DB.DSN)
	if err != nil {
		logger.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	if err = db.Ping(); err != nil {
		logger.Error("database ping failed", "err", err)
		os.Exit(1)
	}
	logger.Info("database connected")

	// ── Redis + Kafka (needed by the ledger collaborator the manual-tabulate
	//    route exercises) ──────────────────────────────────────────────────────
	redisClient, err := infra.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Error("redis connection failed", "err", err)
		os.Exit(1)
	}
	statusCache := cache.NewStatusCache(redisClient)

	kafkaProducer := infra.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Enabled, logger)
	defer kafkaProducer.Close()

	// ── Repositories ──────────────────────────────────────────────────────────
	adminRepo := repository.NewAdminRepository(db)
	postRepo := repository.NewPostRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)

	// ── Services ──────────────────────────────────────────────────────────────
	collaborator := ledger.New(ledgerRepo, kafkaProducer, logger)
	tabulationSvc := service.NewTabulationService(postRepo, collaborator, statusCache, logger)
	adminAuthSvc := service.NewAdminAuthService(adminRepo, cfg)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Router ────────────────────────────────────────────────────────────────
	router := backoffice.SetupBackofficeRouter(backoffice.BackofficeDeps{
		AuthSvc:       adminAuthSvc,
		AdminRepo:     adminRepo,
		PostRepo:      postRepo,
		LedgerRepo:    ledgerRepo,
		TabulationSvc: tabulationSvc,
		Hub:           nil, // backoffice does not directly serve WS
		Cfg:           cfg,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.BackofficePort,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// ── Start ─────────────────────────────────────────────────────────────────
	go func() {
		logger.Info("backoffice http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("backoffice server error", "err", err)
			stop()
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("backoffice shutdown error", "err", err)
	}

	db.Close()
	logger.Info("backoffice server stopped cleanly")
}
