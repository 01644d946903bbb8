// Package main is the entry point for the evetabi hot-or-not betting
// engine's bettor-facing API server.  It wires together the repositories,
// services, WebSocket hub, and background scheduler, then starts the HTTP
// server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver

	"github.com/evetabi/hotornot/internal/api"
	"github.com/evetabi/hotornot/internal/cache"
	"github.com/evetabi/hotornot/internal/config"
	"github.com/evetabi/hotornot/internal/infra"
	"github.com/evetabi/hotornot/internal/ledger"
	"github.com/evetabi/hotornot/internal/repository"
	"github.com/evetabi/hotornot/internal/scheduler"
	"github.com/evetabi/hotornot/internal/service"
	"github.com/evetabi/hotornot/internal/ws"
)

func main() {
	// ── 1. Config + logger ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	var logHandler slog.Handler
	if cfg.IsProd() {
		logHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	logger.Info("starting hotornot server", "env", cfg.Server.Env, "port", cfg.Server.Port)

	// ── 2. Database ───────────────────────────────────────────────────────────
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

	// ── 3. Redis + Kafka ──────────────────────────────────────────────────────
	redisClient, err := infra.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Error("redis connection failed", "err", err)
		os.Exit(1)
	}
	statusCache := cache.NewStatusCache(redisClient)

	kafkaProducer := infra.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Enabled, logger)
	defer kafkaProducer.Close()

	// ── 4. Repositories + ledger ──────────────────────────────────────────────
	postRepo := repository.NewPostRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)

	collaborator := ledger.New(ledgerRepo, kafkaProducer, logger)

	// ── 5. Services ───────────────────────────────────────────────────────────
	betSvc := service.NewBetService(postRepo, collaborator, statusCache, logger)
	tabulationSvc := service.NewTabulationService(postRepo, collaborator, statusCache, logger)

	// ── 6. WebSocket hub ──────────────────────────────────────────────────────
	var allowedOrigins []string
	if ori := os.Getenv("WS_ALLOWED_ORIGINS"); ori != "" {
		for _, o := range strings.Split(ori, ",") {
			allowedOrigins = append(allowedOrigins, strings.TrimSpace(o))
		}
	}
	hub := ws.NewHub(allowedOrigins, logger)

	betSvc.SetBroadcaster(hub)
	tabulationSvc.SetBroadcaster(hub)

	// ── 7. Root context + signal handling ─────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 8. Start WS hub ───────────────────────────────────────────────────────
	go hub.Run()
	logger.Info("websocket hub started")

	// ── 9. Scheduler ──────────────────────────────────────────────────────────
	sched := scheduler.NewScheduler(tabulationSvc, cfg, logger)
	sched.Start(ctx)

	// ── 10. HTTP router ───────────────────────────────────────────────────────
	router := api.SetupRouter(api.RouterDeps{
		BetSvc:   betSvc,
		PostRepo: postRepo,
		Hub:      hub,
		Cfg:      cfg,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// ── 11. Start server ──────────────────────────────────────────────────────
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
			stop() // trigger graceful shutdown
		}
	}()

	// ── 12. Graceful shutdown ─────────────────────────────────────────────────
	<-ctx.Done()
	logger.Info("shutdown signal received, draining connections…")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "err", err)
	}

	db.Close()
	logger.Info("server stopped cleanly")
}
