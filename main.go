// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/club-leaderboard/auth"
	"github.com/danielhkuo/club-leaderboard/cliparse"
	"github.com/danielhkuo/club-leaderboard/db"
	"github.com/danielhkuo/club-leaderboard/events"
	"github.com/danielhkuo/club-leaderboard/judge"
	"github.com/danielhkuo/club-leaderboard/lock"
	"github.com/danielhkuo/club-leaderboard/metrics"
	"github.com/danielhkuo/club-leaderboard/middleware"
	"github.com/danielhkuo/club-leaderboard/router"
	"github.com/danielhkuo/club-leaderboard/store"
	"github.com/danielhkuo/club-leaderboard/syncer"
)

func main() {
	if err := cliparse.LoadDotEnv(".env"); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := printToken(os.Args[2:]); err != nil {
			slog.Error("failed to issue token", "error", err)
			os.Exit(1)
		}
		return
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect and verify
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	client := judge.NewClient(judge.Config{
		BaseURL:         cfg.JudgeBaseURL,
		SessionCookie:   cfg.JudgeSessionCookie,
		CookieExpiresAt: cfg.JudgeCookieExpiresAt,
		Timeout:         cfg.JudgeTimeout,
	}, m)
	if !cfg.JudgeCookieExpiresAt.IsZero() {
		slog.Info("Judge credentials expire", "at", cfg.JudgeCookieExpiresAt.Format(time.RFC3339))
	}

	locker, closeLock, err := newLocker(cfg.RedisAddr)
	if err != nil {
		slog.Error("sync lock setup failed", "error", err)
		os.Exit(1)
	}
	defer closeLock()

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		slog.Info("Publishing leaderboard events", "brokers", strings.Join(cfg.KafkaBrokers, ","), "topic", cfg.KafkaTopic)
	}
	defer publisher.Close()

	s := syncer.New(client, store.New(dbConn, cfg.DatabaseType), locker, m, publisher)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SyncInterval > 0 {
		go s.RunEvery(ctx, cfg.SyncInterval)
	}

	// Create router
	mux := router.NewRouter(dbConn, cfg, s, reg)

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		// Wait for Ctrl-C signal
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// newLocker returns a Redis lock when addr is set, otherwise an in-process one.
// addr may be host:port or a redis:// URL.
func newLocker(addr string) (lock.Locker, func(), error) {
	if addr == "" {
		return lock.NewLocal(), func() {}, nil
	}

	opts := &redis.Options{Addr: addr}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	}
	opts.DialTimeout = 5 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	slog.Info("Using Redis sync lock", "addr", opts.Addr)
	return lock.NewRedis(rdb, "", 0), func() { rdb.Close() }, nil
}

// printToken handles "club-leaderboard token" and writes a trigger token to stdout
func printToken(args []string) error {
	cfg, err := cliparse.ParseTokenFlags(args)
	if err != nil {
		return err
	}

	token, err := auth.IssueTriggerToken(cfg.SyncSecret, cfg.Subject, cfg.TTL)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
