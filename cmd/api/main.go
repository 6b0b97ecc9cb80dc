// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Quill HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Run database migrations (idempotent).
//  4. Open the database (PostgreSQL or SQLite).
//  5. Connect to Redis when configured.
//  6. Start the mail dispatcher.
//  7. Wire domain services and HTTP handlers.
//  8. Start the janitor and the HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/quill/internal/api"
	"github.com/taibuivan/quill/internal/blog/post"
	"github.com/taibuivan/quill/internal/platform/config"
	"github.com/taibuivan/quill/internal/platform/constants"
	"github.com/taibuivan/quill/internal/platform/database"
	"github.com/taibuivan/quill/internal/platform/limiter"
	"github.com/taibuivan/quill/internal/platform/mailer"
	"github.com/taibuivan/quill/internal/platform/middleware"
	"github.com/taibuivan/quill/internal/platform/migration"
	redisstore "github.com/taibuivan/quill/internal/platform/redis"
	"github.com/taibuivan/quill/internal/users/admin"
	"github.com/taibuivan/quill/internal/users/auth"
	"github.com/taibuivan/quill/internal/users/janitor"
	"github.com/taibuivan/quill/internal/users/otp"
	"github.com/taibuivan/quill/internal/users/session"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "quill"))
	slog.SetDefault(log)

	log.Info("[Quill] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "quill"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for background workers, cancelled on shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Startup deadline so misconfiguration is caught quickly.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, log), "run migrations")

	// ── 4. Database ───────────────────────────────────────────────────────
	db, err := database.Open(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "open database")
	defer func() {
		log.Info("closing database")
		if cerr := db.Close(); cerr != nil {
			log.Error("database close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Redis (optional) ───────────────────────────────────────────────
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
	}

	authLimiter := func(scope string) limiter.Limiter {
		if rdb != nil {
			return limiter.NewFixedWindow(rdb, scope, cfg.Auth.RateLimit, cfg.Auth.RateWindow)
		}
		return limiter.PerWindow(rootCtx, cfg.Auth.RateLimit, cfg.Auth.RateWindow)
	}

	// ── 6. Mail ───────────────────────────────────────────────────────────
	var transport mailer.Transport = mailer.NewStream(os.Stdout, cfg.Mail.Sender)
	if cfg.Mail.Host != "" {
		transport = mailer.NewSMTP(mailer.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			UseSSL:   cfg.Mail.UseSSL,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			Sender:   cfg.Mail.Sender,
		})
	} else {
		log.Warn("smtp_not_configured, writing mail to stdout")
	}
	dispatcher := mailer.NewDispatcher(transport, cfg.Mail.QueueSize, log)

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	dependencies := api.HealthDependencies{CheckDatabase: db.Ping}
	if rdb != nil {
		dependencies.CheckCache = func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		}
	}
	liveness, readiness := api.NewHealthHandlers(dependencies, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	sessions := session.NewManager(session.NewRepository(db), session.Config{
		Secret:        []byte(cfg.Session.Secret),
		Iterations:    cfg.Session.Iterations,
		LifetimeHours: cfg.Session.LifetimeHours,
	})
	tokens := otp.NewManager(otp.NewRepository(db))
	users := auth.NewUserRepository(db)

	authService := auth.NewService(db, users, sessions, tokens,
		auth.NewNotifier(dispatcher, cfg.PublicURL),
		auth.Policy{
			MaxLoginAttempts:          cfg.Auth.MaxLoginAttempts,
			EmailVerificationLifetime: cfg.Auth.EmailVerificationLifetime,
			AccountLockDuration:       cfg.Auth.AccountLockDuration,
			PasswordResetLifetime:     cfg.Auth.PasswordResetLifetime,
		},
	)
	cookie := auth.CookieConfig{Secure: cfg.Session.CookieSecure}
	authHandler := auth.NewHandler(authService, cookie, auth.Throttles{
		Register: authLimiter("register"),
		Login:    authLimiter("login"),
		Unlock:   authLimiter("unlock"),
		Reset:    authLimiter("reset"),
	})

	adminHandler := admin.NewHandler(admin.NewService(db, users, sessions))
	postHandler := post.NewHandler(post.NewService(post.NewRepository(db), users))

	// ── 9. Janitor ────────────────────────────────────────────────────────
	go janitor.New(cfg.Session.PurgeInterval, log,
		janitor.Task{Name: "sessions", Purger: sessions},
		janitor.Task{Name: "otps", Purger: tokens},
	).Run(rootCtx)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	proxies, err := middleware.NewProxyTrust(cfg.TrustedProxies)
	must(log, err, "parse trusted proxies")

	server := api.NewServer(rootCtx, cfg, log, proxies, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Sessions:  auth.Sessions(sessions, users, cookie),
		Auth:      authHandler,
		Posts:     postHandler,
		Admin:     adminHandler,
	})

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	shutdownErr := server.Shutdown(shutdownTimeout)

	// Stop background workers, then flush queued mail.
	rootCancel()
	dispatcher.Close()
	log.Info("mail dispatcher stopped", slog.Uint64("dropped", dispatcher.Dropped()))

	if shutdownErr != nil {
		log.Error("shutdown error", slog.Any("error", shutdownErr))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
