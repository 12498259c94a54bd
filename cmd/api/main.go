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

	"bookshelf/internal/auth"
	"bookshelf/internal/book"
	"bookshelf/internal/config"
	"bookshelf/internal/httpx"
	"bookshelf/internal/platform/database"
	"bookshelf/internal/platform/logger"
	"bookshelf/internal/session"
	"bookshelf/internal/user"
	"bookshelf/internal/web"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer store.Close()
	log.Info("database connection OK", "driver", cfg.DBDriver, "dsn", database.RedactDSN(cfg.DBDSN))

	if cfg.DBDriver == config.DriverSQLite {
		if err := database.Migrate(ctx, store.SQL, store.Dialect, log); err != nil {
			return err
		}
	}

	bookRepo, userRepo := repositories(store, cfg.DBTimeout)

	var (
		revocations httpx.RevocationList
		revoker     auth.Revoker
		readyChecks = []web.ReadyFunc{store.Ping}
	)
	if cfg.RedisAddr != "" {
		rl, err := session.NewRedisRevocationList(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rl.Close()
		revocations, revoker = rl, rl
		readyChecks = append(readyChecks, rl.Ping)
		log.Info("redis revocation list enabled", "addr", cfg.RedisAddr)
	} else {
		log.Warn("REDIS_ADDR not set, logout will not revoke issued sessions")
	}

	templates, err := web.NewTemplates(log)
	if err != nil {
		return err
	}

	userService := user.NewService(userRepo)
	authService := auth.NewService(cfg.JWTSecret, cfg.SessionTTL, userService, revoker)
	bookHandler := book.NewHTTPHandler(book.NewService(bookRepo), templates)
	authHandler := auth.NewHTTPHandler(authService, templates,
		auth.CookieConfig{Name: cfg.SessionCookie, Secure: cfg.CookieSecure},
		cfg.LoginURL, web.BookListPath())

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := web.NewRouter(web.RouterConfig{
		Logger: log,
		Books:  bookHandler,
		Auth:   authHandler,
		Authn: httpx.AuthConfig{
			Secret:      cfg.JWTSecret,
			CookieName:  cfg.SessionCookie,
			Revocations: revocations,
			Users:       userService,
		},
		LoginURL:     cfg.LoginURL,
		LoginLimiter: httpx.NewRateLimitMiddleware(ctx, cfg.LoginRateRPS, cfg.LoginRateBurst),
		Registry:     registry,
		Ready:        allReady(readyChecks...),
		EnableHSTS:   cfg.EnableHSTS,
		CookieSecure: cfg.CookieSecure,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", cfg.Addr, "env", cfg.Env)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func allReady(checks ...web.ReadyFunc) web.ReadyFunc {
	return func(ctx context.Context) error {
		for _, check := range checks {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

func repositories(store *database.Store, timeout time.Duration) (book.Repository, user.Repository) {
	if store.Pool != nil {
		return book.NewPostgresRepo(store.Pool, timeout), user.NewPostgresRepo(store.Pool, timeout)
	}
	return book.NewSQLiteRepo(store.SQL), user.NewSQLiteRepo(store.SQL)
}
