// Package web assembles the HTML application: templates, routes and the
// middleware chain around them.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"bookshelf/internal/auth"
	"bookshelf/internal/book"
	"bookshelf/internal/httpx"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxFormBytes = 64 << 10

// ReadyFunc reports whether the backing store can serve requests.
type ReadyFunc func(ctx context.Context) error

type RouterConfig struct {
	Logger       *slog.Logger
	Books        *book.HTTPHandler
	Auth         *auth.HTTPHandler
	Authn        httpx.AuthConfig
	LoginURL     string
	LoginLimiter *httpx.RateLimitMiddleware
	Registry     *prometheus.Registry
	Ready        ReadyFunc
	EnableHSTS   bool
	CookieSecure bool
}

// NewRouter wires every route behind the shared middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	metrics := httpx.NewMetrics(cfg.Registry)
	requireLogin := httpx.RequireLogin(cfg.LoginURL)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if cfg.Ready != nil {
			if err := cfg.Ready(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))

	mux.Handle("GET /{$}", http.RedirectHandler(BookListPath(), http.StatusFound))

	mux.Handle("GET /books/{$}", metrics.Instrument("book_list",
		requireLogin(http.HandlerFunc(cfg.Books.List))))
	mux.Handle("GET /books/{id}/{$}", metrics.Instrument("book_detail",
		requireLogin(http.HandlerFunc(cfg.Books.Detail))))

	mux.Handle("GET "+LoginPath+"{$}", metrics.Instrument("login",
		http.HandlerFunc(cfg.Auth.LoginForm)))
	mux.Handle("POST "+LoginPath+"{$}", metrics.Instrument("login",
		cfg.LoginLimiter.Middleware(http.HandlerFunc(cfg.Auth.Login))))
	mux.Handle("POST "+LogoutPath+"{$}", metrics.Instrument("logout",
		http.HandlerFunc(cfg.Auth.Logout)))

	return httpx.Chain(mux,
		httpx.RequestIDMiddleware(cfg.Logger),
		httpx.Authenticate(cfg.Authn),
		httpx.AccessLogMiddleware,
		httpx.RecoveryMiddleware,
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.RequestSizeLimitMiddleware(maxFormBytes),
		httpx.NewCSRF(cfg.CookieSecure).Middleware,
	)
}
