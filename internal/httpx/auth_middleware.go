package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"bookshelf/internal/platform/crypto"
	"bookshelf/internal/platform/logger"
	"bookshelf/internal/user"
)

// RevocationList reports session tokens that were logged out before expiry.
type RevocationList interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// UserLookup loads the account behind a verified session token.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

// AuthConfig configures identity resolution.
type AuthConfig struct {
	Secret      string
	CookieName  string
	Revocations RevocationList // optional
	Users       UserLookup     // optional
}

// Authenticate resolves the caller's identity from the session cookie or a
// Bearer header and stores it in the request context. It never rejects a
// request: anything it cannot verify is treated as anonymous. With Users set,
// the account is reloaded on every request and must still exist and be active.
func Authenticate(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r, cfg.CookieName)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			log := logger.FromContext(r.Context())
			claims, err := crypto.ParseToken(cfg.Secret, token)
			if err != nil {
				log.Debug("session token rejected", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if cfg.Revocations != nil {
				revoked, err := cfg.Revocations.IsRevoked(r.Context(), claims.ID)
				if err != nil {
					log.Warn("revocation check failed", "error", err)
					next.ServeHTTP(w, r)
					return
				}
				if revoked {
					next.ServeHTTP(w, r)
					return
				}
			}

			username := claims.Username
			if cfg.Users != nil {
				u, err := cfg.Users.GetByID(r.Context(), claims.Sub)
				if err != nil {
					if !errors.Is(err, user.ErrNotFound) {
						log.Warn("session user lookup failed", "error", err)
					}
					next.ServeHTTP(w, r)
					return
				}
				if !u.IsActive {
					log.Info("session of inactive user ignored", "user_id", u.ID)
					next.ServeHTTP(w, r)
					return
				}
				username = u.Username
			}

			ctx := ContextWithUser(r.Context(), claims.Sub, username, claims.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionToken(r *http.Request, cookieName string) string {
	if cookieName != "" {
		if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
			return c.Value
		}
	}
	authHeader := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// RequireLogin is the access gate: anonymous requests are redirected to
// loginURL with a next parameter and never reach next.
func RequireLogin(loginURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserIDFrom(r) == "" {
				http.Redirect(w, r, LoginRedirectURL(loginURL, r.URL.RequestURI()), http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginRedirectURL appends next to loginURL, keeping any query loginURL already has.
func LoginRedirectURL(loginURL, next string) string {
	u, err := url.Parse(loginURL)
	if err != nil {
		return loginURL
	}
	if next == "" {
		return u.String()
	}
	q := u.Query()
	q.Set("next", next)
	u.RawQuery = q.Encode()
	return u.String()
}

// SafeNext returns next if it is a local absolute path, otherwise fallback.
// It keeps the login form from redirecting users off-site.
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}
