package httpx

import (
	"crypto/subtle"
	"net/http"

	"bookshelf/internal/platform/logger"

	"github.com/google/uuid"
)

const (
	CSRFCookieName = "bookshelf_csrf"
	CSRFFieldName  = "csrf_token"
)

// CSRF protects form posts twice over: browsers' Sec-Fetch-Site/Origin
// headers must not mark the request cross-origin, and the csrf_token form
// field must match the csrf cookie (double submit).
type CSRF struct {
	secure  bool
	origins *http.CrossOriginProtection
}

func NewCSRF(secureCookie bool) *CSRF {
	return &CSRF{secure: secureCookie, origins: http.NewCrossOriginProtection()}
}

// Middleware must run after the request body size limit, since it parses
// the form of unsafe requests.
func (c *CSRF) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := c.origins.Check(r); err != nil {
			c.reject(w, r, "cross-origin request")
			return
		}

		token := ""
		if ck, err := r.Cookie(CSRFCookieName); err == nil && validCSRFToken(ck.Value) {
			token = ck.Value
		}

		if !safeMethod(r.Method) {
			sent := r.PostFormValue(CSRFFieldName)
			if token == "" || subtle.ConstantTimeCompare([]byte(sent), []byte(token)) != 1 {
				c.reject(w, r, "csrf token mismatch")
				return
			}
		}

		if token == "" {
			token = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     CSRFCookieName,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				Secure:   c.secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next.ServeHTTP(w, r.WithContext(ContextWithCSRFToken(r.Context(), token)))
	})
}

func (c *CSRF) reject(w http.ResponseWriter, r *http.Request, reason string) {
	logger.FromContext(r.Context()).Warn("request rejected", "reason", reason, "method", r.Method, "path", r.URL.Path)
	http.Error(w, "forbidden", http.StatusForbidden)
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func validCSRFToken(tok string) bool {
	if len(tok) < 32 || len(tok) > 128 {
		return false
	}
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-') {
			return false
		}
	}
	return true
}
