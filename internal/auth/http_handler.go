package auth

import (
	"errors"
	"net/http"
	"strings"

	"bookshelf/internal/httpx"
	"bookshelf/internal/platform/logger"
	"bookshelf/internal/platform/validator"
)

const invalidLoginMessage = "Please enter a correct username and password."

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

type loginForm struct {
	Username string `validate:"required,max=150"`
	Password string `validate:"required,max=128"`
	Next     string `validate:"max=2048"`
}

// LoginPage is the data for login.html.
type LoginPage struct {
	Username  string
	Next      string
	CSRFToken string
	Error     string
}

type HTTPHandler struct {
	service      *Service
	renderer     httpx.Renderer
	cookie       CookieConfig
	loginURL     string
	afterLoginTo string
	validate     *validator.Validator
}

func NewHTTPHandler(service *Service, renderer httpx.Renderer, cookie CookieConfig, loginURL, afterLoginTo string) *HTTPHandler {
	return &HTTPHandler{
		service:      service,
		renderer:     renderer,
		cookie:       cookie,
		loginURL:     loginURL,
		afterLoginTo: afterLoginTo,
		validate:     validator.New(),
	}
}

// LoginForm handles GET /accounts/login/
func (h *HTTPHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if httpx.UserIDFrom(r) != "" {
		http.Redirect(w, r, httpx.SafeNext(next, h.afterLoginTo), http.StatusFound)
		return
	}
	h.renderer.Render(w, http.StatusOK, "login.html", LoginPage{Next: next, CSRFToken: httpx.CSRFTokenFrom(r)})
}

// Login handles POST /accounts/login/
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.Render(w, http.StatusBadRequest, "login.html", LoginPage{
			CSRFToken: httpx.CSRFTokenFrom(r),
			Error:     "Invalid form submission.",
		})
		return
	}
	form := loginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
		Next:     r.PostFormValue("next"),
	}
	if err := h.validate.Struct(form); err != nil {
		h.loginFailed(w, r, form)
		return
	}

	sess, err := h.service.Login(r.Context(), form.Username, form.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		h.loginFailed(w, r, form)
		return
	}
	if err != nil {
		httpx.ServerError(w, r, h.renderer, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	logger.FromContext(r.Context()).Info("login succeeded", "username", form.Username)
	http.Redirect(w, r, httpx.SafeNext(form.Next, h.afterLoginTo), http.StatusFound)
}

func (h *HTTPHandler) loginFailed(w http.ResponseWriter, r *http.Request, form loginForm) {
	logger.FromContext(r.Context()).Info("login failed", "username", form.Username)
	h.renderer.Render(w, http.StatusUnauthorized, "login.html", LoginPage{
		Username:  form.Username,
		Next:      form.Next,
		CSRFToken: httpx.CSRFTokenFrom(r),
		Error:     invalidLoginMessage,
	})
}

// Logout handles POST /accounts/logout/
func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(h.cookie.Name); err == nil {
		if err := h.service.Logout(r.Context(), c.Value); err != nil {
			logger.FromContext(r.Context()).Warn("session revocation failed", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.loginURL, http.StatusFound)
}
