package httpx

import (
	"net/http"

	"bookshelf/internal/platform/logger"
)

// Renderer writes a named HTML template with the given status.
type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, data any)
}

// ErrorPage is the data for error.html.
type ErrorPage struct {
	Status  int
	Message string
}

// ServerError logs err and renders a generic 500 page. Details never reach the client.
func ServerError(w http.ResponseWriter, r *http.Request, renderer Renderer, err error) {
	logger.FromContext(r.Context()).Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	renderer.Render(w, http.StatusInternalServerError, "error.html", ErrorPage{
		Status:  http.StatusInternalServerError,
		Message: "Internal server error",
	})
}
