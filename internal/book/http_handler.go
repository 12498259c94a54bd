package book

import (
	"errors"
	"net/http"
	"strconv"

	"bookshelf/internal/httpx"
)

// ListPage is the data for books_list.html.
type ListPage struct {
	Username  string
	CSRFToken string
	Books     []Book
}

// DetailPage is the data for book_detail.html. Exactly one of Book and Error is set.
type DetailPage struct {
	Username  string
	CSRFToken string
	Book      *Book
	Error     string
}

type HTTPHandler struct {
	service  *Service
	renderer httpx.Renderer
}

func NewHTTPHandler(service *Service, renderer httpx.Renderer) *HTTPHandler {
	return &HTTPHandler{service: service, renderer: renderer}
}

// List handles GET /books/
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		h.unauthorized(w)
		return
	}

	books, err := h.service.List(r.Context(), userID)
	if err != nil {
		httpx.ServerError(w, r, h.renderer, err)
		return
	}

	h.renderer.Render(w, http.StatusOK, "books_list.html", ListPage{
		Username:  httpx.UsernameFrom(r),
		CSRFToken: httpx.CSRFTokenFrom(r),
		Books:     books,
	})
}

// Detail handles GET /books/{id}/
func (h *HTTPHandler) Detail(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		h.unauthorized(w)
		return
	}

	id, ok := parseID(r.PathValue("id"))
	if !ok {
		h.renderer.Render(w, http.StatusNotFound, "error.html", httpx.ErrorPage{
			Status:  http.StatusNotFound,
			Message: "Page not found",
		})
		return
	}

	page := DetailPage{Username: httpx.UsernameFrom(r), CSRFToken: httpx.CSRFTokenFrom(r)}
	b, err := h.service.GetOwned(r.Context(), userID, id)
	switch {
	case errors.Is(err, ErrNotFound):
		page.Error = DenialMessage
	case err != nil:
		httpx.ServerError(w, r, h.renderer, err)
		return
	default:
		page.Book = &b
	}

	h.renderer.Render(w, http.StatusOK, "book_detail.html", page)
}

// parseID accepts a positive decimal id made of digits only. Signs,
// whitespace and overflow are rejected.
func parseID(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *HTTPHandler) unauthorized(w http.ResponseWriter) {
	h.renderer.Render(w, http.StatusUnauthorized, "error.html", httpx.ErrorPage{
		Status:  http.StatusUnauthorized,
		Message: "Authentication required",
	})
}
