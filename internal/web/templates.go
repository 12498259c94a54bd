package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"books_list.html",
	"book_detail.html",
	"login.html",
	"error.html",
}

// Templates renders the embedded HTML pages. Each page is parsed together
// with the base layout and the shared partials.
type Templates struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

func NewTemplates(logger *slog.Logger) (*Templates, error) {
	funcs := template.FuncMap{
		"bookListPath":   BookListPath,
		"bookDetailPath": BookDetailPath,
		"loginPath":      func() string { return LoginPath },
		"logoutPath":     func() string { return LogoutPath },
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/base.html",
			"templates/nav.html",
			"templates/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Templates{pages: pages, logger: logger}, nil
}

// Render executes the page into a buffer first so a template failure
// never leaves a half-written response.
func (t *Templates) Render(w http.ResponseWriter, status int, name string, data any) {
	page, ok := t.pages[name]
	if !ok {
		t.logger.Error("unknown template", "template", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := page.ExecuteTemplate(&buf, "base", data); err != nil {
		t.logger.Error("render template", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
