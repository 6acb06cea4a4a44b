package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/AnshRaj112/salvioris-journal/internal/auth"
	"github.com/AnshRaj112/salvioris-journal/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// viewData is what every page template receives. Page holds the
// page-specific values.
type viewData struct {
	CurrentUser *models.User
	Flashes     []string
	Page        interface{}
}

// Renderer executes page templates inside the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page template together with the layout.
func NewRenderer() (*Renderer, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range names {
		base := path.Base(name)
		if base == "layout.html" {
			continue
		}
		t, err := template.New(base).Option("missingkey=zero").ParseFS(templateFS, "templates/layout.html", name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", base, err)
		}
		r.pages[strings.TrimSuffix(base, ".html")] = t
	}
	return r, nil
}

// render writes page with status. The body is buffered so a template
// failure still produces a clean 500.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data interface{}) {
	t, ok := h.views.pages[page]
	if !ok {
		h.serverError(w, r, fmt.Errorf("unknown page %q", page))
		return
	}

	vd := viewData{
		CurrentUser: auth.CurrentUser(r.Context()),
		Flashes:     h.popFlashes(w, r),
		Page:        data,
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", vd); err != nil {
		h.serverError(w, r, fmt.Errorf("render %s: %w", page, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

type errorPage struct {
	Title   string
	Message string
}

// NotFound renders the 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "error", errorPage{
		Title:   "Not found",
		Message: "The page you were looking for doesn't exist.",
	})
}

// serverError logs err and sends a generic failure page. It does not go
// through the template set, which may be the thing that failed.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error(r.Context(), "request failed", "error", err, "path", r.URL.Path)
	http.Error(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
}

// Static serves the embedded stylesheet.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
