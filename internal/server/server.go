// Package server exposes card rendering, the image store and image search
// over HTTP.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	md2card "github.com/alnah/go-md2card"
	"github.com/alnah/go-md2card/internal/imagestore"
	"github.com/alnah/go-md2card/internal/search"
)

// Request body ceilings.
const (
	maxJSONBody   = 2 << 20
	maxUploadBody = imagestore.MaxImageSize + 1<<20
)

// Searcher runs image searches and downloads results.
// *search.Client implements it.
type Searcher interface {
	Search(ctx context.Context, keyword string) ([]search.Result, error)
	Download(ctx context.Context, imageURL string) ([]byte, error)
}

var _ Searcher = (*search.Client)(nil)

// Deps are the collaborators served by the router.
// Store and Searcher are optional; their routes answer 503 when nil.
type Deps struct {
	Renderer md2card.Renderer
	Session  *md2card.Session
	Store    imagestore.Store
	Searcher Searcher
	Logger   *slog.Logger
	Now      func() time.Time
}

// Handler serves the API routes.
type Handler struct {
	renderer md2card.Renderer
	session  *md2card.Session
	store    imagestore.Store
	searcher Searcher
	log      *slog.Logger
	now      func() time.Time
}

// NewHandler creates a Handler. A nil Session is created around Renderer.
func NewHandler(d Deps) *Handler {
	h := &Handler{
		renderer: d.Renderer,
		session:  d.Session,
		store:    d.Store,
		searcher: d.Searcher,
		log:      d.Logger,
		now:      d.Now,
	}
	if h.session == nil {
		h.session = md2card.NewSession(d.Renderer)
	}
	if h.log == nil {
		h.log = slog.Default()
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// NewRouter creates a chi router with every route mounted.
func NewRouter(d Deps) chi.Router {
	h := NewHandler(d)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(h.log))

	r.Get("/healthz", h.Health)
	r.Get("/", h.Preview)

	r.Route("/api", func(r chi.Router) {
		r.Post("/render", h.Render)
		r.Post("/export", h.Export)

		r.Get("/images", h.ListImages)
		r.Post("/images", h.UploadImage)
		r.Get("/images/{id}", h.GetImage)
		r.Delete("/images/{id}", h.DeleteImage)

		r.Get("/search", h.Search)
		r.Post("/search/import", h.ImportImage)
	})

	return r
}

// Session returns the preview session fed by /api/render.
func (h *Handler) Session() *md2card.Session {
	return h.session
}
