package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/portal/internal/pageservice"
)

// RouterConfig controls the routes NewRouter mounts.
type RouterConfig struct {
	// AuthEnabled requires Token as a Bearer token on /admin JSON routes.
	AuthEnabled bool
	Token       string
	// Events, if non-nil, is mounted at GET /events.
	Events http.Handler
}

// NewRouter creates the /api router. Page reads and events are public;
// everything under /admin is behind AuthMiddleware.
func NewRouter(svc *pageservice.Service, cfg RouterConfig) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	r.Get("/pages", h.ListPages)
	r.Get("/pages/{file}", h.GetPageDocument)

	r.Route("/admin", func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.AuthEnabled, cfg.Token))
		r.Post("/pages", h.CreatePage)
		r.Delete("/pages/{slug}", h.DeletePage)
		r.Post("/pages/{slug}/edit", h.EditPage)
	})

	if cfg.Events != nil {
		r.Get("/events", cfg.Events.ServeHTTP)
	}

	return r
}

// NewAdminRouter creates the router for the HTML admin form, to be mounted
// at /admin.
func NewAdminRouter(svc *pageservice.Service, logger *slog.Logger) chi.Router {
	h := NewAdminHandler(svc, logger)
	r := chi.NewRouter()
	r.Get("/", h.Show)
	r.Post("/", h.Submit)
	return r
}

// MountSite registers the static shell routes on r.
func MountSite(r chi.Router, staticDir string) {
	s := NewSiteHandler(staticDir)
	r.Get("/", s.Shell)
	r.Get("/p/{slug}", s.Shell)
	r.Handle("/static/*", s.Assets())
}
