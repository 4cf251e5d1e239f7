package api

import (
	"net/http"
	"path/filepath"
)

// SiteHandler serves the static front-end: index.html for the shell routes
// ("/" and "/p/{slug}", where the slug is read client-side) and the rest
// of staticDir under /static/.
type SiteHandler struct {
	dir string
}

// NewSiteHandler creates a SiteHandler rooted at staticDir.
func NewSiteHandler(staticDir string) *SiteHandler {
	return &SiteHandler{dir: staticDir}
}

// Shell serves index.html.
func (s *SiteHandler) Shell(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, filepath.Join(s.dir, "index.html"))
}

// Assets serves files below staticDir.
func (s *SiteHandler) Assets() http.Handler {
	return http.StripPrefix("/static/", http.FileServer(http.Dir(s.dir)))
}
