// Package site serves the static voting page.
package site

import (
	"context"
	"net/http"
)

// Register serves dir at "/" when dir is set. Without a directory nothing is
// mounted and unknown paths fall through to the mux's 404.
func Register(_ context.Context, mux *http.ServeMux, dir string) {
	if mux == nil {
		panic("mux is nil")
	}
	if dir == "" {
		return
	}
	mux.Handle("/", NewRootHandler(dir))
}

// RootHandler serves files from a directory on disk.
type RootHandler struct {
	files http.Handler
}

// NewRootHandler creates a new root handler for dir.
func NewRootHandler(dir string) *RootHandler {
	return &RootHandler{files: http.FileServer(http.Dir(dir))}
}

// ServeHTTP handles GET and HEAD requests for static assets.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	h.files.ServeHTTP(w, r)
}
