// Package site serves the embedded browser dashboard.
package site

import (
	"context"
	"net/http"
)

// Register attaches the dashboard routes to mux: /dashboard for the page and
// / for its assets.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	files := http.FileServerFS(assets())
	mux.Handle("/", files)
	mux.HandleFunc("/dashboard", NewRootHandler().HandleRoot)
}

// RootHandler serves the dashboard page.
type RootHandler struct{}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// HandleRoot handles GET /dashboard requests.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	http.ServeFileFS(w, r, assets(), "index.html")
}
