package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers the HTML status page, the OAuth entry points and
// the embedded static assets on the provided mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Static assets (embedded via go:embed).
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Page routes.
	mux.HandleFunc("GET /{$}", h.Status)
	mux.HandleFunc("GET /auth/slack", h.Authorize)
	mux.HandleFunc("GET /auth/slack/callback", h.Callback)
}
