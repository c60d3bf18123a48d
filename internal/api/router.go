package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/extdeck/internal/session"
)

// NewRouter creates a chi router with the JSON API routes.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(sess *session.Session, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(sess)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/extensions", h.ListExtensions)
	r.Put("/filter", h.SetFilter)
	r.Post("/extensions/{index}/toggle", h.ToggleExtension)
	r.Delete("/extensions/{index}", h.RemoveExtension)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

// NewPageRouter creates a chi router with the HTML pages and asset files.
// live enables the page reload script and should only be set when the
// events endpoint is reachable without a token.
func NewPageRouter(sess *session.Session, assetHandler *AssetHandler, live bool) chi.Router {
	p := NewPageHandler(sess, live)

	r := chi.NewRouter()
	r.Get("/", p.Index)
	r.Post("/filter", p.Filter)
	r.Post("/extensions/{index}/toggle", p.Toggle)
	r.Post("/extensions/{index}/remove", p.Remove)

	if assetHandler != nil {
		r.Get("/assets/*", assetHandler.ServeFile)
	}

	return r
}
