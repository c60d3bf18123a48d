package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/extdeck/internal/apperr"
	"github.com/starford/extdeck/internal/assets"
)

// AssetHandler serves extension logos and other static files.
type AssetHandler struct {
	dir *assets.Dir
}

// NewAssetHandler creates a handler rooted at dir. A nil dir serves nothing.
func NewAssetHandler(dir *assets.Dir) *AssetHandler {
	return &AssetHandler{dir: dir}
}

// ServeFile handles GET /assets/*.
func (h *AssetHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	if h.dir == nil {
		http.NotFound(w, r)
		return
	}
	abs, err := h.dir.Resolve(chi.URLParam(r, "*"))
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		http.NotFound(w, r)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.ServeFile(w, r, abs)
}
