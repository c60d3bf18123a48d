package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/starford/extdeck/internal/models"
	"github.com/starford/extdeck/internal/session"
)

// Handler holds JSON API route handlers.
type Handler struct {
	sess *session.Session
}

// NewHandler creates a new Handler.
func NewHandler(sess *session.Session) *Handler {
	return &Handler{sess: sess}
}

// ListExtensions handles GET /api/extensions.
// A filter query parameter selects the filter before listing.
//
//	@Summary	List visible extensions
//	@Tags		extensions
//	@Produce	json
//	@Param		filter	query		string	false	"Filter mode"	Enums(all, active, inactive)
//	@Success	200		{object}	ExtensionListResponse
//	@Security	BearerAuth
//	@Router		/extensions [get]
func (h *Handler) ListExtensions(w http.ResponseWriter, r *http.Request) {
	var (
		snap session.Snapshot
		err  error
	)
	if raw := r.URL.Query().Get("filter"); raw != "" {
		mode, parseErr := models.ParseFilter(raw)
		if parseErr != nil {
			writeError(w, "list extensions", parseErr)
			return
		}
		snap, err = h.sess.SelectAndSnapshot(mode)
	} else {
		snap, err = h.sess.Snapshot()
	}
	if err != nil {
		writeError(w, "list extensions", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(snap))
}

// SetFilter handles PUT /api/filter.
//
//	@Summary	Change the filter
//	@Tags		extensions
//	@Accept		json
//	@Produce	json
//	@Param		body	body		SetFilterRequest	true	"Filter mode"
//	@Success	200		{object}	SetFilterResponse
//	@Failure	400		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/filter [put]
func (h *Handler) SetFilter(w http.ResponseWriter, r *http.Request) {
	var req SetFilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON"))
		return
	}
	mode, err := models.ParseFilter(req.Mode)
	if err != nil {
		writeError(w, "set filter", err)
		return
	}
	changed, err := h.sess.Select(mode)
	if err != nil {
		writeError(w, "set filter", err)
		return
	}
	writeJSON(w, http.StatusOK, SetFilterResponse{Filter: mode.String(), Changed: changed})
}

// ToggleExtension handles POST /api/extensions/{index}/toggle.
//
//	@Summary	Flip an extension's active state
//	@Tags		extensions
//	@Accept		json
//	@Produce	json
//	@Param		index	path		int				true	"Canonical index"
//	@Param		body	body		ToggleRequest	false	"Expected name"
//	@Success	200		{object}	ExtensionDTO
//	@Failure	409		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/extensions/{index}/toggle [post]
func (h *Handler) ToggleExtension(w http.ResponseWriter, r *http.Request) {
	index, err := extensionIndex(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid index"))
		return
	}
	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON"))
		return
	}
	ext, err := h.sess.Toggle(index, req.Name)
	if err != nil {
		writeError(w, "toggle extension", err)
		return
	}
	writeJSON(w, http.StatusOK, toDTO(index, ext))
}

// RemoveExtension handles DELETE /api/extensions/{index}.
// The request must carry confirm=true; without it nothing is removed.
//
//	@Summary	Remove an extension
//	@Tags		extensions
//	@Param		index	path	int		true	"Canonical index"
//	@Param		name	query	string	false	"Expected name"
//	@Param		confirm	query	bool	true	"Must be true"
//	@Success	204
//	@Failure	409	{object}	errResponse
//	@Security	BearerAuth
//	@Router		/extensions/{index} [delete]
func (h *Handler) RemoveExtension(w http.ResponseWriter, r *http.Request) {
	index, err := extensionIndex(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid index"))
		return
	}
	q := r.URL.Query()
	confirmed := q.Get("confirm") == "true"
	removed, err := h.sess.Remove(index, q.Get("name"), func(string) bool { return confirmed })
	if err != nil {
		writeError(w, "remove extension", err)
		return
	}
	if !removed {
		writeJSON(w, http.StatusConflict, errorBody("confirmation required"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
