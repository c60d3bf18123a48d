package api

import (
	"github.com/starford/extdeck/internal/extstore"
	"github.com/starford/extdeck/internal/models"
	"github.com/starford/extdeck/internal/session"
)

// ExtensionDTO is an extension together with its canonical index.
type ExtensionDTO struct {
	Index       int    `json:"index" example:"0"`
	Name        string `json:"name" example:"DevLens"`
	Description string `json:"description" example:"Quickly inspect page layouts."`
	Logo        string `json:"logo" example:"./assets/images/logo-devlens.svg"`
	IsActive    bool   `json:"isActive" example:"true"`
}

// ExtensionListResponse is the visible list under the current filter.
type ExtensionListResponse struct {
	Filter     string         `json:"filter" example:"all"`
	Total      int            `json:"total" example:"12"`
	Extensions []ExtensionDTO `json:"extensions"`
}

// SetFilterRequest is the request body for changing the filter.
type SetFilterRequest struct {
	Mode string `json:"mode" example:"active"`
}

// SetFilterResponse reports the filter after a change.
type SetFilterResponse struct {
	Filter  string `json:"filter" example:"active"`
	Changed bool   `json:"changed"`
}

// ToggleRequest is the optional request body for toggling an extension.
// Name guards against a stale index when present.
type ToggleRequest struct {
	Name string `json:"name" example:"DevLens"`
}

func toDTO(index int, ext models.Extension) ExtensionDTO {
	return ExtensionDTO{
		Index:       index,
		Name:        ext.Name,
		Description: ext.Description,
		Logo:        ext.Logo,
		IsActive:    ext.IsActive,
	}
}

func listResponse(snap session.Snapshot) ExtensionListResponse {
	return ExtensionListResponse{
		Filter:     snap.Filter.String(),
		Total:      snap.Total,
		Extensions: entriesToDTO(snap.Visible),
	}
}

func entriesToDTO(entries []extstore.Entry) []ExtensionDTO {
	out := make([]ExtensionDTO, len(entries))
	for i, e := range entries {
		out[i] = toDTO(e.Index, e.Extension)
	}
	return out
}
