package handlers

import (
	"net/http"
)

// PresetsHandler serves the weight presets
type PresetsHandler struct {
	presets PresetProvider
}

func NewPresetsHandler(presets PresetProvider) *PresetsHandler {
	return &PresetsHandler{presets: presets}
}

// ListHandler handles GET /api/presets
func (h *PresetsHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"presets": h.presets.List(),
	})
}
