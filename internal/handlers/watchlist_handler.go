// -----------------------------------------------------------------------
// Last Modified: Friday, 16th October 2026 3:05:52 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockanalyzer/internal/models"
	"github.com/ternarybob/stockanalyzer/internal/services/watchlist"
)

const watchlistPrefix = "/api/watchlist/"

// WatchlistHandler serves the watchlist CRUD endpoints
type WatchlistHandler struct {
	service  WatchlistService
	analysis AnalysisService
	logger   arbor.ILogger
}

// NewWatchlistHandler creates a new watchlist handler
func NewWatchlistHandler(service WatchlistService, analysis AnalysisService, logger arbor.ILogger) *WatchlistHandler {
	return &WatchlistHandler{
		service:  service,
		analysis: analysis,
		logger:   logger,
	}
}

func (h *WatchlistHandler) writeError(w http.ResponseWriter, err error, msg string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Msg(msg)
		WriteError(w, status, msg)
		return
	}
	WriteError(w, status, err.Error())
}

// ListHandler handles GET /api/watchlist
func (h *WatchlistHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to list watchlist")
		return
	}
	if items == nil {
		items = []*models.WatchlistItem{}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(items),
		"items":   items,
	})
}

// AddHandler handles POST /api/watchlist. Adding an existing code replaces it.
func (h *WatchlistHandler) AddHandler(w http.ResponseWriter, r *http.Request) {
	var req watchlist.AddRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, created, err := h.service.Add(r.Context(), req)
	if err != nil {
		h.writeError(w, err, "Failed to save watchlist item")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	WriteJSON(w, status, map[string]interface{}{
		"success": true,
		"created": created,
		"item":    item,
	})
}

// GetHandler handles GET /api/watchlist/{code}
func (h *WatchlistHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	code := PathParam(r.URL.Path, watchlistPrefix)

	item, err := h.service.Get(r.Context(), code)
	if err != nil {
		h.writeError(w, err, "Failed to load watchlist item")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"item":    item,
	})
}

// UpdateHandler handles PUT /api/watchlist/{code}
func (h *WatchlistHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	code := PathParam(r.URL.Path, watchlistPrefix)

	var update models.WatchlistUpdate
	if err := DecodeJSON(w, r, &update); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.service.Update(r.Context(), code, update)
	if err != nil {
		h.writeError(w, err, "Failed to update watchlist item")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"item":    item,
	})
}

// DeleteHandler handles DELETE /api/watchlist/{code}
func (h *WatchlistHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	code := PathParam(r.URL.Path, watchlistPrefix)

	if err := h.service.Delete(r.Context(), code); err != nil {
		h.writeError(w, err, "Failed to delete watchlist item")
		return
	}

	WriteSuccess(w, "removed "+code)
}

// ExistsHandler handles GET /api/watchlist/{code}/exists
func (h *WatchlistHandler) ExistsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	code := PathParam(r.URL.Path, watchlistPrefix)

	exists, err := h.service.Exists(r.Context(), code)
	if err != nil {
		h.writeError(w, err, "Failed to check watchlist")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"code":   code,
		"exists": exists,
	})
}

// RefreshHandler handles POST /api/watchlist/refresh, re-analyzing every
// watched stock now
func (h *WatchlistHandler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	result, err := h.analysis.RefreshWatchlist(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to refresh watchlist")
		return
	}

	WriteJSON(w, http.StatusOK, NewBatchAnalyzeResponse(result))
}
