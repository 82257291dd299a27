// -----------------------------------------------------------------------
// Last Modified: Friday, 16th October 2026 4:31:20 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Root status
	mux.HandleFunc("/", s.app.APIHandler.RootHandler)

	// WebSocket route
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Analysis
	mux.HandleFunc("/api/analyze", s.app.AnalysisHandler.AnalyzeHandler)     // POST - single stock
	mux.HandleFunc("/api/analyze/batch", s.app.AnalysisHandler.BatchHandler) // POST - up to batch_max stocks
	mux.HandleFunc("/api/search", s.app.AnalysisHandler.SearchHandler)       // GET ?query=
	mux.HandleFunc("/api/history", s.app.AnalysisHandler.HistoryHandler)     // GET ?code=&limit=
	mux.HandleFunc("/api/presets", s.app.PresetsHandler.ListHandler)         // GET - weight presets

	// API routes - Watchlist
	mux.HandleFunc("/api/watchlist", s.handleWatchlistRoute)                        // GET (list), POST (add)
	mux.HandleFunc("/api/watchlist/refresh", s.app.WatchlistHandler.RefreshHandler) // POST - re-analyze all
	mux.HandleFunc("/api/watchlist/", s.handleWatchlistItemRoutes)                  // GET/PUT/DELETE /{code}, GET /{code}/exists

	// API routes - Scheduler
	mux.HandleFunc("/api/scheduler/jobs", s.app.SchedulerHandler.ListJobsHandler)    // GET - job statuses
	mux.HandleFunc("/api/scheduler/jobs/", s.app.SchedulerHandler.TriggerJobHandler) // POST /{name}/trigger

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleWatchlistRoute routes /api/watchlist requests (list and add)
func (s *Server) handleWatchlistRoute(w http.ResponseWriter, r *http.Request) {
	RouteResourceCollection(w, r,
		s.app.WatchlistHandler.ListHandler,
		s.app.WatchlistHandler.AddHandler,
	)
}

// handleWatchlistItemRoutes routes /api/watchlist/{code} and its subpaths
func (s *Server) handleWatchlistItemRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/watchlist/"), "/")

	switch {
	case rest == "":
		s.handleWatchlistRoute(w, r)
	case strings.HasSuffix(rest, "/exists") && strings.Count(rest, "/") == 1:
		s.app.WatchlistHandler.ExistsHandler(w, r)
	case !strings.Contains(rest, "/"):
		RouteResourceItem(w, r,
			s.app.WatchlistHandler.GetHandler,
			s.app.WatchlistHandler.UpdateHandler,
			s.app.WatchlistHandler.DeleteHandler,
		)
	default:
		s.app.APIHandler.NotFoundHandler(w, r)
	}
}
