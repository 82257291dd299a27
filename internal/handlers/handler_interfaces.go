package handlers

import (
	"context"

	"github.com/ternarybob/stockanalyzer/internal/models"
	"github.com/ternarybob/stockanalyzer/internal/services/watchlist"
)

// AnalysisService is the analysis pipeline as used by the HTTP layer
type AnalysisService interface {
	Analyze(ctx context.Context, query string, weights models.Weights) (*models.AnalysisResult, error)
	AnalyzeBatch(ctx context.Context, queries []string, weights models.Weights) (*models.BatchResult, error)
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
	History(ctx context.Context, code string, limit int) ([]*models.AnalysisRecord, error)
	RefreshWatchlist(ctx context.Context) (*models.BatchResult, error)
}

// WatchlistService manages watchlist entries
type WatchlistService interface {
	Add(ctx context.Context, req watchlist.AddRequest) (*models.WatchlistItem, bool, error)
	List(ctx context.Context) ([]*models.WatchlistItem, error)
	Get(ctx context.Context, code string) (*models.WatchlistItem, error)
	Update(ctx context.Context, code string, update models.WatchlistUpdate) (*models.WatchlistItem, error)
	Delete(ctx context.Context, code string) error
	Exists(ctx context.Context, code string) (bool, error)
}

// PresetProvider lists the weight presets
type PresetProvider interface {
	List() []models.Preset
}

