// -----------------------------------------------------------------------
// Last Modified: Friday, 16th October 2026 9:40:12 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/stockanalyzer/internal/models"
)

// ErrNotFound is returned by every storage backend for a missing record
var ErrNotFound = errors.New("not found")

// History limits: DefaultHistoryLimit applies when limit <= 0, larger
// requests are capped at MaxHistoryLimit
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// WatchlistStorage - interface for watchlist persistence, keyed by stock code
type WatchlistStorage interface {
	// Upsert inserts or replaces the item for item.StockCode. An existing
	// record keeps its ID and CreatedAt, which are written back to item.
	// Returns true if a new item was created.
	Upsert(ctx context.Context, item *models.WatchlistItem) (bool, error)

	// List returns all items ordered by CreatedAt DESC
	List(ctx context.Context) ([]*models.WatchlistItem, error)

	// Get returns the item for code or ErrNotFound
	Get(ctx context.Context, code string) (*models.WatchlistItem, error)

	// Update applies a partial update and stamps UpdatedAt
	Update(ctx context.Context, code string, update models.WatchlistUpdate) (*models.WatchlistItem, error)

	// Delete removes the item for code or returns ErrNotFound
	Delete(ctx context.Context, code string) error

	// Exists reports whether code is on the watchlist
	Exists(ctx context.Context, code string) (bool, error)
}

// AnalysisStorage - interface for analysis history persistence
type AnalysisStorage interface {
	// Save appends a record
	Save(ctx context.Context, record *models.AnalysisRecord) error

	// History returns records ordered by AnalyzedAt DESC, optionally
	// filtered by stock code
	History(ctx context.Context, code string, limit int) ([]*models.AnalysisRecord, error)
}

// StorageManager - interface for managing all storage operations
type StorageManager interface {
	WatchlistStorage() WatchlistStorage
	AnalysisStorage() AnalysisStorage
	Close() error
}
