package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockanalyzer/internal/interfaces"
	"github.com/ternarybob/stockanalyzer/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// WatchlistStorage implements the WatchlistStorage interface for Badger.
// Items are keyed by stock code.
type WatchlistStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewWatchlistStorage creates a new WatchlistStorage instance
func NewWatchlistStorage(db *BadgerDB, logger arbor.ILogger) interfaces.WatchlistStorage {
	return &WatchlistStorage{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts or replaces the item for its stock code
func (s *WatchlistStorage) Upsert(ctx context.Context, item *models.WatchlistItem) (bool, error) {
	now := time.Now()

	var existing models.WatchlistItem
	err := s.db.Store().Get(item.StockCode, &existing)
	isNew := err == badgerhold.ErrNotFound
	if err != nil && !isNew {
		return false, fmt.Errorf("failed to check watchlist item: %w", err)
	}

	if isNew {
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
	} else {
		item.ID = existing.ID
		item.CreatedAt = existing.CreatedAt
	}
	item.UpdatedAt = now

	if err := s.db.Store().Upsert(item.StockCode, item); err != nil {
		return false, fmt.Errorf("failed to upsert watchlist item: %w", err)
	}

	s.logger.Debug().
		Str("code", item.StockCode).
		Bool("created", isNew).
		Msg("Watchlist item stored")

	return isNew, nil
}

// List returns all items, newest first
func (s *WatchlistStorage) List(ctx context.Context) ([]*models.WatchlistItem, error) {
	var items []models.WatchlistItem
	if err := s.db.Store().Find(&items, badgerhold.Where("StockCode").Ne("").SortBy("CreatedAt").Reverse()); err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}

	result := make([]*models.WatchlistItem, len(items))
	for i := range items {
		result[i] = &items[i]
	}
	return result, nil
}

// Get returns the item for code
func (s *WatchlistStorage) Get(ctx context.Context, code string) (*models.WatchlistItem, error) {
	var item models.WatchlistItem
	err := s.db.Store().Get(code, &item)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist item: %w", err)
	}
	return &item, nil
}

// Update applies a partial update to the item for code
func (s *WatchlistStorage) Update(ctx context.Context, code string, update models.WatchlistUpdate) (*models.WatchlistItem, error) {
	item, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	update.Apply(item)
	item.UpdatedAt = time.Now()

	if err := s.db.Store().Update(code, item); err != nil {
		return nil, fmt.Errorf("failed to update watchlist item: %w", err)
	}
	return item, nil
}

// Delete removes the item for code
func (s *WatchlistStorage) Delete(ctx context.Context, code string) error {
	err := s.db.Store().Delete(code, &models.WatchlistItem{})
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete watchlist item: %w", err)
	}
	return nil
}

// Exists reports whether code is on the watchlist
func (s *WatchlistStorage) Exists(ctx context.Context, code string) (bool, error) {
	_, err := s.Get(ctx, code)
	if err == interfaces.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
