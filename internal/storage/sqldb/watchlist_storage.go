package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockanalyzer/internal/interfaces"
	"github.com/ternarybob/stockanalyzer/internal/models"
)

const watchlistColumns = `id, stock_code, stock_name, market, buy_price, buy_quantity, buy_date, memo, created_at, updated_at`

// WatchlistStorage implements the WatchlistStorage interface over sa_watchlist
type WatchlistStorage struct {
	db     *DB
	logger arbor.ILogger
}

// NewWatchlistStorage creates a new WatchlistStorage instance
func NewWatchlistStorage(db *DB, logger arbor.ILogger) interfaces.WatchlistStorage {
	return &WatchlistStorage{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts or replaces the row for item.StockCode
func (s *WatchlistStorage) Upsert(ctx context.Context, item *models.WatchlistItem) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	now := time.Now()

	var id string
	var createdAt int64
	err := s.db.db.QueryRowContext(ctx,
		s.db.q("SELECT id, created_at FROM sa_watchlist WHERE stock_code = ?"), item.StockCode).Scan(&id, &createdAt)
	isNew := errors.Is(err, sql.ErrNoRows)
	if err != nil && !isNew {
		return false, fmt.Errorf("failed to check watchlist item: %w", err)
	}

	if isNew {
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
	} else {
		item.ID = id
		item.CreatedAt = fromMillis(createdAt)
	}
	item.UpdatedAt = now

	query := `
		INSERT INTO sa_watchlist (` + watchlistColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (stock_code) DO UPDATE SET
			stock_name = excluded.stock_name,
			market = excluded.market,
			buy_price = excluded.buy_price,
			buy_quantity = excluded.buy_quantity,
			buy_date = excluded.buy_date,
			memo = excluded.memo,
			updated_at = excluded.updated_at`

	_, err = s.db.db.ExecContext(ctx, s.db.q(query),
		item.ID, item.StockCode, item.StockName, item.Market,
		nullInt(item.BuyPrice), nullInt(item.BuyQuantity), item.BuyDate, item.Memo,
		toMillis(item.CreatedAt), toMillis(item.UpdatedAt))
	if err != nil {
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
	rows, err := s.db.db.QueryContext(ctx,
		"SELECT "+watchlistColumns+" FROM sa_watchlist ORDER BY created_at DESC, stock_code")
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	defer rows.Close()

	items := make([]*models.WatchlistItem, 0)
	for rows.Next() {
		item, err := scanWatchlistItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Get returns the item for code
func (s *WatchlistStorage) Get(ctx context.Context, code string) (*models.WatchlistItem, error) {
	row := s.db.db.QueryRowContext(ctx,
		s.db.q("SELECT "+watchlistColumns+" FROM sa_watchlist WHERE stock_code = ?"), code)
	item, err := scanWatchlistItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, interfaces.ErrNotFound
	}
	return item, err
}

// Update applies a partial update to the row for code
func (s *WatchlistStorage) Update(ctx context.Context, code string, update models.WatchlistUpdate) (*models.WatchlistItem, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	item, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	update.Apply(item)
	item.UpdatedAt = time.Now()

	query := `
		UPDATE sa_watchlist
		SET stock_name = ?, market = ?, buy_price = ?, buy_quantity = ?, buy_date = ?, memo = ?, updated_at = ?
		WHERE stock_code = ?`
	_, err = s.db.db.ExecContext(ctx, s.db.q(query),
		item.StockName, item.Market, nullInt(item.BuyPrice), nullInt(item.BuyQuantity),
		item.BuyDate, item.Memo, toMillis(item.UpdatedAt), code)
	if err != nil {
		return nil, fmt.Errorf("failed to update watchlist item: %w", err)
	}
	return item, nil
}

// Delete removes the row for code
func (s *WatchlistStorage) Delete(ctx context.Context, code string) error {
	result, err := s.db.db.ExecContext(ctx, s.db.q("DELETE FROM sa_watchlist WHERE stock_code = ?"), code)
	if err != nil {
		return fmt.Errorf("failed to delete watchlist item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

// Exists reports whether code is on the watchlist
func (s *WatchlistStorage) Exists(ctx context.Context, code string) (bool, error) {
	var count int
	err := s.db.db.QueryRowContext(ctx,
		s.db.q("SELECT COUNT(*) FROM sa_watchlist WHERE stock_code = ?"), code).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check watchlist item: %w", err)
	}
	return count > 0, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanWatchlistItem(row scanner) (*models.WatchlistItem, error) {
	var (
		item                 models.WatchlistItem
		buyPrice, buyQty     sql.NullInt64
		createdAt, updatedAt int64
	)
	err := row.Scan(&item.ID, &item.StockCode, &item.StockName, &item.Market,
		&buyPrice, &buyQty, &item.BuyDate, &item.Memo, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan watchlist item: %w", err)
	}

	if buyPrice.Valid {
		item.BuyPrice = &buyPrice.Int64
	}
	if buyQty.Valid {
		item.BuyQuantity = &buyQty.Int64
	}
	item.CreatedAt = fromMillis(createdAt)
	item.UpdatedAt = fromMillis(updatedAt)
	return &item, nil
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
