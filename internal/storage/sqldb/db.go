package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockanalyzer/internal/interfaces"
)

// DB wraps an open *sql.DB with its dialect
type DB struct {
	db      *sql.DB
	dialect Dialect
	logger  arbor.ILogger
	mu      sync.Mutex // Serializes read-modify-write sequences
}

// Open wraps db and runs migrations
func Open(ctx context.Context, db *sql.DB, dialect Dialect, logger arbor.ILogger) (*DB, error) {
	d := &DB{
		db:      db,
		dialect: dialect,
		logger:  logger,
	}
	if err := d.migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return d, nil
}

// SQL returns the underlying database connection
func (d *DB) SQL() *sql.DB {
	return d.db
}

// Close closes the database connection
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

func (d *DB) q(query string) string {
	return d.dialect.Rebind(query)
}

// Manager implements the StorageManager interface for SQL backends
type Manager struct {
	db        *DB
	watchlist interfaces.WatchlistStorage
	analysis  interfaces.AnalysisStorage
}

// NewManager creates a storage manager over an opened DB
func NewManager(db *DB, logger arbor.ILogger) *Manager {
	return &Manager{
		db:        db,
		watchlist: NewWatchlistStorage(db, logger),
		analysis:  NewAnalysisStorage(db, logger),
	}
}

// WatchlistStorage returns the Watchlist storage interface
func (m *Manager) WatchlistStorage() interfaces.WatchlistStorage {
	return m.watchlist
}

// AnalysisStorage returns the Analysis storage interface
func (m *Manager) AnalysisStorage() interfaces.AnalysisStorage {
	return m.analysis
}

// DB returns the wrapped database
func (m *Manager) DB() *DB {
	return m.db
}

// Close closes the database connection
func (m *Manager) Close() error {
	return m.db.Close()
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
