package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockanalyzer/internal/common"
	"github.com/ternarybob/stockanalyzer/internal/interfaces"
	"github.com/ternarybob/stockanalyzer/internal/storage/sqldb"
	_ "modernc.org/sqlite"
)

// NewManager opens the SQLite database and returns a storage manager over it
func NewManager(logger arbor.ILogger, config *common.SQLiteConfig) (interfaces.StorageManager, error) {
	db, err := Open(logger, config)
	if err != nil {
		return nil, err
	}

	sdb, err := sqldb.Open(context.Background(), db, sqldb.SQLite, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Info().Str("path", config.Path).Msg("SQLite storage manager initialized")
	return sqldb.NewManager(sdb, logger), nil
}

// Open creates the SQLite connection and applies pragmas
func Open(logger arbor.ILogger, config *common.SQLiteConfig) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// modernc.org/sqlite uses "sqlite" driver name (not "sqlite3")
	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps pragmas applied and avoids SQLITE_BUSY between writers
	db.SetMaxOpenConns(1)

	if err := configure(db, config); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	logger.Debug().Str("path", config.Path).Msg("SQLite database opened")
	return db, nil
}

// configure sets up SQLite pragmas and settings
func configure(db *sql.DB, config *common.SQLiteConfig) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA cache_size = -%d", config.CacheSizeMB*1024), // Negative for KB
		fmt.Sprintf("PRAGMA busy_timeout = %d", config.BusyTimeoutMS),
		"PRAGMA synchronous = NORMAL",
	}

	if config.WALMode {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}
