package storage

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockanalyzer/internal/common"
	"github.com/ternarybob/stockanalyzer/internal/interfaces"
	"github.com/ternarybob/stockanalyzer/internal/storage/badger"
	"github.com/ternarybob/stockanalyzer/internal/storage/postgres"
	"github.com/ternarybob/stockanalyzer/internal/storage/sqlite"
)

// NewStorageManager creates a new storage manager based on config
func NewStorageManager(logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	switch config.Storage.Type {
	case "", common.StorageBadger:
		return badger.NewManager(logger, &config.Storage.Badger)
	case common.StorageSQLite:
		return sqlite.NewManager(logger, &config.Storage.SQLite)
	case common.StoragePostgres:
		return postgres.NewManager(logger, &config.Storage.Postgres)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s (expected badger, sqlite or postgres)", config.Storage.Type)
	}
}
