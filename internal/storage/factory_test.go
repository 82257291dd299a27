package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockanalyzer/internal/common"
)

func TestNewStorageManager(t *testing.T) {
	dir := t.TempDir()
	logger := arbor.NewLogger()

	config := common.NewDefaultConfig()
	config.Storage.Badger.Path = filepath.Join(dir, "badger")
	config.Storage.SQLite.Path = filepath.Join(dir, "sqlite", "sa.db")

	for _, kind := range []string{common.StorageBadger, common.StorageSQLite} {
		config.Storage.Type = kind
		manager, err := NewStorageManager(logger, config)
		require.NoError(t, err, kind)
		assert.NotNil(t, manager.WatchlistStorage())
		assert.NotNil(t, manager.AnalysisStorage())
		require.NoError(t, manager.Close())
	}

	config.Storage.Type = "mysql"
	_, err := NewStorageManager(logger, config)
	assert.Error(t, err)
}
