package badger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockanalyzer/internal/common"
	"github.com/ternarybob/stockanalyzer/internal/interfaces"
	"github.com/ternarybob/stockanalyzer/internal/models"
)

func setupManager(t *testing.T) interfaces.StorageManager {
	t.Helper()
	config := &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "db")}
	manager, err := NewManager(arbor.NewLogger(), config)
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })
	return manager
}

func int64Ptr(v int64) *int64 { return &v }

func TestWatchlistStorage_UpsertPreservesIdentity(t *testing.T) {
	store := setupManager(t).WatchlistStorage()
	ctx := context.Background()

	item := &models.WatchlistItem{ID: "first-id", StockCode: "005930", StockName: "삼성전자", BuyPrice: int64Ptr(70000)}
	created, err := store.Upsert(ctx, item)
	require.NoError(t, err)
	assert.True(t, created)
	createdAt := item.CreatedAt

	replacement := &models.WatchlistItem{ID: "second-id", StockCode: "005930", StockName: "삼성전자", Memo: "장기 보유"}
	created, err = store.Upsert(ctx, replacement)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "first-id", replacement.ID)

	got, err := store.Get(ctx, "005930")
	require.NoError(t, err)
	assert.Equal(t, "first-id", got.ID)
	assert.Equal(t, "장기 보유", got.Memo)
	assert.Nil(t, got.BuyPrice)
	assert.True(t, got.CreatedAt.Equal(createdAt))
}

func TestWatchlistStorage_ListNewestFirst(t *testing.T) {
	store := setupManager(t).WatchlistStorage()
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, code := range []string{"005930", "000660", "035720"} {
		_, err := store.Upsert(ctx, &models.WatchlistItem{
			ID:        code,
			StockCode: code,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	items, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "035720", items[0].StockCode)
	assert.Equal(t, "005930", items[2].StockCode)
}

func TestWatchlistStorage_UpdateDeleteExists(t *testing.T) {
	store := setupManager(t).WatchlistStorage()
	ctx := context.Background()

	_, err := store.Update(ctx, "005930", models.WatchlistUpdate{})
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	_, err = store.Upsert(ctx, &models.WatchlistItem{ID: "id", StockCode: "005930"})
	require.NoError(t, err)

	memo := "실적 발표 확인"
	updated, err := store.Update(ctx, "005930", models.WatchlistUpdate{Memo: &memo, BuyQuantity: int64Ptr(10)})
	require.NoError(t, err)
	assert.Equal(t, memo, updated.Memo)
	require.NotNil(t, updated.BuyQuantity)
	assert.Equal(t, int64(10), *updated.BuyQuantity)

	exists, err := store.Exists(ctx, "005930")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, "005930"))
	assert.ErrorIs(t, store.Delete(ctx, "005930"), interfaces.ErrNotFound)

	exists, err = store.Exists(ctx, "005930")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.Get(ctx, "005930")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestAnalysisStorage_History(t *testing.T) {
	store := setupManager(t).AnalysisStorage()
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	records := []*models.AnalysisRecord{
		{ID: "a1", StockCode: "005930", TotalScore: 61, AnalyzedAt: base},
		{ID: "a2", StockCode: "000660", TotalScore: 48, AnalyzedAt: base.Add(time.Minute)},
		{ID: "a3", StockCode: "005930", TotalScore: 72, AnalyzedAt: base.Add(2 * time.Minute),
			TechnicalSignals: []models.Signal{{Indicator: "RSI", Value: "45 (중립)", Sentiment: models.SentimentNeutral}}},
	}
	for _, r := range records {
		require.NoError(t, store.Save(ctx, r))
	}

	all, err := store.History(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a3", all[0].ID)
	assert.Equal(t, "a1", all[2].ID)

	samsung, err := store.History(ctx, "005930", 10)
	require.NoError(t, err)
	require.Len(t, samsung, 2)
	assert.Equal(t, "a3", samsung[0].ID)
	assert.Equal(t, records[2].TechnicalSignals, samsung[0].TechnicalSignals)

	limited, err := store.History(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestAnalysisStorage_SaveRequiresID(t *testing.T) {
	store := setupManager(t).AnalysisStorage()
	assert.Error(t, store.Save(context.Background(), &models.AnalysisRecord{StockCode: "005930"}))
}

func TestManager_ReopenAndReset(t *testing.T) {
	ctx := context.Background()
	config := &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "db")}

	manager, err := NewManager(arbor.NewLogger(), config)
	require.NoError(t, err)
	_, err = manager.WatchlistStorage().Upsert(ctx, &models.WatchlistItem{ID: "wl_1", StockCode: "005930", StockName: "삼성전자"})
	require.NoError(t, err)
	require.NoError(t, manager.Close())
	require.NoError(t, manager.Close(), "close is idempotent")

	manager, err = NewManager(arbor.NewLogger(), config)
	require.NoError(t, err)
	exists, err := manager.WatchlistStorage().Exists(ctx, "005930")
	require.NoError(t, err)
	assert.True(t, exists, "data survives reopen")
	require.NoError(t, manager.Close())

	config.ResetOnStartup = true
	manager, err = NewManager(arbor.NewLogger(), config)
	require.NoError(t, err)
	defer manager.Close()
	exists, err = manager.WatchlistStorage().Exists(ctx, "005930")
	require.NoError(t, err)
	assert.False(t, exists, "reset_on_startup wipes the store")
}

func TestNewManager_RequiresPath(t *testing.T) {
	_, err := NewManager(arbor.NewLogger(), &common.BadgerConfig{})
	assert.Error(t, err)
}
