package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ternarybob/stockanalyzer/internal/models"
	"github.com/ternarybob/stockanalyzer/internal/services/watchlist"
)

// MockAnalysisService is a mock implementation of AnalysisService
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Analyze(ctx context.Context, query string, weights models.Weights) (*models.AnalysisResult, error) {
	args := m.Called(ctx, query, weights)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalysisResult), args.Error(1)
}

func (m *MockAnalysisService) AnalyzeBatch(ctx context.Context, queries []string, weights models.Weights) (*models.BatchResult, error) {
	args := m.Called(ctx, queries, weights)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BatchResult), args.Error(1)
}

func (m *MockAnalysisService) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SearchResult), args.Error(1)
}

func (m *MockAnalysisService) History(ctx context.Context, code string, limit int) ([]*models.AnalysisRecord, error) {
	args := m.Called(ctx, code, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AnalysisRecord), args.Error(1)
}

func (m *MockAnalysisService) RefreshWatchlist(ctx context.Context) (*models.BatchResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BatchResult), args.Error(1)
}

// MockWatchlistService is a mock implementation of WatchlistService
type MockWatchlistService struct {
	mock.Mock
}

func (m *MockWatchlistService) Add(ctx context.Context, req watchlist.AddRequest) (*models.WatchlistItem, bool, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*models.WatchlistItem), args.Bool(1), args.Error(2)
}

func (m *MockWatchlistService) List(ctx context.Context) ([]*models.WatchlistItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WatchlistItem), args.Error(1)
}

func (m *MockWatchlistService) Get(ctx context.Context, code string) (*models.WatchlistItem, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WatchlistItem), args.Error(1)
}

func (m *MockWatchlistService) Update(ctx context.Context, code string, update models.WatchlistUpdate) (*models.WatchlistItem, error) {
	args := m.Called(ctx, code, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WatchlistItem), args.Error(1)
}

func (m *MockWatchlistService) Delete(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

func (m *MockWatchlistService) Exists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}
