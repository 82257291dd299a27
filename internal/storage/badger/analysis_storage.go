package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockanalyzer/internal/interfaces"
	"github.com/ternarybob/stockanalyzer/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// AnalysisStorage implements the AnalysisStorage interface for Badger
type AnalysisStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAnalysisStorage creates a new AnalysisStorage instance
func NewAnalysisStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AnalysisStorage {
	return &AnalysisStorage{
		db:     db,
		logger: logger,
	}
}

// Save appends a record keyed by its ID
func (s *AnalysisStorage) Save(ctx context.Context, record *models.AnalysisRecord) error {
	if record.ID == "" {
		return fmt.Errorf("analysis record ID is required")
	}
	if err := s.db.Store().Insert(record.ID, record); err != nil {
		return fmt.Errorf("failed to save analysis record: %w", err)
	}
	return nil
}

// History returns records newest first, optionally for one stock code
func (s *AnalysisStorage) History(ctx context.Context, code string, limit int) ([]*models.AnalysisRecord, error) {
	if limit <= 0 {
		limit = interfaces.DefaultHistoryLimit
	}
	if limit > interfaces.MaxHistoryLimit {
		limit = interfaces.MaxHistoryLimit
	}

	query := badgerhold.Where("ID").Ne("")
	if code != "" {
		query = badgerhold.Where("StockCode").Eq(code)
	}
	query = query.SortBy("AnalyzedAt").Reverse().Limit(limit)

	var records []models.AnalysisRecord
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to query analysis history: %w", err)
	}

	result := make([]*models.AnalysisRecord, len(records))
	for i := range records {
		result[i] = &records[i]
	}
	return result, nil
}
