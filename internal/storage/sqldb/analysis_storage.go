package sqldb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockanalyzer/internal/interfaces"
	"github.com/ternarybob/stockanalyzer/internal/models"
)

const analysisColumns = `id, stock_code, stock_name, market, current_price, price_change, price_change_percent,
	technical_score, technical_signals, fundamental_score, fundamental_metrics, total_score,
	recommendation, tech_weight, fund_weight, analyzed_at`

// AnalysisStorage implements the AnalysisStorage interface over sa_analysis_results
type AnalysisStorage struct {
	db     *DB
	logger arbor.ILogger
}

// NewAnalysisStorage creates a new AnalysisStorage instance
func NewAnalysisStorage(db *DB, logger arbor.ILogger) interfaces.AnalysisStorage {
	return &AnalysisStorage{
		db:     db,
		logger: logger,
	}
}

// Save inserts a record
func (s *AnalysisStorage) Save(ctx context.Context, r *models.AnalysisRecord) error {
	if r.ID == "" {
		return fmt.Errorf("analysis record ID is required")
	}

	signals, err := json.Marshal(nonNilSignals(r.TechnicalSignals))
	if err != nil {
		return fmt.Errorf("failed to marshal technical signals: %w", err)
	}
	metrics, err := json.Marshal(r.FundamentalMetrics)
	if err != nil {
		return fmt.Errorf("failed to marshal fundamental metrics: %w", err)
	}

	query := `INSERT INTO sa_analysis_results (` + analysisColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.db.ExecContext(ctx, s.db.q(query),
		r.ID, r.StockCode, r.StockName, r.Market, r.CurrentPrice, r.PriceChange, r.PriceChangePercent,
		r.TechnicalScore, string(signals), r.FundamentalScore, string(metrics), r.TotalScore,
		r.Recommendation, r.TechWeight, r.FundWeight, toMillis(r.AnalyzedAt))
	if err != nil {
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

	query := "SELECT " + analysisColumns + " FROM sa_analysis_results"
	args := []interface{}{}
	if code != "" {
		query += " WHERE stock_code = ?"
		args = append(args, code)
	}
	query += " ORDER BY analyzed_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.db.QueryContext(ctx, s.db.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis history: %w", err)
	}
	defer rows.Close()

	records := make([]*models.AnalysisRecord, 0)
	for rows.Next() {
		r, err := scanAnalysisRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func scanAnalysisRecord(row scanner) (*models.AnalysisRecord, error) {
	var (
		r                models.AnalysisRecord
		signals, metrics string
		analyzedAt       int64
	)
	err := row.Scan(&r.ID, &r.StockCode, &r.StockName, &r.Market, &r.CurrentPrice, &r.PriceChange,
		&r.PriceChangePercent, &r.TechnicalScore, &signals, &r.FundamentalScore, &metrics, &r.TotalScore,
		&r.Recommendation, &r.TechWeight, &r.FundWeight, &analyzedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan analysis record: %w", err)
	}

	if err := json.Unmarshal([]byte(signals), &r.TechnicalSignals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal technical signals: %w", err)
	}
	if err := json.Unmarshal([]byte(metrics), &r.FundamentalMetrics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fundamental metrics: %w", err)
	}
	r.AnalyzedAt = fromMillis(analyzedAt)
	return &r, nil
}

func nonNilSignals(s []models.Signal) []models.Signal {
	if s == nil {
		return []models.Signal{}
	}
	return s
}
