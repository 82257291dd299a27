package models

import "time"

// AnalysisRecord is a persisted, flattened AnalysisResult.
type AnalysisRecord struct {
	ID                 string    `json:"id"`
	StockCode          string    `json:"stock_code"`
	StockName          string    `json:"stock_name"`
	Market             string    `json:"market,omitempty"`
	CurrentPrice       float64   `json:"current_price"`
	PriceChange        float64   `json:"price_change"`
	PriceChangePercent float64   `json:"price_change_percent"`
	TechnicalScore     float64   `json:"technical_score"`
	TechnicalSignals   []Signal  `json:"technical_signals"`
	FundamentalScore   float64   `json:"fundamental_score"`
	FundamentalMetrics StockInfo `json:"fundamental_metrics"`
	TotalScore         float64   `json:"total_score"`
	Recommendation     string    `json:"recommendation"`
	TechWeight         float64   `json:"tech_weight"`
	FundWeight         float64   `json:"fund_weight"`
	AnalyzedAt         time.Time `json:"analyzed_at"`
}

// NewAnalysisRecord flattens a result for storage.
func NewAnalysisRecord(id string, r *AnalysisResult) *AnalysisRecord {
	return &AnalysisRecord{
		ID:                 id,
		StockCode:          r.Code,
		StockName:          r.Name,
		Market:             r.Market,
		CurrentPrice:       r.CurrentPrice,
		PriceChange:        r.PriceChange(),
		PriceChangePercent: r.ChangePct,
		TechnicalScore:     r.TechnicalScore,
		TechnicalSignals:   r.TechnicalSignals,
		FundamentalScore:   r.FundamentalScore,
		FundamentalMetrics: r.StockInfo,
		TotalScore:         r.TotalScore,
		Recommendation:     r.Recommendation.Label,
		TechWeight:         r.Weights.Technical,
		FundWeight:         r.Weights.Fundamental,
		AnalyzedAt:         r.AnalyzedAt,
	}
}
