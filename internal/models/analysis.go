package models

import "time"

// Weights is the technical/fundamental weighting of the composite score.
type Weights struct {
	Technical   float64 `json:"technical"`
	Fundamental float64 `json:"fundamental"`
}

// Tier is the discrete recommendation bucket.
type Tier string

const (
	TierStrongBuy  Tier = "strong_buy"
	TierBuy        Tier = "buy"
	TierHold       Tier = "hold"
	TierSell       Tier = "sell"
	TierStrongSell Tier = "strong_sell"
)

// Recommendation is a tier with its display label and emoji.
type Recommendation struct {
	Tier  Tier   `json:"tier"`
	Label string `json:"label"`
	Emoji string `json:"emoji"`
}

// AnalysisResult is the outcome of one composite analysis.
type AnalysisResult struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Market       string  `json:"market,omitempty"`
	CurrentPrice float64 `json:"current_price"`
	PrevClose    float64 `json:"prev_close"`
	ChangePct    float64 `json:"change_pct"`

	TechnicalScore   float64        `json:"technical_score"`
	FundamentalScore float64        `json:"fundamental_score"`
	TotalScore       float64        `json:"total_score"`
	Recommendation   Recommendation `json:"recommendation"`
	Weights          Weights        `json:"weights"`

	TechnicalSignals   []Signal  `json:"technical_signals"`
	FundamentalSignals []Signal  `json:"fundamental_signals"`
	StockInfo          StockInfo `json:"stock_info"`

	// AnalyzedAt is stamped by the service layer, never by the analyzer.
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// PriceChange returns the absolute move against the previous close.
func (r *AnalysisResult) PriceChange() float64 {
	if r.PrevClose == 0 {
		return 0
	}
	return r.CurrentPrice - r.PrevClose
}
