package models

// BatchSummary aggregates a batch run.
type BatchSummary struct {
	TotalAnalyzed  int      `json:"total_analyzed"`
	Failed         int      `json:"failed"`
	BuySignals     int      `json:"buy_signals"`
	SellSignals    int      `json:"sell_signals"`
	NeutralSignals int      `json:"neutral_signals"`
	AvgScore       float64  `json:"avg_score"`
	Errors         []string `json:"errors"` // null when every stock succeeded
}

// BatchResult holds the successful analyses ordered by total score, best first.
type BatchResult struct {
	Count   int               `json:"count"`
	Results []*AnalysisResult `json:"results"`
	Summary BatchSummary      `json:"summary"`
}
