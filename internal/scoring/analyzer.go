package scoring

import (
	"fmt"

	"github.com/ternarybob/stockanalyzer/internal/models"
	"github.com/ternarybob/stockanalyzer/internal/signals"
)

// Analyzer combines technical and fundamental signals into one result.
// It holds no state and is safe for concurrent use.
type Analyzer struct{}

// NewAnalyzer returns an Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze scores the snapshot against its indicator bundle. Weights are raw
// proportions and are normalized before use.
func (a *Analyzer) Analyze(snapshot *models.StockSnapshot, bundle *models.TechnicalBundle, weights models.Weights) (*models.AnalysisResult, error) {
	if snapshot == nil || !snapshot.HasIdentity() {
		return nil, ErrInsufficientData
	}
	w, err := NormalizeWeights(weights)
	if err != nil {
		return nil, err
	}
	if bundle == nil {
		neutral := models.NeutralTechnicalBundle(nil)
		bundle = &neutral
	}

	tech := signals.Technical(snapshot, bundle)
	fund := signals.Fundamental(snapshot)

	techScore := Score(tech)
	fundScore := Score(fund)
	total := techScore*w.Technical + fundScore*w.Fundamental

	return &models.AnalysisResult{
		Code:               snapshot.Code,
		Name:               snapshot.Name,
		Market:             snapshot.Market,
		CurrentPrice:       snapshot.CurrentPrice,
		PrevClose:          snapshot.PrevClose,
		ChangePct:          ChangePct(snapshot.CurrentPrice, snapshot.PrevClose),
		TechnicalScore:     techScore,
		FundamentalScore:   fundScore,
		TotalScore:         total,
		Recommendation:     Recommend(total),
		Weights:            w,
		TechnicalSignals:   tech,
		FundamentalSignals: fund,
		StockInfo:          snapshot.Info(),
	}, nil
}

// ChangePct is the percent move from prev to current, 0 without a previous close.
func ChangePct(current, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return (current/prev - 1) * 100
}

// Summary renders a one-line description of a result.
func Summary(r *models.AnalysisResult) string {
	return fmt.Sprintf("%s(%s) %.1f %s %s", r.Name, r.Code, r.TotalScore, r.Recommendation.Label, r.Recommendation.Emoji)
}
