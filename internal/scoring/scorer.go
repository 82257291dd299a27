// Package scoring reduces signals to scores and combines the technical and
// fundamental views into a single recommendation.
package scoring

import "github.com/ternarybob/stockanalyzer/internal/models"

// Points awarded per sentiment
const (
	BullishPoints = 100.0
	NeutralPoints = 50.0
	BearishPoints = 0.0
)

// Score is the mean of the per-signal points. An empty list scores neutral.
func Score(signals []models.Signal) float64 {
	if len(signals) == 0 {
		return NeutralPoints
	}
	var total float64
	for _, s := range signals {
		total += points(s.Sentiment)
	}
	return total / float64(len(signals))
}

func points(s models.Sentiment) float64 {
	switch s {
	case models.SentimentBullish:
		return BullishPoints
	case models.SentimentBearish:
		return BearishPoints
	default:
		return NeutralPoints
	}
}
