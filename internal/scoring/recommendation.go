package scoring

import "github.com/ternarybob/stockanalyzer/internal/models"

// Tier lower bounds, inclusive
const (
	StrongBuyThreshold = 75.0
	BuyThreshold       = 60.0
	HoldThreshold      = 45.0
	SellThreshold      = 30.0
)

var recommendations = map[models.Tier]models.Recommendation{
	models.TierStrongBuy:  {Tier: models.TierStrongBuy, Label: "적극 매수", Emoji: "🟢🟢🟢"},
	models.TierBuy:        {Tier: models.TierBuy, Label: "매수", Emoji: "🟢🟢"},
	models.TierHold:       {Tier: models.TierHold, Label: "중립", Emoji: "🟡"},
	models.TierSell:       {Tier: models.TierSell, Label: "매도", Emoji: "🔴🔴"},
	models.TierStrongSell: {Tier: models.TierStrongSell, Label: "적극 매도", Emoji: "🔴🔴🔴"},
}

// Recommend maps a composite score onto its tier.
func Recommend(score float64) models.Recommendation {
	switch {
	case score >= StrongBuyThreshold:
		return recommendations[models.TierStrongBuy]
	case score >= BuyThreshold:
		return recommendations[models.TierBuy]
	case score >= HoldThreshold:
		return recommendations[models.TierHold]
	case score >= SellThreshold:
		return recommendations[models.TierSell]
	default:
		return recommendations[models.TierStrongSell]
	}
}
