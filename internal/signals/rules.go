// Package signals turns indicator values and fundamentals into ordered,
// sentiment-tagged observations.
package signals

import (
	"github.com/ternarybob/stockanalyzer/internal/models"
)

// TechnicalRule evaluates one technical observation. ok is false when the
// rule has nothing to say for the given inputs.
type TechnicalRule func(snapshot *models.StockSnapshot, bundle *models.TechnicalBundle) (signal models.Signal, ok bool)

// FundamentalRule evaluates one fundamental observation.
type FundamentalRule func(snapshot *models.StockSnapshot) (signal models.Signal, ok bool)

// Indicator labels
const (
	IndicatorMAAlignment  = "이동평균선 배열"
	IndicatorPriceVsMA20  = "20일선 대비"
	IndicatorRSI          = "RSI"
	IndicatorMACD         = "MACD"
	IndicatorBollinger    = "볼린저밴드"
	IndicatorStochastic   = "스토캐스틱"
	IndicatorVolume       = "거래량"
	IndicatorPER          = "PER"
	IndicatorPBR          = "PBR"
	IndicatorROE          = "ROE"
	IndicatorWeek52       = "52주 위치"
	IndicatorForeignRatio = "외국인 지분율"
	IndicatorMarketCap    = "시가총액"
)

// technicalRules is the evaluation order of the technical rules.
var technicalRules = []TechnicalRule{
	maAlignment,
	priceVsMA20,
	rsiLevel,
	macdCross,
	bollingerPosition,
	stochasticLevel,
	volumeRatio,
}

// fundamentalRules is the evaluation order of the fundamental rules.
var fundamentalRules = []FundamentalRule{
	perValuation,
	pbrValuation,
	roeQuality,
	week52Position,
	foreignOwnership,
	marketCapSize,
}

// Technical runs every technical rule in order. No signals are produced
// without a current price.
func Technical(snapshot *models.StockSnapshot, bundle *models.TechnicalBundle) []models.Signal {
	out := []models.Signal{}
	if snapshot == nil || bundle == nil || snapshot.CurrentPrice == 0 {
		return out
	}
	for _, rule := range technicalRules {
		if s, ok := rule(snapshot, bundle); ok {
			out = append(out, s)
		}
	}
	return out
}

// Fundamental runs every fundamental rule in order.
func Fundamental(snapshot *models.StockSnapshot) []models.Signal {
	out := []models.Signal{}
	if snapshot == nil {
		return out
	}
	for _, rule := range fundamentalRules {
		if s, ok := rule(snapshot); ok {
			out = append(out, s)
		}
	}
	return out
}

func signal(indicator, value string, sentiment models.Sentiment) models.Signal {
	return models.Signal{Indicator: indicator, Value: value, Sentiment: sentiment}
}
