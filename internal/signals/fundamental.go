package signals

import (
	"fmt"
	"math"

	"github.com/ternarybob/stockanalyzer/internal/models"
)

// Market cap tiers, in 억 (1e8 KRW)
const (
	eok = 1e8

	LargeCapEok    = 100000.0 // 10조
	MidLargeCapEok = 10000.0  // 1조
	MidCapEok      = 3000.0
)

func perValuation(s *models.StockSnapshot) (models.Signal, bool) {
	per := s.PER
	if per <= 0 {
		return models.Signal{}, false
	}
	switch {
	case per < 10:
		return signal(IndicatorPER, fmt.Sprintf("%.1f배 (저평가)", per), models.SentimentBullish), true
	case per < 20:
		return signal(IndicatorPER, fmt.Sprintf("%.1f배 (적정)", per), models.SentimentNeutral), true
	case per < 30:
		return signal(IndicatorPER, fmt.Sprintf("%.1f배 (다소 고평가)", per), models.SentimentNeutral), true
	default:
		return signal(IndicatorPER, fmt.Sprintf("%.1f배 (고평가)", per), models.SentimentBearish), true
	}
}

func pbrValuation(s *models.StockSnapshot) (models.Signal, bool) {
	pbr := s.PBR
	if pbr <= 0 {
		return models.Signal{}, false
	}
	switch {
	case pbr < 1:
		return signal(IndicatorPBR, fmt.Sprintf("%.2f배 (자산가치 대비 저평가)", pbr), models.SentimentBullish), true
	case pbr < 2:
		return signal(IndicatorPBR, fmt.Sprintf("%.2f배 (적정)", pbr), models.SentimentNeutral), true
	default:
		return signal(IndicatorPBR, fmt.Sprintf("%.2f배 (고평가)", pbr), models.SentimentBearish), true
	}
}

func roeQuality(s *models.StockSnapshot) (models.Signal, bool) {
	roe := s.ROE
	if roe <= 0 {
		return models.Signal{}, false
	}
	switch {
	case roe > 15:
		return signal(IndicatorROE, fmt.Sprintf("%.1f%% (우수)", roe), models.SentimentBullish), true
	case roe > 10:
		return signal(IndicatorROE, fmt.Sprintf("%.1f%% (양호)", roe), models.SentimentNeutral), true
	default:
		return signal(IndicatorROE, fmt.Sprintf("%.1f%% (미흡)", roe), models.SentimentBearish), true
	}
}

// week52Position places the price within the 52-week range, stretching the
// high to the current price when it trades above the recorded high.
func week52Position(s *models.StockSnapshot) (models.Signal, bool) {
	if s.High52W <= 0 || s.Low52W <= 0 || s.CurrentPrice <= 0 {
		return models.Signal{}, false
	}
	high := math.Max(s.High52W, s.CurrentPrice)
	low := s.Low52W
	if high <= low {
		return models.Signal{}, false
	}

	pos := (s.CurrentPrice - low) / (high - low) * 100
	switch {
	case pos > 90:
		return signal(IndicatorWeek52, fmt.Sprintf("%.0f%% (신고가 근처)", pos), models.SentimentNeutral), true
	case pos > 70:
		return signal(IndicatorWeek52, fmt.Sprintf("%.0f%% (고점 근처)", pos), models.SentimentBearish), true
	case pos < 30:
		return signal(IndicatorWeek52, fmt.Sprintf("%.0f%% (저점 근처)", pos), models.SentimentBullish), true
	default:
		return signal(IndicatorWeek52, fmt.Sprintf("%.0f%%", pos), models.SentimentNeutral), true
	}
}

// foreignOwnership never reads a low ratio as bearish.
func foreignOwnership(s *models.StockSnapshot) (models.Signal, bool) {
	ratio := s.ForeignRatio
	if ratio <= 0 {
		return models.Signal{}, false
	}
	switch {
	case ratio > 30:
		return signal(IndicatorForeignRatio, fmt.Sprintf("%.1f%% (높음)", ratio), models.SentimentBullish), true
	case ratio > 10:
		return signal(IndicatorForeignRatio, fmt.Sprintf("%.1f%% (보통)", ratio), models.SentimentNeutral), true
	default:
		return signal(IndicatorForeignRatio, fmt.Sprintf("%.1f%% (낮음)", ratio), models.SentimentNeutral), true
	}
}

func marketCapSize(s *models.StockSnapshot) (models.Signal, bool) {
	if s.MarketCap <= 0 {
		return models.Signal{}, false
	}
	capEok := s.MarketCap / eok
	switch {
	case capEok > LargeCapEok:
		return signal(IndicatorMarketCap, fmt.Sprintf("%.1f조 (대형주)", capEok/10000), models.SentimentBullish), true
	case capEok > MidLargeCapEok:
		return signal(IndicatorMarketCap, fmt.Sprintf("%.1f조 (중대형주)", capEok/10000), models.SentimentNeutral), true
	case capEok > MidCapEok:
		return signal(IndicatorMarketCap, fmt.Sprintf("%.0f억 (중형주)", capEok), models.SentimentNeutral), true
	default:
		return signal(IndicatorMarketCap, fmt.Sprintf("%.0f억 (소형주)", capEok), models.SentimentBearish), true
	}
}
