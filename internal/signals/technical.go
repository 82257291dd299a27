package signals

import (
	"fmt"

	"github.com/ternarybob/stockanalyzer/internal/models"
)

// Technical thresholds
const (
	RSIOverbought        = 70.0
	RSIOversold          = 30.0
	StochasticOverbought = 80.0
	StochasticOversold   = 20.0
	VolumeSurge          = 3.0
	VolumeIncrease       = 1.5
	VolumeDrop           = 0.5
)

func maAlignment(_ *models.StockSnapshot, b *models.TechnicalBundle) (models.Signal, bool) {
	if b.MA5 <= 0 || b.MA20 <= 0 || b.MA60 <= 0 {
		return models.Signal{}, false
	}
	switch {
	case b.MA5 > b.MA20 && b.MA20 > b.MA60:
		return signal(IndicatorMAAlignment, "정배열 (상승추세)", models.SentimentBullish), true
	case b.MA5 < b.MA20 && b.MA20 < b.MA60:
		return signal(IndicatorMAAlignment, "역배열 (하락추세)", models.SentimentBearish), true
	default:
		return signal(IndicatorMAAlignment, "혼조세", models.SentimentNeutral), true
	}
}

func priceVsMA20(s *models.StockSnapshot, b *models.TechnicalBundle) (models.Signal, bool) {
	if b.MA20 <= 0 {
		return models.Signal{}, false
	}
	diff := (s.CurrentPrice/b.MA20 - 1) * 100
	if s.CurrentPrice > b.MA20 {
		return signal(IndicatorPriceVsMA20, fmt.Sprintf("상회 (+%.1f%%)", diff), models.SentimentBullish), true
	}
	return signal(IndicatorPriceVsMA20, fmt.Sprintf("하회 (%.1f%%)", diff), models.SentimentBearish), true
}

func rsiLevel(_ *models.StockSnapshot, b *models.TechnicalBundle) (models.Signal, bool) {
	rsi := b.RSI14
	switch {
	case rsi >= RSIOverbought:
		return signal(IndicatorRSI, fmt.Sprintf("%.0f (과매수)", rsi), models.SentimentBearish), true
	case rsi <= RSIOversold:
		return signal(IndicatorRSI, fmt.Sprintf("%.0f (과매도)", rsi), models.SentimentBullish), true
	default:
		return signal(IndicatorRSI, fmt.Sprintf("%.0f (중립)", rsi), models.SentimentNeutral), true
	}
}

func macdCross(_ *models.StockSnapshot, b *models.TechnicalBundle) (models.Signal, bool) {
	if b.MACD > b.MACDSignal {
		return signal(IndicatorMACD, "매수 신호", models.SentimentBullish), true
	}
	return signal(IndicatorMACD, "매도 신호", models.SentimentBearish), true
}

func bollingerPosition(s *models.StockSnapshot, b *models.TechnicalBundle) (models.Signal, bool) {
	if b.BollingerUpper <= 0 || b.BollingerLower <= 0 {
		return models.Signal{}, false
	}
	price := s.CurrentPrice
	switch {
	case price >= b.BollingerUpper:
		return signal(IndicatorBollinger, "상단 돌파 (과열)", models.SentimentBearish), true
	case price <= b.BollingerLower:
		return signal(IndicatorBollinger, "하단 이탈 (과매도)", models.SentimentBullish), true
	}
	pos := (price - b.BollingerLower) / (b.BollingerUpper - b.BollingerLower) * 100
	return signal(IndicatorBollinger, fmt.Sprintf("밴드 내 %.0f%% 위치", pos), models.SentimentNeutral), true
}

func stochasticLevel(_ *models.StockSnapshot, b *models.TechnicalBundle) (models.Signal, bool) {
	k := b.StochasticK
	switch {
	case k > StochasticOverbought:
		return signal(IndicatorStochastic, fmt.Sprintf("K:%.0f (과매수)", k), models.SentimentBearish), true
	case k < StochasticOversold:
		return signal(IndicatorStochastic, fmt.Sprintf("K:%.0f (과매도)", k), models.SentimentBullish), true
	default:
		return signal(IndicatorStochastic, fmt.Sprintf("K:%.0f (중립)", k), models.SentimentNeutral), true
	}
}

func volumeRatio(s *models.StockSnapshot, b *models.TechnicalBundle) (models.Signal, bool) {
	if b.VolumeMA20 <= 0 || s.Volume <= 0 {
		return models.Signal{}, false
	}
	ratio := float64(s.Volume) / b.VolumeMA20
	switch {
	case ratio > VolumeSurge:
		return signal(IndicatorVolume, fmt.Sprintf("평균 대비 %.1f배 (급증)", ratio), models.SentimentBullish), true
	case ratio > VolumeIncrease:
		return signal(IndicatorVolume, fmt.Sprintf("평균 대비 %.1f배 (증가)", ratio), models.SentimentBullish), true
	case ratio < VolumeDrop:
		return signal(IndicatorVolume, fmt.Sprintf("평균 대비 %.1f배 (급감)", ratio), models.SentimentBearish), true
	default:
		return signal(IndicatorVolume, fmt.Sprintf("평균 대비 %.1f배", ratio), models.SentimentNeutral), true
	}
}
