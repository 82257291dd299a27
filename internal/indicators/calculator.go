// Package indicators derives technical indicators from a daily price series.
package indicators

import (
	"github.com/ternarybob/stockanalyzer/internal/models"
)

const (
	// MinSamples is the shortest history for which indicators are computed.
	MinSamples = 20

	RSIPeriod        = 14
	StochasticPeriod = 14
	BollingerPeriod  = 20
	BollingerWidth   = 2.0
	VolumePeriod     = 20

	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9

	// macdProxyRatio approximates the signal line as a fixed share of the MACD line.
	macdProxyRatio = 0.8
)

// SignalLineMode selects how the MACD signal line is derived.
type SignalLineMode string

const (
	// SignalLineProxy uses 0.8 x MACD.
	SignalLineProxy SignalLineMode = "proxy"
	// SignalLineEMA9 uses a 9-period EMA of the MACD history.
	SignalLineEMA9 SignalLineMode = "ema9"
)

// Options tunes the calculator.
type Options struct {
	MACDSignal SignalLineMode
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{MACDSignal: SignalLineProxy}
}

// Compute derives the technical bundle for series. It never fails: with
// fewer than MinSamples closes every indicator holds its neutral default.
func Compute(series models.PriceSeries, currentPrice float64, opts Options) models.TechnicalBundle {
	bundle := models.NeutralTechnicalBundle(series)
	if len(series) < MinSamples {
		return bundle
	}

	closes := series.Closes()

	bundle.MA5 = movingAverage(closes, 5, currentPrice)
	bundle.MA20 = movingAverage(closes, 20, currentPrice)
	bundle.MA60 = movingAverage(closes, 60, currentPrice)
	bundle.MA120 = movingAverage(closes, 120, currentPrice)

	bundle.RSI14 = RSI(closes, RSIPeriod)
	bundle.MACD, bundle.MACDSignal = MACD(closes, opts.MACDSignal)
	bundle.StochasticK = StochasticK(closes, StochasticPeriod)

	std := popStddev(closes, BollingerPeriod)
	bundle.BollingerMiddle = bundle.MA20
	bundle.BollingerUpper = bundle.MA20 + std*BollingerWidth
	bundle.BollingerLower = bundle.MA20 - std*BollingerWidth

	bundle.VolumeMA20 = sma(series.Volumes(), VolumePeriod)

	return bundle
}

// movingAverage falls back to currentPrice when history is shorter than n.
func movingAverage(closes []float64, n int, currentPrice float64) float64 {
	if len(closes) < n {
		return currentPrice
	}
	return sma(closes, n)
}

// RSI is the simple-average relative strength index over the trailing
// period deltas. Returns 50 without enough history and 100 with no losses.
func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return 50
	}

	var gains, losses float64
	for i := len(closes) - period; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACD returns the MACD line (EMA12 - EMA26) and its signal line.
// Both are 0 with fewer than 26 closes.
func MACD(closes []float64, mode SignalLineMode) (float64, float64) {
	if len(closes) < MACDSlow {
		return 0, 0
	}

	line := ema(closes, MACDFast) - ema(closes, MACDSlow)

	if mode == SignalLineEMA9 && len(closes) >= MACDSlow+MACDSignal-1 {
		return line, ema(macdHistory(closes, MACDSignal), MACDSignal)
	}
	return line, line * macdProxyRatio
}

// macdHistory returns the MACD line at each of the last n closes.
func macdHistory(closes []float64, n int) []float64 {
	history := make([]float64, 0, n)
	for end := len(closes) - n + 1; end <= len(closes); end++ {
		window := closes[:end]
		history = append(history, ema(window, MACDFast)-ema(window, MACDSlow))
	}
	return history
}

// StochasticK is the position of the last close within the trailing
// period range, 0-100. Returns 50 for a flat window or short history.
func StochasticK(closes []float64, period int) float64 {
	if len(closes) < period {
		return 50
	}

	low, high := minMax(closes, period)
	if high == low {
		return 50
	}

	last := closes[len(closes)-1]
	return (last - low) / (high - low) * 100
}
