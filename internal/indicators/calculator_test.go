package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/stockanalyzer/internal/models"
)

func series(closes []float64, volume int64) models.PriceSeries {
	s := make(models.PriceSeries, len(closes))
	for i, c := range closes {
		s[i] = models.PricePoint{Close: c, Volume: volume}
	}
	return s
}

func ascending(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	return closes
}

func TestCompute_ShortHistoryReturnsDefaults(t *testing.T) {
	for _, n := range []int{0, 1, 14, 19} {
		bundle := Compute(series(ascending(n), 100), 50, DefaultOptions())

		assert.Equal(t, 0.0, bundle.MA5, "n=%d", n)
		assert.Equal(t, 0.0, bundle.MA20, "n=%d", n)
		assert.Equal(t, 0.0, bundle.MA60, "n=%d", n)
		assert.Equal(t, 0.0, bundle.MA120, "n=%d", n)
		assert.Equal(t, 50.0, bundle.RSI14, "n=%d", n)
		assert.Equal(t, 50.0, bundle.StochasticK, "n=%d", n)
		assert.Equal(t, 0.0, bundle.MACD, "n=%d", n)
		assert.Equal(t, 0.0, bundle.MACDSignal, "n=%d", n)
		assert.Equal(t, 0.0, bundle.BollingerUpper, "n=%d", n)
		assert.Equal(t, 0.0, bundle.BollingerLower, "n=%d", n)
		assert.Equal(t, 0.0, bundle.VolumeMA20, "n=%d", n)
		assert.Len(t, bundle.Series, n)
	}
}

func TestCompute_AscendingSeries(t *testing.T) {
	bundle := Compute(series(ascending(120), 1000), 120, DefaultOptions())

	assert.InDelta(t, 118.0, bundle.MA5, 1e-9)
	assert.InDelta(t, 110.5, bundle.MA20, 1e-9)
	assert.InDelta(t, 90.5, bundle.MA60, 1e-9)
	assert.InDelta(t, 60.5, bundle.MA120, 1e-9)
	assert.True(t, bundle.MA5 > bundle.MA20 && bundle.MA20 > bundle.MA60)

	assert.Equal(t, 100.0, bundle.RSI14)
	assert.Equal(t, 100.0, bundle.StochasticK)

	assert.Greater(t, bundle.MACD, 0.0)
	assert.InDelta(t, bundle.MACD*0.8, bundle.MACDSignal, 1e-9)

	std := math.Sqrt(399.0 / 12.0)
	assert.InDelta(t, 110.5, bundle.BollingerMiddle, 1e-9)
	assert.InDelta(t, 110.5+2*std, bundle.BollingerUpper, 1e-9)
	assert.InDelta(t, 110.5-2*std, bundle.BollingerLower, 1e-9)

	assert.InDelta(t, 1000.0, bundle.VolumeMA20, 1e-9)
}

func TestCompute_LongWindowsFallBackToCurrentPrice(t *testing.T) {
	bundle := Compute(series(ascending(30), 10), 77, DefaultOptions())

	assert.InDelta(t, 28.0, bundle.MA5, 1e-9)
	assert.InDelta(t, 20.5, bundle.MA20, 1e-9)
	assert.Equal(t, 77.0, bundle.MA60)
	assert.Equal(t, 77.0, bundle.MA120)
}

func TestRSI(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   float64
	}{
		{"short history", ascending(14), 50},
		{"only gains", ascending(15), 100},
		{"flat window has no losses", []float64{5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5}, 100},
		{"balanced gains and losses", []float64{10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10}, 50},
		{"only losses", []float64{15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RSI(tt.closes, RSIPeriod)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		})
	}
}

func TestRSI_UsesOnlyTrailingWindow(t *testing.T) {
	// an early crash must not leak into the trailing 14 deltas
	closes := append([]float64{100, 1}, ascending(20)...)
	assert.Equal(t, 100.0, RSI(closes, RSIPeriod))
}

func TestStochasticK(t *testing.T) {
	flat := []float64{7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7}
	assert.Equal(t, 50.0, StochasticK(flat, StochasticPeriod))
	assert.Equal(t, 50.0, StochasticK(ascending(13), StochasticPeriod))

	descending := []float64{14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	assert.Equal(t, 0.0, StochasticK(descending, StochasticPeriod))

	mid := []float64{0, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 5}
	assert.InDelta(t, 50.0, StochasticK(mid, StochasticPeriod), 1e-9)
}

func TestEMA(t *testing.T) {
	assert.InDelta(t, 2.25, ema([]float64{1, 2, 3}, 3), 1e-9)
	// seeded from the close N samples back, earlier closes do not contribute
	assert.InDelta(t, 2.25, ema([]float64{100, 1, 2, 3}, 3), 1e-9)
	assert.Equal(t, 3.0, ema([]float64{1, 2, 3}, 5))
	assert.Equal(t, 0.0, ema(nil, 5))
}

func TestMACD(t *testing.T) {
	line, signal := MACD(ascending(25), SignalLineProxy)
	assert.Equal(t, 0.0, line)
	assert.Equal(t, 0.0, signal)

	// ema9 needs 34 closes, otherwise the proxy is used
	line, signal = MACD(ascending(30), SignalLineEMA9)
	require.NotZero(t, line)
	assert.InDelta(t, line*0.8, signal, 1e-9)

	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + 10*math.Sin(float64(i)/5)
	}
	line, signal = MACD(closes, SignalLineEMA9)
	history := macdHistory(closes, MACDSignal)
	require.Len(t, history, MACDSignal)
	assert.InDelta(t, line, history[len(history)-1], 1e-9)
	assert.InDelta(t, ema(history, MACDSignal), signal, 1e-9)
}

func TestCompute_IsDeterministic(t *testing.T) {
	s := series(ascending(90), 500)
	assert.Equal(t, Compute(s, 90, DefaultOptions()), Compute(s, 90, DefaultOptions()))
}
