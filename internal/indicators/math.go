package indicators

import "math"

// sma calculates the simple moving average of the last n values
func sma(values []float64, n int) float64 {
	if len(values) < n || n <= 0 {
		return 0
	}
	sum := 0.0
	for i := len(values) - n; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(n)
}

// popStddev calculates the population standard deviation of the last n values
func popStddev(values []float64, n int) float64 {
	if len(values) < n || n <= 0 {
		return 0
	}
	mean := sma(values, n)
	sumSq := 0.0
	for i := len(values) - n; i < len(values); i++ {
		d := values[i] - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n))
}

// ema seeds with the close `period` samples back and smooths forward over
// the remaining period-1 closes.
func ema(values []float64, period int) float64 {
	if len(values) == 0 {
		return 0
	}
	if len(values) < period {
		return values[len(values)-1]
	}
	multiplier := 2.0 / float64(period+1)
	result := values[len(values)-period]
	for _, v := range values[len(values)-period+1:] {
		result = v*multiplier + result*(1-multiplier)
	}
	return result
}

// minMax returns the lowest and highest of the last n values
func minMax(values []float64, n int) (float64, float64) {
	window := values[len(values)-n:]
	low, high := window[0], window[0]
	for _, v := range window[1:] {
		if v < low {
			low = v
		}
		if v > high {
			high = v
		}
	}
	return low, high
}
