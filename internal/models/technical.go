package models

// TechnicalBundle holds the indicators derived from one price series.
type TechnicalBundle struct {
	MA5   float64 `json:"ma5"`
	MA20  float64 `json:"ma20"`
	MA60  float64 `json:"ma60"`
	MA120 float64 `json:"ma120"`

	RSI14       float64 `json:"rsi_14"`
	MACD        float64 `json:"macd"`
	MACDSignal  float64 `json:"macd_signal"`
	StochasticK float64 `json:"stochastic_k"`

	BollingerUpper  float64 `json:"bb_upper"`
	BollingerMiddle float64 `json:"bb_middle"`
	BollingerLower  float64 `json:"bb_lower"`

	VolumeMA20 float64 `json:"volume_ma20"`

	Series PriceSeries `json:"-"`
}

// NeutralTechnicalBundle returns the defaults used when history is too short.
func NeutralTechnicalBundle(series PriceSeries) TechnicalBundle {
	return TechnicalBundle{
		RSI14:       50,
		StochasticK: 50,
		Series:      series,
	}
}
