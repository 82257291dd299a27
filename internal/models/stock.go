package models

// PricePoint is a single daily sample from the price history.
type PricePoint struct {
	Date   string  `json:"date,omitempty"` // YYYYMMDD as reported by the chart feed
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// PriceSeries is an ordered price history, oldest sample first.
type PriceSeries []PricePoint

// Closes returns the closing prices in series order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, p := range s {
		closes[i] = p.Close
	}
	return closes
}

// Volumes returns the traded volumes in series order.
func (s PriceSeries) Volumes() []float64 {
	volumes := make([]float64, len(s))
	for i, p := range s {
		volumes[i] = float64(p.Volume)
	}
	return volumes
}

// StockSnapshot is a point-in-time record of a listed stock.
// Zero is the "no data" value for every numeric field.
type StockSnapshot struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Market string `json:"market,omitempty"`

	CurrentPrice float64 `json:"current_price"`
	PrevClose    float64 `json:"prev_close"`
	OpenPrice    float64 `json:"open_price"`
	HighPrice    float64 `json:"high_price"`
	LowPrice     float64 `json:"low_price"`
	Volume       int64   `json:"volume"`
	MarketCap    float64 `json:"market_cap"` // KRW

	High52W float64 `json:"high_52w"`
	Low52W  float64 `json:"low_52w"`

	PER           float64 `json:"per"`
	PBR           float64 `json:"pbr"`
	EPS           float64 `json:"eps"`
	BPS           float64 `json:"bps"`
	DividendYield float64 `json:"dividend_yield"`
	ROE           float64 `json:"roe"`
	ForeignRatio  float64 `json:"foreign_ratio"`
}

// HasIdentity reports whether the snapshot carries a name or a price.
func (s *StockSnapshot) HasIdentity() bool {
	return s.Name != "" || s.CurrentPrice != 0
}

// StockInfo is the subset of snapshot fields echoed with every analysis.
type StockInfo struct {
	PER          float64 `json:"per"`
	PBR          float64 `json:"pbr"`
	EPS          float64 `json:"eps"`
	ROE          float64 `json:"roe"`
	High52W      float64 `json:"high_52w"`
	Low52W       float64 `json:"low_52w"`
	MarketCap    float64 `json:"market_cap"`
	Volume       int64   `json:"volume"`
	ForeignRatio float64 `json:"foreign_ratio"`
}

// Info extracts the StockInfo block from the snapshot.
func (s *StockSnapshot) Info() StockInfo {
	return StockInfo{
		PER:          s.PER,
		PBR:          s.PBR,
		EPS:          s.EPS,
		ROE:          s.ROE,
		High52W:      s.High52W,
		Low52W:       s.Low52W,
		MarketCap:    s.MarketCap,
		Volume:       s.Volume,
		ForeignRatio: s.ForeignRatio,
	}
}

// SearchResult is a single stock search hit.
type SearchResult struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	CurrentPrice float64 `json:"current_price"`
	MarketCap    float64 `json:"market_cap"`
}
