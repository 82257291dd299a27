package models

import "time"

// WatchlistItem is a stock tracked by the user, keyed by stock code.
type WatchlistItem struct {
	ID          string    `json:"id"`
	StockCode   string    `json:"stock_code"`
	StockName   string    `json:"stock_name"`
	Market      string    `json:"market,omitempty"`
	BuyPrice    *int64    `json:"buy_price,omitempty"`
	BuyQuantity *int64    `json:"buy_quantity,omitempty"`
	BuyDate     string    `json:"buy_date,omitempty"` // YYYY-MM-DD
	Memo        string    `json:"memo,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WatchlistUpdate is a partial update; nil fields are left unchanged.
type WatchlistUpdate struct {
	StockName   *string `json:"stock_name,omitempty"`
	Market      *string `json:"market,omitempty"`
	BuyPrice    *int64  `json:"buy_price,omitempty"`
	BuyQuantity *int64  `json:"buy_quantity,omitempty"`
	BuyDate     *string `json:"buy_date,omitempty"`
	Memo        *string `json:"memo,omitempty"`
}

// Apply copies the non-nil fields onto item.
func (u WatchlistUpdate) Apply(item *WatchlistItem) {
	if u.StockName != nil {
		item.StockName = *u.StockName
	}
	if u.Market != nil {
		item.Market = *u.Market
	}
	if u.BuyPrice != nil {
		item.BuyPrice = u.BuyPrice
	}
	if u.BuyQuantity != nil {
		item.BuyQuantity = u.BuyQuantity
	}
	if u.BuyDate != nil {
		item.BuyDate = *u.BuyDate
	}
	if u.Memo != nil {
		item.Memo = *u.Memo
	}
}

// IsEmpty reports whether the update changes nothing.
func (u WatchlistUpdate) IsEmpty() bool {
	return u.StockName == nil && u.Market == nil && u.BuyPrice == nil &&
		u.BuyQuantity == nil && u.BuyDate == nil && u.Memo == nil
}
