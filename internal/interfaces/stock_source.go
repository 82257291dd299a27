package interfaces

import (
	"context"

	"github.com/ternarybob/stockanalyzer/internal/models"
)

// StockSource provides quotes, fundamentals and price history
type StockSource interface {
	// SearchStock resolves a name or code to a six digit stock code
	SearchStock(ctx context.Context, query string) (string, error)

	// GetStockInfo returns the current snapshot for a stock code
	GetStockInfo(ctx context.Context, code string) (*models.StockSnapshot, error)

	// GetPriceHistory returns up to count daily samples, oldest first
	GetPriceHistory(ctx context.Context, code string, count int) (models.PriceSeries, error)
}
