package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/stockanalyzer/internal/interfaces"
	"github.com/ternarybob/stockanalyzer/internal/naver"
	"github.com/ternarybob/stockanalyzer/internal/scoring"
	"github.com/ternarybob/stockanalyzer/internal/services/analysis"
	"github.com/ternarybob/stockanalyzer/internal/services/watchlist"
)

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	var verr *watchlist.ValidationError
	var apiErr *naver.APIError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, scoring.ErrInvalidWeights),
		errors.Is(err, analysis.ErrNoStocks),
		errors.Is(err, analysis.ErrTooManyStocks):
		return http.StatusBadRequest
	case errors.Is(err, naver.ErrStockNotFound),
		errors.Is(err, scoring.ErrInsufficientData),
		errors.Is(err, interfaces.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
