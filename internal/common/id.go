package common

import (
	"github.com/google/uuid"
)

// NewWatchlistID generates a watchlist item ID
// Format: wl_<uuid>
func NewWatchlistID() string {
	return "wl_" + uuid.New().String()
}

// NewAnalysisID generates an analysis history record ID
// Format: an_<uuid>
func NewAnalysisID() string {
	return "an_" + uuid.New().String()
}
