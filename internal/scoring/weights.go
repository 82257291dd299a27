package scoring

import (
	"errors"
	"fmt"

	"github.com/ternarybob/stockanalyzer/internal/models"
)

var (
	// ErrInvalidWeights is returned for negative weights or a zero pair.
	ErrInvalidWeights = errors.New("invalid weights")
	// ErrInsufficientData is returned when a snapshot has neither name nor price.
	ErrInsufficientData = errors.New("insufficient data")
)

// DefaultWeights returns the 40/60 technical/fundamental split.
func DefaultWeights() models.Weights {
	return models.Weights{Technical: 40, Fundamental: 60}
}

// NormalizeWeights scales a raw pair so that it sums to 1.
func NormalizeWeights(w models.Weights) (models.Weights, error) {
	if w.Technical < 0 || w.Fundamental < 0 {
		return models.Weights{}, fmt.Errorf("%w: negative weight (%g/%g)", ErrInvalidWeights, w.Technical, w.Fundamental)
	}
	sum := w.Technical + w.Fundamental
	if sum == 0 {
		return models.Weights{}, fmt.Errorf("%w: weights sum to zero", ErrInvalidWeights)
	}
	return models.Weights{
		Technical:   w.Technical / sum,
		Fundamental: w.Fundamental / sum,
	}, nil
}
