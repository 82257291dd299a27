// -----------------------------------------------------------------------
// Last Modified: Friday, 16th October 2026 11:18:04 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package watchlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockanalyzer/internal/common"
	"github.com/ternarybob/stockanalyzer/internal/interfaces"
	"github.com/ternarybob/stockanalyzer/internal/models"
)

// ValidationError wraps input validation failures so handlers can map them to 400
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "invalid watchlist item: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// AddRequest is the payload for adding or replacing a watchlist entry
type AddRequest struct {
	StockCode   string `json:"stock_code" validate:"required,len=6,numeric"`
	StockName   string `json:"stock_name" validate:"required,max=100"`
	Market      string `json:"market" validate:"omitempty,oneof=KOSPI KOSDAQ KONEX"`
	BuyPrice    *int64 `json:"buy_price" validate:"omitempty,min=0"`
	BuyQuantity *int64 `json:"buy_quantity" validate:"omitempty,min=0"`
	BuyDate     string `json:"buy_date" validate:"omitempty,datetime=2006-01-02"`
	Memo        string `json:"memo" validate:"max=1000"`
}

// Service manages the user's watchlist
type Service struct {
	storage      interfaces.WatchlistStorage
	eventService interfaces.EventService
	logger       arbor.ILogger
	validate     *validator.Validate
	now          func() time.Time
}

// NewService creates a new watchlist service
func NewService(storage interfaces.WatchlistStorage, eventService interfaces.EventService, logger arbor.ILogger) *Service {
	return &Service{
		storage:      storage,
		eventService: eventService,
		logger:       logger,
		validate:     validator.New(),
		now:          time.Now,
	}
}

// Add inserts the stock or replaces the existing entry for its code.
// Returns the stored item and whether it was newly created.
func (s *Service) Add(ctx context.Context, req AddRequest) (*models.WatchlistItem, bool, error) {
	req.StockCode = strings.TrimSpace(req.StockCode)
	req.StockName = strings.TrimSpace(req.StockName)
	if err := s.validate.Struct(req); err != nil {
		return nil, false, &ValidationError{Err: err}
	}

	now := s.now().UTC()
	item := &models.WatchlistItem{
		ID:          common.NewWatchlistID(),
		StockCode:   req.StockCode,
		StockName:   req.StockName,
		Market:      req.Market,
		BuyPrice:    req.BuyPrice,
		BuyQuantity: req.BuyQuantity,
		BuyDate:     req.BuyDate,
		Memo:        req.Memo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.storage.Upsert(ctx, item)
	if err != nil {
		return nil, false, fmt.Errorf("failed to save watchlist item %s: %w", req.StockCode, err)
	}

	action := "updated"
	if created {
		action = "added"
	}
	s.logger.Info().
		Str("code", item.StockCode).
		Str("action", action).
		Msg("Watchlist item saved")
	s.publish(ctx, action, item.StockCode)

	return item, created, nil
}

// List returns all watchlist items, newest first
func (s *Service) List(ctx context.Context) ([]*models.WatchlistItem, error) {
	return s.storage.List(ctx)
}

// Get returns the watchlist entry for code
func (s *Service) Get(ctx context.Context, code string) (*models.WatchlistItem, error) {
	return s.storage.Get(ctx, code)
}

// Exists reports whether code is on the watchlist
func (s *Service) Exists(ctx context.Context, code string) (bool, error) {
	return s.storage.Exists(ctx, code)
}

// Update applies a partial update to an existing entry
func (s *Service) Update(ctx context.Context, code string, update models.WatchlistUpdate) (*models.WatchlistItem, error) {
	if update.IsEmpty() {
		return nil, &ValidationError{Err: errors.New("no fields to update")}
	}
	if err := validateUpdate(s.validate, update); err != nil {
		return nil, &ValidationError{Err: err}
	}

	item, err := s.storage.Update(ctx, code, update)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "updated", code)
	return item, nil
}

// Delete removes code from the watchlist
func (s *Service) Delete(ctx context.Context, code string) error {
	if err := s.storage.Delete(ctx, code); err != nil {
		return err
	}

	s.logger.Info().Str("code", code).Msg("Watchlist item removed")
	s.publish(ctx, "removed", code)
	return nil
}

func validateUpdate(v *validator.Validate, u models.WatchlistUpdate) error {
	if u.StockName != nil {
		if err := v.Var(*u.StockName, "required,max=100"); err != nil {
			return fmt.Errorf("stock_name: %w", err)
		}
	}
	if u.Market != nil {
		if err := v.Var(*u.Market, "omitempty,oneof=KOSPI KOSDAQ KONEX"); err != nil {
			return fmt.Errorf("market: %w", err)
		}
	}
	if u.BuyPrice != nil && *u.BuyPrice < 0 {
		return errors.New("buy_price must not be negative")
	}
	if u.BuyQuantity != nil && *u.BuyQuantity < 0 {
		return errors.New("buy_quantity must not be negative")
	}
	if u.BuyDate != nil {
		if err := v.Var(*u.BuyDate, "omitempty,datetime=2006-01-02"); err != nil {
			return fmt.Errorf("buy_date: %w", err)
		}
	}
	if u.Memo != nil {
		if err := v.Var(*u.Memo, "max=1000"); err != nil {
			return fmt.Errorf("memo: %w", err)
		}
	}
	return nil
}

func (s *Service) publish(ctx context.Context, action, code string) {
	if s.eventService == nil {
		return
	}
	event := interfaces.Event{
		Type: interfaces.EventWatchlistChanged,
		Payload: map[string]interface{}{
			"action": action,
			"code":   code,
		},
	}
	if err := s.eventService.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("code", code).Msg("Failed to publish watchlist event")
	}
}
