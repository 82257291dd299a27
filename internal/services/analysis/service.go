// -----------------------------------------------------------------------
// Last Modified: Friday, 16th October 2026 1:47:31 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/ternarybob/stockanalyzer/internal/common"
	"github.com/ternarybob/stockanalyzer/internal/indicators"
	"github.com/ternarybob/stockanalyzer/internal/interfaces"
	"github.com/ternarybob/stockanalyzer/internal/models"
	"github.com/ternarybob/stockanalyzer/internal/naver"
	"github.com/ternarybob/stockanalyzer/internal/scoring"
)

// Batch summary bands
const (
	BuyScore  = 60.0
	SellScore = 40.0
)

// flightTimeout bounds one shared analysis run
const flightTimeout = 2 * time.Minute

var (
	// ErrNoStocks is returned for an empty batch
	ErrNoStocks = errors.New("최소 1개 이상의 종목을 입력해주세요")
	// ErrTooManyStocks is returned when a batch exceeds Options.BatchMax
	ErrTooManyStocks = errors.New("종목 수 초과")
)

// Options configures the analysis pipeline
type Options struct {
	Indicators  indicators.Options
	ChartCount  int
	SaveHistory bool
	BatchMax    int
	BatchDelay  time.Duration
	Weights     models.Weights // used by the watchlist refresh
}

// DefaultOptions mirrors the default configuration
func DefaultOptions() Options {
	return Options{
		Indicators:  indicators.DefaultOptions(),
		ChartCount:  naver.DefaultChartCount,
		SaveHistory: true,
		BatchMax:    20,
		BatchDelay:  500 * time.Millisecond,
		Weights:     scoring.DefaultWeights(),
	}
}

// Service runs the fetch, indicator and scoring pipeline for API callers
// and the scheduler
type Service struct {
	source       interfaces.StockSource
	history      interfaces.AnalysisStorage
	watchlist    interfaces.WatchlistStorage
	eventService interfaces.EventService
	analyzer     *scoring.Analyzer
	logger       arbor.ILogger
	options      Options
	group        singleflight.Group
	now          func() time.Time
}

// NewService creates a new analysis service. history, watchlist and
// eventService may be nil.
func NewService(
	source interfaces.StockSource,
	history interfaces.AnalysisStorage,
	watchlist interfaces.WatchlistStorage,
	eventService interfaces.EventService,
	logger arbor.ILogger,
	options Options,
) *Service {
	if options.ChartCount <= 0 {
		options.ChartCount = naver.DefaultChartCount
	}
	if options.BatchMax <= 0 {
		options.BatchMax = 20
	}
	if options.Weights == (models.Weights{}) {
		options.Weights = scoring.DefaultWeights()
	}
	return &Service{
		source:       source,
		history:      history,
		watchlist:    watchlist,
		eventService: eventService,
		analyzer:     scoring.NewAnalyzer(),
		logger:       logger,
		options:      options,
		now:          time.Now,
	}
}

// Analyze resolves query to a stock code and runs the full pipeline.
// Concurrent identical requests share one upstream fetch.
func (s *Service) Analyze(ctx context.Context, query string, weights models.Weights) (*models.AnalysisResult, error) {
	if _, err := scoring.NormalizeWeights(weights); err != nil {
		return nil, err
	}

	code, err := s.source.SearchStock(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", query, err)
	}

	// The flight outlives any single caller; each caller waits on its own ctx
	key := fmt.Sprintf("%s|%g|%g", code, weights.Technical, weights.Fundamental)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flightTimeout)
		defer cancel()
		return s.run(runCtx, code, query, weights)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug().Str("code", code).Msg("Shared in-flight analysis")
		}
		result := *res.Val.(*models.AnalysisResult)
		return &result, nil
	}
}

func (s *Service) run(ctx context.Context, code, query string, weights models.Weights) (*models.AnalysisResult, error) {
	start := time.Now()

	snapshot, err := s.source.GetStockInfo(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stock %s: %w", code, err)
	}

	series, err := s.source.GetPriceHistory(ctx, code, s.options.ChartCount)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Technical indicators fall back to neutral defaults
		s.logger.Warn().Err(err).Str("code", code).Msg("Price history unavailable")
		series = nil
	}

	bundle := indicators.Compute(series, snapshot.CurrentPrice, s.options.Indicators)

	result, err := s.analyzer.Analyze(snapshot, &bundle, weights)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze %s: %w", code, err)
	}
	if result.Code == "" {
		result.Code = code
	}
	if result.Name == "" {
		result.Name = query
	}
	result.AnalyzedAt = s.now().UTC()

	s.logger.Info().
		Str("code", result.Code).
		Str("name", result.Name).
		Float64("score", result.TotalScore).
		Str("recommendation", result.Recommendation.Label).
		Int("samples", len(series)).
		Dur("duration", time.Since(start)).
		Msg("Analysis completed")

	s.saveHistory(ctx, result)
	s.publish(ctx, interfaces.EventAnalysisCompleted, map[string]interface{}{
		"code":           result.Code,
		"name":           result.Name,
		"total_score":    result.TotalScore,
		"recommendation": result.Recommendation.Label,
	})

	return result, nil
}

func (s *Service) saveHistory(ctx context.Context, result *models.AnalysisResult) {
	if !s.options.SaveHistory || s.history == nil {
		return
	}
	record := models.NewAnalysisRecord(common.NewAnalysisID(), result)
	if err := s.history.Save(ctx, record); err != nil {
		s.logger.Warn().Err(err).Str("code", result.Code).Msg("Failed to save analysis history")
	}
}

// AnalyzeBatch analyzes up to Options.BatchMax stocks sequentially, pacing
// upstream requests by Options.BatchDelay. Individual failures are
// reported in the summary rather than failing the batch.
func (s *Service) AnalyzeBatch(ctx context.Context, queries []string, weights models.Weights) (*models.BatchResult, error) {
	if len(queries) == 0 {
		return nil, ErrNoStocks
	}
	if len(queries) > s.options.BatchMax {
		return nil, fmt.Errorf("%w: 최대 %d개 종목까지 분석 가능합니다", ErrTooManyStocks, s.options.BatchMax)
	}
	if _, err := scoring.NormalizeWeights(weights); err != nil {
		return nil, err
	}

	return s.batch(ctx, queries, weights)
}

func (s *Service) batch(ctx context.Context, queries []string, weights models.Weights) (*models.BatchResult, error) {
	limit := rate.Inf
	if s.options.BatchDelay > 0 {
		limit = rate.Every(s.options.BatchDelay)
	}
	pacer := rate.NewLimiter(limit, 1)

	results := make([]*models.AnalysisResult, 0, len(queries))
	var failures []string

	for i, query := range queries {
		if err := pacer.Wait(ctx); err != nil {
			return nil, fmt.Errorf("batch cancelled after %d of %d: %w", i, len(queries), err)
		}

		result, err := s.Analyze(ctx, query, weights)
		switch {
		case err == nil:
			results = append(results, result)
		case ctx.Err() != nil:
			return nil, fmt.Errorf("batch cancelled after %d of %d: %w", i, len(queries), ctx.Err())
		case errors.Is(err, naver.ErrStockNotFound), errors.Is(err, scoring.ErrInsufficientData):
			failures = append(failures, query)
		default:
			failures = append(failures, fmt.Sprintf("%s: %v", query, err))
		}

		s.publish(ctx, interfaces.EventBatchProgress, map[string]interface{}{
			"index": i + 1,
			"total": len(queries),
			"query": query,
			"ok":    err == nil,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TotalScore > results[j].TotalScore
	})

	return &models.BatchResult{
		Count:   len(results),
		Results: results,
		Summary: summarize(results, failures),
	}, nil
}

func summarize(results []*models.AnalysisResult, failures []string) models.BatchSummary {
	summary := models.BatchSummary{
		TotalAnalyzed: len(results),
		Failed:        len(failures),
		Errors:        failures,
	}

	var total float64
	for _, r := range results {
		total += r.TotalScore
		switch {
		case r.TotalScore >= BuyScore:
			summary.BuySignals++
		case r.TotalScore < SellScore:
			summary.SellSignals++
		}
	}
	summary.NeutralSignals = len(results) - summary.BuySignals - summary.SellSignals
	if len(results) > 0 {
		summary.AvgScore = total / float64(len(results))
	}
	return summary
}

// Search resolves query and returns the matching stock with its price and
// market cap. Returns naver.ErrStockNotFound when nothing matches.
func (s *Service) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	code, err := s.source.SearchStock(ctx, query)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.source.GetStockInfo(ctx, code)
	if err != nil {
		return nil, err
	}

	name := snapshot.Name
	if name == "" {
		name = query
	}
	return []models.SearchResult{{
		Code:         code,
		Name:         name,
		CurrentPrice: snapshot.CurrentPrice,
		MarketCap:    snapshot.MarketCap,
	}}, nil
}

// History returns saved analyses, newest first
func (s *Service) History(ctx context.Context, code string, limit int) ([]*models.AnalysisRecord, error) {
	if s.history == nil {
		return []*models.AnalysisRecord{}, nil
	}
	return s.history.History(ctx, code, limit)
}

// RefreshWatchlist re-analyzes every watchlist stock with the default
// weights. The batch size limit does not apply.
func (s *Service) RefreshWatchlist(ctx context.Context) (*models.BatchResult, error) {
	if s.watchlist == nil {
		return nil, fmt.Errorf("watchlist storage not configured")
	}

	items, err := s.watchlist.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}

	codes := make([]string, len(items))
	for i, item := range items {
		codes[i] = item.StockCode
	}

	result := &models.BatchResult{Results: []*models.AnalysisResult{}}
	if len(codes) > 0 {
		result, err = s.batch(ctx, codes, s.options.Weights)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Int("stocks", len(codes)).
		Int("analyzed", result.Summary.TotalAnalyzed).
		Int("failed", result.Summary.Failed).
		Msg("Watchlist refreshed")

	s.publish(ctx, interfaces.EventWatchlistRefreshed, map[string]interface{}{
		"count":  result.Count,
		"failed": result.Summary.Failed,
	})

	return result, nil
}

func (s *Service) publish(ctx context.Context, eventType interfaces.EventType, payload map[string]interface{}) {
	if s.eventService == nil {
		return
	}
	if err := s.eventService.Publish(ctx, interfaces.Event{Type: eventType, Payload: payload}); err != nil {
		s.logger.Warn().Err(err).Str("event_type", string(eventType)).Msg("Failed to publish event")
	}
}
