// -----------------------------------------------------------------------
// Last Modified: Friday, 16th October 2026 4:12:37 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockanalyzer/internal/common"
	"github.com/ternarybob/stockanalyzer/internal/handlers"
	"github.com/ternarybob/stockanalyzer/internal/httpclient"
	"github.com/ternarybob/stockanalyzer/internal/indicators"
	"github.com/ternarybob/stockanalyzer/internal/interfaces"
	"github.com/ternarybob/stockanalyzer/internal/models"
	"github.com/ternarybob/stockanalyzer/internal/naver"
	"github.com/ternarybob/stockanalyzer/internal/services/analysis"
	"github.com/ternarybob/stockanalyzer/internal/services/events"
	"github.com/ternarybob/stockanalyzer/internal/services/presets"
	"github.com/ternarybob/stockanalyzer/internal/services/scheduler"
	"github.com/ternarybob/stockanalyzer/internal/services/watchlist"
	"github.com/ternarybob/stockanalyzer/internal/storage"
)

// WatchlistRefreshJob is the scheduler job name for the watchlist refresh
const WatchlistRefreshJob = "watchlist_refresh"

// refreshTimeout bounds a single scheduled watchlist refresh
const refreshTimeout = 10 * time.Minute

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Event-driven services
	EventService     interfaces.EventService
	SchedulerService interfaces.SchedulerService

	// Domain services
	NaverClient      *naver.Client
	AnalysisService  *analysis.Service
	WatchlistService *watchlist.Service
	PresetService    *presets.Service

	// Handlers
	APIHandler       *handlers.APIHandler
	AnalysisHandler  *handlers.AnalysisHandler
	WatchlistHandler *handlers.WatchlistHandler
	PresetsHandler   *handlers.PresetsHandler
	SchedulerHandler *handlers.SchedulerHandler
	WSHandler        *handlers.WebSocketHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app.EventService = events.NewService(app.Logger)
	if err := events.SubscribeLoggerToAllEvents(app.EventService, app.Logger); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to subscribe event logger: %w", err)
	}

	if err := app.initServices(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	if err := app.initScheduler(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Str("storage", cfg.Storage.Type).
		Bool("scheduler_enabled", cfg.Scheduler.Enabled).
		Bool("save_history", cfg.Analysis.SaveHistory).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the configured storage backend
func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}
	a.StorageManager = storageManager

	a.Logger.Debug().Str("type", a.Config.Storage.Type).Msg("Storage initialized")
	return nil
}

func (a *App) initServices() error {
	naverCfg := a.Config.Naver
	httpClient, err := httpclient.NewScraperClient(naverCfg.Timeout())
	if err != nil {
		return err
	}
	opts := []naver.ClientOption{
		naver.WithLogger(a.Logger),
		naver.WithRateLimit(naverCfg.RateLimit),
		naver.WithHTTPClient(httpClient),
	}
	if naverCfg.BaseURL != "" {
		opts = append(opts, naver.WithBaseURL(naverCfg.BaseURL))
	}
	if naverCfg.MobileURL != "" {
		opts = append(opts, naver.WithMobileURL(naverCfg.MobileURL))
	}
	if naverCfg.ChartURL != "" {
		opts = append(opts, naver.WithChartURL(naverCfg.ChartURL))
	}
	if naverCfg.UserAgent != "" {
		opts = append(opts, naver.WithUserAgent(naverCfg.UserAgent))
	}
	a.NaverClient = naver.NewClient(opts...)

	presetService, err := presets.NewService(a.Config.Analysis.PresetsFile, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to load presets: %w", err)
	}
	a.PresetService = presetService

	a.WatchlistService = watchlist.NewService(a.StorageManager.WatchlistStorage(), a.EventService, a.Logger)

	a.AnalysisService = analysis.NewService(
		a.NaverClient,
		a.StorageManager.AnalysisStorage(),
		a.StorageManager.WatchlistStorage(),
		a.EventService,
		a.Logger,
		analysisOptions(a.Config),
	)

	a.Logger.Debug().
		Int("presets", len(presetService.List())).
		Int("rate_limit", naverCfg.RateLimit).
		Msg("Services initialized")
	return nil
}

func analysisOptions(cfg *common.Config) analysis.Options {
	return analysis.Options{
		Indicators:  indicators.Options{MACDSignal: indicators.SignalLineMode(cfg.Analysis.MACDSignal)},
		ChartCount:  cfg.Naver.ChartCount,
		SaveHistory: cfg.Analysis.SaveHistory,
		BatchMax:    cfg.Analysis.BatchMax,
		BatchDelay:  cfg.Analysis.Delay(),
		Weights:     defaultWeights(cfg),
	}
}

func defaultWeights(cfg *common.Config) models.Weights {
	return models.Weights{
		Technical:   cfg.Analysis.TechWeight,
		Fundamental: cfg.Analysis.FundWeight,
	}
}

func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler()
	a.AnalysisHandler = handlers.NewAnalysisHandler(a.AnalysisService, defaultWeights(a.Config), a.Logger)
	a.WatchlistHandler = handlers.NewWatchlistHandler(a.WatchlistService, a.AnalysisService, a.Logger)
	a.PresetsHandler = handlers.NewPresetsHandler(a.PresetService)
	a.WSHandler = handlers.NewWebSocketHandler(a.EventService, a.Logger, &a.Config.WebSocket)
}

// initScheduler registers the watchlist refresh job. The job can always be
// triggered manually; cron only runs it when the scheduler is enabled.
func (a *App) initScheduler() error {
	a.SchedulerService = scheduler.NewService(a.Logger, a.Config.Scheduler.Location())
	a.SchedulerHandler = handlers.NewSchedulerHandler(a.SchedulerService, a.Logger)

	if err := a.SchedulerService.RegisterJob(
		WatchlistRefreshJob,
		a.Config.Scheduler.WatchlistRefresh,
		"Re-analyze every watchlist stock after market close",
		a.refreshWatchlist,
	); err != nil {
		if a.Config.Scheduler.Enabled {
			return err
		}
		a.Logger.Warn().Err(err).Msg("Watchlist refresh job not registered")
		return nil
	}

	if !a.Config.Scheduler.Enabled {
		a.Logger.Info().Msg("Scheduler disabled - watchlist refresh runs on demand only")
		return nil
	}

	if err := a.SchedulerService.Start(); err != nil {
		return err
	}
	a.Logger.Info().
		Str("schedule", a.Config.Scheduler.WatchlistRefresh).
		Str("timezone", a.Config.Scheduler.Location().String()).
		Msg("Scheduler started")
	return nil
}

func (a *App) refreshWatchlist() error {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	_, err := a.AnalysisService.RefreshWatchlist(ctx)
	return err
}

// Close shuts down all services in reverse dependency order
func (a *App) Close() error {
	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler service")
		}
	}

	if a.WSHandler != nil {
		if err := a.WSHandler.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close WebSocket handler")
		}
	}

	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close event service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
