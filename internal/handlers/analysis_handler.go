package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockanalyzer/internal/interfaces"
	"github.com/ternarybob/stockanalyzer/internal/models"
	"github.com/ternarybob/stockanalyzer/internal/naver"
)

// AnalyzeRequest is the body of POST /api/analyze
type AnalyzeRequest struct {
	Stock      string   `json:"stock" validate:"required"`
	TechWeight *float64 `json:"tech_weight" validate:"omitempty,gte=0,lte=100"`
	FundWeight *float64 `json:"fund_weight" validate:"omitempty,gte=0,lte=100"`
}

// BatchAnalyzeRequest is the body of POST /api/analyze/batch
type BatchAnalyzeRequest struct {
	Stocks     []string `json:"stocks"`
	TechWeight *float64 `json:"tech_weight" validate:"omitempty,gte=0,lte=100"`
	FundWeight *float64 `json:"fund_weight" validate:"omitempty,gte=0,lte=100"`
}

// AnalyzeResponse is the wire form of one analysis
type AnalyzeResponse struct {
	Success             bool             `json:"success"`
	Code                string           `json:"code"`
	Name                string           `json:"name"`
	Date                string           `json:"date"`
	CurrentPrice        float64          `json:"current_price"`
	PrevClose           float64          `json:"prev_close"`
	ChangePct           float64          `json:"change_pct"`
	TechnicalScore      float64          `json:"technical_score"`
	FundamentalScore    float64          `json:"fundamental_score"`
	TotalScore          float64          `json:"total_score"`
	Recommendation      string           `json:"recommendation"`
	RecommendationEmoji string           `json:"recommendation_emoji"`
	Weights             models.Weights   `json:"weights"`
	TechnicalSignals    []models.Signal  `json:"technical_signals"`
	FundamentalSignals  []models.Signal  `json:"fundamental_signals"`
	StockInfo           models.StockInfo `json:"stock_info"`
}

// BatchAnalyzeResponse is the wire form of a batch run
type BatchAnalyzeResponse struct {
	Success bool                `json:"success"`
	Count   int                 `json:"count"`
	Results []AnalyzeResponse   `json:"results"`
	Summary models.BatchSummary `json:"summary"`
}

// NewAnalyzeResponse converts a result into its wire form
func NewAnalyzeResponse(r *models.AnalysisResult) AnalyzeResponse {
	return AnalyzeResponse{
		Success:             true,
		Code:                r.Code,
		Name:                r.Name,
		Date:                r.AnalyzedAt.Format(time.RFC3339),
		CurrentPrice:        r.CurrentPrice,
		PrevClose:           r.PrevClose,
		ChangePct:           r.ChangePct,
		TechnicalScore:      r.TechnicalScore,
		FundamentalScore:    r.FundamentalScore,
		TotalScore:          r.TotalScore,
		Recommendation:      r.Recommendation.Label,
		RecommendationEmoji: r.Recommendation.Emoji,
		Weights:             r.Weights,
		TechnicalSignals:    nonNilSignals(r.TechnicalSignals),
		FundamentalSignals:  nonNilSignals(r.FundamentalSignals),
		StockInfo:           r.StockInfo,
	}
}

// NewBatchAnalyzeResponse converts a batch result into its wire form
func NewBatchAnalyzeResponse(b *models.BatchResult) BatchAnalyzeResponse {
	results := make([]AnalyzeResponse, len(b.Results))
	for i, r := range b.Results {
		results[i] = NewAnalyzeResponse(r)
	}
	return BatchAnalyzeResponse{
		Success: true,
		Count:   b.Count,
		Results: results,
		Summary: b.Summary,
	}
}

func nonNilSignals(s []models.Signal) []models.Signal {
	if s == nil {
		return []models.Signal{}
	}
	return s
}

// AnalysisHandler serves analysis, search and history endpoints
type AnalysisHandler struct {
	service  AnalysisService
	defaults models.Weights
	logger   arbor.ILogger
}

// NewAnalysisHandler creates the handler; defaults apply to omitted weights
func NewAnalysisHandler(service AnalysisService, defaults models.Weights, logger arbor.ILogger) *AnalysisHandler {
	return &AnalysisHandler{
		service:  service,
		defaults: defaults,
		logger:   logger,
	}
}

func (h *AnalysisHandler) weights(tech, fund *float64) models.Weights {
	w := h.defaults
	if tech != nil {
		w.Technical = *tech
	}
	if fund != nil {
		w.Fundamental = *fund
	}
	return w
}

// AnalyzeHandler handles POST /api/analyze
func (h *AnalysisHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req AnalyzeRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	stock := strings.TrimSpace(req.Stock)
	if stock == "" {
		WriteError(w, http.StatusBadRequest, "stock is required")
		return
	}

	result, err := h.service.Analyze(r.Context(), stock, h.weights(req.TechWeight, req.FundWeight))
	if err != nil {
		h.writeAnalyzeError(w, stock, err)
		return
	}

	WriteJSON(w, http.StatusOK, NewAnalyzeResponse(result))
}

// BatchHandler handles POST /api/analyze/batch
func (h *AnalysisHandler) BatchHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req BatchAnalyzeRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	stocks := make([]string, 0, len(req.Stocks))
	for _, s := range req.Stocks {
		if s = strings.TrimSpace(s); s != "" {
			stocks = append(stocks, s)
		}
	}

	result, err := h.service.AnalyzeBatch(r.Context(), stocks, h.weights(req.TechWeight, req.FundWeight))
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error().Err(err).Int("stocks", len(stocks)).Msg("Batch analysis failed")
		}
		WriteError(w, status, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, NewBatchAnalyzeResponse(result))
}

func (h *AnalysisHandler) writeAnalyzeError(w http.ResponseWriter, stock string, err error) {
	status := statusFor(err)
	if status == http.StatusNotFound {
		WriteError(w, status, fmt.Sprintf("종목을 찾을 수 없습니다: %s", stock))
		return
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("stock", stock).Msg("Analysis failed")
	}
	WriteError(w, status, err.Error())
}

// SearchHandler handles GET /api/search?query=
func (h *AnalysisHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		WriteError(w, http.StatusBadRequest, "query parameter is required")
		return
	}

	results, err := h.service.Search(r.Context(), query)
	if err != nil {
		message := err.Error()
		if errors.Is(err, naver.ErrStockNotFound) {
			message = "검색 결과가 없습니다"
		} else {
			h.logger.Warn().Err(err).Str("query", query).Msg("Search failed")
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"results": []models.SearchResult{},
			"message": message,
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"results": results,
	})
}

// HistoryHandler handles GET /api/history?code=&limit=
func (h *AnalysisHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	code := strings.TrimSpace(r.URL.Query().Get("code"))
	limit := QueryInt(r, "limit", interfaces.DefaultHistoryLimit)
	if limit > interfaces.MaxHistoryLimit {
		limit = interfaces.MaxHistoryLimit
	}

	records, err := h.service.History(r.Context(), code, limit)
	if err != nil {
		h.logger.Error().Err(err).Str("code", code).Msg("Failed to load analysis history")
		WriteError(w, http.StatusInternalServerError, "Failed to load analysis history")
		return
	}
	if records == nil {
		records = []*models.AnalysisRecord{}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(records),
		"results": records,
	})
}
