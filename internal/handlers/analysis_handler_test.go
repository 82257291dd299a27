package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockanalyzer/internal/models"
	"github.com/ternarybob/stockanalyzer/internal/naver"
	"github.com/ternarybob/stockanalyzer/internal/scoring"
	"github.com/ternarybob/stockanalyzer/internal/services/analysis"
)

var defaultWeights = models.Weights{Technical: 40, Fundamental: 60}

func samsungResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		Code:             "005930",
		Name:             "삼성전자",
		CurrentPrice:     71000,
		PrevClose:        70000,
		ChangePct:        1.43,
		TechnicalScore:   66.67,
		FundamentalScore: 75,
		TotalScore:       71.67,
		Recommendation:   models.Recommendation{Tier: models.TierBuy, Label: "매수", Emoji: "🟢🟢"},
		Weights:          defaultWeights,
		FundamentalSignals: []models.Signal{
			{Indicator: "PER", Value: "12.50", Sentiment: models.SentimentBullish},
		},
		AnalyzedAt: time.Date(2024, 3, 4, 7, 30, 0, 0, time.UTC),
	}
}

func newAnalysisHandler() (*AnalysisHandler, *MockAnalysisService) {
	service := &MockAnalysisService{}
	return NewAnalysisHandler(service, defaultWeights, arbor.NewLogger()), service
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAnalyzeHandler(t *testing.T) {
	h, service := newAnalysisHandler()
	service.On("Analyze", mock.Anything, "삼성전자", defaultWeights).Return(samsungResult(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"stock":" 삼성전자 "}`))
	rec := httptest.NewRecorder()
	h.AnalyzeHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "005930", body["code"])
	assert.Equal(t, "매수", body["recommendation"])
	assert.Equal(t, "🟢🟢", body["recommendation_emoji"])
	assert.Equal(t, "2024-03-04T07:30:00Z", body["date"])
	assert.Equal(t, []interface{}{}, body["technical_signals"], "signals are never null")
	assert.Len(t, body["fundamental_signals"], 1)

	service.AssertExpectations(t)
}

func TestAnalyzeHandler_WeightOverride(t *testing.T) {
	h, service := newAnalysisHandler()
	service.On("Analyze", mock.Anything, "005930", models.Weights{Technical: 70, Fundamental: 30}).
		Return(samsungResult(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze",
		strings.NewReader(`{"stock":"005930","tech_weight":70,"fund_weight":30}`))
	rec := httptest.NewRecorder()
	h.AnalyzeHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

func TestAnalyzeHandler_Errors(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		body    string
		err     error
		status  int
		message string
	}{
		{name: "wrong method", method: http.MethodGet, status: http.StatusMethodNotAllowed},
		{name: "empty body", method: http.MethodPost, body: "", status: http.StatusBadRequest},
		{name: "missing stock", method: http.MethodPost, body: `{}`, status: http.StatusBadRequest},
		{name: "blank stock", method: http.MethodPost, body: `{"stock":"   "}`, status: http.StatusBadRequest},
		{name: "unknown field", method: http.MethodPost, body: `{"stock":"005930","x":1}`, status: http.StatusBadRequest},
		{name: "weight out of range", method: http.MethodPost, body: `{"stock":"005930","tech_weight":150}`, status: http.StatusBadRequest},
		{
			name:    "not found",
			method:  http.MethodPost,
			body:    `{"stock":"없는종목"}`,
			err:     fmt.Errorf("failed to resolve: %w", naver.ErrStockNotFound),
			status:  http.StatusNotFound,
			message: "종목을 찾을 수 없습니다: 없는종목",
		},
		{
			name:   "zero weights",
			method: http.MethodPost,
			body:   `{"stock":"005930","tech_weight":0,"fund_weight":0}`,
			err:    scoring.ErrInvalidWeights,
			status: http.StatusBadRequest,
		},
		{
			name:   "upstream failure",
			method: http.MethodPost,
			body:   `{"stock":"005930"}`,
			err:    &naver.APIError{StatusCode: 503, Message: "unavailable", Endpoint: "/item/main.naver"},
			status: http.StatusBadGateway,
		},
		{
			name:   "internal failure",
			method: http.MethodPost,
			body:   `{"stock":"005930"}`,
			err:    errors.New("badger: closed"),
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, service := newAnalysisHandler()
			if tt.err != nil {
				service.On("Analyze", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)
			}

			req := httptest.NewRequest(tt.method, "/api/analyze", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.AnalyzeHandler(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, "error", body["status"])
			if tt.message != "" {
				assert.Equal(t, tt.message, body["error"])
			}
			if tt.err == nil {
				service.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestBatchHandler(t *testing.T) {
	h, service := newAnalysisHandler()

	result := &models.BatchResult{
		Count:   1,
		Results: []*models.AnalysisResult{samsungResult()},
		Summary: models.BatchSummary{TotalAnalyzed: 1, Failed: 1, BuySignals: 1, AvgScore: 71.67, Errors: []string{"035720"}},
	}
	service.On("AnalyzeBatch", mock.Anything, []string{"005930", "035720"}, defaultWeights).Return(result, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze/batch",
		strings.NewReader(`{"stocks":[" 005930 ","","035720"]}`))
	rec := httptest.NewRecorder()
	h.BatchHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body BatchAnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "삼성전자", body.Results[0].Name)
	assert.Equal(t, []string{"035720"}, body.Summary.Errors)

	service.AssertExpectations(t)
}

func TestBatchHandler_Limits(t *testing.T) {
	h, service := newAnalysisHandler()
	service.On("AnalyzeBatch", mock.Anything, []string{}, defaultWeights).Return(nil, analysis.ErrNoStocks)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze/batch", strings.NewReader(`{"stocks":["  "]}`))
	rec := httptest.NewRecorder()
	h.BatchHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, analysis.ErrNoStocks.Error(), decodeBody(t, rec)["error"])

	h, service = newAnalysisHandler()
	service.On("AnalyzeBatch", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: 최대 20개 종목까지 분석 가능합니다", analysis.ErrTooManyStocks))

	req = httptest.NewRequest(http.MethodPost, "/api/analyze/batch", strings.NewReader(`{"stocks":["005930"]}`))
	rec = httptest.NewRecorder()
	h.BatchHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchHandler(t *testing.T) {
	h, service := newAnalysisHandler()
	service.On("Search", mock.Anything, "삼성").Return([]models.SearchResult{
		{Code: "005930", Name: "삼성전자", CurrentPrice: 71000, MarketCap: 4238000},
	}, nil)
	service.On("Search", mock.Anything, "없음").Return(nil, naver.ErrStockNotFound)
	service.On("Search", mock.Anything, "오류").Return(nil, errors.New("connection reset"))

	rec := httptest.NewRecorder()
	h.SearchHandler(rec, httptest.NewRequest(http.MethodGet, "/api/search?query=%EC%82%BC%EC%84%B1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["results"], 1)

	rec = httptest.NewRecorder()
	h.SearchHandler(rec, httptest.NewRequest(http.MethodGet, "/api/search?query=%EC%97%86%EC%9D%8C", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "검색 결과가 없습니다", body["message"])
	assert.Equal(t, []interface{}{}, body["results"])

	rec = httptest.NewRecorder()
	h.SearchHandler(rec, httptest.NewRequest(http.MethodGet, "/api/search?query=%EC%98%A4%EB%A5%98", nil))
	body = decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "connection reset", body["message"])

	rec = httptest.NewRecorder()
	h.SearchHandler(rec, httptest.NewRequest(http.MethodGet, "/api/search", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryHandler(t *testing.T) {
	h, service := newAnalysisHandler()
	record := models.NewAnalysisRecord("an_1", samsungResult())
	service.On("History", mock.Anything, "005930", 10).Return([]*models.AnalysisRecord{record}, nil)
	service.On("History", mock.Anything, "", 50).Return(nil, nil)
	service.On("History", mock.Anything, "000660", 500).Return(nil, nil).Once()

	rec := httptest.NewRecorder()
	h.HistoryHandler(rec, httptest.NewRequest(http.MethodGet, "/api/history?code=005930&limit=10", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["count"])

	// Malformed limit falls back to the default
	rec = httptest.NewRecorder()
	h.HistoryHandler(rec, httptest.NewRequest(http.MethodGet, "/api/history?limit=abc", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, float64(0), body["count"])
	assert.Equal(t, []interface{}{}, body["results"])

	// Oversized limits are capped
	rec = httptest.NewRecorder()
	h.HistoryHandler(rec, httptest.NewRequest(http.MethodGet, "/api/history?code=000660&limit=1000000000", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	service.AssertExpectations(t)
}
