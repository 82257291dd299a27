package naver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
)

type fixtureServer struct {
	*httptest.Server
	failIntegration atomic.Bool

	mu         sync.Mutex
	userAgents []string
}

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func newFixtureServer(t *testing.T) *fixtureServer {
	t.Helper()
	fs := &fixtureServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("/item/main.naver", func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		fs.userAgents = append(fs.userAgents, r.Header.Get("User-Agent"))
		fs.mu.Unlock()
		switch r.URL.Query().Get("code") {
		case "005930":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(fixture(t, "main.html"))
		case "035720":
			w.Header().Set("Content-Type", "text/html")
			w.Write(fixture(t, "main_euckr.html"))
		default:
			http.Error(w, "gone", http.StatusInternalServerError)
		}
	})
	mux.HandleFunc("/item/sise.naver", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(fixture(t, "sise.html"))
	})
	mux.HandleFunc("/api/stock/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/integration"):
			if fs.failIntegration.Load() {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
			w.Write(fixture(t, "integration.json"))
		case strings.HasSuffix(r.URL.Path, "/finance/annual"):
			w.Write(fixture(t, "annual.json"))
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/search/searchList.naver", func(w http.ResponseWriter, r *http.Request) {
		query, _ := korean.EUCKR.NewDecoder().String(r.URL.Query().Get("query"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if query == "삼성전자" {
			w.Write(fixture(t, "search.html"))
			return
		}
		w.Write([]byte("<html><body><p>검색결과가 없습니다</p></body></html>"))
	})
	mux.HandleFunc("/sise.nhn", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		switch r.URL.Query().Get("symbol") {
		case "005930":
			w.Write(fixture(t, "chart.xml"))
		case "035720":
			w.Write(fixture(t, "chart_euckr.xml"))
		default:
			w.Write([]byte(`<?xml version="1.0" encoding="EUC-KR" ?><protocol><chartdata symbol="" count="0"></chartdata></protocol>`))
		}
	})

	fs.Server = httptest.NewServer(mux)
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fixtureServer) client() *Client {
	return NewClient(
		WithBaseURL(fs.URL),
		WithMobileURL(fs.URL),
		WithChartURL(fs.URL+"/sise.nhn"),
		WithRateLimit(0),
	)
}

func TestGetStockInfo_MainPage(t *testing.T) {
	fs := newFixtureServer(t)

	s, err := fs.client().GetStockInfo(context.Background(), "005930")
	require.NoError(t, err)

	assert.Equal(t, "005930", s.Code)
	assert.Equal(t, "삼성전자", s.Name)
	assert.Equal(t, "KOSPI", s.Market)
	assert.Equal(t, 71500.0, s.CurrentPrice)
	assert.Equal(t, 70000.0, s.PrevClose)
	assert.Equal(t, 70500.0, s.OpenPrice)
	assert.Equal(t, 72000.0, s.HighPrice)
	assert.Equal(t, 70100.0, s.LowPrice)
	assert.Equal(t, int64(12345678), s.Volume)
	assert.Equal(t, 426841700000000.0, s.MarketCap)
	assert.Equal(t, 88800.0, s.High52W)
	assert.Equal(t, 49900.0, s.Low52W)
	assert.Equal(t, 13.52, s.PER)
	assert.Equal(t, 5287.0, s.EPS)
	assert.Equal(t, 1.25, s.PBR)
	assert.Equal(t, 57200.0, s.BPS)
	assert.Equal(t, 2.02, s.DividendYield)
	assert.Equal(t, 52.31, s.ForeignRatio)
	assert.Equal(t, 4.14, s.ROE, "ROE comes from the last reported annual value")

	fs.mu.Lock()
	defer fs.mu.Unlock()
	require.NotEmpty(t, fs.userAgents)
	assert.Equal(t, DefaultUserAgent, fs.userAgents[0])
}

func TestGetStockInfo_BackfillsMissingFields(t *testing.T) {
	fs := newFixtureServer(t)

	s, err := fs.client().GetStockInfo(context.Background(), "035720")
	require.NoError(t, err)

	assert.Equal(t, "카카오", s.Name, "EUC-KR page is transcoded")
	assert.Equal(t, "KOSPI", s.Market)
	assert.Equal(t, 42150.0, s.CurrentPrice)

	// sise page wins over the mobile API because it is applied first
	assert.Equal(t, 69900.0, s.PrevClose)
	assert.Equal(t, int64(9999), s.Volume)
	assert.Equal(t, 90000.0, s.High52W)
	assert.Equal(t, 50000.0, s.Low52W)

	assert.Equal(t, 426841700000000.0, s.MarketCap)
	assert.Equal(t, 52.31, s.ForeignRatio)
	assert.Equal(t, 13.52, s.PER)
	assert.Equal(t, 1.25, s.PBR)
	assert.Equal(t, 4.14, s.ROE)
}

func TestGetStockInfo_SecondaryFailureIsTolerated(t *testing.T) {
	fs := newFixtureServer(t)
	fs.failIntegration.Store(true)

	s, err := fs.client().GetStockInfo(context.Background(), "035720")
	require.NoError(t, err)
	assert.Equal(t, "카카오", s.Name)
	assert.Zero(t, s.MarketCap)
	assert.Equal(t, 4.14, s.ROE)
}

func TestGetStockInfo_MainPageError(t *testing.T) {
	fs := newFixtureServer(t)

	_, err := fs.client().GetStockInfo(context.Background(), "999999")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "/item/main.naver", apiErr.Endpoint)
}

func TestGetStockInfo_InvalidCode(t *testing.T) {
	_, err := NewClient().GetStockInfo(context.Background(), "삼성")
	assert.ErrorIs(t, err, ErrStockNotFound)
}

func TestGetStockInfo_CancelledContext(t *testing.T) {
	fs := newFixtureServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fs.client().GetStockInfo(ctx, "005930")
	assert.Error(t, err)
}

func TestSearchStock(t *testing.T) {
	fs := newFixtureServer(t)
	c := fs.client()
	ctx := context.Background()

	code, err := c.SearchStock(ctx, "005930")
	require.NoError(t, err)
	assert.Equal(t, "005930", code)

	code, err = c.SearchStock(ctx, " 삼성전자 ")
	require.NoError(t, err)
	assert.Equal(t, "005930", code)

	_, err = c.SearchStock(ctx, "없는종목")
	assert.ErrorIs(t, err, ErrStockNotFound)

	_, err = c.SearchStock(ctx, "")
	assert.ErrorIs(t, err, ErrStockNotFound)
}

func TestGetPriceHistory(t *testing.T) {
	fs := newFixtureServer(t)
	c := fs.client()

	series, err := c.GetPriceHistory(context.Background(), "005930", 120)
	require.NoError(t, err)
	require.Len(t, series, 4)

	assert.Equal(t, "20240102", series[0].Date)
	assert.Equal(t, 79600.0, series[0].Close)
	assert.Equal(t, int64(17142847), series[0].Volume)
	assert.Equal(t, "20240105", series[3].Date)
	assert.Equal(t, 76600.0, series[3].Close)
	assert.Equal(t, []float64{79600, 77000, 77000, 76600}, series.Closes())

	series, err = c.GetPriceHistory(context.Background(), "035720", 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{41000, 42000}, series.Closes())

	series, err = c.GetPriceHistory(context.Background(), "000001", 10)
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"71,500", 71500},
		{" 13.52배", 13.52},
		{"-1,234원", -1234},
		{"52.31%", 52.31},
		{"-", 0},
		{"N/A", 0},
		{"", 0},
		{"1.2.3", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseNumber(tt.in), "input %q", tt.in)
	}
}

func TestParseMarketValue(t *testing.T) {
	assert.Equal(t, 16.11e12, ParseMarketValue("16조 1,100억"))
	assert.Equal(t, 5.0e11, ParseMarketValue("5,000억"))
	assert.Equal(t, 2.0e12, ParseMarketValue("2조"))
	assert.Equal(t, 0.0, ParseMarketValue("-"))
}

func TestNormalizeMarket(t *testing.T) {
	assert.Equal(t, "KOSPI", normalizeMarket("코스피"))
	assert.Equal(t, "KOSDAQ", normalizeMarket(" kosdaq"))
	assert.Equal(t, "KONEX", normalizeMarket("코넥스 konex"))
	assert.Equal(t, "", normalizeMarket(""))
}
