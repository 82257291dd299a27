package handlers

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockanalyzer/internal/services/scheduler"
)

func TestSchedulerHandler(t *testing.T) {
	logger := arbor.NewLogger()
	service := scheduler.NewService(logger, time.UTC)

	var runs atomic.Int32
	require.NoError(t, service.RegisterJob("watchlist_refresh", "30 16 * * 1-5", "Refresh watchlist", func() error {
		runs.Add(1)
		return nil
	}))

	h := NewSchedulerHandler(service, logger)

	rec := httptest.NewRecorder()
	h.ListJobsHandler(rec, httptest.NewRequest(http.MethodGet, "/api/scheduler/jobs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["running"])
	jobs, ok := body["jobs"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, jobs, "watchlist_refresh")

	rec = httptest.NewRecorder()
	h.TriggerJobHandler(rec, httptest.NewRequest(http.MethodPost, "/api/scheduler/jobs/watchlist_refresh/trigger", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	rec = httptest.NewRecorder()
	h.TriggerJobHandler(rec, httptest.NewRequest(http.MethodPost, "/api/scheduler/jobs/missing/trigger", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.TriggerJobHandler(rec, httptest.NewRequest(http.MethodPost, "/api/scheduler/jobs/watchlist_refresh", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.TriggerJobHandler(rec, httptest.NewRequest(http.MethodGet, "/api/scheduler/jobs/watchlist_refresh/trigger", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSchedulerHandler_TriggerWhileRunning(t *testing.T) {
	logger := arbor.NewLogger()
	service := scheduler.NewService(logger, time.UTC)

	release := make(chan struct{})
	defer close(release)
	require.NoError(t, service.RegisterJob("watchlist_refresh", "30 16 * * 1-5", "Refresh watchlist", func() error {
		<-release
		return nil
	}))

	h := NewSchedulerHandler(service, logger)

	rec := httptest.NewRecorder()
	h.TriggerJobHandler(rec, httptest.NewRequest(http.MethodPost, "/api/scheduler/jobs/watchlist_refresh/trigger", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = httptest.NewRecorder()
	h.TriggerJobHandler(rec, httptest.NewRequest(http.MethodPost, "/api/scheduler/jobs/watchlist_refresh/trigger", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}
