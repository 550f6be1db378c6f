package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycastlabs/radarloop/internal/domain"
)

type stubReadiness struct{ err error }

func (s stubReadiness) CheckReadiness(context.Context) error { return s.err }

type stubStatus struct {
	report domain.RunReport
	ok     bool
}

func (s stubStatus) LastReport() (domain.RunReport, bool) { return s.report, s.ok }

func newTestServer(ready ReadinessChecker, status StatusReporter) *Server {
	return NewServer(":0", ready, status, slog.New(slog.DiscardHandler))
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, newTestServer(stubReadiness{}, stubStatus{}), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestReadyzReady(t *testing.T) {
	rec := get(t, newTestServer(stubReadiness{}, stubStatus{}), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
}

func TestReadyzNotReady(t *testing.T) {
	ready := stubReadiness{err: errors.New("pipeline has not produced imagery yet")}
	rec := get(t, newTestServer(ready, stubStatus{}), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not ready")
}

func TestStatusNoRunYet(t *testing.T) {
	rec := get(t, newTestServer(stubReadiness{}, stubStatus{}), "/status")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusReturnsLastReport(t *testing.T) {
	report := domain.RunReport{
		Region:        "east",
		Layer:         "RADAR_1KM_RRAI",
		Source:        "frames",
		StartedAt:     time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
		FramesFetched: 12,
		GIFPath:       "/out/radar_east.gif",
		Success:       true,
	}
	rec := get(t, newTestServer(stubReadiness{}, stubStatus{report: report, ok: true}), "/status")

	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.RunReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, report, got)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(stubReadiness{}, stubStatus{}), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownMethod(t *testing.T) {
	s := newTestServer(stubReadiness{}, stubStatus{})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
