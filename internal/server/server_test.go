package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/disruption-cli/internal/model"
	"github.com/sells-group/disruption-cli/internal/pipeline"
	"github.com/sells-group/disruption-cli/internal/quality"
	"github.com/sells-group/disruption-cli/internal/store"
)

func newTestServer(t *testing.T) (*Server, store.Store) {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	monitor := quality.NewMonitor(nil)
	p := pipeline.New(nil, monitor, true)
	return New(p, monitor, st), st
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func validObservation() model.Observation {
	return model.Observation{
		Source:      model.SourceEarthquake,
		EventType:   "earthquake",
		Title:       "Major earthquake near port",
		Description: "Port operations suspended",
		Location:    "Shanghai, China",
		Severity:    model.SeverityCritical,
	}
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s.Router(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestScoreObservation(t *testing.T) {
	s, st := newTestServer(t)
	router := s.Router()

	rec := doJSON(t, router, http.MethodPost, "/observations", validObservation())
	require.Equal(t, http.StatusCreated, rec.Code)

	var alert model.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alert))
	assert.NotEmpty(t, alert.ID)
	assert.Greater(t, alert.AlertScore, 0.0)

	saved, err := st.GetAlert(context.Background(), alert.ID)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, alert.AlertScore, saved.AlertScore)
}

func TestScoreObservation_Invalid(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s.Router(), http.MethodPost, "/observations", model.Observation{Description: "nothing else"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing required field")
}

func TestScoreObservation_BadBody(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/observations", bytes.NewBufferString("{broken"))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScoreBatch(t *testing.T) {
	s, _ := newTestServer(t)

	batch := []model.Observation{
		validObservation(),
		{Title: "incomplete"},
	}
	rec := doJSON(t, s.Router(), http.MethodPost, "/observations/batch", batch)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Alerts      []model.Alert             `json:"alerts"`
		Rejected    int                       `json:"rejected"`
		Assessments []model.QualityAssessment `json:"assessments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Alerts, 1)
	assert.Equal(t, 1, resp.Rejected)
	assert.NotEmpty(t, resp.Assessments)
}

func TestListAlerts(t *testing.T) {
	s, _ := newTestServer(t)
	router := s.Router()

	rec := doJSON(t, router, http.MethodPost, "/observations", validObservation())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/alerts?level=critical", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Alerts []model.Alert `json:"alerts"`
		Count  int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)

	rec = doJSON(t, router, http.MethodGet, "/alerts?min_score=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAlert_NotFound(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s.Router(), http.MethodGet, "/alerts/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQualityTrend(t *testing.T) {
	s, _ := newTestServer(t)
	router := s.Router()

	rec := doJSON(t, router, http.MethodGet, "/quality/earthquake/trend", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "no assessments yet")

	batch := []model.Observation{validObservation()}
	rec = doJSON(t, router, http.MethodPost, "/observations/batch", batch)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/quality/earthquake/trend?window=1h", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var trend model.QualityTrend
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trend))
	assert.Equal(t, "earthquake", trend.Source)
	assert.Equal(t, 1, trend.Count)

	rec = doJSON(t, router, http.MethodGet, "/quality/earthquake/trend?window=nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAssessments(t *testing.T) {
	s, _ := newTestServer(t)
	router := s.Router()

	batch := []model.Observation{validObservation()}
	rec := doJSON(t, router, http.MethodPost, "/observations/batch", batch)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/quality/earthquake", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
}

func TestStorelessServer(t *testing.T) {
	monitor := quality.NewMonitor(nil)
	s := New(pipeline.New(nil, monitor, true), monitor, nil)
	router := s.Router()

	rec := doJSON(t, router, http.MethodGet, "/alerts", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/observations", validObservation())
	assert.Equal(t, http.StatusCreated, rec.Code, "scoring works without a store")
}
