// Package server exposes the scoring pipeline and alert store over HTTP.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/disruption-cli/internal/model"
	"github.com/sells-group/disruption-cli/internal/pipeline"
	"github.com/sells-group/disruption-cli/internal/quality"
	"github.com/sells-group/disruption-cli/internal/store"
)

// Server bundles the HTTP handlers with their dependencies.
type Server struct {
	pipeline *pipeline.Pipeline
	monitor  *quality.Monitor
	store    store.Store
}

// New creates a Server. The store may be nil for score-only deployments;
// persistence endpoints then return 503.
func New(p *pipeline.Pipeline, monitor *quality.Monitor, st store.Store) *Server {
	return &Server{pipeline: p, monitor: monitor, store: st}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/observations", s.handleScoreObservation)
	r.Post("/observations/batch", s.handleScoreBatch)
	r.Get("/alerts", s.handleListAlerts)
	r.Get("/alerts/{id}", s.handleGetAlert)
	r.Get("/quality/{source}", s.handleListAssessments)
	r.Get("/quality/{source}/trend", s.handleQualityTrend)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScoreObservation(w http.ResponseWriter, r *http.Request) {
	var obs model.Observation
	if err := json.NewDecoder(r.Body).Decode(&obs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	alert, res := s.pipeline.Process(obs)
	if alert == nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "observation rejected",
			"errors": res.Errors,
		})
		return
	}

	if s.store != nil {
		if err := s.store.SaveAlert(r.Context(), *alert); err != nil {
			zap.L().Error("server: save alert failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "persist alert")
			return
		}
	}

	writeJSON(w, http.StatusCreated, alert)
}

func (s *Server) handleScoreBatch(w http.ResponseWriter, r *http.Request) {
	var observations []model.Observation
	if err := json.NewDecoder(r.Body).Decode(&observations); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.pipeline.ProcessBatch(r.Context(), observations, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "process batch")
		return
	}
	pipeline.SortByPriority(result.Alerts)

	if s.store != nil {
		for _, alert := range result.Alerts {
			if err := s.store.SaveAlert(r.Context(), alert); err != nil {
				zap.L().Error("server: save alert failed",
					zap.String("alert_id", alert.ID),
					zap.Error(err),
				)
			}
		}
		for _, a := range result.Assessments {
			if err := s.store.SaveAssessment(r.Context(), a); err != nil {
				zap.L().Error("server: save assessment failed",
					zap.String("source", a.Source),
					zap.Error(err),
				)
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"alerts":      result.Alerts,
		"rejected":    len(result.Rejected),
		"assessments": result.Assessments,
	})
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "no store configured")
		return
	}

	q := r.URL.Query()
	filter := store.AlertFilter{
		Level:  model.Severity(q.Get("level")),
		Source: q.Get("source"),
	}
	if v := q.Get("min_score"); v != "" {
		score, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid min_score")
			return
		}
		filter.MinScore = score
	}
	filter.Limit = intParam(q.Get("limit"), 100)
	filter.Offset = intParam(q.Get("offset"), 0)

	alerts, err := s.store.ListAlerts(r.Context(), filter)
	if err != nil {
		zap.L().Error("server: list alerts failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list alerts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts, "count": len(alerts)})
}

func (s *Server) handleGetAlert(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "no store configured")
		return
	}

	alert, err := s.store.GetAlert(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		zap.L().Error("server: get alert failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get alert")
		return
	}
	if alert == nil {
		writeError(w, http.StatusNotFound, "alert not found")
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (s *Server) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "no store configured")
		return
	}

	source := chi.URLParam(r, "source")
	limit := intParam(r.URL.Query().Get("limit"), 50)

	assessments, err := s.store.ListAssessments(r.Context(), source, limit)
	if err != nil {
		zap.L().Error("server: list assessments failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list assessments")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assessments": assessments, "count": len(assessments)})
}

func (s *Server) handleQualityTrend(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")

	window := 24 * time.Hour
	if v := r.URL.Query().Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid window")
			return
		}
		window = d
	}

	trend, ok := s.monitor.Trend(source, window)
	if !ok {
		writeError(w, http.StatusNotFound, "no assessments for source")
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

func intParam(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
