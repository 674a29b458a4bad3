package api

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"

	"github.com/carverauto/pulse/pkg/metrics"
	"github.com/carverauto/pulse/pkg/models"
)

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status            string                 `json:"status"`
	State             models.MonitoringState `json:"state,omitempty"`
	SubscriberHealthy bool                   `json:"subscriber_healthy"`
	BusDropped        *int64                 `json:"bus_dropped,omitempty"`
	Timestamp         time.Time              `json:"timestamp"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:            "healthy",
		SubscriberHealthy: s.deps.Healthy(),
		Timestamp:         time.Now().UTC(),
	}

	if s.deps.Dropped != nil {
		dropped := s.deps.Dropped()
		resp.BusDropped = &dropped
	}

	code := http.StatusOK

	st, err := s.deps.State.Current(r.Context())
	if err != nil {
		resp.Status = "unavailable"
		code = http.StatusServiceUnavailable
	} else {
		resp.State = st
	}

	if err == nil && !resp.SubscriberHealthy {
		resp.Status = "degraded"
	}

	respondJSON(w, code, resp)
}

// PushRequest carries one sample or a batch of samples.
type PushRequest struct {
	Name    string             `json:"name,omitempty"`
	Value   *float64           `json:"value,omitempty"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

func (s *Server) pushMetrics(w http.ResponseWriter, r *http.Request) {
	var req PushRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	samples := make(map[string]float64, len(req.Metrics)+1)
	for name, value := range req.Metrics {
		samples[name] = value
	}

	if req.Name != "" {
		if req.Value == nil {
			respondError(w, http.StatusBadRequest, "value is required")
			return
		}

		samples[req.Name] = *req.Value
	}

	if len(samples) == 0 {
		respondError(w, http.StatusBadRequest, "no metrics in request")
		return
	}

	names := make([]string, 0, len(samples))
	for name := range samples {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		if err := s.deps.Collector.PushMetric(r.Context(), name, samples[name]); err != nil {
			respondServiceError(w, "pushing metric "+name, err)
			return
		}
	}

	respondJSON(w, http.StatusAccepted, map[string]int{"accepted": len(names)})
}

// MetricResponse describes one metric.
type MetricResponse struct {
	Name     string                `json:"name"`
	Current  *float64              `json:"current,omitempty"`
	Baseline *models.Baseline      `json:"baseline,omitempty"`
	History  []models.HistoryPoint `json:"history"`
}

func (s *Server) getMetric(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	limit, err := queryInt(r, "limit", defaultHistoryLimit)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := MetricResponse{Name: name}

	current, err := s.deps.Collector.CurrentValue(r.Context(), name)

	switch {
	case err == nil:
		resp.Current = &current
	case !errors.Is(err, metrics.ErrNoValue):
		respondServiceError(w, "reading metric", err)
		return
	}

	baseline, err := s.deps.Collector.Baseline(r.Context(), name)

	switch {
	case err == nil:
		resp.Baseline = baseline
	case !errors.Is(err, metrics.ErrNoBaseline):
		respondServiceError(w, "reading baseline", err)
		return
	}

	resp.History, err = s.deps.Collector.History(r.Context(), name, limit)
	if err != nil {
		respondServiceError(w, "reading metric history", err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// StateResponse combines the current snapshot and the aggregate stats.
type StateResponse struct {
	Snapshot *models.StateSnapshot `json:"snapshot"`
	Stats    *models.StateStats    `json:"stats"`
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.deps.State.Snapshot(r.Context())
	if err != nil {
		respondServiceError(w, "reading monitoring state", err)
		return
	}

	stats, err := s.deps.State.Stats(r.Context())
	if err != nil {
		respondServiceError(w, "reading state stats", err)
		return
	}

	respondJSON(w, http.StatusOK, StateResponse{Snapshot: snapshot, Stats: stats})
}

// ForceStateRequest sets the monitoring state by hand.
type ForceStateRequest struct {
	State  models.MonitoringState `json:"state"`
	Reason string                 `json:"reason,omitempty"`
}

func (s *Server) forceState(w http.ResponseWriter, r *http.Request) {
	var req ForceStateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Reason == "" {
		req.Reason = "manual"
	}

	if err := s.deps.State.ForceState(r.Context(), req.State, req.Reason); err != nil {
		respondServiceError(w, "forcing state", err)
		return
	}

	snapshot, err := s.deps.State.Snapshot(r.Context())
	if err != nil {
		respondServiceError(w, "reading monitoring state", err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultHistoryLimit)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	history, err := s.deps.State.History(r.Context(), limit)
	if err != nil {
		respondServiceError(w, "reading transition history", err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// ActivityResponse lists recent wake decisions.
type ActivityResponse struct {
	Stats  *models.WakeStats  `json:"stats"`
	Events []models.WakeEvent `json:"events"`
}

func (s *Server) getActivity(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultHistoryLimit)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := s.deps.Classifier.RecentWakeEvents(r.Context(), limit)
	if err != nil {
		respondServiceError(w, "reading wake events", err)
		return
	}

	stats, err := s.deps.Classifier.Stats(r.Context())
	if err != nil {
		respondServiceError(w, "reading wake stats", err)
		return
	}

	respondJSON(w, http.StatusOK, ActivityResponse{Stats: stats, Events: events})
}
