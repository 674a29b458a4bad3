package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/carverauto/pulse/pkg/models"
)

const defaultActor = "api"

func parseAlertFilter(r *http.Request) (models.AlertFilter, bool, error) {
	q := r.URL.Query()

	var (
		filter models.AlertFilter
		err    error
	)

	if p := q.Get("priority"); p != "" {
		priority := models.AlertPriority(p)
		if !priority.Valid() {
			return filter, false, fmt.Errorf("invalid priority %q", p)
		}

		filter.Priority = &priority
	}

	if c := q.Get("category"); c != "" {
		category := models.AlertCategory(c)
		filter.Category = &category
	}

	if st := q.Get("status"); st != "" {
		status := models.AlertStatus(st)

		switch status {
		case models.AlertStatusActive, models.AlertStatusAcknowledged, models.AlertStatusResolved,
			models.AlertStatusSuppressed, models.AlertStatusExpired:
		default:
			return filter, false, fmt.Errorf("invalid status %q", st)
		}

		filter.Status = &status
	}

	filter.AlertType = q.Get("type")
	filter.Resource = q.Get("resource")

	if since := q.Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return filter, false, fmt.Errorf("invalid since: %w", err)
		}

		filter.Since = &t
	}

	if filter.Limit, err = queryInt(r, "limit", 0); err != nil {
		return filter, false, err
	}

	activeOnly := filter.Status == nil && filter.AlertType == "" && filter.Resource == "" &&
		filter.Since == nil && filter.Limit == 0

	return filter, activeOnly, nil
}

// listAlerts returns the active alerts unless a wider filter is given.
func (s *Server) listAlerts(w http.ResponseWriter, r *http.Request) {
	filter, activeOnly, err := parseAlertFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var list []models.Alert

	if activeOnly {
		list, err = s.deps.Alerts.GetActiveAlerts(r.Context(), filter.Priority, filter.Category)
	} else {
		list, err = s.deps.Alerts.ListAlerts(r.Context(), filter)
	}

	if err != nil {
		respondServiceError(w, "listing alerts", err)
		return
	}

	if list == nil {
		list = []models.Alert{}
	}

	respondJSON(w, http.StatusOK, list)
}

// CreateAlertRequest is a manually raised alert. Notify and Deduplicate
// default to true.
type CreateAlertRequest struct {
	models.Alert
	Notify      *bool `json:"notify,omitempty"`
	Deduplicate *bool `json:"deduplicate,omitempty"`
}

func (s *Server) createAlert(w http.ResponseWriter, r *http.Request) {
	var req CreateAlertRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	notify := req.Notify == nil || *req.Notify
	dedup := req.Deduplicate == nil || *req.Deduplicate

	alert := req.Alert
	if alert.Source == "" {
		alert.Source = defaultActor
	}

	created, err := s.deps.Alerts.CreateAlert(r.Context(), &alert, notify, dedup)
	if err != nil {
		respondServiceError(w, "creating alert", err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) reportAnomaly(w http.ResponseWriter, r *http.Request) {
	var report models.AnomalyReport
	if err := decodeBody(r, &report); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	alert, err := s.deps.Alerts.ReportAnomaly(r.Context(), &report)
	if err != nil {
		respondServiceError(w, "reporting anomaly", err)
		return
	}

	respondJSON(w, http.StatusCreated, alert)
}

func (s *Server) alertPatterns(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	patterns, err := s.deps.Alerts.GetAlertPatterns(r.Context(), days)
	if err != nil {
		respondServiceError(w, "reading alert patterns", err)
		return
	}

	respondJSON(w, http.StatusOK, patterns)
}

func (s *Server) getAlert(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	alert, err := s.deps.Alerts.GetAlert(r.Context(), id)
	if err != nil {
		respondServiceError(w, "reading alert", err)
		return
	}

	respondJSON(w, http.StatusOK, alert)
}

func (s *Server) alertDeliveries(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	deliveries, err := s.deps.Alerts.Deliveries(r.Context(), id)
	if err != nil {
		respondServiceError(w, "reading deliveries", err)
		return
	}

	if deliveries == nil {
		deliveries = []models.DeliveryResult{}
	}

	respondJSON(w, http.StatusOK, deliveries)
}

// LifecycleRequest carries the actor and notes of a status change.
type LifecycleRequest struct {
	By     string  `json:"by,omitempty"`
	Notes  string  `json:"notes,omitempty"`
	Reason string  `json:"reason,omitempty"`
	Hours  float64 `json:"hours,omitempty"`
}

func (s *Server) lifecycle(w http.ResponseWriter, r *http.Request, action string,
	apply func(id int64, req LifecycleRequest) (*models.Alert, error)) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req LifecycleRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.By == "" {
		req.By = defaultActor
	}

	alert, err := apply(id, req)
	if err != nil {
		respondServiceError(w, action+" alert", err)
		return
	}

	respondJSON(w, http.StatusOK, alert)
}

func (s *Server) acknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	s.lifecycle(w, r, "acknowledging", func(id int64, req LifecycleRequest) (*models.Alert, error) {
		return s.deps.Alerts.Acknowledge(r.Context(), id, req.By, req.Notes)
	})
}

func (s *Server) resolveAlert(w http.ResponseWriter, r *http.Request) {
	s.lifecycle(w, r, "resolving", func(id int64, req LifecycleRequest) (*models.Alert, error) {
		return s.deps.Alerts.Resolve(r.Context(), id, req.By, req.Notes)
	})
}

func (s *Server) suppressAlert(w http.ResponseWriter, r *http.Request) {
	s.lifecycle(w, r, "suppressing", func(id int64, req LifecycleRequest) (*models.Alert, error) {
		reason := req.Reason
		if reason == "" {
			reason = req.Notes
		}

		return s.deps.Alerts.Suppress(r.Context(), id, req.By, reason, req.Hours)
	})
}
