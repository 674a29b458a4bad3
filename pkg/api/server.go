/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package api exposes the engine over HTTP: monitoring state, metric push,
// rule management, alert lifecycle and a live websocket stream.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/carverauto/pulse/pkg/activity"
	"github.com/carverauto/pulse/pkg/alerts"
	"github.com/carverauto/pulse/pkg/metrics"
	"github.com/carverauto/pulse/pkg/rules"
	"github.com/carverauto/pulse/pkg/state"
)

const (
	maxBodyBytes        = 1 << 20
	defaultHistoryLimit = 20
	defaultPingInterval = 30 * time.Second
	writeTimeout        = 10 * time.Second
)

// Deps are the components served by the API.
type Deps struct {
	State      state.StateMachine
	Classifier activity.RequestClassifier
	Collector  metrics.MetricCollector
	Rules      rules.RuleStore
	Alerts     alerts.AlertService
	Bus        Bus

	// Healthy reports whether the metric subscriber is receiving updates.
	Healthy func() bool

	// RulesChanged runs after every successful rule write.
	RulesChanged func()

	// Middleware wraps every route after CORS handling.
	Middleware []mux.MiddlewareFunc

	// Dropped counts bus messages lost to full subscriber buffers. Nil
	// falls back to the bus's own Dropped method when it has one.
	Dropped func() int64
}

// Server routes the admin API.
type Server struct {
	deps         Deps
	router       *mux.Router
	upgrader     websocket.Upgrader
	pingInterval time.Duration
}

// NewServer builds the router for deps.
func NewServer(deps Deps) *Server {
	if deps.Healthy == nil {
		deps.Healthy = func() bool { return true }
	}

	if deps.RulesChanged == nil {
		deps.RulesChanged = func() {}
	}

	if deps.Dropped == nil {
		if d, ok := deps.Bus.(interface{ Dropped() int64 }); ok {
			deps.Dropped = d.Dropped
		}
	}

	s := &Server{
		deps:   deps,
		router: mux.NewRouter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		pingInterval: defaultPingInterval,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(CommonMiddleware)

	for _, mw := range s.deps.Middleware {
		s.router.Use(mw)
	}

	s.router.HandleFunc("/health", s.health).Methods(http.MethodGet)

	// Monitoring
	s.router.HandleFunc("/api/monitoring/metrics", s.pushMetrics).Methods(http.MethodPost)
	s.router.HandleFunc("/api/monitoring/metrics/{name}", s.getMetric).Methods(http.MethodGet)
	s.router.HandleFunc("/api/monitoring/state", s.getState).Methods(http.MethodGet)
	s.router.HandleFunc("/api/monitoring/state", s.forceState).Methods(http.MethodPost)
	s.router.HandleFunc("/api/monitoring/history", s.getHistory).Methods(http.MethodGet)
	s.router.HandleFunc("/api/monitoring/activity", s.getActivity).Methods(http.MethodGet)

	// Rules
	s.router.HandleFunc("/api/rules", s.listRules).Methods(http.MethodGet)
	s.router.HandleFunc("/api/rules", s.createRule).Methods(http.MethodPost)
	s.router.HandleFunc("/api/rules/{id:[0-9]+}", s.getRule).Methods(http.MethodGet)
	s.router.HandleFunc("/api/rules/{id:[0-9]+}", s.updateRule).Methods(http.MethodPut)
	s.router.HandleFunc("/api/rules/{id:[0-9]+}", s.deleteRule).Methods(http.MethodDelete)
	s.router.HandleFunc("/api/rules/{id:[0-9]+}/{action:enable|disable}", s.setRuleEnabled).Methods(http.MethodPost)

	// Alerts
	s.router.HandleFunc("/api/alerts", s.listAlerts).Methods(http.MethodGet)
	s.router.HandleFunc("/api/alerts", s.createAlert).Methods(http.MethodPost)
	s.router.HandleFunc("/api/alerts/anomaly", s.reportAnomaly).Methods(http.MethodPost)
	s.router.HandleFunc("/api/alerts/patterns", s.alertPatterns).Methods(http.MethodGet)
	s.router.HandleFunc("/api/alerts/{id:[0-9]+}", s.getAlert).Methods(http.MethodGet)
	s.router.HandleFunc("/api/alerts/{id:[0-9]+}/deliveries", s.alertDeliveries).Methods(http.MethodGet)
	s.router.HandleFunc("/api/alerts/{id:[0-9]+}/acknowledge", s.acknowledgeAlert).Methods(http.MethodPost)
	s.router.HandleFunc("/api/alerts/{id:[0-9]+}/resolve", s.resolveAlert).Methods(http.MethodPost)
	s.router.HandleFunc("/api/alerts/{id:[0-9]+}/suppress", s.suppressAlert).Methods(http.MethodPost)

	// Live stream
	s.router.HandleFunc("/api/stream", s.stream).Methods(http.MethodGet)
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling JSON response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if _, err := w.Write(response); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]string{"error": message})
}

// respondServiceError maps known sentinel errors to status codes and hides
// everything else behind a 500.
func respondServiceError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, alerts.ErrAlertNotFound), errors.Is(err, rules.ErrRuleNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, alerts.ErrInvalidAlert), errors.Is(err, rules.ErrInvalidRule),
		errors.Is(err, state.ErrInvalidState), errors.Is(err, metrics.ErrInvalidMetric):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, alerts.ErrInvalidTransition), errors.Is(err, rules.ErrDuplicateRule):
		respondError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("Error %s: %v", action, err)
		respondError(w, http.StatusInternalServerError, "Failed "+action)
	}
}

// decodeBody reads a JSON body into dst. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}

	if len(body) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}

	return nil
}

// parseID parses the {id} route variable.
func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id: %w", err)
	}

	return id, nil
}

// queryInt reads an integer query parameter, returning fallback when absent.
func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return v, nil
}
