// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// Server exposes the dashboard and the hover endpoints
type Server struct {
	views      map[string]*View
	order      []*View
	reporter   *HTMLReporter
	plotWidth  float64
	plotHeight float64
	logger     *Logger
}

// NewServer creates a server over views given in page order
func NewServer(views []*View, plotWidth, plotHeight float64, logger *Logger) *Server {
	s := &Server{
		views:      make(map[string]*View, len(views)),
		order:      views,
		reporter:   NewHTMLReporter(logger),
		plotWidth:  plotWidth,
		plotHeight: plotHeight,
		logger:     logger.WithComponent("server"),
	}
	for _, v := range views {
		s.views[v.Name()] = v
	}
	return s
}

// Handler returns the routed handler wrapped with request logging
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /api/hover", s.handleHover)
	mux.HandleFunc("POST /api/leave", s.handleLeave)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return s.withRequestID(mux)
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
		s.logger.Debug("HTTP request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d := Dashboard{
		GeneratedAt: time.Now(),
		Live:        true,
		PlotWidth:   s.plotWidth,
		PlotHeight:  s.plotHeight,
	}
	if v, ok := s.views[DatasetReadings]; ok {
		d.Readings = v.Dataset()
	}
	if v, ok := s.views[DatasetBilling]; ok {
		d.Billing = v.Dataset()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := s.reporter.GenerateDashboard(w, d); err != nil {
		s.logger.Error("Failed to write dashboard", "request_id", r.Context().Value(requestIDKey{}), "error", err)
	}
}

func (s *Server) view(w http.ResponseWriter, r *http.Request) (*View, bool) {
	name := r.URL.Query().Get("chart")
	v, ok := s.views[name]
	if !ok {
		http.Error(w, "unknown chart", http.StatusNotFound)
		return nil, false
	}
	return v, true
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w, r)
	if !ok {
		return
	}

	x, err := queryFloat(r, "x")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	y, err := queryFloat(r, "y")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tip, ok := v.Pointer(x, y)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, tip)
}

func queryFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ValidationError{Field: name, Value: raw, Message: "must be a number"}
	}
	return v, nil
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w, r)
	if !ok {
		return
	}
	v.Leave()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{}
	if err := RefreshViews(r.Context(), s.order); err != nil {
		s.logger.Warn("Refresh completed with errors", "request_id", r.Context().Value(requestIDKey{}), "error", err)
		status["error"] = err.Error()
	}
	for _, v := range s.order {
		if v.Dataset() != nil {
			status[v.Name()] = "loaded"
		} else {
			status[v.Name()] = "empty"
		}
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": GetVersion()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
