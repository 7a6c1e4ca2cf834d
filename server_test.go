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
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) (*Server, *View, *View) {
	t.Helper()
	readings := NewView(DatasetReadings, staticLoader(fixtureReadings(t), nil), NewNopLogger())
	billing := NewView(DatasetBilling, staticLoader(fixtureBilling(t), nil), NewNopLogger())
	require.NoError(t, MountViews(context.Background(), []*View{readings, billing}))
	return NewServer([]*View{readings, billing}, DefaultChartWidth, DefaultChartHeight, NewNopLogger()), readings, billing
}

func TestServerHover(t *testing.T) {
	server, _, billing := testServer(t)
	handler := server.Handler()

	t.Run("Hit", func(t *testing.T) {
		x, y := centre(billing.Chart().Rects[1])
		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/hover?chart=billing&x=%f&y=%f", x, y), nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var tip Tooltip
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&tip))
		assert.Equal(t, "billing-1-heat", tip.ElementID)
		assert.Equal(t, "Variance in heat:", tip.Lines[3])

		hovered, ok := billing.Hovered()
		require.True(t, ok)
		assert.Equal(t, tip.ElementID, hovered.ElementID)
	})

	t.Run("Miss", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/hover?chart=billing&x=-5&y=-5", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("Unknown chart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/hover?chart=weather&x=1&y=1", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Bad coordinates", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/hover?chart=readings&x=left&y=1", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "validation error for x (left)")
	})

	t.Run("Leave", func(t *testing.T) {
		x, y := centre(billing.Chart().Rects[0])
		_, ok := billing.Pointer(x, y)
		require.True(t, ok)

		req := httptest.NewRequest(http.MethodPost, "/api/leave?chart=billing", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		_, ok = billing.Hovered()
		assert.False(t, ok)
	})

	t.Run("Wrong method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/leave?chart=billing", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestServerPages(t *testing.T) {
	server, _, _ := testServer(t)
	handler := server.Handler()

	t.Run("Dashboard", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `id="chart-readings"`)
		assert.Contains(t, body, `id="chart-billing"`)
		assert.Contains(t, body, "/api/refresh")
	})

	t.Run("Health and request IDs", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "ok", body["status"])
	})

	t.Run("Generated request ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
	})

	t.Run("Unknown path", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/nope", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Refresh", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var status map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
		assert.Equal(t, map[string]string{"readings": "loaded", "billing": "loaded"}, status)
	})
}
