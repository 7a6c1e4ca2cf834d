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
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapmeterClient(t *testing.T) {
	t.Run("Bills request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/services/svc 1/bills", r.URL.Path)
			assert.Equal(t, "2024-01-01", r.URL.Query().Get("start"))
			assert.Equal(t, "2024-03-01", r.URL.Query().Get("end"))
			assert.Equal(t, "secret", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			assert.Contains(t, r.Header.Get("User-Agent"), "meterviz")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(billsJSON))
		}))
		defer server.Close()

		client := NewSnapmeterClient(server.URL+"/", "secret", NewNopLogger())
		resp, err := client.FetchBills(context.Background(), "svc 1", date(2024, 1, 1), date(2024, 3, 1))
		require.NoError(t, err)
		assert.Len(t, resp.Data, 2)
	})

	t.Run("Readings request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/meters/m-9/readings", r.URL.Path)
			_, _ = w.Write([]byte(readingsJSON))
		}))
		defer server.Close()

		client := NewSnapmeterClient(server.URL, "secret", NewNopLogger())
		resp, err := client.FetchReadings(context.Background(), "m-9", date(2024, 1, 1), date(2024, 3, 1))
		require.NoError(t, err)
		points, err := NormalizeReadings(resp, time.UTC)
		require.NoError(t, err)
		assert.Len(t, points, 4)
	})

	t.Run("Server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream broke", http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewSnapmeterClient(server.URL, "secret", NewNopLogger())
		_, err := client.FetchBills(context.Background(), "svc", date(2024, 1, 1), date(2024, 3, 1))

		var netErr *NetworkError
		require.True(t, errors.As(err, &netErr))
		assert.Equal(t, http.StatusInternalServerError, netErr.StatusCode)
		assert.Equal(t, "upstream broke", netErr.Message)
		assert.True(t, netErr.IsRetryable())
		assert.True(t, isRetryable(fmt.Errorf("loading billing: %w", err)))
	})

	t.Run("Unauthorized is not retryable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := NewSnapmeterClient(server.URL, "bad", NewNopLogger())
		_, err := client.FetchReadings(context.Background(), "m", date(2024, 1, 1), date(2024, 3, 1))

		var netErr *NetworkError
		require.True(t, errors.As(err, &netErr))
		assert.False(t, netErr.IsRetryable())
		assert.False(t, isRetryable(err))
		assert.False(t, isRetryable(errors.New("not a network failure")))
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>maintenance</html>"))
		}))
		defer server.Close()

		client := NewSnapmeterClient(server.URL, "secret", NewNopLogger())
		_, err := client.FetchBills(context.Background(), "svc", date(2024, 1, 1), date(2024, 3, 1))

		var shape *ShapeError
		require.True(t, errors.As(err, &shape))
		assert.Equal(t, DatasetBilling, shape.Dataset)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(billsJSON))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := NewSnapmeterClient(server.URL, "secret", NewNopLogger())
		_, err := client.FetchBills(ctx, "svc", date(2024, 1, 1), date(2024, 3, 1))
		assert.ErrorIs(t, err, context.Canceled)
	})
}
