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
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseCache(t *testing.T) {
	t.Run("Put and lookup", func(t *testing.T) {
		cache, err := NewResponseCache(t.TempDir(), "test", NewNopLogger())
		require.NoError(t, err)

		key := ResponseCacheKey(DatasetBilling, "svc", date(2024, 1, 1), date(2024, 2, 1))
		assert.Equal(t, "billing_svc_2024-01-01_2024-02-01", key)

		require.NoError(t, cache.Put(key, decodeBills(t, billsJSON), time.Hour))

		var resp *BillsResponse
		hit, err := cache.Lookup(key, &resp)
		require.NoError(t, err)
		require.True(t, hit)
		assert.Len(t, resp.Data, 2)

		hit, err = cache.Lookup("other", &resp)
		require.NoError(t, err)
		assert.False(t, hit)
	})

	t.Run("Entries expire", func(t *testing.T) {
		cache, err := NewResponseCache(t.TempDir(), "test", NewNopLogger())
		require.NoError(t, err)

		now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		cache.now = func() time.Time { return now }
		require.NoError(t, cache.Put("k", map[string]int{"v": 1}, time.Minute))

		now = now.Add(2 * time.Minute)
		var out map[string]int
		hit, err := cache.Lookup("k", &out)
		require.NoError(t, err)
		assert.False(t, hit)

		total, expired := cache.Stats()
		assert.Equal(t, 1, total)
		assert.Equal(t, 1, expired)

		require.NoError(t, cache.Close())
		total, _ = cache.Stats()
		assert.Equal(t, 0, total)
	})

	t.Run("Persists across instances", func(t *testing.T) {
		dir := t.TempDir()
		first, err := NewResponseCache(dir, "shared", NewNopLogger())
		require.NoError(t, err)
		require.NoError(t, first.Put("k", []int{1, 2, 3}, time.Hour))

		second, err := NewResponseCache(dir, "shared", NewNopLogger())
		require.NoError(t, err)
		var out []int
		hit, err := second.Lookup("k", &out)
		require.NoError(t, err)
		require.True(t, hit)
		assert.Equal(t, []int{1, 2, 3}, out)

		other, err := NewResponseCache(dir, "elsewhere", NewNopLogger())
		require.NoError(t, err)
		total, _ := other.Stats()
		assert.Equal(t, 0, total, "scopes do not share entries")
	})

	t.Run("Purge", func(t *testing.T) {
		cache, err := NewResponseCache(t.TempDir(), "test", NewNopLogger())
		require.NoError(t, err)
		require.NoError(t, cache.Put("a", 1, time.Hour))
		require.NoError(t, cache.Put("b", 2, time.Hour))
		require.NoError(t, cache.Purge())
		total, _ := cache.Stats()
		assert.Equal(t, 0, total)
	})
}

func TestAPISourceUsesCache(t *testing.T) {
	var hits atomic.Int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(readingsJSON))
	}))
	defer api.Close()

	cache, err := NewResponseCache(t.TempDir(), "test", NewNopLogger())
	require.NoError(t, err)

	config := &Config{MeterID: "m-1", StartDate: "2024-01-01", EndDate: "2024-03-01", CacheTTLMinutes: 10}
	src, err := NewAPISource(NewSnapmeterClient(api.URL, "key", NewNopLogger()), cache, config, NewNopLogger())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		resp, err := src.FetchReadings(context.Background())
		require.NoError(t, err)
		require.NotNil(t, resp)
	}
	assert.Equal(t, int32(1), hits.Load())

	bills, err := src.FetchBills(context.Background())
	require.NoError(t, err)
	assert.Nil(t, bills, "no service configured")
}

func TestNewAPISourceRejectsBadDates(t *testing.T) {
	config := &Config{StartDate: "soon", EndDate: "2024-03-01"}
	_, err := NewAPISource(nil, nil, config, NewNopLogger())
	var configErr *ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, "start_date", configErr.Field)
}
