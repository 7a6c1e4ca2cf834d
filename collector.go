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
	"fmt"
	"sync"
	"time"
)

// Source supplies raw responses for both datasets. A nil response with a nil error
// means the dataset is not configured.
type Source interface {
	FetchBills(ctx context.Context) (*BillsResponse, error)
	FetchReadings(ctx context.Context) (*ReadingsResponse, error)
}

// APISource fetches from Snapmeter, consulting the response cache first when one is configured
type APISource struct {
	client    *SnapmeterClient
	cache     *ResponseCache
	serviceID string
	meterID   string
	start     time.Time
	end       time.Time
	ttl       time.Duration
	logger    *Logger
}

// NewAPISource creates a source for the configured service, meter and date range
func NewAPISource(client *SnapmeterClient, cache *ResponseCache, config *Config, logger *Logger) (*APISource, error) {
	start, err := time.Parse(DateLayout, config.StartDate)
	if err != nil {
		return nil, &ConfigError{Field: "start_date", Message: err.Error()}
	}
	end, err := time.Parse(DateLayout, config.EndDate)
	if err != nil {
		return nil, &ConfigError{Field: "end_date", Message: err.Error()}
	}

	return &APISource{
		client:    client,
		cache:     cache,
		serviceID: config.ServiceID,
		meterID:   config.MeterID,
		start:     start,
		end:       end,
		ttl:       config.CacheTTL(),
		logger:    logger,
	}, nil
}

// FetchBills implements Source
func (s *APISource) FetchBills(ctx context.Context) (*BillsResponse, error) {
	if s.serviceID == "" {
		s.logger.Info("Skipping bills (service_id not configured)")
		return nil, nil
	}

	key := ResponseCacheKey(DatasetBilling, s.serviceID, s.start, s.end)
	var resp *BillsResponse
	if s.lookup(key, &resp) {
		return resp, nil
	}

	resp, err := s.client.FetchBills(ctx, s.serviceID, s.start, s.end)
	if err != nil {
		return nil, err
	}
	s.store(key, resp)
	return resp, nil
}

// FetchReadings implements Source
func (s *APISource) FetchReadings(ctx context.Context) (*ReadingsResponse, error) {
	if s.meterID == "" {
		s.logger.Info("Skipping readings (meter_id not configured)")
		return nil, nil
	}

	key := ResponseCacheKey(DatasetReadings, s.meterID, s.start, s.end)
	var resp *ReadingsResponse
	if s.lookup(key, &resp) {
		return resp, nil
	}

	resp, err := s.client.FetchReadings(ctx, s.meterID, s.start, s.end)
	if err != nil {
		return nil, err
	}
	s.store(key, resp)
	return resp, nil
}

func (s *APISource) lookup(key string, target interface{}) bool {
	if s.cache == nil {
		return false
	}
	cached, err := s.cache.Lookup(key, target)
	if err != nil {
		s.logger.Warn("Failed to load response from cache", "key", key, "error", err)
		return false
	}
	return cached
}

func (s *APISource) store(key string, value interface{}) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	if err := s.cache.Put(key, value, s.ttl); err != nil {
		s.logger.Warn("Failed to cache response", "key", key, "error", err)
	}
}

// SnapshotSource replays a saved snapshot
type SnapshotSource struct {
	snapshot *Snapshot
}

// NewSnapshotSource wraps a loaded snapshot
func NewSnapshotSource(snapshot *Snapshot) *SnapshotSource {
	return &SnapshotSource{snapshot: snapshot}
}

// FetchBills implements Source
func (s *SnapshotSource) FetchBills(ctx context.Context) (*BillsResponse, error) {
	return s.snapshot.Bills, ctx.Err()
}

// FetchReadings implements Source
func (s *SnapshotSource) FetchReadings(ctx context.Context) (*ReadingsResponse, error) {
	return s.snapshot.Readings, ctx.Err()
}

// Collector turns a Source into analyzed datasets and remembers the raw responses it used
type Collector struct {
	source   Source
	analyzer *Analyzer
	loc      *time.Location
	logger   *Logger

	mu       sync.Mutex
	bills    *BillsResponse
	readings *ReadingsResponse
}

// NewCollector creates a new data collector
func NewCollector(source Source, analyzer *Analyzer, loc *time.Location, logger *Logger) *Collector {
	return &Collector{
		source:   source,
		analyzer: analyzer,
		loc:      loc,
		logger:   logger.WithComponent("collector"),
	}
}

// LoadBilling is a Loader for the billing view
func (c *Collector) LoadBilling(ctx context.Context) (Dataset, error) {
	resp, err := c.source.FetchBills(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bills: %w", err)
	}
	if resp == nil {
		return nil, nil
	}

	c.mu.Lock()
	c.bills = resp
	c.mu.Unlock()

	bills, err := NormalizeBills(resp)
	if err != nil {
		return nil, err
	}
	c.logger.LogDataCollection(DatasetBilling, len(bills))

	ds := c.analyzer.AnalyzeBilling(bills)
	if ds == nil {
		return nil, nil
	}
	return ds, nil
}

// LoadReadings is a Loader for the readings view
func (c *Collector) LoadReadings(ctx context.Context) (Dataset, error) {
	resp, err := c.source.FetchReadings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch readings: %w", err)
	}
	if resp == nil {
		return nil, nil
	}

	c.mu.Lock()
	c.readings = resp
	c.mu.Unlock()

	points, err := NormalizeReadings(resp, c.loc)
	if err != nil {
		return nil, err
	}
	c.logger.LogDataCollection(DatasetReadings, len(points))

	ds := c.analyzer.AnalyzeReadings(points)
	if ds == nil {
		return nil, nil
	}
	return ds, nil
}

// Snapshot returns the raw responses fetched so far
func (c *Collector) Snapshot() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &Snapshot{
		GeneratedAt: time.Now(),
		Bills:       c.bills,
		Readings:    c.readings,
	}
}
