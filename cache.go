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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// ResponseEntry is one cached API response with its expiry
type ResponseEntry struct {
	Data      json.RawMessage `json:"data"`
	CachedAt  time.Time       `json:"cached_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

type responseStore struct {
	Entries map[string]*ResponseEntry `json:"entries"`
}

// ResponseCache keeps raw API responses in a single JSON file per scope
type ResponseCache struct {
	filePath string
	scope    string
	store    *responseStore
	mutex    sync.RWMutex
	logger   *Logger
	now      func() time.Time
}

// ResponseCacheKey builds the key of one dataset request
func ResponseCacheKey(dataset, id string, start, end time.Time) string {
	return fmt.Sprintf("%s_%s_%s_%s", dataset, id, start.Format(DateLayout), end.Format(DateLayout))
}

// NewResponseCache opens (or starts) the cache file for a scope
func NewResponseCache(basePath, scope string, logger *Logger) (*ResponseCache, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, &StorageError{Operation: "create_directory", Path: basePath, Err: err}
	}

	c := &ResponseCache{
		filePath: filepath.Join(basePath, fmt.Sprintf("responses_%s.json", scope)),
		scope:    scope,
		store:    &responseStore{Entries: make(map[string]*ResponseEntry)},
		logger:   logger.WithComponent("cache"),
		now:      time.Now,
	}

	if err := c.load(); err != nil && !os.IsNotExist(err) {
		c.logger.Warn("Failed to load cache, starting fresh", "error", err)
	}

	c.mutex.Lock()
	err := c.evictExpired()
	c.mutex.Unlock()
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Cache initialized", "path", c.filePath, "entries", len(c.store.Entries))
	return c, nil
}

// Put stores a response under key for ttl
func (c *ResponseCache) Put(key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	c.store.Entries[key] = &ResponseEntry{Data: raw, CachedAt: now, ExpiresAt: now.Add(ttl)}
	if err := c.save(); err != nil {
		return err
	}

	c.logger.Debug("Cache put", "key", key, "size", humanize.Bytes(uint64(len(raw))), "ttl", ttl)
	return nil
}

// Lookup decodes a live entry into target; it reports false on a miss or an expired entry
func (c *ResponseCache) Lookup(key string, target interface{}) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, ok := c.store.Entries[key]
	if !ok || c.now().After(entry.ExpiresAt) {
		c.logger.Debug("Cache miss", "key", key)
		return false, nil
	}

	if err := json.Unmarshal(entry.Data, target); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	c.logger.Debug("Cache hit", "key", key, "age", humanize.RelTime(entry.CachedAt, c.now(), "ago", "from now"))
	return true, nil
}

// Purge drops every entry of the scope
func (c *ResponseCache) Purge() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	count := len(c.store.Entries)
	c.store.Entries = make(map[string]*ResponseEntry)
	if err := c.save(); err != nil {
		return err
	}

	c.logger.Info("Cleared response cache", "scope", c.scope, "count", count)
	return nil
}

// Stats returns the number of entries and how many have expired
func (c *ResponseCache) Stats() (total int, expired int) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	now := c.now()
	for _, entry := range c.store.Entries {
		if now.After(entry.ExpiresAt) {
			expired++
		}
	}
	return len(c.store.Entries), expired
}

// Close evicts expired entries one last time
func (c *ResponseCache) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.evictExpired()
}

// evictExpired must be called with the lock held
func (c *ResponseCache) evictExpired() error {
	now := c.now()
	removed := 0
	for key, entry := range c.store.Entries {
		if now.After(entry.ExpiresAt) {
			delete(c.store.Entries, key)
			removed++
		}
	}
	if removed == 0 {
		return nil
	}
	c.logger.Info("Evicted expired cache entries", "count", removed)
	return c.save()
}

func (c *ResponseCache) load() error {
	data, err := os.ReadFile(c.filePath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, c.store); err != nil {
		return fmt.Errorf("failed to unmarshal cache file: %w", err)
	}
	if c.store.Entries == nil {
		c.store.Entries = make(map[string]*ResponseEntry)
	}
	return nil
}

func (c *ResponseCache) save() error {
	data, err := json.MarshalIndent(c.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}
	if err := os.WriteFile(c.filePath, data, 0644); err != nil {
		return &StorageError{Operation: "write_cache", Path: c.filePath, Err: err}
	}
	return nil
}
