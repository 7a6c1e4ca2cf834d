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

	"golang.org/x/sync/errgroup"
)

// Loader fetches and analyzes one dataset. A nil Dataset with a nil error means no data.
type Loader func(ctx context.Context) (Dataset, error)

// View owns the dataset and hover slots of one chart
type View struct {
	name   string
	load   Loader
	logger *Logger

	mu         sync.RWMutex
	generation uint64
	dataset    Dataset

	hover HoverState
}

// NewView creates a view with an empty dataset slot
func NewView(name string, load Loader, logger *Logger) *View {
	return &View{
		name:   name,
		load:   load,
		logger: &Logger{logger.WithComponent("view").With("dataset", name)},
	}
}

// Name returns the dataset name
func (v *View) Name() string {
	return v.name
}

// Mount performs one fetch and stores the result unless a newer mount has started.
// Fetch errors clear the dataset slot and are returned for reporting.
func (v *View) Mount(ctx context.Context) error {
	v.mu.RLock()
	gen := v.generation
	v.mu.RUnlock()

	ds, err := v.load(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.generation {
		v.logger.LogStaleFetch(v.name, gen, v.generation)
		return nil
	}

	if err != nil {
		v.logger.Error("Failed to load dataset", "error", err, "retryable", isRetryable(err))
		v.dataset = nil
		v.hover.Leave()
		return err
	}

	v.dataset = ds
	v.hover.Leave()
	if ds == nil {
		v.logger.Warn("No data to display")
	}
	return nil
}

// Invalidate starts a new generation; in-flight fetches from older generations are discarded
func (v *View) Invalidate() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.generation++
	return v.generation
}

// Refresh invalidates the current generation and mounts again
func (v *View) Refresh(ctx context.Context) error {
	v.Invalidate()
	return v.Mount(ctx)
}

// Dataset returns the current dataset, or nil
func (v *View) Dataset() Dataset {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.dataset
}

// Chart returns the current chart geometry, or nil when there is no dataset
func (v *View) Chart() *Chart {
	ds := v.Dataset()
	if ds == nil {
		return nil
	}
	return ds.Chart()
}

// Pointer handles a pointer position in chart-local coordinates
func (v *View) Pointer(x, y float64) (Tooltip, bool) {
	return v.hover.Pointer(v.Dataset(), x, y)
}

// Leave handles the pointer leaving the chart
func (v *View) Leave() {
	v.hover.Leave()
}

// Hovered returns the tooltip of the hovered element
func (v *View) Hovered() (Tooltip, bool) {
	return v.hover.Current()
}

// MountViews mounts every view concurrently; each view still performs exactly one fetch.
// A failing view does not cancel the others.
func MountViews(ctx context.Context, views []*View) error {
	return eachView(views, func(v *View) error { return v.Mount(ctx) })
}

// RefreshViews starts a new generation on every view and mounts them again
func RefreshViews(ctx context.Context, views []*View) error {
	return eachView(views, func(v *View) error { return v.Refresh(ctx) })
}

func eachView(views []*View, fn func(v *View) error) error {
	var g errgroup.Group
	for _, v := range views {
		v := v
		g.Go(func() error {
			if err := fn(v); err != nil {
				return fmt.Errorf("%s: %w", v.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}
