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
	"time"
)

// Analyzer turns normalized records into drawable datasets
type Analyzer struct {
	width  float64
	height float64
	loc    *time.Location
	logger *Logger
}

// NewAnalyzer creates a new analyzer for a fixed plot size
func NewAnalyzer(width, height int, loc *time.Location, logger *Logger) *Analyzer {
	if loc == nil {
		loc = time.Local
	}
	return &Analyzer{
		width:  float64(width),
		height: float64(height),
		loc:    loc,
		logger: logger,
	}
}

// BillingDataset is the full derivation of the billing chart
type BillingDataset struct {
	Bills  []BillRecord
	Stack  *Stack
	Scales BillingScales
	chart  *Chart
}

// Name implements Dataset
func (d *BillingDataset) Name() string { return DatasetBilling }

// Chart implements Dataset
func (d *BillingDataset) Chart() *Chart {
	if d == nil {
		return nil
	}
	return d.chart
}

// Summarize implements Dataset
func (d *BillingDataset) Summarize(target HoverTarget) ([]string, bool) {
	if target.Chart != DatasetBilling || target.RecordIndex < 0 || target.RecordIndex >= len(d.Bills) {
		return nil, false
	}
	return BillingSummary(d.Bills[target.RecordIndex], target.Category), true
}

// ReadingsDataset is the full derivation of the heatmap
type ReadingsDataset struct {
	Points []ReadingPoint
	Rollup *Rollup
	Scales HeatmapScales
	chart  *Chart
}

// Name implements Dataset
func (d *ReadingsDataset) Name() string { return DatasetReadings }

// Chart implements Dataset
func (d *ReadingsDataset) Chart() *Chart {
	if d == nil {
		return nil
	}
	return d.chart
}

// Summarize implements Dataset
func (d *ReadingsDataset) Summarize(target HoverTarget) ([]string, bool) {
	if target.Chart != DatasetReadings {
		return nil, false
	}
	cell, ok := d.Rollup.Cell(target.Month, target.Hour)
	if !ok {
		return nil, false
	}
	return HeatmapSummary(cell), true
}

// AnalyzeBilling stacks, scales and lays out bills. It returns nil for no bills.
func (a *Analyzer) AnalyzeBilling(bills []BillRecord) *BillingDataset {
	if len(bills) == 0 {
		return nil
	}

	stack := BuildStack(bills)
	a.logger.LogPipelineStage(DatasetBilling, "stack")

	scales := NewBillingScales(bills, stack, a.width, a.height)
	a.logger.LogPipelineStage(DatasetBilling, "scales")

	chart := BuildBillingChart(bills, stack, scales, a.width, a.height)
	a.logger.LogPipelineStage(DatasetBilling, "geometry")

	return &BillingDataset{Bills: bills, Stack: stack, Scales: scales, chart: chart}
}

// AnalyzeReadings rolls up, scales and lays out readings. It returns nil for no readings.
func (a *Analyzer) AnalyzeReadings(points []ReadingPoint) *ReadingsDataset {
	if len(points) == 0 {
		return nil
	}

	rollup := BuildRollup(points, a.loc)
	a.logger.LogPipelineStage(DatasetReadings, "rollup")

	scales := NewHeatmapScales(points, rollup, a.width, a.height)
	a.logger.LogPipelineStage(DatasetReadings, "scales")

	chart := BuildHeatmapChart(rollup, scales, a.width, a.height)
	a.logger.LogPipelineStage(DatasetReadings, "geometry")

	return &ReadingsDataset{Points: points, Rollup: rollup, Scales: scales, chart: chart}
}
