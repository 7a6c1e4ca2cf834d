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

const (
	// SnapmeterAPIBase is the base URL for the Snapmeter public API
	SnapmeterAPIBase = "https://snapmeter.com/api/public"

	// DateLayout is the layout used for API query parameters and bill dates
	DateLayout = "2006-01-02"

	// DefaultHistoryMonths is how far back the default date range reaches
	DefaultHistoryMonths = 24
)

// Dataset names, used in logs, errors, cache keys and HTTP routes
const (
	DatasetBilling  = "billing"
	DatasetReadings = "readings"
)

// Plot area defaults, in pixels
const (
	DefaultChartWidth  = 800
	DefaultChartHeight = 600

	// BandPadding is applied as both inner and outer padding of band scales
	BandPadding = 0.1

	// HeatmapCellGap is subtracted from each hour column width
	HeatmapCellGap = 2.0

	// TooltipOffsetX and TooltipOffsetY position the tooltip relative to the pointer
	TooltipOffsetX = 10.0
	TooltipOffsetY = -20.0
)

// Margins holds the space around a plot area
type Margins struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

var (
	// BillingMargins leaves room for the rotated period labels
	BillingMargins = Margins{Top: 20, Right: 100, Bottom: 120, Left: 100}

	// ReadingsMargins leaves room for month labels on the left
	ReadingsMargins = Margins{Top: 20, Right: 100, Bottom: 20, Left: 100}
)
