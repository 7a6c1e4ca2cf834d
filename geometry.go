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
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// HoverTarget identifies the source data behind a drawn element
type HoverTarget struct {
	Chart       string    `json:"chart"`
	RecordIndex int       `json:"recordIndex,omitempty"`
	Category    string    `json:"category,omitempty"`
	Month       time.Time `json:"month,omitempty"`
	Hour        int       `json:"hour,omitempty"`
}

// ID is a stable identifier for the element, unique within a chart
func (t HoverTarget) ID() string {
	if t.Chart == DatasetBilling {
		return fmt.Sprintf("%s-%d-%s", t.Chart, t.RecordIndex, t.Category)
	}
	return fmt.Sprintf("%s-%s-%02d", t.Chart, MonthKey(t.Month), t.Hour)
}

// Rect is a filled rectangle in plot coordinates
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
	Fill   drawing.Color
	Target HoverTarget
}

// Contains reports whether the point lies inside the rectangle
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Tick is an axis label at a plot coordinate
type Tick struct {
	Pos   float64
	Label string
}

// LegendEntry pairs a label with its color
type LegendEntry struct {
	Label string
	Color drawing.Color
}

// Chart is the complete drawable geometry of one visualization
type Chart struct {
	Name        string
	Title       string
	Width       float64 // plot area
	Height      float64
	Margins     Margins
	Rects       []Rect // draw order
	XTicks      []Tick
	YTicks      []Tick
	RotateXText bool
	Legend      []LegendEntry
}

// OuterWidth includes margins
func (c *Chart) OuterWidth() float64 {
	return c.Width + c.Margins.Left + c.Margins.Right
}

// OuterHeight includes margins
func (c *Chart) OuterHeight() float64 {
	return c.Height + c.Margins.Top + c.Margins.Bottom
}

// BillingScales are the mappings of the stacked variance chart
type BillingScales struct {
	X     *BandScale
	Y     *LinearScale
	Color *OrdinalScale
}

func billBandKey(i int) string {
	return strconv.Itoa(i)
}

// NewBillingScales derives fresh scales from the bills and their stack
func NewBillingScales(bills []BillRecord, stack *Stack, width, height float64) BillingScales {
	keys := make([]string, len(bills))
	for i := range bills {
		keys[i] = billBandKey(i)
	}
	return BillingScales{
		X:     NewBandScale(keys, 0, width, BandPadding),
		Y:     NewLinearScale(0, stack.Max, height, 0).Nice(10),
		Color: NewOrdinalScale(stack.Categories, pastel1),
	}
}

// BuildBillingChart lays out one rectangle per (category, bill)
func BuildBillingChart(bills []BillRecord, stack *Stack, scales BillingScales, width, height float64) *Chart {
	chart := &Chart{
		Name:        DatasetBilling,
		Title:       "Billing Variances",
		Width:       width,
		Height:      height,
		Margins:     BillingMargins,
		RotateXText: true,
	}

	for _, layer := range stack.Layers {
		fill := scales.Color.Color(layer.Category)
		for _, seg := range layer.Segments {
			x, _ := scales.X.Position(billBandKey(seg.RecordIndex))
			y1 := scales.Y.Map(seg.Top)
			y0 := scales.Y.Map(seg.Base)
			chart.Rects = append(chart.Rects, Rect{
				X:      x,
				Y:      y1,
				Width:  scales.X.Bandwidth(),
				Height: y0 - y1,
				Fill:   fill,
				Target: HoverTarget{Chart: DatasetBilling, RecordIndex: seg.RecordIndex, Category: seg.Category},
			})
		}
		chart.Legend = append(chart.Legend, LegendEntry{Label: layer.Category, Color: fill})
	}

	for i, bill := range bills {
		x, _ := scales.X.Position(billBandKey(i))
		chart.XTicks = append(chart.XTicks, Tick{Pos: x + scales.X.Bandwidth()/2, Label: bill.Label()})
	}
	for _, v := range scales.Y.Ticks(10) {
		chart.YTicks = append(chart.YTicks, Tick{Pos: scales.Y.Map(v), Label: humanize.Commaf(v)})
	}

	return chart
}

// HeatmapScales are the mappings of the month by hour heatmap
type HeatmapScales struct {
	X     *LinearScale
	Y     *BandScale
	Color *SequentialScale
}

// NewHeatmapScales derives fresh scales from the readings and their rollup
func NewHeatmapScales(points []ReadingPoint, rollup *Rollup, width, height float64) HeatmapScales {
	lo, hi, _ := Extent(points)
	return HeatmapScales{
		X:     NewLinearScale(0, 23, 0, width),
		Y:     NewBandScale(rollup.MonthKeys(), 0, height, BandPadding),
		Color: NewSequentialScale(lo, hi),
	}
}

// BuildHeatmapChart lays out one cell per (month, hour) bucket; undefined means are filled as zero
func BuildHeatmapChart(rollup *Rollup, scales HeatmapScales, width, height float64) *Chart {
	chart := &Chart{
		Name:    DatasetReadings,
		Title:   "Meter Readings",
		Width:   width,
		Height:  height,
		Margins: ReadingsMargins,
	}

	cellWidth := width/24 - HeatmapCellGap
	for _, cell := range rollup.Cells() {
		mean, ok := cell.Mean()
		if !ok {
			mean = 0
		}
		y, _ := scales.Y.Position(MonthKey(cell.Month))
		chart.Rects = append(chart.Rects, Rect{
			X:      scales.X.Map(float64(cell.Hour)),
			Y:      y,
			Width:  cellWidth,
			Height: scales.Y.Bandwidth(),
			Fill:   scales.Color.Color(mean),
			Target: HoverTarget{Chart: DatasetReadings, Month: cell.Month, Hour: cell.Hour},
		})
	}

	for h := 0; h < 24; h++ {
		chart.XTicks = append(chart.XTicks, Tick{Pos: scales.X.Map(float64(h)), Label: fmt.Sprintf("%d:00", h)})
	}
	for _, month := range rollup.Months() {
		y, _ := scales.Y.Position(MonthKey(month))
		chart.YTicks = append(chart.YTicks, Tick{Pos: y + scales.Y.Bandwidth()/2, Label: month.Format("Jan 2006")})
	}

	mid := (scales.Color.Min + scales.Color.Max) / 2
	for _, v := range []float64{scales.Color.Min, mid, scales.Color.Max} {
		chart.Legend = append(chart.Legend, LegendEntry{Label: fmt.Sprintf("%.2f kW", v), Color: scales.Color.Color(v)})
	}

	return chart
}
