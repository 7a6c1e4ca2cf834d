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
	"math"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
)

// Dataset is an analyzed dataset that can be drawn and inspected
type Dataset interface {
	Name() string
	Chart() *Chart
	Summarize(target HoverTarget) ([]string, bool)
}

// HitTest returns the topmost rectangle under a chart-local point
func (c *Chart) HitTest(x, y float64) (Rect, bool) {
	if c == nil {
		return Rect{}, false
	}
	for i := len(c.Rects) - 1; i >= 0; i-- {
		if c.Rects[i].Contains(x, y) {
			return c.Rects[i], true
		}
	}
	return Rect{}, false
}

// Tooltip is the summary shown next to the pointer for one hovered element
type Tooltip struct {
	ElementID string      `json:"id"`
	Target    HoverTarget `json:"target"`
	Lines     []string    `json:"lines"`
	X         float64     `json:"x"`
	Y         float64     `json:"y"`
}

// Text joins the summary lines with newlines
func (t Tooltip) Text() string {
	return strings.Join(t.Lines, "\n")
}

// tooltipAt positions a tooltip relative to the pointer
func tooltipAt(rect Rect, lines []string, x, y float64) Tooltip {
	return Tooltip{
		ElementID: rect.Target.ID(),
		Target:    rect.Target,
		Lines:     lines,
		X:         x + TooltipOffsetX,
		Y:         y + TooltipOffsetY,
	}
}

// HoverState holds at most one hovered element
type HoverState struct {
	mu      sync.RWMutex
	current *Tooltip
}

// Leave clears the hovered element
func (h *HoverState) Leave() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = nil
}

// Current returns the hovered element's tooltip
func (h *HoverState) Current() (Tooltip, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return Tooltip{}, false
	}
	return *h.current, true
}

// Pointer enters, moves or leaves the hovered element under one lock and returns the visible tooltip
func (h *HoverState) Pointer(ds Dataset, x, y float64) (Tooltip, bool) {
	if ds == nil {
		h.Leave()
		return Tooltip{}, false
	}
	rect, ok := ds.Chart().HitTest(x, y)
	if !ok {
		h.Leave()
		return Tooltip{}, false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current != nil && h.current.ElementID == rect.Target.ID() {
		h.current.X = x + TooltipOffsetX
		h.current.Y = y + TooltipOffsetY
		return *h.current, true
	}

	lines, ok := ds.Summarize(rect.Target)
	if !ok {
		h.current = nil
		return Tooltip{}, false
	}
	t := tooltipAt(rect, lines, x, y)
	h.current = &t
	return t, true
}

// roundHalfUp rounds halves toward positive infinity
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// BillingSummary describes one bill and one of its variance categories
func BillingSummary(bill BillRecord, category string) []string {
	v, ok := bill.Variance(category)
	if !ok {
		v = Variance{Category: category, Sign: SignPositive}
	}
	return []string{
		fmt.Sprintf("%s to %s", bill.StartDate.Format(DateLayout), bill.EndDate.Format(DateLayout)),
		fmt.Sprintf("Total Cost: $ %s", humanize.CommafWithDigits(bill.Cost.InexactFloat64(), 2)),
		fmt.Sprintf("Total Use: %s kWh", humanize.Commaf(bill.Use.InexactFloat64())),
		fmt.Sprintf("Variance in %s:", category),
		fmt.Sprintf("%.0f kWh", roundHalfUp(v.SignedValue)),
		fmt.Sprintf("Change: %s%%", humanize.FtoaWithDigits(v.PercentValue, 2)),
	}
}

// HeatmapSummary describes one (month, hour) bucket
func HeatmapSummary(cell RollupCell) []string {
	value := "no data"
	if mean, ok := cell.Mean(); ok {
		value = fmt.Sprintf("%.2f", mean)
	}
	return []string{
		fmt.Sprintf("Month: %s", cell.Month.Format("Jan 2006")),
		fmt.Sprintf("Hour: %d:00", cell.Hour),
		fmt.Sprintf("Value: %s", value),
	}
}
