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

// RollupCell aggregates the readings routed to one bucket
type RollupCell struct {
	Month  time.Time
	Hour   int
	Sum    float64
	Count  int // present values
	Points int // all routed points, including absent values
}

// Mean returns the arithmetic mean of present values; ok is false when there were none
func (c RollupCell) Mean() (mean float64, ok bool) {
	if c.Count == 0 {
		return 0, false
	}
	return c.Sum / float64(c.Count), true
}

// Rollup is an insertion-ordered mapping from a (month, hour-of-day) key to its aggregate
type Rollup struct {
	loc    *time.Location
	months []time.Time
	order  []cellKey
	cells  map[cellKey]*RollupCell
}

type cellKey struct {
	month string
	hour  int
}

// MonthStart truncates t to the first instant of its calendar month in loc
func MonthStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
}

// MonthKey formats a month start for use as a map or scale key
func MonthKey(month time.Time) string {
	return month.Format("2006-01")
}

// BuildRollup buckets readings by month and local hour
func BuildRollup(points []ReadingPoint, loc *time.Location) *Rollup {
	if loc == nil {
		loc = time.Local
	}
	r := &Rollup{
		loc:   loc,
		cells: make(map[cellKey]*RollupCell),
	}
	seenMonths := make(map[string]bool)

	for _, p := range points {
		local := p.Timestamp.In(loc)
		month := MonthStart(local, loc)
		key := cellKey{month: MonthKey(month), hour: local.Hour()}

		if !seenMonths[key.month] {
			seenMonths[key.month] = true
			r.months = append(r.months, month)
		}

		cell, ok := r.cells[key]
		if !ok {
			cell = &RollupCell{Month: month, Hour: key.hour}
			r.cells[key] = cell
			r.order = append(r.order, key)
		}
		cell.Points++
		if p.Value != nil {
			cell.Sum += *p.Value
			cell.Count++
		}
	}

	return r
}

// Months returns month starts in first-seen order
func (r *Rollup) Months() []time.Time {
	return append([]time.Time(nil), r.months...)
}

// MonthKeys returns the band scale domain for the heatmap rows
func (r *Rollup) MonthKeys() []string {
	keys := make([]string, len(r.months))
	for i, m := range r.months {
		keys[i] = MonthKey(m)
	}
	return keys
}

// Cell looks up a bucket
func (r *Rollup) Cell(month time.Time, hour int) (RollupCell, bool) {
	cell, ok := r.cells[cellKey{month: MonthKey(MonthStart(month, r.loc)), hour: hour}]
	if !ok {
		return RollupCell{}, false
	}
	return *cell, true
}

// Cells returns every bucket in first-seen order
func (r *Rollup) Cells() []RollupCell {
	cells := make([]RollupCell, len(r.order))
	for i, key := range r.order {
		cells[i] = *r.cells[key]
	}
	return cells
}

// Len returns the number of buckets
func (r *Rollup) Len() int {
	return len(r.order)
}

// HourlyProfile returns one 24-slot mean series per month, with a mask of defined slots
func (r *Rollup) HourlyProfile() (values [][]float64, defined [][]bool) {
	index := make(map[string]int, len(r.months))
	values = make([][]float64, len(r.months))
	defined = make([][]bool, len(r.months))
	for i, m := range r.months {
		index[MonthKey(m)] = i
		values[i] = make([]float64, 24)
		defined[i] = make([]bool, 24)
	}

	for _, key := range r.order {
		mean, ok := r.cells[key].Mean()
		if !ok {
			continue
		}
		row := index[key.month]
		values[row][key.hour] = mean
		defined[row][key.hour] = true
	}

	return values, defined
}

// PeakHour returns the hour with the highest defined mean for a month
func (r *Rollup) PeakHour(month time.Time) (hour int, mean float64, ok bool) {
	for h := 0; h < 24; h++ {
		cell, found := r.Cell(month, h)
		if !found {
			continue
		}
		if m, defined := cell.Mean(); defined && (!ok || m > mean) {
			hour, mean, ok = h, m, true
		}
	}
	return hour, mean, ok
}
