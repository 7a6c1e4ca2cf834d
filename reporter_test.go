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
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReport(t *testing.T) {
	generatedAt := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	t.Run("Both datasets", func(t *testing.T) {
		var buf bytes.Buffer
		err := NewReporter(NewNopLogger()).GenerateReport(&buf, fixtureBilling(t), fixtureReadings(t), generatedAt)
		require.NoError(t, err)
		out := buf.String()

		assert.Contains(t, out, "**Generated:** 2024-06-01 09:30:00")
		assert.Contains(t, out, "| 2024-01-01 - 2024-01-31 | $ 1,234.5 | 9,876 kWh | 15 kWh | heat |")
		assert.Contains(t, out, "**Total Cost:** $ 2,334.5 across 2 bills (18,876.25 kWh)")
		assert.Contains(t, out, "| heat | 13 kWh | 1 |")
		assert.Contains(t, out, "| base | 13 kWh | 2 |")
		assert.Contains(t, out, "**Demand Range:** 2.50 kW to 7.00 kW over 4 readings")
		assert.Contains(t, out, "| Jan 2024 | 1 | 3:00 | 6.00 kW |")
		assert.Contains(t, out, "| Feb 2024 | 1 | 0:00 | 2.50 kW |")
	})

	t.Run("No data", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewReporter(NewNopLogger()).GenerateReport(&buf, nil, nil, generatedAt))
		assert.Contains(t, buf.String(), "_No billing data available._")
		assert.Contains(t, buf.String(), "_No meter readings available._")
	})

	t.Run("Month without values", func(t *testing.T) {
		points := []ReadingPoint{{Timestamp: time.Date(2024, 3, 4, 5, 0, 0, 0, time.UTC)}}
		ds := testAnalyzer().AnalyzeReadings(points)

		var buf bytes.Buffer
		require.NoError(t, NewReporter(NewNopLogger()).GenerateReport(&buf, nil, ds, generatedAt))
		assert.Contains(t, buf.String(), "no readings reported a value")
		assert.Contains(t, buf.String(), "| Mar 2024 | 0 | - | no data |")
	})
}

func TestLargestCategory(t *testing.T) {
	assert.Equal(t, "-", largestCategory(BillRecord{}))
	assert.Equal(t, "b", largestCategory(testBill(date(2024, 1, 1), "a", 2.0, "b", -9.0, "c", 4.0)))
}

func TestGenerateDashboard(t *testing.T) {
	reporter := NewHTMLReporter(NewNopLogger())

	t.Run("Draws every element", func(t *testing.T) {
		var buf bytes.Buffer
		drawn, err := reporter.GenerateDashboard(&buf, Dashboard{
			Readings:   fixtureReadings(t),
			Billing:    fixtureBilling(t),
			PlotWidth:  DefaultChartWidth,
			PlotHeight: DefaultChartHeight,
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]int{DatasetReadings: 3, DatasetBilling: 4}, drawn)

		out := buf.String()
		assert.Equal(t, 7, strings.Count(out, "data-tooltip="))
		assert.Contains(t, out, `id="tooltip-readings"`)
		assert.Contains(t, out, `id="tooltip-billing"`)
		assert.Contains(t, out, `data-id="billing-1-heat"`)
		assert.Contains(t, out, "Change: -4.25%")
		assert.Contains(t, out, "rotate(-45)")
		assert.Contains(t, out, "ev.clientX - box.left + 10")
		assert.NotContains(t, out, "/api/refresh")
		assert.NotContains(t, out, "No data available.")
	})

	t.Run("Empty datasets draw nothing", func(t *testing.T) {
		var buf bytes.Buffer
		drawn, err := reporter.GenerateDashboard(&buf, Dashboard{PlotWidth: 800, PlotHeight: 600, Live: true})
		require.NoError(t, err)
		assert.Equal(t, 0, drawn[DatasetReadings])
		assert.Equal(t, 0, drawn[DatasetBilling])

		out := buf.String()
		assert.NotContains(t, out, "<rect ")
		assert.Equal(t, 2, strings.Count(out, "No data available."))
		assert.Contains(t, out, `width="1000" height="740"`)
		assert.Contains(t, out, "/api/refresh")
	})

	t.Run("Embeds PNG exports", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := reporter.GenerateDashboard(&buf, Dashboard{PlotWidth: 800, PlotHeight: 600, ProfilePNG: []byte("png")})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "data:image/png;base64,cG5n")
	})
}
