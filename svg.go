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
	"html"
	"io"
)

// errWriter remembers the first write error so callers can check once at the end
type errWriter struct {
	w   io.Writer
	err error
}

func (s *errWriter) printf(format string, args ...interface{}) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format, args...)
}

// RenderChart writes a dataset's chart as inline SVG and returns the number of drawn rectangles.
// A nil dataset produces an empty canvas of the given outer size.
func RenderChart(w io.Writer, name string, ds Dataset, outerWidth, outerHeight float64) (int, error) {
	sw := &errWriter{w: w}

	var chart *Chart
	if ds != nil {
		chart = ds.Chart()
	}
	if chart == nil {
		sw.printf(`<svg class="chart" id="chart-%s" data-chart="%s" width="%g" height="%g"></svg>`+"\n",
			name, name, outerWidth, outerHeight)
		return 0, sw.err
	}

	sw.printf(`<svg class="chart" id="chart-%s" data-chart="%s" width="%g" height="%g" data-left="%g" data-top="%g">`+"\n",
		name, name, chart.OuterWidth(), chart.OuterHeight(), chart.Margins.Left, chart.Margins.Top)
	sw.printf(`<g transform="translate(%g,%g)">`+"\n", chart.Margins.Left, chart.Margins.Top)

	drawn := 0
	for _, r := range chart.Rects {
		lines, _ := ds.Summarize(r.Target)
		tip := Tooltip{ElementID: r.Target.ID(), Target: r.Target, Lines: lines}
		sw.printf(`<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" data-id="%s" data-tooltip="%s"/>`+"\n",
			r.X, r.Y, r.Width, r.Height, CSSColor(r.Fill),
			html.EscapeString(tip.ElementID), html.EscapeString(tip.Text()))
		drawn++
	}

	writeAxes(sw, chart)
	writeLegend(sw, chart)

	sw.printf("</g>\n</svg>\n")
	return drawn, sw.err
}

func writeAxes(sw *errWriter, chart *Chart) {
	sw.printf(`<g class="axis axis-x" transform="translate(0,%g)">`+"\n", chart.Height)
	sw.printf(`<line x1="0" x2="%g" y1="0" y2="0" stroke="#333"/>`+"\n", chart.Width)
	for _, t := range chart.XTicks {
		if chart.RotateXText {
			sw.printf(`<text transform="translate(%.2f,10) rotate(-45)" text-anchor="end">%s</text>`+"\n",
				t.Pos, html.EscapeString(t.Label))
			continue
		}
		sw.printf(`<text x="%.2f" y="16" text-anchor="middle">%s</text>`+"\n", t.Pos, html.EscapeString(t.Label))
	}
	sw.printf("</g>\n")

	sw.printf(`<g class="axis axis-y">` + "\n")
	sw.printf(`<line x1="0" x2="0" y1="0" y2="%g" stroke="#333"/>`+"\n", chart.Height)
	for _, t := range chart.YTicks {
		sw.printf(`<text x="-6" y="%.2f" dy="0.32em" text-anchor="end">%s</text>`+"\n", t.Pos, html.EscapeString(t.Label))
	}
	sw.printf("</g>\n")
}

func writeLegend(sw *errWriter, chart *Chart) {
	if len(chart.Legend) == 0 {
		return
	}
	sw.printf(`<g class="legend" transform="translate(%g,0)">`+"\n", chart.Width+10)
	for i, entry := range chart.Legend {
		y := float64(i) * 18
		sw.printf(`<rect class="swatch" x="0" y="%g" width="12" height="12" fill="%s"/>`+"\n", y, CSSColor(entry.Color))
		sw.printf(`<text x="16" y="%g" dy="0.8em">%s</text>`+"\n", y, html.EscapeString(entry.Label))
	}
	sw.printf("</g>\n")
}
