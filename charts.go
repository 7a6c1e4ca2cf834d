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
	"encoding/base64"
	"fmt"

	charts "github.com/vicanso/go-charts/v2"
	"github.com/wcharczuk/go-chart/v2"
)

// ChartGenerator renders static PNG exports of the datasets
type ChartGenerator struct {
	theme string
}

// NewChartGenerator creates a new chart generator
func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{
		theme: "light", // Match the dashboard page
	}
}

// GenerateHourlyProfileChart draws one line per month of mean kW by hour of day.
// Hours without any present reading are drawn as zero.
func (cg *ChartGenerator) GenerateHourlyProfileChart(ds *ReadingsDataset) ([]byte, error) {
	if ds == nil || ds.Rollup.Len() == 0 {
		return nil, &DataEmptyError{Dataset: DatasetReadings}
	}

	values, _ := ds.Rollup.HourlyProfile()

	labels := make([]string, 24)
	for h := range labels {
		labels[h] = fmt.Sprintf("%d:00", h)
	}

	var legendLabels []string
	for _, month := range ds.Rollup.Months() {
		legendLabels = append(legendLabels, month.Format("Jan 2006"))
	}

	p, err := charts.LineRender(
		values,
		charts.TitleTextOptionFunc("Average Demand by Hour (kW)"),
		charts.XAxisDataOptionFunc(labels),
		charts.LegendLabelsOptionFunc(legendLabels, charts.PositionRight),
		charts.ThemeOptionFunc(cg.theme),
		charts.WidthOptionFunc(1200),
		charts.HeightOptionFunc(400),
		charts.PaddingOptionFunc(charts.Box{
			Top:    20,
			Right:  20,
			Bottom: 20,
			Left:   20,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render hourly profile chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}

// GenerateVarianceChart draws the cumulative variance stack as filled areas, one per category
func (cg *ChartGenerator) GenerateVarianceChart(ds *BillingDataset) ([]byte, error) {
	if ds == nil || len(ds.Bills) == 0 {
		return nil, &DataEmptyError{Dataset: DatasetBilling}
	}

	n := len(ds.Bills)
	xs := make([]float64, n)
	ticks := make([]chart.Tick, n)
	for i, bill := range ds.Bills {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: bill.Key()}
	}

	// Upper layers are drawn first so each lower fill stays visible on top of them
	var series []chart.Series
	for l := len(ds.Stack.Layers) - 1; l >= 0; l-- {
		layer := ds.Stack.Layers[l]
		tops := make([]float64, n)
		for i, seg := range layer.Segments {
			tops[i] = seg.Top
		}
		color := ds.Scales.Color.Color(layer.Category)
		series = append(series, chart.ContinuousSeries{
			Name:    layer.Category,
			XValues: xs,
			YValues: tops,
			Style: chart.Style{
				StrokeWidth: 1,
				StrokeColor: color,
				FillColor:   color,
			},
		})
	}

	yMax := ds.Scales.Y.Domain[1]
	if yMax <= 0 {
		yMax = 1
	}
	kwhFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.0f")
	}

	graph := chart.Chart{
		Title:      "Billing Variances (kWh)",
		Width:      1200,
		Height:     500,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 48}},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(n) - 0.5},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:           "kWh",
			Range:          &chart.ContinuousRange{Min: 0, Max: yMax},
			ValueFormatter: kwhFormatter,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render variance chart: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeBase64 prepares PNG bytes for embedding in HTML
func EncodeBase64(png []byte) string {
	return base64.StdEncoding.EncodeToString(png)
}
