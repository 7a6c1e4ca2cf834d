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
	"io"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Reporter generates markdown summaries of the datasets
type Reporter struct {
	logger *Logger
}

// NewReporter creates a new report generator
func NewReporter(logger *Logger) *Reporter {
	return &Reporter{
		logger: logger,
	}
}

// GenerateReport writes a markdown summary; either dataset may be nil
func (r *Reporter) GenerateReport(w io.Writer, billing *BillingDataset, readings *ReadingsDataset, generatedAt time.Time) error {
	r.logger.Info("Generating markdown summary")

	sw := &errWriter{w: w}
	r.writeHeader(sw, generatedAt)
	r.writeBilling(sw, billing)
	r.writeReadings(sw, readings)
	r.writeFooter(sw)

	return sw.err
}

// writeHeader writes the report header
func (r *Reporter) writeHeader(w *errWriter, generatedAt time.Time) {
	w.printf("# Snapmeter Usage Summary\n\n")
	w.printf("**Generated:** %s\n\n", generatedAt.Format("2006-01-02 15:04:05"))
	w.printf("**meterviz version:** %s\n\n", GetVersion())
	w.printf("---\n\n")
}

// writeBilling writes one row per bill and the per-category totals
func (r *Reporter) writeBilling(w *errWriter, ds *BillingDataset) {
	w.printf("## 🧾 Billing Variances\n\n")
	if ds == nil {
		w.printf("_No billing data available._\n\n")
		return
	}

	totalCost := decimal.Zero
	totalUse := decimal.Zero
	w.printf("| Period | Cost | Use | Total Variance | Largest Category |\n")
	w.printf("|--------|------|-----|----------------|------------------|\n")
	for i, bill := range ds.Bills {
		totalCost = totalCost.Add(bill.Cost)
		totalUse = totalUse.Add(bill.Use)
		w.printf("| %s | $ %s | %s kWh | %s kWh | %s |\n",
			bill.Label(),
			humanize.CommafWithDigits(bill.Cost.InexactFloat64(), 2),
			humanize.Commaf(bill.Use.InexactFloat64()),
			humanize.CommafWithDigits(ds.Stack.Totals[i], 1),
			largestCategory(bill),
		)
	}
	w.printf("\n**Total Cost:** $ %s across %d bills (%s kWh)\n\n",
		humanize.CommafWithDigits(totalCost.InexactFloat64(), 2),
		len(ds.Bills),
		humanize.Commaf(totalUse.InexactFloat64()),
	)

	w.printf("### Variance by Category\n\n")
	w.printf("| Category | Total | Bills Above Baseline |\n")
	w.printf("|----------|-------|----------------------|\n")
	for _, layer := range ds.Stack.Layers {
		total := 0.0
		for _, seg := range layer.Segments {
			total += seg.Height()
		}
		above := 0
		for _, bill := range ds.Bills {
			if v, ok := bill.Variance(layer.Category); ok && v.Sign == SignPositive && v.SignedValue > 0 {
				above++
			}
		}
		w.printf("| %s | %s kWh | %d |\n", layer.Category, humanize.CommafWithDigits(total, 1), above)
	}
	w.printf("\n")
}

// largestCategory names the category with the largest absolute variance
func largestCategory(bill BillRecord) string {
	best := "-"
	bestValue := -1.0
	for _, v := range bill.Variances {
		if math.Abs(v.Value) > bestValue {
			best = v.Category
			bestValue = math.Abs(v.Value)
		}
	}
	return best
}

// writeReadings writes the per-month peak hour
func (r *Reporter) writeReadings(w *errWriter, ds *ReadingsDataset) {
	w.printf("## ⚡ Meter Readings\n\n")
	if ds == nil {
		w.printf("_No meter readings available._\n\n")
		return
	}

	lo, hi, ok := Extent(ds.Points)
	if ok {
		w.printf("**Demand Range:** %.2f kW to %.2f kW over %s readings\n\n", lo, hi, humanize.Comma(int64(len(ds.Points))))
	} else {
		w.printf("**Demand Range:** no readings reported a value\n\n")
	}

	w.printf("| Month | Hours Covered | Peak Hour | Peak Mean |\n")
	w.printf("|-------|---------------|-----------|-----------|\n")
	for _, month := range ds.Rollup.Months() {
		covered := 0
		for h := 0; h < 24; h++ {
			if cell, found := ds.Rollup.Cell(month, h); found {
				if _, defined := cell.Mean(); defined {
					covered++
				}
			}
		}
		hour, mean, found := ds.Rollup.PeakHour(month)
		if !found {
			w.printf("| %s | %d | - | no data |\n", month.Format("Jan 2006"), covered)
			continue
		}
		w.printf("| %s | %d | %d:00 | %.2f kW |\n", month.Format("Jan 2006"), covered, hour, mean)
	}
	w.printf("\n")
}

// writeFooter writes the report footer
func (r *Reporter) writeFooter(w *errWriter) {
	w.printf("---\n\n")
	w.printf("*Generated by [meterviz](https://github.com/matthewgall/meterviz)*\n\n")
	w.printf("This is an unofficial third-party application and is not affiliated with or endorsed by Snapmeter.\n")
}
