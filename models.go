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

	"github.com/shopspring/decimal"
)

// Sign is the direction of a variance
type Sign string

const (
	SignPositive Sign = "positive"
	SignNegative Sign = "negative"
)

// BillRecord represents one billing period
type BillRecord struct {
	StartDate time.Time       `json:"startDate"`
	EndDate   time.Time       `json:"endDate"`
	Cost      decimal.Decimal `json:"cost"`
	Use       decimal.Decimal `json:"use"` // kWh
	Variances []Variance      `json:"variances"`
}

// Variance finds the variance for a category, if the bill has one
func (b BillRecord) Variance(category string) (Variance, bool) {
	for _, v := range b.Variances {
		if v.Category == category {
			return v, true
		}
	}
	return Variance{}, false
}

// Key identifies the bill on the band axis
func (b BillRecord) Key() string {
	return b.StartDate.Format(DateLayout)
}

// Label is the axis label of the bill's period
func (b BillRecord) Label() string {
	return b.StartDate.Format(DateLayout) + " - " + b.EndDate.Format(DateLayout)
}

// Variance represents the deviation of one category from its expected baseline
type Variance struct {
	Category     string  `json:"category"`
	Value        float64 `json:"value"`        // Always |SignedValue|
	SignedValue  float64 `json:"signedValue"`  // kWh
	PercentValue float64 `json:"percentValue"` // Percent of baseline
	Sign         Sign    `json:"sign"`
}

// ReadingPoint is a single meter reading; a nil Value means the meter reported nothing
type ReadingPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     *float64  `json:"value"` // kW
}

// StackedSegment is the vertical extent of one category within one bill's bar
type StackedSegment struct {
	Category    string  `json:"category"`
	RecordIndex int     `json:"recordIndex"`
	Base        float64 `json:"base"`
	Top         float64 `json:"top"`
}

// Height returns the segment's magnitude
func (s StackedSegment) Height() float64 {
	return s.Top - s.Base
}

// BillsResponse is the raw Snapmeter bills payload
type BillsResponse struct {
	Data []struct {
		ID         string `json:"id"`
		Type       string `json:"type"`
		Attributes *struct {
			Start         *string  `json:"start"`
			End           *string  `json:"end"`
			Cost          *float64 `json:"cost"`
			Use           *float64 `json:"use"`
			BillVariances *struct {
				Variances []struct {
					Category         string   `json:"category"`
					AbsoluteVariance *float64 `json:"absoluteVariance"`
					PercentVariance  *float64 `json:"percentVariance"`
				} `json:"variances"`
			} `json:"billVariances"`
		} `json:"attributes"`
	} `json:"data"`
}

// ReadingsResponse is the raw Snapmeter meter readings payload
type ReadingsResponse struct {
	Data []struct {
		ID         string `json:"id"`
		Type       string `json:"type"`
		Attributes *struct {
			Readings *struct {
				KW map[string]*float64 `json:"kw"`
			} `json:"readings"`
		} `json:"attributes"`
	} `json:"data"`
}
