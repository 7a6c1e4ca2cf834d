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
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// timestampLayouts are tried in order when parsing reading keys
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// NormalizeBills converts the raw bills payload into typed bill records
func NormalizeBills(resp *BillsResponse) ([]BillRecord, error) {
	if resp == nil || resp.Data == nil {
		return nil, &ShapeError{Dataset: DatasetBilling, Field: "data", Message: "missing"}
	}
	if len(resp.Data) == 0 {
		return nil, &DataEmptyError{Dataset: DatasetBilling}
	}

	bills := make([]BillRecord, 0, len(resp.Data))
	for i, entry := range resp.Data {
		path := fmt.Sprintf("data[%d].attributes", i)
		attrs := entry.Attributes
		if attrs == nil {
			return nil, &ShapeError{Dataset: DatasetBilling, Field: path, Message: "missing"}
		}

		start, err := parseBillDate(attrs.Start, path+".start")
		if err != nil {
			return nil, err
		}
		end, err := parseBillDate(attrs.End, path+".end")
		if err != nil {
			return nil, err
		}
		cost, err := requireFinite(attrs.Cost, DatasetBilling, path+".cost")
		if err != nil {
			return nil, err
		}
		use, err := requireFinite(attrs.Use, DatasetBilling, path+".use")
		if err != nil {
			return nil, err
		}
		if attrs.BillVariances == nil || attrs.BillVariances.Variances == nil {
			return nil, &ShapeError{Dataset: DatasetBilling, Field: path + ".billVariances.variances", Message: "missing"}
		}

		seen := make(map[string]bool, len(attrs.BillVariances.Variances))
		variances := make([]Variance, 0, len(attrs.BillVariances.Variances))
		for j, v := range attrs.BillVariances.Variances {
			vpath := fmt.Sprintf("%s.billVariances.variances[%d]", path, j)
			if v.Category == "" {
				return nil, &ShapeError{Dataset: DatasetBilling, Field: vpath + ".category", Message: "missing"}
			}
			if seen[v.Category] {
				return nil, &ShapeError{Dataset: DatasetBilling, Field: vpath + ".category", Message: fmt.Sprintf("duplicate category %q", v.Category)}
			}
			seen[v.Category] = true

			signed, err := requireFinite(v.AbsoluteVariance, DatasetBilling, vpath+".absoluteVariance")
			if err != nil {
				return nil, err
			}
			percent, err := requireFinite(v.PercentVariance, DatasetBilling, vpath+".percentVariance")
			if err != nil {
				return nil, err
			}
			variances = append(variances, NewVariance(v.Category, signed, percent))
		}

		bills = append(bills, BillRecord{
			StartDate: start,
			EndDate:   end,
			Cost:      decimal.NewFromFloat(cost),
			Use:       decimal.NewFromFloat(use),
			Variances: variances,
		})
	}

	return bills, nil
}

// NewVariance builds a variance whose magnitude and sign are derived from the signed delta
func NewVariance(category string, signed, percent float64) Variance {
	sign := SignPositive
	if signed < 0 {
		sign = SignNegative
	}
	return Variance{
		Category:     category,
		Value:        math.Abs(signed),
		SignedValue:  signed,
		PercentValue: percent,
		Sign:         sign,
	}
}

// NormalizeReadings converts the raw readings payload into chronologically ordered points
func NormalizeReadings(resp *ReadingsResponse, loc *time.Location) ([]ReadingPoint, error) {
	if resp == nil || resp.Data == nil {
		return nil, &ShapeError{Dataset: DatasetReadings, Field: "data", Message: "missing"}
	}
	if len(resp.Data) == 0 {
		return nil, &DataEmptyError{Dataset: DatasetReadings}
	}

	attrs := resp.Data[0].Attributes
	if attrs == nil || attrs.Readings == nil || attrs.Readings.KW == nil {
		return nil, &ShapeError{Dataset: DatasetReadings, Field: "data[0].attributes.readings.kw", Message: "missing"}
	}
	if len(attrs.Readings.KW) == 0 {
		return nil, &DataEmptyError{Dataset: DatasetReadings}
	}

	points := make([]ReadingPoint, 0, len(attrs.Readings.KW))
	for key, value := range attrs.Readings.KW {
		ts, err := parseTimestamp(key, loc)
		if err != nil {
			return nil, &ShapeError{Dataset: DatasetReadings, Field: "readings.kw", Message: fmt.Sprintf("bad timestamp %q", key), Err: err}
		}
		if value != nil && (math.IsNaN(*value) || math.IsInf(*value, 0)) {
			return nil, &ShapeError{Dataset: DatasetReadings, Field: "readings.kw[" + key + "]", Message: "not a finite number"}
		}
		points = append(points, ReadingPoint{Timestamp: ts, Value: value})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})

	return points, nil
}

func parseBillDate(raw *string, field string) (time.Time, error) {
	if raw == nil || *raw == "" {
		return time.Time{}, &ShapeError{Dataset: DatasetBilling, Field: field, Message: "missing"}
	}
	if t, err := time.Parse(DateLayout, *raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return time.Time{}, &ShapeError{Dataset: DatasetBilling, Field: field, Message: fmt.Sprintf("bad date %q", *raw), Err: err}
	}
	return t, nil
}

func parseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func requireFinite(v *float64, dataset, field string) (float64, error) {
	if v == nil {
		return 0, &ShapeError{Dataset: dataset, Field: field, Message: "missing"}
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, &ShapeError{Dataset: dataset, Field: field, Message: "not a finite number"}
	}
	return *v, nil
}
