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
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const billsJSON = `{
  "data": [
    {
      "id": "b1",
      "type": "bill",
      "attributes": {
        "start": "2024-01-01",
        "end": "2024-01-31",
        "cost": 1234.5,
        "use": 9876,
        "billVariances": {
          "variances": [
            {"category": "heat", "absoluteVariance": 10, "percentVariance": 12.5},
            {"category": "base", "absoluteVariance": 5, "percentVariance": 3}
          ]
        }
      }
    },
    {
      "id": "b2",
      "type": "bill",
      "attributes": {
        "start": "2024-02-01",
        "end": "2024-02-29",
        "cost": 1100,
        "use": 9000.25,
        "billVariances": {
          "variances": [
            {"category": "heat", "absoluteVariance": -3, "percentVariance": -4.25},
            {"category": "base", "absoluteVariance": 8, "percentVariance": 6}
          ]
        }
      }
    }
  ]
}`

const readingsJSON = `{
  "data": [
    {
      "id": "m1",
      "type": "meter",
      "attributes": {
        "readings": {
          "kw": {
            "2024-01-20T03:00:00Z": 7,
            "2024-01-15T03:00:00Z": 5,
            "2024-01-15T04:00:00Z": null,
            "2024-02-01T00:15:00Z": 2.5
          }
        }
      }
    }
  ]
}`

func decodeBills(t *testing.T, raw string) *BillsResponse {
	t.Helper()
	var resp BillsResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	return &resp
}

func decodeReadings(t *testing.T, raw string) *ReadingsResponse {
	t.Helper()
	var resp ReadingsResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	return &resp
}

func floatPtr(v float64) *float64 {
	return &v
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// testBill builds a bill from alternating category and signed variance pairs
func testBill(start time.Time, pairs ...interface{}) BillRecord {
	bill := BillRecord{
		StartDate: start,
		EndDate:   start.AddDate(0, 1, -1),
		Cost:      decimal.NewFromFloat(100),
		Use:       decimal.NewFromFloat(1000),
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		bill.Variances = append(bill.Variances, NewVariance(pairs[i].(string), pairs[i+1].(float64), 0))
	}
	return bill
}

func testAnalyzer() *Analyzer {
	return NewAnalyzer(DefaultChartWidth, DefaultChartHeight, time.UTC, NewNopLogger())
}
