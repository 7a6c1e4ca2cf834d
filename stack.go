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
	"math"
)

// StackLayer holds one category's segments across every bill
type StackLayer struct {
	Category string
	Segments []StackedSegment // indexed by bill
}

// Stack is the stacked layout of bill variances
type Stack struct {
	Categories []string
	Layers     []StackLayer
	Totals     []float64 // per bill, sum of |variance|
	Max        float64
}

// StackCategories returns the canonical category order: the first bill's categories,
// then any category first seen in a later bill
func StackCategories(bills []BillRecord) []string {
	var categories []string
	seen := make(map[string]bool)
	for _, bill := range bills {
		for _, v := range bill.Variances {
			if !seen[v.Category] {
				seen[v.Category] = true
				categories = append(categories, v.Category)
			}
		}
	}
	return categories
}

// BuildStack accumulates absolute variance magnitudes per bill in canonical category order
func BuildStack(bills []BillRecord) *Stack {
	categories := StackCategories(bills)
	stack := &Stack{
		Categories: categories,
		Layers:     make([]StackLayer, len(categories)),
		Totals:     make([]float64, len(bills)),
	}
	for i, category := range categories {
		stack.Layers[i] = StackLayer{
			Category: category,
			Segments: make([]StackedSegment, len(bills)),
		}
	}

	for b, bill := range bills {
		offset := 0.0
		for i, category := range categories {
			height := 0.0
			if v, ok := bill.Variance(category); ok {
				height = math.Abs(v.Value)
			}
			stack.Layers[i].Segments[b] = StackedSegment{
				Category:    category,
				RecordIndex: b,
				Base:        offset,
				Top:         offset + height,
			}
			offset += height
		}
		stack.Totals[b] = offset
		if offset > stack.Max {
			stack.Max = offset
		}
	}

	return stack
}

// Segments flattens the stack in draw order (layer by layer)
func (s *Stack) Segments() []StackedSegment {
	var segments []StackedSegment
	for _, layer := range s.Layers {
		segments = append(segments, layer.Segments...)
	}
	return segments
}
