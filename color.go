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

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// pastel1 is the ColorBrewer Pastel1 qualitative scheme
var pastel1 = hexColors("fbb4ae", "b3cde3", "ccebc5", "decbe4", "fed9a6", "ffffcc", "e5d8bd", "fddaec", "f2f2f2")

// rdPu is the ColorBrewer RdPu sequential scheme, light to dark
var rdPu = hexColors("fff7f3", "fde0dd", "fcc5c0", "fa9fb5", "f768a1", "dd3497", "ae017e", "7a0177", "49006a")

func hexColors(hexes ...string) []drawing.Color {
	colors := make([]drawing.Color, len(hexes))
	for i, h := range hexes {
		colors[i] = drawing.ColorFromHex(h)
	}
	return colors
}

// CSSColor formats a color as #rrggbb
func CSSColor(c drawing.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// OrdinalScale assigns palette colors to categories in domain order, cycling when the palette runs out
type OrdinalScale struct {
	index   map[string]int
	palette []drawing.Color
}

// NewOrdinalScale builds an ordinal color scale; an empty palette falls back to Pastel1
func NewOrdinalScale(domain []string, palette []drawing.Color) *OrdinalScale {
	if len(palette) == 0 {
		palette = pastel1
	}
	s := &OrdinalScale{index: make(map[string]int, len(domain)), palette: palette}
	for _, key := range domain {
		if _, ok := s.index[key]; !ok {
			s.index[key] = len(s.index)
		}
	}
	return s
}

// Color returns the color for a key; unknown keys take the slot after the domain
func (s *OrdinalScale) Color(key string) drawing.Color {
	i, ok := s.index[key]
	if !ok {
		i = len(s.index)
	}
	return s.palette[i%len(s.palette)]
}

// SequentialScale maps a numeric extent onto a continuous color ramp
type SequentialScale struct {
	Min   float64
	Max   float64
	stops []drawing.Color
}

// NewSequentialScale builds an RdPu ramp over [lo, hi]
func NewSequentialScale(lo, hi float64) *SequentialScale {
	return &SequentialScale{Min: lo, Max: hi, stops: rdPu}
}

// Color returns the ramp color for v; values outside the extent clamp to the ends and a zero-width extent maps to the midpoint
func (s *SequentialScale) Color(v float64) drawing.Color {
	t := 0.5
	if s.Max != s.Min {
		t = (v - s.Min) / (s.Max - s.Min)
	}
	return interpolateBasis(s.stops, t)
}

// interpolateBasis samples a uniform cubic B-spline through the color stops
func interpolateBasis(stops []drawing.Color, t float64) drawing.Color {
	n := len(stops) - 1
	if n < 1 {
		return stops[0]
	}

	var i int
	switch {
	case t <= 0 || math.IsNaN(t):
		t, i = 0, 0
	case t >= 1:
		t, i = 1, n-1
	default:
		i = int(math.Floor(t * float64(n)))
	}

	channel := func(get func(drawing.Color) uint8) uint8 {
		v1 := float64(get(stops[i]))
		v2 := float64(get(stops[i+1]))
		v0 := 2*v1 - v2
		if i > 0 {
			v0 = float64(get(stops[i-1]))
		}
		v3 := 2*v2 - v1
		if i < n-1 {
			v3 = float64(get(stops[i+2]))
		}
		return clampByte(basis((t-float64(i)/float64(n))*float64(n), v0, v1, v2, v3))
	}

	return drawing.Color{
		R: channel(func(c drawing.Color) uint8 { return c.R }),
		G: channel(func(c drawing.Color) uint8 { return c.G }),
		B: channel(func(c drawing.Color) uint8 { return c.B }),
		A: 255,
	}
}

func basis(t1, v0, v1, v2, v3 float64) float64 {
	t2 := t1 * t1
	t3 := t2 * t1
	return ((1-3*t1+3*t2-t3)*v0 + (4-6*t2+3*t3)*v1 + (1+3*t1+3*t2-3*t3)*v2 + t3*v3) / 6
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
