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

// BandScale maps discrete keys to equal-width slots with padding.
// Inner and outer padding are equal, bands are centred, and the range must ascend.
type BandScale struct {
	domain    []string
	index     map[string]int
	start     float64
	step      float64
	bandwidth float64
}

// NewBandScale builds a band scale over keys; duplicate keys keep their first slot
func NewBandScale(keys []string, rangeStart, rangeEnd, padding float64) *BandScale {
	b := &BandScale{index: make(map[string]int, len(keys))}
	for _, k := range keys {
		if _, ok := b.index[k]; ok {
			continue
		}
		b.index[k] = len(b.domain)
		b.domain = append(b.domain, k)
	}

	n := float64(len(b.domain))
	b.step = (rangeEnd - rangeStart) / math.Max(1, n-padding+padding*2)
	b.start = rangeStart + (rangeEnd-rangeStart-b.step*(n-padding))*0.5
	b.bandwidth = b.step * (1 - padding)
	return b
}

// Domain returns the keys in slot order
func (b *BandScale) Domain() []string {
	return append([]string(nil), b.domain...)
}

// Position returns the start coordinate of a key's band
func (b *BandScale) Position(key string) (float64, bool) {
	i, ok := b.index[key]
	if !ok {
		return 0, false
	}
	return b.start + b.step*float64(i), true
}

// Bandwidth returns the width of every band
func (b *BandScale) Bandwidth() float64 {
	return b.bandwidth
}

// Step returns the distance between consecutive band starts
func (b *BandScale) Step() float64 {
	return b.step
}

// LinearScale maps a continuous domain onto a pixel range
type LinearScale struct {
	Domain [2]float64
	Range  [2]float64
}

// NewLinearScale builds a linear scale
func NewLinearScale(d0, d1, r0, r1 float64) *LinearScale {
	return &LinearScale{Domain: [2]float64{d0, d1}, Range: [2]float64{r0, r1}}
}

// Map converts a domain value to a range value; a zero-width domain maps to the range midpoint
func (s *LinearScale) Map(v float64) float64 {
	d := s.Domain[1] - s.Domain[0]
	t := 0.5
	if d != 0 {
		t = (v - s.Domain[0]) / d
	}
	return s.Range[0] + t*(s.Range[1]-s.Range[0])
}

// Nice extends the domain to round values so that ticks land on the bounds
func (s *LinearScale) Nice(count int) *LinearScale {
	start, stop := s.Domain[0], s.Domain[1]
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}

	var prestep float64
	for iter := 0; iter < 10; iter++ {
		step := tickIncrement(start, stop, float64(count))
		if step == prestep {
			break
		} else if step > 0 {
			start = math.Floor(start/step) * step
			stop = math.Ceil(stop/step) * step
		} else if step < 0 {
			start = math.Ceil(start*step) / step
			stop = math.Floor(stop*step) / step
		} else {
			break
		}
		prestep = step
	}

	if reverse {
		start, stop = stop, start
	}
	s.Domain = [2]float64{start, stop}
	return s
}

// Ticks returns roughly count round values spanning the domain
func (s *LinearScale) Ticks(count int) []float64 {
	start, stop := s.Domain[0], s.Domain[1]
	if start == stop {
		return []float64{start}
	}
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}

	i1, i2, inc := tickRange(start, stop, float64(count))
	if i2 < i1 || inc == 0 {
		return nil
	}

	n := int(i2 - i1 + 1)
	ticks := make([]float64, n)
	for i := 0; i < n; i++ {
		if inc < 0 {
			ticks[i] = (i1 + float64(i)) / -inc
		} else {
			ticks[i] = (i1 + float64(i)) * inc
		}
	}
	if reverse {
		for l, r := 0, n-1; l < r; l, r = l+1, r-1 {
			ticks[l], ticks[r] = ticks[r], ticks[l]
		}
	}
	return ticks
}

var (
	tickE10 = math.Sqrt(50)
	tickE5  = math.Sqrt(10)
	tickE2  = math.Sqrt(2)
)

// tickRange picks a 1-2-5 tick step. A negative inc encodes a fractional step as 1/-inc.
func tickRange(start, stop, count float64) (i1, i2, inc float64) {
	if stop == start || count <= 0 {
		return 0, -1, 0
	}
	step := (stop - start) / count
	power := math.Floor(math.Log10(step))
	err := step / math.Pow(10, power)

	factor := 1.0
	switch {
	case err >= tickE10:
		factor = 10
	case err >= tickE5:
		factor = 5
	case err >= tickE2:
		factor = 2
	}

	if power < 0 {
		inc = math.Pow(10, -power) / factor
		i1 = math.Round(start * inc)
		i2 = math.Round(stop * inc)
		if i1/inc < start {
			i1++
		}
		if i2/inc > stop {
			i2--
		}
		inc = -inc
	} else {
		inc = math.Pow(10, power) * factor
		i1 = math.Round(start / inc)
		i2 = math.Round(stop / inc)
		if i1*inc < start {
			i1++
		}
		if i2*inc > stop {
			i2--
		}
	}

	if i2 < i1 && 0.5 <= count && count < 2 {
		return tickRange(start, stop, count*2)
	}
	return i1, i2, inc
}

func tickIncrement(start, stop, count float64) float64 {
	_, _, inc := tickRange(start, stop, count)
	return inc
}

// Extent returns the minimum and maximum of the present values
func Extent(points []ReadingPoint) (lo, hi float64, ok bool) {
	for _, p := range points {
		if p.Value == nil {
			continue
		}
		v := *p.Value
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, ok
}
