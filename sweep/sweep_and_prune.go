// Package sweep is the broad phase: sweep-and-prune over three fixed axes.
package sweep

import (
	"sort"

	"github.com/gekko3d/collide/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// Item is one collidable box for a frame. Index identifies it in the
// caller's entry list and breaks ties between equal projections.
type Item struct {
	Box      geom.OBB
	Index    int
	Callback bool
}

// Pair is an unordered candidate pair of item indices, stored with A < B.
type Pair struct {
	A, B int
}

func MakePair(a, b int) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Interval is an item's projection onto one sweep axis.
type Interval struct {
	Min, Max float64
	Index    int
	Callback bool
}

// SweepAndPrune keeps its scratch buffers between frames; results do not
// depend on previous frames.
type SweepAndPrune struct {
	axes      [3]mgl64.Vec3
	intervals [3][]Interval
	active    []Interval
	hits      map[Pair]uint8
}

// DefaultAxes are the world axes.
func DefaultAxes() [3]mgl64.Vec3 {
	return [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

func New(axes [3]mgl64.Vec3) *SweepAndPrune {
	return &SweepAndPrune{
		axes: axes,
		hits: make(map[Pair]uint8),
	}
}

// Pairs returns every pair whose projections overlap on all three axes and
// where at least one side has Callback set. The result is sorted by (A, B).
func (s *SweepAndPrune) Pairs(items []Item) []Pair {
	pairs := []Pair{}
	if len(items) < 2 {
		return pairs
	}
	clear(s.hits)

	for axis := 0; axis < 3; axis++ {
		s.project(axis, items)
		s.sweep(axis)
	}

	for p, n := range s.hits {
		if n == 3 {
			pairs = append(pairs, p)
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	return pairs
}

// Intervals returns the sorted projections of the last Pairs call on axis.
func (s *SweepAndPrune) Intervals(axis int) []Interval {
	return s.intervals[axis]
}

func (s *SweepAndPrune) project(axis int, items []Item) {
	iv := s.intervals[axis][:0]
	for _, it := range items {
		lo, hi := it.Box.MinMaxProjection(s.axes[axis])
		iv = append(iv, Interval{Min: lo, Max: hi, Index: it.Index, Callback: it.Callback})
	}
	sort.SliceStable(iv, func(i, j int) bool {
		if iv[i].Min != iv[j].Min {
			return iv[i].Min < iv[j].Min
		}
		return iv[i].Index < iv[j].Index
	})
	s.intervals[axis] = iv
}

func (s *SweepAndPrune) sweep(axis int) {
	s.active = s.active[:0]
	for _, in := range s.intervals[axis] {
		kept := s.active[:0]
		for _, a := range s.active {
			if a.Max >= in.Min {
				kept = append(kept, a)
			}
		}
		s.active = kept

		for _, a := range s.active {
			if !a.Callback && !in.Callback {
				continue
			}
			p := MakePair(a.Index, in.Index)
			// a pair can only be counted once per axis, and only if it was
			// seen on every previous axis
			if int(s.hits[p]) == axis {
				s.hits[p]++
			}
		}
		s.active = append(s.active, in)
	}
}
