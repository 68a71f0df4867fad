// Package interval provides half-open interval math for schedule
// computation. All intervals are [start, end): touching endpoints do
// not overlap, so back-to-back bookings never conflict.
package interval

import (
	"sort"
	"time"
)

// Span is a half-open time interval [Start, End).
type Span struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Clip intersects s with bounds. ok is false when the intersection is
// empty or degenerate.
func Clip(s, bounds Span) (Span, bool) {
	start := s.Start
	if start.Before(bounds.Start) {
		start = bounds.Start
	}
	end := s.End
	if end.After(bounds.End) {
		end = bounds.End
	}
	if !start.Before(end) {
		return Span{}, false
	}
	return Span{Start: start, End: end}, true
}

// ChangePoints collects the instants where occupancy inside bounds can
// change: the bounds themselves plus every clipped span endpoint,
// deduplicated and sorted ascending.
func ChangePoints(spans []Span, bounds Span) []time.Time {
	seen := map[int64]time.Time{
		bounds.Start.UnixNano(): bounds.Start,
		bounds.End.UnixNano():   bounds.End,
	}
	for _, s := range spans {
		clipped, ok := Clip(s, bounds)
		if !ok {
			continue
		}
		seen[clipped.Start.UnixNano()] = clipped.Start
		seen[clipped.End.UnixNano()] = clipped.End
	}

	points := make([]time.Time, 0, len(seen))
	for _, t := range seen {
		points = append(points, t)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Before(points[j]) })
	return points
}
