// Package interval implements half-open time-interval arithmetic.
//
// All operations treat an interval as [Start, End): the start instant is
// inside, the end instant is not. Zero-length results never appear in any
// output.
package interval

import (
	"sort"
	"time"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Duration returns End - Start.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// empty reports whether the interval contains no instants.
func (iv Interval) empty() bool {
	return !iv.Start.Before(iv.End)
}

// Merge sorts the input and coalesces overlapping or touching intervals
// into a minimal sorted, non-overlapping set. The input is not modified.
func Merge(ivs []Interval) []Interval {
	in := make([]Interval, 0, len(ivs))
	for _, iv := range ivs {
		if !iv.empty() {
			in = append(in, iv)
		}
	}
	if len(in) == 0 {
		return nil
	}
	sort.Slice(in, func(i, j int) bool { return in[i].Start.Before(in[j].Start) })

	merged := []Interval{in[0]}
	for _, cur := range in[1:] {
		last := &merged[len(merged)-1]
		if !cur.Start.After(last.End) {
			if cur.End.After(last.End) {
				last.End = cur.End
			}
			continue
		}
		merged = append(merged, cur)
	}
	return merged
}

// Subtract removes every interval in busy from every interval in base and
// returns what is left. Both inputs may be unsorted and overlapping.
func Subtract(base, busy []Interval) []Interval {
	free := Merge(base)
	for _, b := range Merge(busy) {
		free = subtractOne(free, b)
	}
	return free
}

// subtractOne removes a single busy interval from a sorted free set.
func subtractOne(free []Interval, b Interval) []Interval {
	out := make([]Interval, 0, len(free)+1)
	for _, f := range free {
		if !b.Start.Before(f.End) || !f.Start.Before(b.End) {
			// No overlap.
			out = append(out, f)
			continue
		}
		if b.Start.After(f.Start) {
			out = append(out, Interval{Start: f.Start, End: b.Start})
		}
		if b.End.Before(f.End) {
			out = append(out, Interval{Start: b.End, End: f.End})
		}
	}
	return out
}

// Intersect returns the intervals present in every input set, computed as
// a pairwise left fold. Pairwise intersection is associative and
// commutative, so the traversal order cannot change the result.
// Intersecting zero sets yields nil; intersecting one set yields its
// merged form.
func Intersect(sets [][]Interval) []Interval {
	if len(sets) == 0 {
		return nil
	}
	acc := Merge(sets[0])
	for _, s := range sets[1:] {
		acc = intersectPair(acc, Merge(s))
		if len(acc) == 0 {
			return nil
		}
	}
	return acc
}

// intersectPair intersects two sorted, non-overlapping sets with a two
// pointer sweep.
func intersectPair(a, b []Interval) []Interval {
	var out []Interval
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := a[i].Start
		if b[j].Start.After(start) {
			start = b[j].Start
		}
		end := a[i].End
		if b[j].End.Before(end) {
			end = b[j].End
		}
		if start.Before(end) {
			out = append(out, Interval{Start: start, End: end})
		}
		if a[i].End.Before(b[j].End) {
			i++
		} else {
			j++
		}
	}
	return out
}

// FilterMinDuration drops intervals shorter than min. Intervals of exactly
// min are kept.
func FilterMinDuration(ivs []Interval, min time.Duration) []Interval {
	var out []Interval
	for _, iv := range ivs {
		if iv.Duration() >= min {
			out = append(out, iv)
		}
	}
	return out
}
