// Package fit aligns showtimes against the group's free slots.
package fit

import (
	"sort"
	"time"

	"github.com/matineehq/matinee/internal/domain/interval"
	"github.com/matineehq/matinee/internal/domain/model"
)

// Defaults for the fit rule.
const (
	// defaultBufferMinutes absorbs trailers and travel after the listed
	// start plus runtime.
	defaultBufferMinutes = 15
	// defaultRuntimeMinutes stands in when the catalog reports no
	// duration for a screening.
	defaultRuntimeMinutes = 120
)

// Matcher decides which showtimes fit inside free slots.
type Matcher struct {
	buffer         time.Duration
	defaultRuntime time.Duration
}

// Option applies a configuration option to the Matcher.
type Option func(*Matcher)

// WithBuffer overrides the post-film buffer.
func WithBuffer(d time.Duration) Option {
	return func(m *Matcher) {
		if d >= 0 {
			m.buffer = d
		}
	}
}

// WithDefaultRuntime overrides the assumed runtime for screenings with an
// unknown duration.
func WithDefaultRuntime(d time.Duration) Option {
	return func(m *Matcher) {
		if d > 0 {
			m.defaultRuntime = d
		}
	}
}

// New creates a Matcher.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		buffer:         defaultBufferMinutes * time.Minute,
		defaultRuntime: defaultRuntimeMinutes * time.Minute,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FittingShowTimes returns, per movie key, the showtimes that fit inside
// some free slot, each list sorted by start time.
//
// A showtime fits a slot iff the slot has begun by the listed start and
// the film plus buffer ends before the slot does. With useCalendar false
// the matcher is bypassed: every showtime passes through for display.
func (m *Matcher) FittingShowTimes(shows []model.ShowTime, slots []interval.Interval, useCalendar bool) map[model.MovieKey][]model.ShowTime {
	out := make(map[model.MovieKey][]model.ShowTime)
	for _, st := range shows {
		if useCalendar && !m.fitsAny(st, slots) {
			continue
		}
		out[st.Movie] = append(out[st.Movie], st)
	}
	for key := range out {
		times := out[key]
		sort.Slice(times, func(i, j int) bool { return times[i].Start.Before(times[j].Start) })
		out[key] = times
	}
	return out
}

func (m *Matcher) fitsAny(st model.ShowTime, slots []interval.Interval) bool {
	runtime := m.defaultRuntime
	if st.RuntimeMinutes > 0 {
		runtime = time.Duration(st.RuntimeMinutes) * time.Minute
	}
	end := st.Start.Add(runtime + m.buffer)
	for _, slot := range slots {
		if !slot.Start.After(st.Start) && !end.After(slot.End) {
			return true
		}
	}
	return false
}
