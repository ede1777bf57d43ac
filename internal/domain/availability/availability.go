// Package availability computes the group's common free windows from
// per-user calendar busy feeds.
package availability

import (
	"time"

	"github.com/matineehq/matinee/internal/domain/interval"
	"github.com/matineehq/matinee/internal/domain/model"
)

// Default day-bounds policy: free time is only considered between these
// local hours on each calendar day.
const (
	defaultDayStartHour = 8
	defaultDayEndHour   = 24
)

// Feed is one user's calendar contribution. A user with no calendar grant
// has no Feed at all; a granted user with an empty Busy list is simply
// free for the whole window.
type Feed struct {
	Username string
	Busy     []model.BusyEvent
}

// Intersector turns busy feeds into the group's shared free slots.
type Intersector struct {
	dayStartHour int
	dayEndHour   int
}

// Option applies a configuration option to the Intersector.
type Option func(*Intersector)

// WithDayBounds sets the local hours between which free time counts.
// endHour may be 24 to mean midnight at the end of the day.
func WithDayBounds(startHour, endHour int) Option {
	return func(x *Intersector) {
		if startHour >= 0 && endHour > startHour && endHour <= 24 {
			x.dayStartHour = startHour
			x.dayEndHour = endHour
		}
	}
}

// New creates an Intersector with the default day-bounds policy.
func New(opts ...Option) *Intersector {
	x := &Intersector{
		dayStartHour: defaultDayStartHour,
		dayEndHour:   defaultDayEndHour,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// CommonFreeSlots intersects every granted user's free time over the
// lookahead window and keeps slots of at least minSlot.
//
// Users without a feed are excluded from the intersection rather than
// treated as fully busy: absent data must not veto the group. With no
// feeds at all the result is the full day-bounds window, so downstream
// filtering still has slots to work against.
func (x *Intersector) CommonFreeSlots(feeds []Feed, from time.Time, daysAhead int, minSlot time.Duration) []interval.Interval {
	bounds := x.dayBounds(from, daysAhead)
	sets := make([][]interval.Interval, 0, len(feeds))
	for _, f := range feeds {
		busy := make([]interval.Interval, 0, len(f.Busy))
		for _, b := range f.Busy {
			busy = append(busy, interval.Interval{Start: b.Start, End: b.End})
		}
		sets = append(sets, interval.Subtract(bounds, busy))
	}
	if len(sets) == 0 {
		sets = append(sets, bounds)
	}
	return interval.FilterMinDuration(interval.Intersect(sets), minSlot)
}

// dayBounds builds the per-day candidate windows for the lookahead
// horizon, clipped so the first window never starts in the past.
func (x *Intersector) dayBounds(from time.Time, daysAhead int) []interval.Interval {
	if daysAhead <= 0 {
		return nil
	}
	loc := from.Location()
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	bounds := make([]interval.Interval, 0, daysAhead)
	for i := 0; i < daysAhead; i++ {
		// Build the edges from wall-clock hours so a DST transition on
		// the day does not shift the window. Hour 24 normalizes to
		// midnight of the next day.
		d := day.AddDate(0, 0, i)
		start := time.Date(d.Year(), d.Month(), d.Day(), x.dayStartHour, 0, 0, 0, loc)
		end := time.Date(d.Year(), d.Month(), d.Day(), x.dayEndHour, 0, 0, 0, loc)
		if start.Before(from) {
			start = from
		}
		if start.Before(end) {
			bounds = append(bounds, interval.Interval{Start: start, End: end})
		}
	}
	return bounds
}
