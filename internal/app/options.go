package app

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/matineehq/matinee/internal/domain/mood"
)

// Request option defaults, mirroring the public request schema.
const (
	DefaultDaysAhead  = 7
	DefaultMaxResults = 10
	DefaultMinHours   = 2.0
)

// Options is the explicit, validated form of a recommendation request.
type Options struct {
	Usernames      []string
	DaysAhead      int
	LimitAmsterdam bool
	MaxResults     int
	UseCalendar    bool
	MinHours       float64
	Mood           string

	// ForceRefresh bypasses and invalidates the cached result for this
	// request shape.
	ForceRefresh bool
}

// DefaultOptions returns an Options with every field at its documented
// default and no users.
func DefaultOptions() Options {
	return Options{
		DaysAhead:      DefaultDaysAhead,
		LimitAmsterdam: true,
		MaxResults:     DefaultMaxResults,
		UseCalendar:    true,
		MinHours:       DefaultMinHours,
	}
}

// MinSlotMinutes converts the min_hours option into whole minutes.
func (o Options) MinSlotMinutes() int {
	return int(o.MinHours * 60)
}

// normalize trims usernames and drops empties, keeping request order.
func (o *Options) normalize() {
	users := make([]string, 0, len(o.Usernames))
	for _, u := range o.Usernames {
		if u = strings.TrimSpace(u); u != "" {
			users = append(users, u)
		}
	}
	o.Usernames = users
	o.Mood = strings.TrimSpace(o.Mood)
}

// validate rejects malformed input before any fetch is issued.
func (o Options) validate(maxResultsCap int) error {
	switch {
	case len(o.Usernames) == 0:
		return fmt.Errorf("%w: at least one username required", ErrInvalidOptions)
	case o.DaysAhead <= 0:
		return fmt.Errorf("%w: days_ahead must be positive", ErrInvalidOptions)
	case o.MaxResults <= 0:
		return fmt.Errorf("%w: max_results must be positive", ErrInvalidOptions)
	case maxResultsCap > 0 && o.MaxResults > maxResultsCap:
		return fmt.Errorf("%w: max_results exceeds cap of %d", ErrInvalidOptions, maxResultsCap)
	case o.MinHours < 0:
		return fmt.Errorf("%w: min_hours must not be negative", ErrInvalidOptions)
	case !mood.WellFormed(o.Mood):
		return fmt.Errorf("%w: malformed mood %q", ErrInvalidOptions, o.Mood)
	}
	return nil
}

// Fingerprint derives the cache key for this request: the sorted user set
// plus a hash over every option that changes the result. ForceRefresh is
// deliberately not part of the key.
func (o Options) Fingerprint() string {
	users := append([]string(nil), o.Usernames...)
	sort.Strings(users)

	h := fnv.New64a()
	fmt.Fprintf(h, "%d|%t|%d|%t|%.4f|%s", o.DaysAhead, o.LimitAmsterdam, o.MaxResults, o.UseCalendar, o.MinHours, strings.ToLower(o.Mood))
	return fmt.Sprintf("%s#%x", strings.Join(users, ","), h.Sum64())
}
