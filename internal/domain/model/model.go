// Package model contains domain models passed between layers.
package model

import (
	"regexp"
	"strings"
	"time"
)

// BusyEvent is one occupied stretch of a user's calendar.
// Invariant: Start < End. Owned by the calendar collaborator; the core
// only reads it.
type BusyEvent struct {
	Start time.Time
	End   time.Time
}

// Rating is a single historical rating from a user's profile.
// Score is on the profile's external scale (e.g. 0.5-5.0 Letterboxd stars).
type Rating struct {
	Title string
	Year  int // 0 when unknown
	Score float64
}

// UserProfile holds one user's rating history. A user the profile source
// knows nothing about gets an empty Ratings slice, never a missing profile.
type UserProfile struct {
	Username string
	MaxScale float64 // external rating scale ceiling, e.g. 5 or 10
	Ratings  []Rating
}

// ExternalIDs carries identifiers from metadata collaborators.
type ExternalIDs struct {
	TMDB int `json:"tmdb,omitempty"`
}

// Movie is a candidate title from the catalog. Identity is the normalized
// (title, year) pair; the same title in different years is a different movie.
type Movie struct {
	Title       string
	Year        int // 0 when unknown
	Genres      []string
	ExternalIDs ExternalIDs
	Cineville   map[string]any // opaque catalog payload, passed through
	TMDB        map[string]any // opaque metadata payload, passed through
}

// Key returns the canonical identity key for the movie.
func (m Movie) Key() MovieKey {
	return MovieKey{Title: NormalizeTitle(m.Title), Year: m.Year}
}

// MovieKey is the normalized (title, year) identity of a movie.
type MovieKey struct {
	Title string
	Year  int
}

// ShowTime is one screening of a movie at a cinema.
type ShowTime struct {
	Movie          MovieKey
	Cinema         string
	Start          time.Time
	RuntimeMinutes int // 0 when the catalog did not report a duration
}

// Catalog is the result of one catalog fetch: candidate movies plus their
// screenings over the requested window.
type Catalog struct {
	Movies    []Movie
	ShowTimes []ShowTime
}

var titleStrip = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeTitle lowercases a title and strips everything outside [a-z0-9]
// so that catalog and profile spellings of the same film collide.
func NormalizeTitle(title string) string {
	return titleStrip.ReplaceAllString(strings.ToLower(title), "")
}
