// Package taste scores candidate movies against a single user's rating
// history.
package taste

import (
	"github.com/matineehq/matinee/internal/domain/model"
)

// defaultMaxScale is the rating ceiling assumed when a profile does not
// declare one (Letterboxd stars run 0.5-5.0).
const defaultMaxScale = 5.0

// Score is a tagged preference value. Present is false when the user has
// no usable rating for the movie; that state must never collapse into a
// numeric zero, because "didn't rate" and "rated it terrible" rank very
// differently for the group.
type Score struct {
	Value   float64
	Present bool
}

// Some returns a present score.
func Some(v float64) Score { return Score{Value: v, Present: true} }

// None returns an absent score.
func None() Score { return Score{} }

// Profile is a scoring view over one user's rating history, indexed by
// normalized title for fast candidate lookup.
type Profile struct {
	username string
	maxScale float64
	byKey    map[model.MovieKey]model.Rating
	byTitle  map[string][]model.Rating
}

// NewProfile builds the lookup index for a user profile. Duplicate
// ratings for the same (title, year) keep the highest score.
func NewProfile(p model.UserProfile) *Profile {
	scale := p.MaxScale
	if scale <= 0 {
		scale = defaultMaxScale
	}
	pr := &Profile{
		username: p.Username,
		maxScale: scale,
		byKey:    make(map[model.MovieKey]model.Rating, len(p.Ratings)),
		byTitle:  make(map[string][]model.Rating),
	}
	for _, r := range p.Ratings {
		norm := model.NormalizeTitle(r.Title)
		if norm == "" {
			continue
		}
		key := model.MovieKey{Title: norm, Year: r.Year}
		if old, ok := pr.byKey[key]; !ok || r.Score > old.Score {
			pr.byKey[key] = r
		}
	}
	// Index titles off the deduplicated keys so a rewatch does not make
	// its own title look ambiguous.
	for key, r := range pr.byKey {
		pr.byTitle[key.Title] = append(pr.byTitle[key.Title], r)
	}
	return pr
}

// Username returns the profile owner.
func (p *Profile) Username() string { return p.username }

// Size returns the number of indexed ratings.
func (p *Profile) Size() int { return len(p.byKey) }

// Score looks up the user's preference for a candidate movie, normalized
// to [0,1].
//
// Lookup order: exact normalized (title, year) first. The title-only
// fallback applies only when a year is unknown on one side: a candidate
// with a known year may match a rating whose year is unknown, and a
// year-less candidate may match a unique rated title. The same title in
// two different known years is two different films and never matches. An
// ambiguous title never produces a guess; it is reported as absent.
func (p *Profile) Score(m model.Movie) Score {
	key := m.Key()
	if key.Title == "" {
		return None()
	}
	if key.Year != 0 {
		if r, ok := p.byKey[key]; ok {
			return p.normalize(r)
		}
		if r, ok := p.byKey[model.MovieKey{Title: key.Title}]; ok {
			return p.normalize(r)
		}
		return None()
	}
	// Year unknown on the candidate: a title-only match is only trusted
	// when it cannot be confused with a different film.
	matches := p.byTitle[key.Title]
	if len(matches) != 1 {
		return None()
	}
	return p.normalize(matches[0])
}

func (p *Profile) normalize(r model.Rating) Score {
	v := r.Score / p.maxScale
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return Some(v)
}
