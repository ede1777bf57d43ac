// Package group combines per-user taste scores into one fairness-aware
// group score.
package group

import (
	"math"

	"github.com/matineehq/matinee/internal/domain/model"
	"github.com/matineehq/matinee/internal/domain/mood"
	"github.com/matineehq/matinee/internal/domain/taste"
)

// defaultFairnessPenalty weights the spread between raters. A movie one
// person loves and another hates should rank below one everyone mildly
// likes; a plain average cannot express that.
const defaultFairnessPenalty = 0.25

// Scored is the aggregator's verdict on one candidate.
type Scored struct {
	Movie      model.Movie
	GroupScore float64
	// PerUser keeps the tagged scores, absent entries included, so the
	// caller can tell "didn't rate" from "rated zero".
	PerUser map[string]taste.Score
}

// Aggregator scores candidates for the whole group and applies the mood
// filter.
type Aggregator struct {
	fairnessPenalty float64
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithFairnessPenalty overrides the stdev penalty weight.
func WithFairnessPenalty(lambda float64) Option {
	return func(a *Aggregator) {
		if lambda >= 0 {
			a.fairnessPenalty = lambda
		}
	}
}

// New creates an Aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{fairnessPenalty: defaultFairnessPenalty}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ScoreCandidates filters candidates by mood, scores each one per user and
// for the group, and drops candidates no user has any signal for.
//
// The mood filter is a hard filter applied before scoring: when moodWord
// maps to a genre set, candidates outside it are gone entirely. Unmapped
// moods filter nothing.
func (a *Aggregator) ScoreCandidates(candidates []model.Movie, profiles []*taste.Profile, moodWord string) []Scored {
	genres := mood.Genres(moodWord)
	var out []Scored
	for _, m := range candidates {
		if len(genres) > 0 && !hasAnyGenre(m, genres) {
			continue
		}
		s, ok := a.scoreOne(m, profiles)
		if !ok {
			continue
		}
		out = append(out, s)
	}
	return out
}

// scoreOne computes mean(S) - lambda*stdev(S) over the users with a
// present score, clamped to [0,1]. ok is false when no user has a score.
func (a *Aggregator) scoreOne(m model.Movie, profiles []*taste.Profile) (Scored, bool) {
	perUser := make(map[string]taste.Score, len(profiles))
	var present []float64
	for _, p := range profiles {
		s := p.Score(m)
		perUser[p.Username()] = s
		if s.Present {
			present = append(present, s.Value)
		}
	}
	if len(present) == 0 {
		return Scored{}, false
	}

	mean := 0.0
	for _, v := range present {
		mean += v
	}
	mean /= float64(len(present))

	variance := 0.0
	for _, v := range present {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(present))

	score := mean - a.fairnessPenalty*math.Sqrt(variance)
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return Scored{Movie: m, GroupScore: score, PerUser: perUser}, true
}

func hasAnyGenre(m model.Movie, wanted []string) bool {
	for _, g := range m.Genres {
		for _, w := range wanted {
			if g == w {
				return true
			}
		}
	}
	return false
}
