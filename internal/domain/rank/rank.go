// Package rank merges group scores with fitting showtimes into the final
// bounded recommendation list.
package rank

import (
	"sort"

	"github.com/matineehq/matinee/internal/domain/group"
	"github.com/matineehq/matinee/internal/domain/model"
	"github.com/matineehq/matinee/internal/domain/taste"
)

// defaultMaxResults caps the recommendation list when the caller does not.
const defaultMaxResults = 10

// Recommendation is one ranked entry of the final list.
type Recommendation struct {
	Movie         model.Movie
	GroupScore    float64
	PerUserScores map[string]taste.Score
	ShowTimes     []model.ShowTime
}

// Build joins aggregator output with matcher output, sorts, and truncates.
//
// Sort order: group score descending; earliest fitting showtime ascending
// on ties; entries with showtimes before entries without (possible only
// when calendar filtering is off); normalized title as the final
// deterministic tiebreak. When useCalendar is true a candidate with no
// fitting showtime is dropped.
func Build(scored []group.Scored, showtimes map[model.MovieKey][]model.ShowTime, useCalendar bool, maxResults int) []Recommendation {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	recs := make([]Recommendation, 0, len(scored))
	for _, s := range scored {
		times := showtimes[s.Movie.Key()]
		if useCalendar && len(times) == 0 {
			continue
		}
		recs = append(recs, Recommendation{
			Movie:         s.Movie,
			GroupScore:    s.GroupScore,
			PerUserScores: s.PerUser,
			ShowTimes:     times,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.GroupScore != b.GroupScore {
			return a.GroupScore > b.GroupScore
		}
		switch {
		case len(a.ShowTimes) > 0 && len(b.ShowTimes) > 0:
			if !a.ShowTimes[0].Start.Equal(b.ShowTimes[0].Start) {
				return a.ShowTimes[0].Start.Before(b.ShowTimes[0].Start)
			}
		case len(a.ShowTimes) > 0:
			return true
		case len(b.ShowTimes) > 0:
			return false
		}
		return a.Movie.Key().Title < b.Movie.Key().Title
	})

	if len(recs) > maxResults {
		recs = recs[:maxResults]
	}
	return recs
}
