package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/matineehq/matinee/internal/app"
	"github.com/matineehq/matinee/internal/domain/rank"
)

// noDataMarker is what a user who never rated a movie shows up as in
// per_user_scores. It is deliberately not a number.
const noDataMarker = "no-data"

// RecommendHandler handles recommendation requests.
type RecommendHandler struct {
	deps Dependencies
}

// NewRecommendHandler creates a new recommendation handler.
func NewRecommendHandler(deps Dependencies) *RecommendHandler {
	return &RecommendHandler{deps: deps}
}

// recommendRequest mirrors the public request schema. Optional fields are
// pointers so "absent" and "zero" stay distinguishable when applying
// defaults.
type recommendRequest struct {
	Usernames      []string `json:"usernames"`
	DaysAhead      *int     `json:"days_ahead"`
	LimitAmsterdam *bool    `json:"limit_amsterdam"`
	MaxResults     *int     `json:"max_results"`
	UseCalendar    *bool    `json:"use_calendar"`
	MinHours       *float64 `json:"min_hours"`
	Mood           string   `json:"mood"`
	ForceRefresh   bool     `json:"force_refresh"`
}

func (r recommendRequest) options() app.Options {
	opts := app.DefaultOptions()
	opts.Usernames = r.Usernames
	opts.Mood = r.Mood
	opts.ForceRefresh = r.ForceRefresh
	if r.DaysAhead != nil {
		opts.DaysAhead = *r.DaysAhead
	}
	if r.LimitAmsterdam != nil {
		opts.LimitAmsterdam = *r.LimitAmsterdam
	}
	if r.MaxResults != nil {
		opts.MaxResults = *r.MaxResults
	}
	if r.UseCalendar != nil {
		opts.UseCalendar = *r.UseCalendar
	}
	if r.MinHours != nil {
		opts.MinHours = *r.MinHours
	}
	return opts
}

type showtimeResponse struct {
	Cinema string    `json:"cinema"`
	Start  time.Time `json:"start"`
}

type recommendationResponse struct {
	Title         string             `json:"title"`
	Year          int                `json:"year,omitempty"`
	GroupScore    float64            `json:"group_score"`
	PerUserScores map[string]any     `json:"per_user_scores"`
	ShowTimes     []showtimeResponse `json:"showtimes"`
	Cineville     map[string]any     `json:"cineville,omitempty"`
	TMDB          map[string]any     `json:"tmdb,omitempty"`
}

type recommendResponse struct {
	Recommendations []recommendationResponse `json:"recommendations"`
}

// HandlePostRecommendations handles POST /recommendations requests.
func (h *RecommendHandler) HandlePostRecommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	recs, err := h.deps.Recommend(r.Context(), req.options())
	if err != nil {
		if errors.Is(err, app.ErrInvalidOptions) {
			writeError(w, http.StatusBadRequest, "invalid_options", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(recs))
}

func toResponse(recs []rank.Recommendation) recommendResponse {
	out := recommendResponse{Recommendations: make([]recommendationResponse, 0, len(recs))}
	for _, rec := range recs {
		perUser := make(map[string]any, len(rec.PerUserScores))
		for user, score := range rec.PerUserScores {
			if score.Present {
				perUser[user] = score.Value
			} else {
				perUser[user] = noDataMarker
			}
		}
		showtimes := make([]showtimeResponse, 0, len(rec.ShowTimes))
		for _, st := range rec.ShowTimes {
			showtimes = append(showtimes, showtimeResponse{Cinema: st.Cinema, Start: st.Start})
		}
		out.Recommendations = append(out.Recommendations, recommendationResponse{
			Title:         rec.Movie.Title,
			Year:          rec.Movie.Year,
			GroupScore:    rec.GroupScore,
			PerUserScores: perUser,
			ShowTimes:     showtimes,
			Cineville:     rec.Movie.Cineville,
			TMDB:          rec.Movie.TMDB,
		})
	}
	return out
}
