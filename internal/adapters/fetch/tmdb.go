package fetch

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"

	"github.com/matineehq/matinee/pkg/logger"
)

// genreNames maps TMDb genre ids to the genre vocabulary the mood filter
// speaks.
var genreNames = map[int]string{
	28: "Action", 12: "Adventure", 16: "Animation", 35: "Comedy",
	80: "Crime", 99: "Documentary", 18: "Drama", 10751: "Family",
	14: "Fantasy", 36: "History", 27: "Horror", 10402: "Music",
	9648: "Mystery", 10749: "Romance", 878: "Science Fiction",
	53: "Thriller", 10752: "War", 37: "Western",
}

// TMDBClient searches The Movie Database for candidate metadata.
type TMDBClient struct {
	baseURL string
	apiKey  string
	client  *resty.Client
	logger  logger.Logger
}

// TMDBOption applies a configuration option to the client.
type TMDBOption func(*TMDBClient)

// WithTMDBBaseURL overrides the API host, for tests.
func WithTMDBBaseURL(u string) TMDBOption {
	return func(c *TMDBClient) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithTMDBTimeout sets the per-request timeout.
func WithTMDBTimeout(d time.Duration) TMDBOption {
	return func(c *TMDBClient) {
		if d > 0 {
			c.client.SetTimeout(d)
		}
	}
}

// NewTMDBClient creates a metadata client.
func NewTMDBClient(apiKey string, opts ...TMDBOption) *TMDBClient {
	c := &TMDBClient{
		baseURL: "https://api.themoviedb.org/3",
		apiKey:  apiKey,
		client:  newClient(defaultTimeout),
		logger:  logger.Get().Named("tmdb"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MovieMeta is the slice of TMDb metadata the pipeline consumes, plus the
// raw result for pass-through.
type MovieMeta struct {
	ID     int
	Genres []string
	Raw    map[string]any
}

type searchResponse struct {
	Results []struct {
		ID       int   `json:"id"`
		GenreIDs []int `json:"genre_ids"`
	} `json:"results"`
}

// SearchMovie looks a title (and optional year) up and returns the first
// match, or nil when TMDb knows nothing.
func (c *TMDBClient) SearchMovie(ctx context.Context, title string, year int) (*MovieMeta, error) {
	req := c.client.R().
		SetContext(ctx).
		SetQueryParam("api_key", c.apiKey).
		SetQueryParam("query", title).
		SetQueryParam("include_adult", "false")
	if year > 0 {
		req.SetQueryParam("year", strconv.Itoa(year))
	}

	resp, err := doWithRetry(ctx, func() (*resty.Response, error) {
		return req.Get(c.baseURL + "/search/movie")
	})
	if err != nil {
		return nil, fmt.Errorf("tmdb search %q: %w", title, err)
	}

	var decoded searchResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return nil, fmt.Errorf("%w: tmdb search %q: %v", ErrDecode, title, err)
	}
	if len(decoded.Results) == 0 {
		return nil, nil
	}

	first := decoded.Results[0]
	meta := &MovieMeta{ID: first.ID}
	for _, gid := range first.GenreIDs {
		if name, ok := genreNames[gid]; ok {
			meta.Genres = append(meta.Genres, name)
		}
	}

	// Keep the raw first result for the opaque tmdb payload.
	var raw struct {
		Results []map[string]any `json:"results"`
	}
	if err := json.Unmarshal(resp.Body(), &raw); err == nil && len(raw.Results) > 0 {
		meta.Raw = raw.Results[0]
	}
	return meta, nil
}
