package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"

	"github.com/matineehq/matinee/internal/domain/model"
	"github.com/matineehq/matinee/pkg/logger"
)

// amsterdamCinemas is the venue whitelist applied when a request limits
// the catalog to Amsterdam.
var amsterdamCinemas = []string{
	"eye", "rialto", "kriterion", "ketelhuis", "the movies", "lab111",
	"uitkijk", "studio/k", "cinecenter", "filmhallen", "de balie",
}

// pageLimit bounds one events search; a week of Amsterdam screenings fits
// comfortably.
const pageLimit = 300

// CinevilleClient loads screenings from the Cineville events search API.
type CinevilleClient struct {
	apiURL string
	client *resty.Client
	logger logger.Logger
	tz     *time.Location
}

// CinevilleOption applies a configuration option to the client.
type CinevilleOption func(*CinevilleClient)

// WithCinevilleURL overrides the API endpoint.
func WithCinevilleURL(u string) CinevilleOption {
	return func(c *CinevilleClient) {
		if u != "" {
			c.apiURL = u
		}
	}
}

// WithCinevilleTimeout sets the per-request timeout.
func WithCinevilleTimeout(d time.Duration) CinevilleOption {
	return func(c *CinevilleClient) {
		if d > 0 {
			c.client.SetTimeout(d)
		}
	}
}

// NewCinevilleClient creates a catalog client. Showtime instants are
// localized to Europe/Amsterdam, matching the cinemas' own listings.
func NewCinevilleClient(opts ...CinevilleOption) *CinevilleClient {
	tz, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		tz = time.Local
	}
	c := &CinevilleClient{
		apiURL: "https://api.cineville.nl/events/search",
		client: newClient(defaultTimeout).SetHeader("Content-Type", "application/json"),
		logger: logger.Get().Named("cineville"),
		tz:     tz,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// eventsResponse mirrors the HAL shape of the events search endpoint.
type eventsResponse struct {
	Embedded struct {
		Events []cinevilleEvent `json:"events"`
	} `json:"_embedded"`
}

type cinevilleEvent struct {
	StartDate string `json:"startDate"`
	Embedded  struct {
		Production struct {
			Title      string `json:"title"`
			Attributes struct {
				Duration    int `json:"duration"`
				ReleaseYear int `json:"releaseYear"`
			} `json:"attributes"`
		} `json:"production"`
		Venue struct {
			Name string `json:"name"`
		} `json:"venue"`
	} `json:"_embedded"`
}

// FetchScreenings returns every screening in the window as raw showtime
// rows; broken event entries are skipped, not fatal.
func (c *CinevilleClient) FetchScreenings(ctx context.Context, from time.Time, daysAhead int, limitAmsterdam bool) ([]Screening, error) {
	payload := map[string]any{
		"productionId": map[string]any{"isNull": false},
		"startDate": map[string]any{
			"gte": from.UTC().Format(time.RFC3339),
			"lt":  from.AddDate(0, 0, daysAhead).UTC().Format(time.RFC3339),
		},
		"venue":    map[string]any{},
		"page":     map[string]any{"limit": pageLimit},
		"isHidden": map[string]any{"eq": false},
		"embed":    map[string]any{"production": true, "venue": true},
		"sort":     map[string]any{"startDate": "asc"},
	}

	resp, err := doWithRetry(ctx, func() (*resty.Response, error) {
		return c.client.R().SetContext(ctx).SetBody(payload).Post(c.apiURL)
	})
	if err != nil {
		return nil, fmt.Errorf("cineville events search: %w", err)
	}

	var decoded eventsResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return nil, fmt.Errorf("%w: cineville events: %v", ErrDecode, err)
	}

	var out []Screening
	for _, ev := range decoded.Embedded.Events {
		title := ev.Embedded.Production.Title
		cinema := ev.Embedded.Venue.Name
		if title == "" || cinema == "" || ev.StartDate == "" {
			continue
		}
		if limitAmsterdam && !isAmsterdamCinema(cinema) {
			continue
		}
		start, err := time.Parse(time.RFC3339, ev.StartDate)
		if err != nil {
			continue
		}
		out = append(out, Screening{
			Title:          title,
			Year:           ev.Embedded.Production.Attributes.ReleaseYear,
			Cinema:         cinema,
			Start:          start.In(c.tz),
			RuntimeMinutes: ev.Embedded.Production.Attributes.Duration,
		})
	}
	c.logger.Debug(ctx, "screenings fetched",
		logger.Int("events", len(decoded.Embedded.Events)),
		logger.Int("kept", len(out)),
	)
	return out, nil
}

// Screening is one raw catalog row before movies are deduplicated.
type Screening struct {
	Title          string
	Year           int
	Cinema         string
	Start          time.Time
	RuntimeMinutes int
}

// isAmsterdamCinema matches a venue name against the whitelist by
// substring, the way the venue names embed the brand ("Rialto VU").
func isAmsterdamCinema(name string) bool {
	lower := strings.ToLower(name)
	for _, ams := range amsterdamCinemas {
		if strings.Contains(lower, ams) {
			return true
		}
	}
	return false
}

// toCatalog deduplicates screenings into movies plus showtimes keyed by
// movie identity.
func toCatalog(screenings []Screening) model.Catalog {
	var cat model.Catalog
	seen := make(map[model.MovieKey]int)
	for _, s := range screenings {
		m := model.Movie{Title: s.Title, Year: s.Year}
		key := m.Key()
		if key.Title == "" {
			continue
		}
		if _, ok := seen[key]; !ok {
			m.Cineville = map[string]any{"title": s.Title, "year": s.Year, "duration": s.RuntimeMinutes}
			seen[key] = len(cat.Movies)
			cat.Movies = append(cat.Movies, m)
		}
		cat.ShowTimes = append(cat.ShowTimes, model.ShowTime{
			Movie:          key,
			Cinema:         s.Cinema,
			Start:          s.Start,
			RuntimeMinutes: s.RuntimeMinutes,
		})
	}
	return cat
}
