package fetch

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/matineehq/matinee/internal/domain/model"
	"github.com/matineehq/matinee/pkg/logger"
)

// letterboxdMaxScale is the star-rating ceiling: Letterboxd ratings run
// 0.5 to 5.0.
const letterboxdMaxScale = 5.0

// LetterboxdClient loads a user's rating history from their public RSS
// feed.
type LetterboxdClient struct {
	baseURL string
	client  *resty.Client
	logger  logger.Logger
}

// LetterboxdOption applies a configuration option to the client.
type LetterboxdOption func(*LetterboxdClient)

// WithLetterboxdBaseURL overrides the feed host, for tests.
func WithLetterboxdBaseURL(u string) LetterboxdOption {
	return func(c *LetterboxdClient) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithLetterboxdTimeout sets the per-request timeout.
func WithLetterboxdTimeout(d time.Duration) LetterboxdOption {
	return func(c *LetterboxdClient) {
		if d > 0 {
			c.client.SetTimeout(d)
		}
	}
}

// NewLetterboxdClient creates a profile client.
func NewLetterboxdClient(opts ...LetterboxdOption) *LetterboxdClient {
	c := &LetterboxdClient{
		baseURL: "https://letterboxd.com",
		client:  newClient(defaultTimeout),
		logger:  logger.Get().Named("letterboxd"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rssFeed mirrors the Letterboxd RSS shape; the letterboxd: namespace
// carries the structured film fields.
type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	FilmTitle    string `xml:"filmTitle"`
	FilmYear     string `xml:"filmYear"`
	MemberRating string `xml:"memberRating"`
}

// FetchProfile returns the user's rated films. A 404 feed (unknown user
// or private profile) yields an empty profile, not an error: missing data
// must not remove the user from the computation.
func (c *LetterboxdClient) FetchProfile(ctx context.Context, username string) (model.UserProfile, error) {
	profile := model.UserProfile{Username: username, MaxScale: letterboxdMaxScale}

	resp, err := doWithRetry(ctx, func() (*resty.Response, error) {
		return c.client.R().SetContext(ctx).Get(fmt.Sprintf("%s/%s/rss/", c.baseURL, username))
	})
	if err != nil {
		if resp != nil && resp.StatusCode() == 404 {
			return profile, nil
		}
		return profile, fmt.Errorf("letterboxd feed for %q: %w", username, err)
	}

	var feed rssFeed
	if err := xml.Unmarshal(resp.Body(), &feed); err != nil {
		return profile, fmt.Errorf("%w: letterboxd feed for %q: %v", ErrDecode, username, err)
	}

	for _, item := range feed.Channel.Items {
		if item.FilmTitle == "" || item.MemberRating == "" {
			// Watch-only entries carry no rating; they hold no signal.
			continue
		}
		score, err := strconv.ParseFloat(item.MemberRating, 64)
		if err != nil || score <= 0 {
			continue
		}
		year, _ := strconv.Atoi(item.FilmYear)
		profile.Ratings = append(profile.Ratings, model.Rating{
			Title: item.FilmTitle,
			Year:  year,
			Score: score,
		})
	}
	c.logger.Debug(ctx, "profile fetched",
		logger.String("username", username),
		logger.Int("ratings", len(profile.Ratings)),
	)
	return profile, nil
}
