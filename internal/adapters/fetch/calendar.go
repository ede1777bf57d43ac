package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"

	"github.com/matineehq/matinee/internal/app"
	"github.com/matineehq/matinee/internal/domain/model"
	"github.com/matineehq/matinee/pkg/logger"
)

// Calendar endpoints and tuning. Token refresh is auth-adjacent and gets
// the short timeout; event listing pages through full calendars and the
// façade allows it longer.
const (
	defaultTokenURL     = "https://oauth2.googleapis.com/token"
	defaultCalendarURL  = "https://www.googleapis.com/calendar/v3"
	defaultTokenTimeout = 10 * time.Second
	tokenExpirySlack    = 30 * time.Second
	eventsPageSize      = 250
)

// CalendarClient lists busy events from Google Calendar using per-user
// refresh tokens. Users without a token have no grant.
type CalendarClient struct {
	clientID     string
	clientSecret string
	tokens       map[string]string // username -> refresh token

	tokenURL    string
	calendarURL string
	client      *resty.Client
	tokenClient *resty.Client
	logger      logger.Logger

	mu     sync.Mutex
	access map[string]accessToken
}

type accessToken struct {
	token   string
	expires time.Time
}

// CalendarOption applies a configuration option to the client.
type CalendarOption func(*CalendarClient)

// WithCalendarEndpoints overrides the token and API hosts, for tests.
func WithCalendarEndpoints(tokenURL, calendarURL string) CalendarOption {
	return func(c *CalendarClient) {
		if tokenURL != "" {
			c.tokenURL = tokenURL
		}
		if calendarURL != "" {
			c.calendarURL = calendarURL
		}
	}
}

// WithCalendarTimeout sets the event-listing timeout.
func WithCalendarTimeout(d time.Duration) CalendarOption {
	return func(c *CalendarClient) {
		if d > 0 {
			c.client.SetTimeout(d)
		}
	}
}

// NewCalendarClient creates a busy-event fetcher. tokens maps usernames to
// OAuth refresh tokens.
func NewCalendarClient(clientID, clientSecret string, tokens map[string]string, opts ...CalendarOption) *CalendarClient {
	c := &CalendarClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokens:       tokens,
		tokenURL:     defaultTokenURL,
		calendarURL:  defaultCalendarURL,
		client:       newClient(30 * time.Second),
		tokenClient:  newClient(defaultTokenTimeout),
		logger:       logger.Get().Named("calendar"),
		access:       make(map[string]accessToken),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchBusyEvents lists the user's busy stretches over the window.
// Returns app.ErrNoCalendarGrant for users with no refresh token.
func (c *CalendarClient) FetchBusyEvents(ctx context.Context, username string, from time.Time, daysAhead int) ([]model.BusyEvent, error) {
	refresh, ok := c.tokens[username]
	if !ok || refresh == "" {
		return nil, fmt.Errorf("%w: %s", app.ErrNoCalendarGrant, username)
	}

	token, err := c.accessTokenFor(ctx, username, refresh)
	if err != nil {
		return nil, fmt.Errorf("calendar token refresh for %q: %w", username, err)
	}

	timeMin := from.UTC().Format(time.RFC3339)
	timeMax := from.AddDate(0, 0, daysAhead).UTC().Format(time.RFC3339)

	var events []model.BusyEvent
	pageToken := ""
	for {
		req := c.client.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetQueryParam("timeMin", timeMin).
			SetQueryParam("timeMax", timeMax).
			SetQueryParam("singleEvents", "true").
			SetQueryParam("orderBy", "startTime").
			SetQueryParam("maxResults", fmt.Sprint(eventsPageSize))
		if pageToken != "" {
			req.SetQueryParam("pageToken", pageToken)
		}

		resp, err := doWithRetry(ctx, func() (*resty.Response, error) {
			return req.Get(c.calendarURL + "/calendars/primary/events")
		})
		if err != nil {
			return nil, fmt.Errorf("calendar events for %q: %w", username, err)
		}

		var page eventsPage
		if err := json.Unmarshal(resp.Body(), &page); err != nil {
			return nil, fmt.Errorf("%w: calendar events for %q: %v", ErrDecode, username, err)
		}
		for _, item := range page.Items {
			if ev, ok := item.busyEvent(); ok {
				events = append(events, ev)
			}
		}
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}
	c.logger.Debug(ctx, "busy events fetched",
		logger.String("username", username),
		logger.Int("events", len(events)),
	)
	return events, nil
}

// accessTokenFor refreshes (or reuses) the user's access token.
func (c *CalendarClient) accessTokenFor(ctx context.Context, username, refresh string) (string, error) {
	c.mu.Lock()
	if tok, ok := c.access[username]; ok && time.Now().Add(tokenExpirySlack).Before(tok.expires) {
		c.mu.Unlock()
		return tok.token, nil
	}
	c.mu.Unlock()

	resp, err := doWithRetry(ctx, func() (*resty.Response, error) {
		return c.tokenClient.R().
			SetContext(ctx).
			SetFormData(map[string]string{
				"client_id":     c.clientID,
				"client_secret": c.clientSecret,
				"refresh_token": refresh,
				"grant_type":    "refresh_token",
			}).
			Post(c.tokenURL)
	})
	if err != nil {
		return "", err
	}

	var decoded struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return "", fmt.Errorf("%w: token response: %v", ErrDecode, err)
	}
	if decoded.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrDecode)
	}

	c.mu.Lock()
	c.access[username] = accessToken{
		token:   decoded.AccessToken,
		expires: time.Now().Add(time.Duration(decoded.ExpiresIn) * time.Second),
	}
	c.mu.Unlock()
	return decoded.AccessToken, nil
}

// eventsPage mirrors the events list response.
type eventsPage struct {
	NextPageToken string         `json:"nextPageToken"`
	Items         []calendarItem `json:"items"`
}

type calendarItem struct {
	Status string        `json:"status"`
	Start  calendarStamp `json:"start"`
	End    calendarStamp `json:"end"`
}

type calendarStamp struct {
	DateTime string `json:"dateTime"`
	Date     string `json:"date"`
}

// busyEvent converts one calendar item into a busy stretch. All-day
// events block their whole days; cancelled events and unparsable stamps
// are skipped.
func (it calendarItem) busyEvent() (model.BusyEvent, bool) {
	if it.Status == "cancelled" {
		return model.BusyEvent{}, false
	}
	start, ok := it.Start.instant()
	if !ok {
		return model.BusyEvent{}, false
	}
	end, ok := it.End.instant()
	if !ok || !start.Before(end) {
		return model.BusyEvent{}, false
	}
	return model.BusyEvent{Start: start, End: end}, true
}

func (s calendarStamp) instant() (time.Time, bool) {
	if s.DateTime != "" {
		t, err := time.Parse(time.RFC3339, s.DateTime)
		return t, err == nil
	}
	if s.Date != "" {
		t, err := time.ParseInLocation("2006-01-02", s.Date, time.Local)
		return t, err == nil
	}
	return time.Time{}, false
}
