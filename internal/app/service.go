// Package app provides the recommendation façade: it validates request
// options, fans out collaborator fetches, and feeds the domain pipeline.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matineehq/matinee/internal/adapters/repository"
	"github.com/matineehq/matinee/internal/domain/availability"
	"github.com/matineehq/matinee/internal/domain/fit"
	"github.com/matineehq/matinee/internal/domain/group"
	"github.com/matineehq/matinee/internal/domain/interval"
	"github.com/matineehq/matinee/internal/domain/model"
	"github.com/matineehq/matinee/internal/domain/rank"
	"github.com/matineehq/matinee/internal/domain/taste"
	"github.com/matineehq/matinee/pkg/logger"
	"github.com/matineehq/matinee/pkg/metrics"
)

// Tiered fetch timeout defaults: token and search style calls are short,
// calendar event listings page through full calendars and get longer.
const (
	defaultFetchTimeout    = 10 * time.Second
	defaultCalendarTimeout = 30 * time.Second
	defaultConcurrency     = 8
)

// ProfileFetcher loads one user's rating history. A user unknown to the
// source yields an empty profile, not an error.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, username string) (model.UserProfile, error)
}

// BusyFetcher lists a user's calendar busy events over the lookahead
// window. Users without a grant return an error wrapping
// ErrNoCalendarGrant.
type BusyFetcher interface {
	FetchBusyEvents(ctx context.Context, username string, from time.Time, daysAhead int) ([]model.BusyEvent, error)
}

// CatalogFetcher loads candidate movies and their showtimes.
type CatalogFetcher interface {
	FetchCatalog(ctx context.Context, from time.Time, daysAhead int, limitAmsterdam bool) (model.Catalog, error)
}

// Service orchestrates one recommendation request end to end. All fetched
// collections live and die with one request; nothing mutable is shared
// across requests except the cache, which synchronizes itself.
type Service struct {
	profiles ProfileFetcher
	busy     BusyFetcher
	catalog  CatalogFetcher

	cache       repository.Cache
	intersector *availability.Intersector
	aggregator  *group.Aggregator
	matcher     *fit.Matcher

	fetchTimeout     time.Duration
	calendarTimeout  time.Duration
	fetchConcurrency int
	maxResultsCap    int

	now    func() time.Time
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCache sets the result cache.
func WithCache(c repository.Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithIntersector sets the availability intersector.
func WithIntersector(x *availability.Intersector) Option {
	return func(s *Service) {
		if x != nil {
			s.intersector = x
		}
	}
}

// WithAggregator sets the group aggregator.
func WithAggregator(a *group.Aggregator) Option {
	return func(s *Service) {
		if a != nil {
			s.aggregator = a
		}
	}
}

// WithMatcher sets the showtime matcher.
func WithMatcher(m *fit.Matcher) Option {
	return func(s *Service) {
		if m != nil {
			s.matcher = m
		}
	}
}

// WithFetchTimeouts sets the short (profile/catalog/token) and long
// (calendar listing) fetch timeouts.
func WithFetchTimeouts(short, calendar time.Duration) Option {
	return func(s *Service) {
		if short > 0 {
			s.fetchTimeout = short
		}
		if calendar > 0 {
			s.calendarTimeout = calendar
		}
	}
}

// WithFetchConcurrency bounds parallel fetches per request.
func WithFetchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.fetchConcurrency = n
		}
	}
}

// WithMaxResultsCap sets the hard ceiling on max_results.
func WithMaxResultsCap(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxResultsCap = n
		}
	}
}

// withClock overrides the time source, for tests.
func withClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a Service around the three collaborator fetchers.
func New(profiles ProfileFetcher, busy BusyFetcher, catalog CatalogFetcher, opts ...Option) *Service {
	s := &Service{
		profiles:         profiles,
		busy:             busy,
		catalog:          catalog,
		cache:            repository.New(),
		intersector:      availability.New(),
		aggregator:       group.New(),
		matcher:          fit.New(),
		fetchTimeout:     defaultFetchTimeout,
		calendarTimeout:  defaultCalendarTimeout,
		fetchConcurrency: defaultConcurrency,
		now:              time.Now,
		logger:           logger.Get().Named("app"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recommend validates opts, then returns the ranked group recommendation
// list, served from cache when a fresh identical request already ran.
// Collaborator failures never fail the request; they degrade into absent
// data. An empty list is a valid answer.
func (s *Service) Recommend(ctx context.Context, opts Options) ([]rank.Recommendation, error) {
	start := s.now()
	opts.normalize()
	if err := opts.validate(s.maxResultsCap); err != nil {
		metrics.RecordRequest("invalid")
		return nil, err
	}

	key := opts.Fingerprint()
	if opts.ForceRefresh {
		s.cache.Invalidate(ctx, key)
	}

	recs, cached, err := s.cache.GetOrCompute(ctx, key, func(ctx context.Context) ([]rank.Recommendation, error) {
		return s.compute(ctx, opts)
	})
	if err != nil {
		metrics.RecordRequest("error")
		return nil, err
	}

	outcome := "computed"
	if cached {
		outcome = "cached"
	}
	metrics.RecordRequest(outcome)
	metrics.RecordRequestDuration(s.now().Sub(start).Seconds())
	metrics.RecordRecommendationsEmitted(len(recs))
	return recs, nil
}

// compute runs one full pipeline pass: concurrent fetches, availability
// intersection, per-user scoring, group aggregation, showtime matching,
// and ranking.
func (s *Service) compute(ctx context.Context, opts Options) ([]rank.Recommendation, error) {
	reqID := uuid.NewString()
	log := s.logger
	from := s.now()
	users := opts.Usernames

	fetched := make([]model.UserProfile, len(users))
	feeds := make([]*availability.Feed, len(users)) // nil entries mean no grant or failed fetch
	var catalog model.Catalog

	tasks := make([]func(context.Context), 0, 2*len(users)+1)
	for i, u := range users {
		tasks = append(tasks, func(ctx context.Context) {
			fetched[i] = s.fetchProfile(ctx, u)
		})
		if opts.UseCalendar {
			tasks = append(tasks, func(ctx context.Context) {
				feeds[i] = s.fetchBusy(ctx, u, from, opts.DaysAhead)
			})
		}
	}
	tasks = append(tasks, func(ctx context.Context) {
		catalog = s.fetchCatalog(ctx, from, opts.DaysAhead, opts.LimitAmsterdam)
	})

	// Aggregation never starts before every fetch has returned or timed
	// out; there is no partial emission mid-request.
	runParallel(ctx, s.fetchConcurrency, tasks)

	granted := make([]availability.Feed, 0, len(feeds))
	for _, f := range feeds {
		if f != nil {
			granted = append(granted, *f)
		}
	}

	// With nobody contributing calendar constraints the intersection is
	// unconstrained, so matching degrades to the calendar-off path
	// instead of letting the day-bounds policy veto showtimes on its own.
	calendarActive := opts.UseCalendar && len(granted) > 0

	var slots []interval.Interval
	if calendarActive {
		minSlot := time.Duration(opts.MinSlotMinutes()) * time.Minute
		slots = s.intersector.CommonFreeSlots(granted, from, opts.DaysAhead, minSlot)
		metrics.RecordFreeSlotsFound(len(slots))
	}

	profiles := make([]*taste.Profile, len(users))
	for i := range fetched {
		profiles[i] = taste.NewProfile(fetched[i])
	}

	scored := s.aggregator.ScoreCandidates(catalog.Movies, profiles, opts.Mood)
	metrics.RecordCandidatesScored(len(catalog.Movies))

	fits := s.matcher.FittingShowTimes(catalog.ShowTimes, slots, calendarActive)
	recs := rank.Build(scored, fits, calendarActive, opts.MaxResults)

	log.Info(ctx, "recommendation computed",
		logger.String("request_id", reqID),
		logger.Strings("usernames", users),
		logger.Int("candidates", len(catalog.Movies)),
		logger.Int("free_slots", len(slots)),
		logger.Int("recommendations", len(recs)),
		logger.Duration("elapsed", s.now().Sub(from)),
	)
	return recs, nil
}

// fetchProfile loads one user's ratings under the short timeout. Failure
// degrades to an empty profile so the user stays in the computation.
func (s *Service) fetchProfile(ctx context.Context, username string) model.UserProfile {
	cctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	start := time.Now()
	p, err := s.profiles.FetchProfile(cctx, username)
	metrics.RecordFetchLatency("profile", time.Since(start).Seconds())
	if err != nil {
		s.recordFetchFailure(ctx, "profile", username, err)
		return model.UserProfile{Username: username}
	}
	p.Username = username
	return p
}

// fetchBusy loads one user's busy events under the long timeout. A nil
// return means the user contributes no calendar constraint.
func (s *Service) fetchBusy(ctx context.Context, username string, from time.Time, daysAhead int) *availability.Feed {
	cctx, cancel := context.WithTimeout(ctx, s.calendarTimeout)
	defer cancel()

	start := time.Now()
	events, err := s.busy.FetchBusyEvents(cctx, username, from, daysAhead)
	metrics.RecordFetchLatency("calendar", time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, ErrNoCalendarGrant) {
			s.logger.Debug(ctx, "no calendar grant", logger.String("username", username))
		} else {
			s.recordFetchFailure(ctx, "calendar", username, err)
		}
		return nil
	}
	return &availability.Feed{Username: username, Busy: events}
}

// fetchCatalog loads the candidate movies and showtimes. Failure degrades
// to an empty catalog, which yields an empty recommendation list.
func (s *Service) fetchCatalog(ctx context.Context, from time.Time, daysAhead int, limitAmsterdam bool) model.Catalog {
	cctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	start := time.Now()
	cat, err := s.catalog.FetchCatalog(cctx, from, daysAhead, limitAmsterdam)
	metrics.RecordFetchLatency("catalog", time.Since(start).Seconds())
	if err != nil {
		s.recordFetchFailure(ctx, "catalog", "", err)
		return model.Catalog{}
	}
	return cat
}

func (s *Service) recordFetchFailure(ctx context.Context, collaborator, username string, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		metrics.RecordFetchTimeout(collaborator)
	} else {
		metrics.RecordFetchError(collaborator)
	}
	s.logger.Warn(ctx, "collaborator fetch failed; degrading to absent data",
		logger.String("collaborator", collaborator),
		logger.String("username", username),
		logger.Error(err),
	)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	return map[string]any{
		"cacheEntries":     s.cache.Len(),
		"fetchConcurrency": s.fetchConcurrency,
		"fetchTimeout":     s.fetchTimeout.String(),
		"calendarTimeout":  s.calendarTimeout.String(),
	}
}
