package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matineehq/matinee/internal/domain/model"
	"github.com/matineehq/matinee/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "logger init failed:", err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// Fake collaborators with per-test behavior and call counting.

type fakeProfiles struct {
	calls    atomic.Int32
	profiles map[string]model.UserProfile
	err      error
}

func (f *fakeProfiles) FetchProfile(_ context.Context, username string) (model.UserProfile, error) {
	f.calls.Add(1)
	if f.err != nil {
		return model.UserProfile{}, f.err
	}
	return f.profiles[username], nil
}

type fakeBusy struct {
	calls atomic.Int32
	busy  map[string][]model.BusyEvent
	errs  map[string]error
}

func (f *fakeBusy) FetchBusyEvents(_ context.Context, username string, _ time.Time, _ int) ([]model.BusyEvent, error) {
	f.calls.Add(1)
	if err := f.errs[username]; err != nil {
		return nil, err
	}
	return f.busy[username], nil
}

type fakeCatalog struct {
	calls   atomic.Int32
	catalog model.Catalog
	err     error
}

func (f *fakeCatalog) FetchCatalog(context.Context, time.Time, int, bool) (model.Catalog, error) {
	f.calls.Add(1)
	if f.err != nil {
		return model.Catalog{}, f.err
	}
	return f.catalog, nil
}

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func fixedClock() Option {
	return withClock(func() time.Time { return testNow })
}

func showAt(title string, year int, hour, runtime int) model.ShowTime {
	return model.ShowTime{
		Movie:          model.Movie{Title: title, Year: year}.Key(),
		Cinema:         "Kriterion",
		Start:          time.Date(2026, 3, 14, hour, 0, 0, 0, time.UTC),
		RuntimeMinutes: runtime,
	}
}

func testCatalog() model.Catalog {
	movies := []model.Movie{
		{Title: "Aftersun", Year: 2022, Genres: []string{"Drama"}},
		{Title: "Hundreds of Beavers", Year: 2022, Genres: []string{"Comedy"}},
	}
	return model.Catalog{
		Movies: movies,
		ShowTimes: []model.ShowTime{
			showAt("Aftersun", 2022, 19, 96),
			showAt("Hundreds of Beavers", 2022, 23, 108),
		},
	}
}

func testProfiles() map[string]model.UserProfile {
	return map[string]model.UserProfile{
		"ada": {Username: "ada", MaxScale: 5, Ratings: []model.Rating{
			{Title: "Aftersun", Year: 2022, Score: 4.5},
			{Title: "Hundreds of Beavers", Year: 2022, Score: 3.5},
		}},
	}
}

func requestOptions() Options {
	o := DefaultOptions()
	o.Usernames = []string{"ada"}
	o.DaysAhead = 1
	return o
}

func TestRecommend(t *testing.T) {
	Convey("Given a service over fake collaborators", t, func() {
		ctx := context.Background()

		Convey("When a user grants no calendar access but use_calendar is on", func() {
			busy := &fakeBusy{errs: map[string]error{
				"ada": fmt.Errorf("user ada: %w", ErrNoCalendarGrant),
			}}
			svc := New(&fakeProfiles{profiles: testProfiles()}, busy, &fakeCatalog{catalog: testCatalog()}, fixedClock())

			recs, err := svc.Recommend(ctx, requestOptions())

			Convey("Then showtimes pass through unfiltered", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 2)
				// The 23:00 screening would never fit the day bounds, yet
				// without any calendar constraint it must survive.
				So(recs[0].Movie.Title, ShouldEqual, "Aftersun")
				So(recs[1].Movie.Title, ShouldEqual, "Hundreds of Beavers")
				So(recs[1].ShowTimes, ShouldHaveLength, 1)
			})
		})

		Convey("When the user's calendar leaves one evening gap", func() {
			busy := &fakeBusy{busy: map[string][]model.BusyEvent{
				"ada": {{
					Start: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
					End:   time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC),
				}, {
					Start: time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC),
					End:   time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
				}},
			}}
			svc := New(&fakeProfiles{profiles: testProfiles()}, busy, &fakeCatalog{catalog: testCatalog()}, fixedClock())

			recs, err := svc.Recommend(ctx, requestOptions())

			Convey("Then only movies with a fitting screening are recommended", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 1)
				So(recs[0].Movie.Title, ShouldEqual, "Aftersun")
			})
		})

		Convey("When use_calendar is off", func() {
			busy := &fakeBusy{}
			svc := New(&fakeProfiles{profiles: testProfiles()}, busy, &fakeCatalog{catalog: testCatalog()}, fixedClock())
			opts := requestOptions()
			opts.UseCalendar = false

			recs, err := svc.Recommend(ctx, opts)

			Convey("Then no busy fetch is even issued", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 2)
				So(busy.calls.Load(), ShouldEqual, 0)
			})
		})

		Convey("When the profile source fails outright", func() {
			profiles := &fakeProfiles{err: errors.New("rss unreachable")}
			svc := New(profiles, &fakeBusy{}, &fakeCatalog{catalog: testCatalog()}, fixedClock())
			opts := requestOptions()
			opts.UseCalendar = false

			recs, err := svc.Recommend(ctx, opts)

			Convey("Then the request still succeeds with an empty list", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 0)
			})
		})

		Convey("When the catalog source fails outright", func() {
			catalog := &fakeCatalog{err: errors.New("api down")}
			svc := New(&fakeProfiles{profiles: testProfiles()}, &fakeBusy{}, catalog, fixedClock())
			opts := requestOptions()
			opts.UseCalendar = false

			recs, err := svc.Recommend(ctx, opts)

			Convey("Then the request degrades to an empty list", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 0)
			})
		})

		Convey("When the request is malformed", func() {
			svc := New(&fakeProfiles{}, &fakeBusy{}, &fakeCatalog{}, fixedClock())
			opts := requestOptions()
			opts.Usernames = nil

			_, err := svc.Recommend(ctx, opts)

			Convey("Then validation rejects it before any fetch", func() {
				So(err, ShouldWrap, ErrInvalidOptions)
			})
		})

		Convey("When the same request repeats", func() {
			profiles := &fakeProfiles{profiles: testProfiles()}
			svc := New(profiles, &fakeBusy{}, &fakeCatalog{catalog: testCatalog()}, fixedClock())
			opts := requestOptions()
			opts.UseCalendar = false

			first, err1 := svc.Recommend(ctx, opts)
			second, err2 := svc.Recommend(ctx, opts)

			Convey("Then the second answer is served from cache", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(second, ShouldResemble, first)
				So(profiles.calls.Load(), ShouldEqual, 1)
			})

			Convey("And force_refresh recomputes", func() {
				opts.ForceRefresh = true
				_, err := svc.Recommend(ctx, opts)
				So(err, ShouldBeNil)
				So(profiles.calls.Load(), ShouldEqual, 2)
			})
		})

		Convey("When a mood filter is applied", func() {
			svc := New(&fakeProfiles{profiles: testProfiles()}, &fakeBusy{}, &fakeCatalog{catalog: testCatalog()}, fixedClock())
			opts := requestOptions()
			opts.UseCalendar = false
			opts.Mood = "happy"

			recs, err := svc.Recommend(ctx, opts)

			Convey("Then only genre-matching candidates come back", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 1)
				So(recs[0].Movie.Title, ShouldEqual, "Hundreds of Beavers")
			})
		})

		Convey("When max_results trims the list", func() {
			svc := New(&fakeProfiles{profiles: testProfiles()}, &fakeBusy{}, &fakeCatalog{catalog: testCatalog()}, fixedClock())
			opts := requestOptions()
			opts.UseCalendar = false
			opts.MaxResults = 1

			recs, err := svc.Recommend(ctx, opts)

			Convey("Then only the best candidate survives", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 1)
				So(recs[0].Movie.Title, ShouldEqual, "Aftersun")
			})
		})
	})
}

func TestGetStats(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := New(&fakeProfiles{}, &fakeBusy{}, &fakeCatalog{}, fixedClock())

		Convey("When reading stats", func() {
			stats := svc.GetStats()

			Convey("Then the operational fields are present", func() {
				So(stats, ShouldContainKey, "cacheEntries")
				So(stats, ShouldContainKey, "fetchConcurrency")
				So(stats["fetchConcurrency"], ShouldEqual, defaultConcurrency)
			})
		})
	})
}
