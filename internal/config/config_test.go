package config_test

import (
	"testing"

	config "github.com/matineehq/matinee/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Given a default configuration", t, func() {
		cfg := config.New()

		Convey("Then the service defaults are set", func() {
			So(cfg.Addr, ShouldEqual, ":9090")
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.FairnessPenalty, ShouldEqual, 0.25)
			So(cfg.BufferMinutes, ShouldEqual, 15)
			So(cfg.DefaultRuntimeMinutes, ShouldEqual, 120)
			So(cfg.DayStartHour, ShouldEqual, 8)
			So(cfg.DayEndHour, ShouldEqual, 24)
			So(cfg.MaxResultsCap, ShouldEqual, 50)
		})

		Convey("Then the fetch policy defaults are tiered", func() {
			So(cfg.FetchTimeoutSeconds, ShouldEqual, 10)
			So(cfg.CalendarTimeoutSeconds, ShouldEqual, 30)
			So(cfg.FetchConcurrency, ShouldEqual, 8)
		})

		Convey("Then the collaborator endpoints point at production", func() {
			So(cfg.CinevilleAPIURL, ShouldEqual, "https://api.cineville.nl/events/search")
			So(cfg.LetterboxdBaseURL, ShouldEqual, "https://letterboxd.com")
		})

		Convey("Then no calendar tokens are configured", func() {
			So(cfg.CalendarTokens, ShouldBeEmpty)
		})
	})
}
