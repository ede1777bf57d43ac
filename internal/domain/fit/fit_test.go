package fit_test

import (
	"testing"
	"time"

	fit "github.com/matineehq/matinee/internal/domain/fit"
	"github.com/matineehq/matinee/internal/domain/interval"
	"github.com/matineehq/matinee/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var evening = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func slot(startOffset, endOffset time.Duration) interval.Interval {
	return interval.Interval{Start: evening.Add(startOffset), End: evening.Add(endOffset)}
}

func show(title string, startOffset time.Duration, runtime int) model.ShowTime {
	return model.ShowTime{
		Movie:          model.MovieKey{Title: title, Year: 2024},
		Cinema:         "Kriterion",
		Start:          evening.Add(startOffset),
		RuntimeMinutes: runtime,
	}
}

func TestFittingShowTimes(t *testing.T) {
	Convey("Given a matcher with the default buffer", t, func() {
		m := fit.New()
		// Free 18:00-22:00.
		slots := []interval.Interval{slot(0, 4*time.Hour)}

		Convey("When the film plus buffer ends inside the slot", func() {
			// 19:00 + 90min + 15min buffer = 20:45.
			st := show("okja", time.Hour, 90)
			got := m.FittingShowTimes([]model.ShowTime{st}, slots, true)

			Convey("Then the showtime is kept", func() {
				So(got[st.Movie], ShouldHaveLength, 1)
			})
		})

		Convey("When the film plus buffer ends one minute past the slot", func() {
			// 20:00 + 106min + 15min = 22:01.
			st := show("okja", 2*time.Hour, 106)
			got := m.FittingShowTimes([]model.ShowTime{st}, slots, true)

			Convey("Then the showtime is rejected", func() {
				So(got, ShouldNotContainKey, st.Movie)
			})
		})

		Convey("When the film plus buffer ends exactly at slot end", func() {
			// 20:00 + 105min + 15min = 22:00, and the slot is [18:00, 22:00).
			st := show("okja", 2*time.Hour, 105)
			got := m.FittingShowTimes([]model.ShowTime{st}, slots, true)

			Convey("Then the boundary still fits", func() {
				So(got[st.Movie], ShouldHaveLength, 1)
			})
		})

		Convey("When the showtime starts before the slot does", func() {
			st := show("okja", -30*time.Minute, 90)
			got := m.FittingShowTimes([]model.ShowTime{st}, slots, true)

			Convey("Then it is rejected", func() {
				So(got, ShouldNotContainKey, st.Movie)
			})
		})

		Convey("When the runtime is unknown", func() {
			// Default 120min + 15min buffer from 19:00 ends 21:15.
			st := show("okja", time.Hour, 0)
			got := m.FittingShowTimes([]model.ShowTime{st}, slots, true)

			Convey("Then the default runtime is assumed", func() {
				So(got[st.Movie], ShouldHaveLength, 1)
			})
		})

		Convey("When a movie screens several times", func() {
			late := show("okja", 90*time.Minute, 90)
			early := show("okja", 30*time.Minute, 90)
			nofit := show("okja", 3*time.Hour, 120)
			got := m.FittingShowTimes([]model.ShowTime{late, early, nofit}, slots, true)

			Convey("Then fitting showtimes are sorted by start", func() {
				So(got[early.Movie], ShouldHaveLength, 2)
				So(got[early.Movie][0].Start.Before(got[early.Movie][1].Start), ShouldBeTrue)
			})
		})

		Convey("When the calendar is not in use", func() {
			st := show("okja", 12*time.Hour, 180)
			got := m.FittingShowTimes([]model.ShowTime{st}, nil, false)

			Convey("Then every showtime passes through", func() {
				So(got[st.Movie], ShouldHaveLength, 1)
			})
		})

		Convey("When there are no free slots at all", func() {
			st := show("okja", time.Hour, 90)
			got := m.FittingShowTimes([]model.ShowTime{st}, nil, true)

			Convey("Then nothing fits", func() {
				So(got, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a matcher with no buffer", t, func() {
		m := fit.New(fit.WithBuffer(0))
		slots := []interval.Interval{slot(0, 2*time.Hour)}

		Convey("When the film ends exactly at slot end", func() {
			st := show("okja", 0, 120)
			got := m.FittingShowTimes([]model.ShowTime{st}, slots, true)

			Convey("Then it fits without the buffer", func() {
				So(got[st.Movie], ShouldHaveLength, 1)
			})
		})
	})

	Convey("Given a matcher with a custom default runtime", t, func() {
		m := fit.New(fit.WithBuffer(0), fit.WithDefaultRuntime(90*time.Minute))
		slots := []interval.Interval{slot(0, 100*time.Minute)}

		Convey("When a no-runtime showtime is matched", func() {
			st := show("okja", 0, 0)
			got := m.FittingShowTimes([]model.ShowTime{st}, slots, true)

			Convey("Then the custom default applies", func() {
				So(got[st.Movie], ShouldHaveLength, 1)
			})
		})
	})
}
