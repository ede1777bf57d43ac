package taste_test

import (
	"testing"

	"github.com/matineehq/matinee/internal/domain/model"
	taste "github.com/matineehq/matinee/internal/domain/taste"
	. "github.com/smartystreets/goconvey/convey"
)

func TestProfileScore(t *testing.T) {
	Convey("Given a profile built from Letterboxd-style ratings", t, func() {
		profile := taste.NewProfile(model.UserProfile{
			Username: "ada",
			MaxScale: 5.0,
			Ratings: []model.Rating{
				{Title: "Paris, Texas", Year: 1984, Score: 4.5},
				{Title: "Solaris", Year: 1972, Score: 5.0},
				{Title: "Solaris", Year: 2002, Score: 2.0},
				{Title: "The Piano", Year: 1993, Score: 3.0},
			},
		})

		Convey("When scoring an exact title and year match", func() {
			s := profile.Score(model.Movie{Title: "Paris, Texas", Year: 1984})

			Convey("Then the rating is normalized to [0,1]", func() {
				So(s.Present, ShouldBeTrue)
				So(s.Value, ShouldEqual, 0.9)
			})
		})

		Convey("When punctuation and case differ from the rating", func() {
			s := profile.Score(model.Movie{Title: "PARIS TEXAS", Year: 1984})

			Convey("Then normalization still matches", func() {
				So(s.Present, ShouldBeTrue)
				So(s.Value, ShouldEqual, 0.9)
			})
		})

		Convey("When the candidate has no year and the title is unique", func() {
			s := profile.Score(model.Movie{Title: "The Piano"})

			Convey("Then the title-only match is trusted", func() {
				So(s.Present, ShouldBeTrue)
				So(s.Value, ShouldEqual, 0.6)
			})
		})

		Convey("When the candidate has no year and the title is ambiguous", func() {
			s := profile.Score(model.Movie{Title: "Solaris"})

			Convey("Then no guess is made", func() {
				So(s.Present, ShouldBeFalse)
			})
		})

		Convey("When the candidate is a remake of a rated film", func() {
			s := profile.Score(model.Movie{Title: "Paris, Texas", Year: 2024})

			Convey("Then the different known year never matches", func() {
				So(s.Present, ShouldBeFalse)
			})
		})

		Convey("When the user never rated the movie", func() {
			s := profile.Score(model.Movie{Title: "Stalker", Year: 1979})

			Convey("Then the score is absent, not zero", func() {
				So(s, ShouldResemble, taste.None())
			})
		})

		Convey("When the candidate title normalizes to nothing", func() {
			s := profile.Score(model.Movie{Title: "???", Year: 2020})
			So(s.Present, ShouldBeFalse)
		})
	})

	Convey("Given duplicate ratings for the same film", t, func() {
		profile := taste.NewProfile(model.UserProfile{
			Username: "rewatcher",
			Ratings: []model.Rating{
				{Title: "Heat", Year: 1995, Score: 3.0},
				{Title: "Heat", Year: 1995, Score: 4.0},
			},
		})

		Convey("When scoring that film", func() {
			s := profile.Score(model.Movie{Title: "Heat", Year: 1995})

			Convey("Then the highest rating wins", func() {
				So(s.Value, ShouldEqual, 0.8)
			})
		})

		Convey("When the candidate carries no year", func() {
			s := profile.Score(model.Movie{Title: "Heat"})

			Convey("Then the rewatch does not make the title ambiguous", func() {
				So(s.Present, ShouldBeTrue)
				So(s.Value, ShouldEqual, 0.8)
			})
		})
	})

	Convey("Given a rating with an unknown year", t, func() {
		profile := taste.NewProfile(model.UserProfile{
			Username: "vague",
			MaxScale: 5.0,
			Ratings:  []model.Rating{{Title: "Nosferatu", Score: 4.0}},
		})

		Convey("When the candidate carries a known year", func() {
			s := profile.Score(model.Movie{Title: "Nosferatu", Year: 2024})

			Convey("Then the year-less rating still matches", func() {
				So(s.Present, ShouldBeTrue)
				So(s.Value, ShouldEqual, 0.8)
			})
		})
	})

	Convey("Given a profile without a declared scale", t, func() {
		profile := taste.NewProfile(model.UserProfile{
			Username: "min",
			Ratings:  []model.Rating{{Title: "Ran", Year: 1985, Score: 5.0}},
		})

		Convey("When scoring a rated film", func() {
			s := profile.Score(model.Movie{Title: "Ran", Year: 1985})

			Convey("Then the default five-star scale applies", func() {
				So(s.Value, ShouldEqual, 1.0)
			})
		})
	})

	Convey("Given a rating above the scale ceiling", t, func() {
		profile := taste.NewProfile(model.UserProfile{
			Username: "odd",
			MaxScale: 5.0,
			Ratings:  []model.Rating{{Title: "Brazil", Year: 1985, Score: 7.0}},
		})

		Convey("When scoring", func() {
			s := profile.Score(model.Movie{Title: "Brazil", Year: 1985})

			Convey("Then the value clamps to 1", func() {
				So(s.Value, ShouldEqual, 1.0)
			})
		})
	})
}

func TestNewProfile(t *testing.T) {
	Convey("Given ratings with blank titles", t, func() {
		profile := taste.NewProfile(model.UserProfile{
			Username: "sparse",
			Ratings: []model.Rating{
				{Title: "   ", Score: 4.0},
				{Title: "Alien", Year: 1979, Score: 4.5},
			},
		})

		Convey("Then only usable ratings are indexed", func() {
			So(profile.Size(), ShouldEqual, 1)
			So(profile.Username(), ShouldEqual, "sparse")
		})
	})
}
