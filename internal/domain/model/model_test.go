package model_test

import (
	"testing"

	model "github.com/matineehq/matinee/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalizeTitle(t *testing.T) {
	Convey("Given catalog and profile spellings of the same film", t, func() {
		Convey("Then case is folded", func() {
			So(model.NormalizeTitle("PARIS, TEXAS"), ShouldEqual, "paristexas")
		})

		Convey("Then punctuation and spacing are stripped", func() {
			So(model.NormalizeTitle("M*A*S*H"), ShouldEqual, "mash")
			So(model.NormalizeTitle("Birdman (or The Unexpected Virtue of Ignorance)"), ShouldEqual, "birdmanortheunexpectedvirtueofignorance")
		})

		Convey("Then digits survive", func() {
			So(model.NormalizeTitle("2001: A Space Odyssey"), ShouldEqual, "2001aspaceodyssey")
		})

		Convey("Then accented characters are stripped, not transliterated", func() {
			So(model.NormalizeTitle("Amélie"), ShouldEqual, "amlie")
		})

		Convey("Then an all-punctuation title normalizes to nothing", func() {
			So(model.NormalizeTitle("?!..."), ShouldEqual, "")
		})
	})
}

func TestMovieKey(t *testing.T) {
	Convey("Given two spellings of the same release", t, func() {
		a := model.Movie{Title: "The Godfather, Part II", Year: 1974}
		b := model.Movie{Title: "the godfather part ii", Year: 1974}

		Convey("Then their keys collide", func() {
			So(a.Key(), ShouldResemble, b.Key())
		})
	})

	Convey("Given the same title in different years", t, func() {
		a := model.Movie{Title: "Solaris", Year: 1972}
		b := model.Movie{Title: "Solaris", Year: 2002}

		Convey("Then they are different movies", func() {
			So(a.Key(), ShouldNotResemble, b.Key())
		})
	})
}
