package interval_test

import (
	"testing"
	"time"

	interval "github.com/matineehq/matinee/internal/domain/interval"
	. "github.com/smartystreets/goconvey/convey"
)

var day = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

// at builds an interval spanning [startHour, endHour) on the test day.
func at(startHour, endHour float64) interval.Interval {
	return interval.Interval{
		Start: day.Add(time.Duration(startHour * float64(time.Hour))),
		End:   day.Add(time.Duration(endHour * float64(time.Hour))),
	}
}

func TestMerge(t *testing.T) {
	Convey("Given overlapping and touching intervals", t, func() {
		Convey("When the inputs overlap", func() {
			merged := interval.Merge([]interval.Interval{at(10, 12), at(11, 13)})

			Convey("Then they coalesce into one interval", func() {
				So(merged, ShouldResemble, []interval.Interval{at(10, 13)})
			})
		})

		Convey("When the inputs touch end-to-start", func() {
			merged := interval.Merge([]interval.Interval{at(10, 11), at(11, 12)})

			Convey("Then they coalesce as well", func() {
				So(merged, ShouldResemble, []interval.Interval{at(10, 12)})
			})
		})

		Convey("When the inputs are disjoint and unsorted", func() {
			merged := interval.Merge([]interval.Interval{at(14, 15), at(9, 10)})

			Convey("Then the output is sorted and unchanged", func() {
				So(merged, ShouldResemble, []interval.Interval{at(9, 10), at(14, 15)})
			})
		})

		Convey("When an input is empty or inverted", func() {
			merged := interval.Merge([]interval.Interval{at(10, 10), at(12, 11), at(9, 10)})

			Convey("Then degenerate intervals are dropped", func() {
				So(merged, ShouldResemble, []interval.Interval{at(9, 10)})
			})
		})

		Convey("When there is no input at all", func() {
			So(interval.Merge(nil), ShouldBeNil)
		})
	})
}

func TestSubtract(t *testing.T) {
	Convey("Given a free window and busy blocks", t, func() {
		base := []interval.Interval{at(8, 24)}

		Convey("When a busy block sits in the middle", func() {
			free := interval.Subtract(base, []interval.Interval{at(12, 14)})

			Convey("Then the window splits in two", func() {
				So(free, ShouldResemble, []interval.Interval{at(8, 12), at(14, 24)})
			})
		})

		Convey("When a busy block covers the whole window", func() {
			free := interval.Subtract(base, []interval.Interval{at(7, 25)})

			Convey("Then nothing is left", func() {
				So(free, ShouldHaveLength, 0)
			})
		})

		Convey("When a busy block only touches the window boundary", func() {
			free := interval.Subtract(base, []interval.Interval{at(6, 8), at(24, 26)})

			Convey("Then the half-open window is untouched", func() {
				So(free, ShouldResemble, []interval.Interval{at(8, 24)})
			})
		})

		Convey("When busy blocks overlap each other", func() {
			free := interval.Subtract(base, []interval.Interval{at(10, 13), at(12, 15)})

			Convey("Then they are removed as one block", func() {
				So(free, ShouldResemble, []interval.Interval{at(8, 10), at(15, 24)})
			})
		})

		Convey("When there are no busy blocks", func() {
			free := interval.Subtract(base, nil)
			So(free, ShouldResemble, []interval.Interval{at(8, 24)})
		})
	})
}

func TestIntersect(t *testing.T) {
	Convey("Given several availability sets", t, func() {
		a := []interval.Interval{at(9, 12), at(14, 18)}
		b := []interval.Interval{at(10, 16)}
		c := []interval.Interval{at(11, 15), at(17, 20)}

		Convey("When intersecting all of them", func() {
			common := interval.Intersect([][]interval.Interval{a, b, c})

			Convey("Then only the mutually shared time remains", func() {
				So(common, ShouldResemble, []interval.Interval{at(11, 12), at(14, 15)})
			})
		})

		Convey("When changing the fold order", func() {
			orders := [][][]interval.Interval{
				{a, b, c},
				{c, a, b},
				{b, c, a},
			}
			want := interval.Intersect(orders[0])

			Convey("Then every order gives the same result", func() {
				for _, sets := range orders[1:] {
					So(interval.Intersect(sets), ShouldResemble, want)
				}
			})
		})

		Convey("When one set is empty", func() {
			common := interval.Intersect([][]interval.Interval{a, nil, c})

			Convey("Then the intersection is empty", func() {
				So(common, ShouldBeNil)
			})
		})

		Convey("When two sets only touch at an endpoint", func() {
			common := interval.Intersect([][]interval.Interval{
				{at(9, 12)},
				{at(12, 15)},
			})

			Convey("Then the shared instant does not count", func() {
				So(common, ShouldBeNil)
			})
		})

		Convey("When intersecting a single set", func() {
			common := interval.Intersect([][]interval.Interval{{at(11, 10), at(9, 12)}})

			Convey("Then its merged form comes back", func() {
				So(common, ShouldResemble, []interval.Interval{at(9, 12)})
			})
		})

		Convey("When intersecting zero sets", func() {
			So(interval.Intersect(nil), ShouldBeNil)
		})
	})
}

func TestFilterMinDuration(t *testing.T) {
	Convey("Given intervals of varying length", t, func() {
		ivs := []interval.Interval{at(9, 11), at(12, 13), at(14, 16.5)}

		Convey("When filtering with a two hour minimum", func() {
			kept := interval.FilterMinDuration(ivs, 2*time.Hour)

			Convey("Then exactly-min intervals are kept and shorter ones dropped", func() {
				So(kept, ShouldResemble, []interval.Interval{at(9, 11), at(14, 16.5)})
			})
		})

		Convey("When the minimum is zero", func() {
			So(interval.FilterMinDuration(ivs, 0), ShouldResemble, ivs)
		})
	})
}
