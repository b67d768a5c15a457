package window_test

import (
	"testing"
	"time"

	"github.com/okian/tackline/internal/domain/model"
	"github.com/okian/tackline/internal/domain/window"
	. "github.com/smartystreets/goconvey/convey"
)

var base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func at(sec int) time.Time { return base.Add(time.Duration(sec) * time.Second) }

func series(n int) []model.Sample {
	out := make([]model.Sample, n)
	for i := range out {
		out[i] = model.Sample{T: at(i)}
	}
	return out
}

func TestSliceByTimeRange(t *testing.T) {
	Convey("Given a 1 Hz series of 20 samples", t, func() {
		samples := series(20)

		Convey("When both bounds fall on samples", func() {
			got := window.SliceByTimeRange(samples, at(4), at(8))

			Convey("Then both edges are included", func() {
				So(len(got), ShouldEqual, 5)
				So(got[0].T, ShouldEqual, at(4))
				So(got[4].T, ShouldEqual, at(8))
			})
		})

		Convey("When the upper bound falls between samples", func() {
			got := window.SliceByTimeRange(samples, at(4), at(8).Add(300*time.Millisecond))

			Convey("Then the next later sample closes the window", func() {
				So(got[len(got)-1].T, ShouldEqual, at(9))
			})
		})

		Convey("When the range starts before the first sample", func() {
			got := window.SliceByTimeRange(samples, at(-10), at(2))

			Convey("Then it is clipped to the start", func() {
				So(len(got), ShouldEqual, 3)
				So(got[0].T, ShouldEqual, at(0))
			})
		})

		Convey("When the range ends after the last sample", func() {
			got := window.SliceByTimeRange(samples, at(17), at(100))

			Convey("Then it is clipped to the end", func() {
				So(len(got), ShouldEqual, 3)
				So(got[2].T, ShouldEqual, at(19))
			})
		})

		Convey("When the range lies entirely after the data", func() {
			So(window.SliceByTimeRange(samples, at(50), at(60)), ShouldBeEmpty)
		})

		Convey("When the input is empty", func() {
			So(window.SliceByTimeRange(nil, at(0), at(5)), ShouldBeEmpty)
		})

		Convey("When the caller appends to a result", func() {
			got := window.SliceByTimeRange(samples, at(0), at(2))
			got = append(got, model.Sample{T: at(99)})

			Convey("Then the source sequence is untouched", func() {
				So(samples[3].T, ShouldEqual, at(3))
			})
		})
	})
}

func TestSliceAroundTime(t *testing.T) {
	Convey("Given a 1 Hz series of 200 samples", t, func() {
		samples := series(200)

		Convey("When slicing [-30s, +120s] around t=50", func() {
			got := window.SliceAroundTime(samples, at(50), 30*time.Second, 120*time.Second)

			Convey("Then it spans t=20 through t=170", func() {
				So(len(got), ShouldEqual, 151)
				So(got[0].T, ShouldEqual, at(20))
				So(got[150].T, ShouldEqual, at(170))
			})
		})

		Convey("When using a Spec", func() {
			spec := window.Spec{Before: 15 * time.Second, After: 20 * time.Second}
			got := spec.Around(samples, at(100))

			Convey("Then it matches SliceAroundTime", func() {
				So(got, ShouldResemble, window.SliceAroundTime(samples, at(100), 15*time.Second, 20*time.Second))
			})
		})
	})
}
