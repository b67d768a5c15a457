package segment_test

import (
	"testing"
	"time"

	"github.com/okian/tackline/internal/domain/model"
	"github.com/okian/tackline/internal/domain/segment"
	. "github.com/smartystreets/goconvey/convey"
)

var base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func at(sec int) time.Time { return base.Add(time.Duration(sec) * time.Second) }

// raceSample is a sample well past the pre-start cutoff.
func raceSample(sec int, twa float64) model.Sample {
	return model.Sample{T: at(sec), TWA: model.F(twa), OT: model.F(float64(1000 + sec))}
}

func TestBoardClassifier(t *testing.T) {
	Convey("Given the board classifier with the default cutoff", t, func() {
		board := segment.Board(segment.DefaultPreStartCutoff)

		cases := []struct {
			twa  float64
			want model.Label
		}{
			{0, model.UpwindStarboard},
			{45, model.UpwindStarboard},
			{90, model.UpwindStarboard},
			{90.5, model.DownwindStarboard},
			{170, model.DownwindStarboard},
			{-0.1, model.UpwindPort},
			{-45, model.UpwindPort},
			{-90, model.UpwindPort},
			{-90.5, model.DownwindPort},
			{-170, model.DownwindPort},
		}

		Convey("Then TWA buckets map to boards with the asymmetric zero boundary", func() {
			for _, c := range cases {
				So(board.Classify(raceSample(0, c.twa)), ShouldEqual, c.want)
			}
		})

		Convey("Then a sample without TWA is unlabelable", func() {
			So(board.Classify(model.Sample{T: at(0), OT: model.F(1000)}), ShouldEqual, model.None)
		})

		Convey("Then elapsed time under the cutoff forces pre-start", func() {
			for _, twa := range []float64{-170, -45, 45, 170} {
				s := model.Sample{T: at(0), TWA: model.F(twa), OT: model.F(299.9)}
				So(board.Classify(s), ShouldEqual, model.PreStart)
			}
		})

		Convey("Then elapsed time at the cutoff is racing", func() {
			s := model.Sample{T: at(0), TWA: model.F(45), OT: model.F(300)}
			So(board.Classify(s), ShouldEqual, model.UpwindStarboard)
		})

		Convey("Then a sample without elapsed time is not pre-start", func() {
			s := model.Sample{T: at(0), TWA: model.F(45)}
			So(board.Classify(s), ShouldEqual, model.UpwindStarboard)
		})
	})
}

func TestLegClassifier(t *testing.T) {
	Convey("Given the leg classifier", t, func() {
		leg := segment.Leg(segment.DefaultPreStartCutoff)

		Convey("Then |TWA| under 90 is upwind", func() {
			So(leg.Classify(raceSample(0, 89)), ShouldEqual, model.Upwind)
			So(leg.Classify(raceSample(0, -89)), ShouldEqual, model.Upwind)
		})

		Convey("Then |TWA| of 90 or more is downwind", func() {
			So(leg.Classify(raceSample(0, 90)), ShouldEqual, model.Downwind)
			So(leg.Classify(raceSample(0, -150)), ShouldEqual, model.Downwind)
		})

		Convey("Then pre-start applies even without TWA", func() {
			So(leg.Classify(model.Sample{T: at(0), OT: model.F(10)}), ShouldEqual, model.PreStart)
		})

		Convey("Then no TWA and no pre-start is unlabelable", func() {
			So(leg.Classify(model.Sample{T: at(0)}), ShouldEqual, model.None)
		})
	})
}

func TestSegment(t *testing.T) {
	Convey("Given samples crossing TWA buckets", t, func() {
		samples := []model.Sample{
			raceSample(0, 40),
			raceSample(1, 42),
			raceSample(2, -40), // U-P from t=2
			raceSample(3, -41),
			raceSample(4, -120), // D-P from t=4
			raceSample(5, 130),  // D-S from t=5
			raceSample(6, 131),
		}

		Convey("When segmenting by board", func() {
			got := segment.Maneuvers(samples, segment.DefaultPreStartCutoff)

			Convey("Then boundaries fall on the transition timestamps", func() {
				So(got, ShouldResemble, []model.Maneuver{
					{Board: model.UpwindStarboard, Start: at(0), End: at(2)},
					{Board: model.UpwindPort, Start: at(2), End: at(4)},
					{Board: model.DownwindPort, Start: at(4), End: at(5)},
				})
			})

			Convey("Then the trailing open segment is dropped", func() {
				So(got[len(got)-1].Board, ShouldNotEqual, model.DownwindStarboard)
			})
		})

		Convey("When segmenting by leg", func() {
			got := segment.Legs(samples, segment.DefaultPreStartCutoff)

			Convey("Then only the upwind to downwind change is emitted", func() {
				So(got, ShouldResemble, []model.Maneuver{
					{Board: model.Upwind, Start: at(0), End: at(4)},
				})
			})
		})
	})

	Convey("Given samples with instrument dropouts", t, func() {
		samples := []model.Sample{
			raceSample(0, 40),
			{T: at(1), OT: model.F(1001)},
			raceSample(2, 41),
			{T: at(3)},
			raceSample(4, -40),
			{T: at(5)},
			raceSample(6, 40),
		}

		Convey("When segmenting by board", func() {
			got := segment.Maneuvers(samples, segment.DefaultPreStartCutoff)

			Convey("Then samples without TWA never create a boundary", func() {
				So(got, ShouldResemble, []model.Maneuver{
					{Board: model.UpwindStarboard, Start: at(0), End: at(4)},
					{Board: model.UpwindPort, Start: at(4), End: at(6)},
				})
			})
		})
	})

	Convey("Given a pre-start period followed by racing", t, func() {
		samples := []model.Sample{
			{T: at(0), TWA: model.F(40), OT: model.F(298)},
			{T: at(1), TWA: model.F(-40), OT: model.F(299)},
			{T: at(2), TWA: model.F(40), OT: model.F(300)},
			{T: at(3), TWA: model.F(-40), OT: model.F(301)},
		}

		Convey("Then pre-start samples collapse into one PS maneuver", func() {
			got := segment.Maneuvers(samples, segment.DefaultPreStartCutoff)
			So(got, ShouldResemble, []model.Maneuver{
				{Board: model.PreStart, Start: at(0), End: at(2)},
				{Board: model.UpwindStarboard, Start: at(2), End: at(3)},
			})
		})
	})

	Convey("Given a custom classifier", t, func() {
		calls := 0
		c := segment.ClassifierFunc(func(s model.Sample) model.Label {
			calls++
			return model.Upwind
		})

		Convey("Then a single label yields no closed segment", func() {
			got := segment.Segment([]model.Sample{raceSample(0, 1), raceSample(1, 2)}, c)
			So(got, ShouldBeEmpty)
			So(calls, ShouldEqual, 2)
		})
	})

	Convey("Given no samples", t, func() {
		So(segment.Maneuvers(nil, segment.DefaultPreStartCutoff), ShouldBeEmpty)
	})
}
