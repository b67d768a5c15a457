package model

import (
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLabel(t *testing.T) {
	Convey("Given the board labels", t, func() {
		Convey("Then upwind boards and legs report IsUpwind", func() {
			So(UpwindStarboard.IsUpwind(), ShouldBeTrue)
			So(UpwindPort.IsUpwind(), ShouldBeTrue)
			So(Upwind.IsUpwind(), ShouldBeTrue)
			So(DownwindPort.IsUpwind(), ShouldBeFalse)
			So(PreStart.IsUpwind(), ShouldBeFalse)
			So(None.IsUpwind(), ShouldBeFalse)
		})

		Convey("Then wire names round trip through ParseLabel", func() {
			for _, l := range []Label{UpwindStarboard, UpwindPort, DownwindStarboard, DownwindPort, PreStart, Upwind, Downwind} {
				got, err := ParseLabel(l.String())
				So(err, ShouldBeNil)
				So(got, ShouldEqual, l)
			}
		})

		Convey("Then unknown names fail with ErrUnknownLabel", func() {
			_, err := ParseLabel("X-Y")
			So(errors.Is(err, ErrUnknownLabel), ShouldBeTrue)
		})

		Convey("Then out of range values still print", func() {
			So(Label(42).String(), ShouldEqual, "Label(42)")
		})
	})

	Convey("Given a maneuver encoded as JSON", t, func() {
		m := Maneuver{Board: UpwindPort}
		b, err := json.Marshal(m)

		Convey("Then the board is its wire name", func() {
			So(err, ShouldBeNil)
			So(string(b), ShouldContainSubstring, `"board":"U-P"`)

			var back Maneuver
			So(json.Unmarshal(b, &back), ShouldBeNil)
			So(back.Board, ShouldEqual, UpwindPort)
		})
	})
}

func TestPositionOf(t *testing.T) {
	Convey("Given samples with and without coordinates", t, func() {
		So(PositionOf(Sample{Lon: F(1), Lat: F(2)}), ShouldResemble, &Position{Lon: 1, Lat: 2})
		So(PositionOf(Sample{Lon: F(1)}), ShouldBeNil)
		So(PositionOf(Sample{}), ShouldBeNil)
	})
}
