package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/faceoff/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntry(t *testing.T) {
	Convey("Given an Entry struct", t, func() {
		entry := types.Entry{
			Rank:            1,
			ID:              "img1",
			Link:            "https://example.com/1.jpg",
			Wins:            2,
			TotalMatchups:   2,
			WinRate:         75,
			BayesianWinRate: "75.0",
		}

		Convey("When encoding to JSON", func() {
			data, err := json.Marshal(entry)
			So(err, ShouldBeNil)

			var fields map[string]any
			So(json.Unmarshal(data, &fields), ShouldBeNil)

			Convey("Then only the public fields are present", func() {
				So(fields, ShouldHaveLength, 4)
				So(fields["id"], ShouldEqual, "img1")
				So(fields["link"], ShouldEqual, "https://example.com/1.jpg")
				So(fields["totalMatchups"], ShouldEqual, 2)
				So(fields["bayesianWinRate"], ShouldEqual, "75.0")
			})
		})

		Convey("When creating an entry with zero values", func() {
			zero := types.Entry{}

			Convey("Then it should have default values", func() {
				So(zero.Rank, ShouldEqual, 0)
				So(zero.ID, ShouldEqual, "")
				So(zero.BayesianWinRate, ShouldEqual, "")
			})
		})
	})
}

func TestItemStats(t *testing.T) {
	Convey("Given item stats for an unplayed item", t, func() {
		stats := types.ItemStats{ID: "img3", Link: "l3", Rating: 1500, BayesianWinRate: "N/A"}

		Convey("When encoding to JSON", func() {
			data, err := json.Marshal(stats)

			Convey("Then rank and matches are zero", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldContainSubstring, `"rank":0`)
				So(string(data), ShouldContainSubstring, `"matches":0`)
				So(string(data), ShouldContainSubstring, `"bayesianWinRate":"N/A"`)
			})
		})
	})
}
