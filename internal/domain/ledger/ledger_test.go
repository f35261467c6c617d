package ledger

import (
	"errors"
	"testing"

	"github.com/okian/faceoff/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRecordVote(t *testing.T) {
	Convey("Given an empty ledger", t, func() {
		l := New()

		Convey("When img1 beats img2", func() {
			m, err := l.RecordVote("img1", "img2", "img1")

			Convey("Then a 1/0 record is created", func() {
				So(err, ShouldBeNil)
				So(m.Wins("img1"), ShouldEqual, 1)
				So(m.Wins("img2"), ShouldEqual, 0)
				So(l.Len(), ShouldEqual, 1)
			})

			Convey("When img2 beats img1 with arguments reversed", func() {
				m2, err := l.RecordVote("img2", "img1", "img2")

				Convey("Then the same record is updated", func() {
					So(err, ShouldBeNil)
					So(l.Len(), ShouldEqual, 1)
					So(m2.Key().String(), ShouldEqual, "img1_img2")
					So(m2.WinsA, ShouldEqual, 1)
					So(m2.WinsB, ShouldEqual, 1)
				})
			})

			Convey("When the identical vote is repeated", func() {
				m2, _ := l.RecordVote("img1", "img2", "img1")

				Convey("Then it counts again", func() {
					So(m2.Wins("img1"), ShouldEqual, 2)
				})
			})
		})

		Convey("When the pair is degenerate", func() {
			_, err := l.RecordVote("img1", "img1", "img1")

			Convey("Then it is rejected without a record", func() {
				So(errors.Is(err, ErrSamePair), ShouldBeTrue)
				So(l.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the winner is a third item", func() {
			_, err := l.RecordVote("img1", "img2", "img3")

			Convey("Then it is rejected without a record", func() {
				So(errors.Is(err, ErrWinnerNotInPair), ShouldBeTrue)
				_, ok := l.Get("img1", "img2")
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestTotalsAndSnapshot(t *testing.T) {
	Convey("Given a ledger with several pairs", t, func() {
		l := New()
		_, _ = l.RecordVote("img1", "img2", "img1")
		_, _ = l.RecordVote("img1", "img2", "img2")
		_, _ = l.RecordVote("img3", "img1", "img1")

		Convey("When computing totals", func() {
			totals := l.Totals()

			Convey("Then matches sum both counts of each record", func() {
				So(totals["img1"], ShouldResemble, Tally{Wins: 2, Matches: 3})
				So(totals["img2"], ShouldResemble, Tally{Wins: 1, Matches: 2})
				So(totals["img3"], ShouldResemble, Tally{Wins: 0, Matches: 1})
			})
		})

		Convey("When iterating", func() {
			var keys []string
			l.Each(func(m model.Matchup) { keys = append(keys, m.Key().String()) })

			Convey("Then records come in key order", func() {
				So(keys, ShouldResemble, []string{"img1_img2", "img1_img3"})
			})
		})

		Convey("When restoring a snapshot into a new ledger", func() {
			snap := l.Snapshot()
			restored := New()
			restored.Restore(snap)

			Convey("Then the records match exactly", func() {
				So(restored.Snapshot(), ShouldResemble, snap)
				So(restored.Totals(), ShouldResemble, l.Totals())
			})
		})

		Convey("When restoring a record stored under a non-canonical key", func() {
			restored := New()
			restored.Restore(map[string]model.Matchup{
				"whatever": {A: "img9", B: "img4", WinsA: 3, WinsB: 1},
				"bad":      {A: "img5", B: "img5", WinsA: 1},
			})

			Convey("Then it is re-keyed and counts follow their members", func() {
				m, ok := restored.Get("img4", "img9")
				So(ok, ShouldBeTrue)
				So(m.Key().String(), ShouldEqual, "img4_img9")
				So(m.Wins("img9"), ShouldEqual, 3)
				So(m.Wins("img4"), ShouldEqual, 1)
				So(restored.Len(), ShouldEqual, 1)
			})
		})
	})
}
