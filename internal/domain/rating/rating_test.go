package rating

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestExpected(t *testing.T) {
	Convey("Given two ratings", t, func() {
		Convey("When they are equal", func() {
			Convey("Then each side expects half", func() {
				So(Expected(1500, 1500), ShouldEqual, 0.5)
			})
		})

		Convey("When they differ", func() {
			pairs := [][2]float64{{1500, 1900}, {1620, 1380}, {800, 2400}, {1516, 1484}}

			Convey("Then the two expectations always sum to one", func() {
				for _, p := range pairs {
					So(Expected(p[0], p[1])+Expected(p[1], p[0]), ShouldAlmostEqual, 1.0, 1e-12)
				}
			})

			Convey("Then a 400 point edge gives ten to one odds", func() {
				So(Expected(1900, 1500), ShouldAlmostEqual, 10.0/11.0, 1e-12)
			})
		})
	})
}

func TestStoreUpdate(t *testing.T) {
	Convey("Given a fresh rating store", t, func() {
		s := New()
		s.Ensure("img1")
		s.Ensure("img2")

		Convey("Then every item starts at the baseline", func() {
			So(s.Get("img1"), ShouldEqual, DefaultBaseline)
			So(s.Get("unknown"), ShouldEqual, DefaultBaseline)
			So(s.Len(), ShouldEqual, 2)
		})

		Convey("When img1 beats img2 from equal ratings", func() {
			w, l := s.Update("img1", "img2")

			Convey("Then ratings move by K/2", func() {
				So(w, ShouldEqual, 1516)
				So(l, ShouldEqual, 1484)
				So(s.Get("img1"), ShouldEqual, 1516)
				So(s.Get("img2"), ShouldEqual, 1484)
				So(s.Spread(), ShouldEqual, 32)
			})

			Convey("When img2 then beats img1", func() {
				w2, l2 := s.Update("img2", "img1")

				Convey("Then the underdog gains more than K/2", func() {
					So(w2-1484, ShouldBeGreaterThan, 16)
					So(w2+l2, ShouldAlmostEqual, 3000, 1e-9)
				})
			})
		})

		Convey("When many votes are applied", func() {
			for i := 0; i < 50; i++ {
				s.Update("img1", "img2")
			}

			Convey("Then the winner rises, the loser falls and the total is conserved", func() {
				So(s.Get("img1"), ShouldBeGreaterThan, DefaultBaseline)
				So(s.Get("img2"), ShouldBeLessThan, DefaultBaseline)
				So(s.Get("img1")+s.Get("img2"), ShouldAlmostEqual, 3000, 1e-6)
				So(math.IsNaN(s.Get("img1")), ShouldBeFalse)
			})
		})
	})
}

func TestStoreOptionsAndRestore(t *testing.T) {
	Convey("Given a store with custom options", t, func() {
		s := New(WithKFactor(16), WithBaseline(1000), WithKFactor(-1))

		Convey("Then valid options apply and invalid ones are ignored", func() {
			So(s.KFactor(), ShouldEqual, 16)
			So(s.Baseline(), ShouldEqual, 1000)
		})

		Convey("When restoring saved ratings over baseline entries", func() {
			s.Ensure("img1")
			s.Ensure("img2")
			s.Restore(map[string]float64{"img1": 1040, "gone": 990})

			Convey("Then saved values win and missing items keep the baseline", func() {
				So(s.Get("img1"), ShouldEqual, 1040)
				So(s.Get("img2"), ShouldEqual, 1000)
				So(s.Get("gone"), ShouldEqual, 990)
			})

			Convey("Then the snapshot is a detached copy", func() {
				snap := s.Snapshot()
				snap["img1"] = 0
				So(s.Get("img1"), ShouldEqual, 1040)
				So(snap, ShouldHaveLength, 3)
			})
		})
	})
}
