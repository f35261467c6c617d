package pairing

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/faceoff/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func catalog(n int) []model.Item {
	items := make([]model.Item, n)
	for i := range items {
		id := fmt.Sprintf("img%d", i+1)
		items[i] = model.Item{ID: id, Link: "https://example.com/" + id}
	}
	return items
}

func TestSelect(t *testing.T) {
	Convey("Given a seeded selector", t, func() {
		s := New(WithSeed(7))

		Convey("When fewer than two items exist", func() {
			_, _, errNone := s.Select(nil)
			_, _, errOne := s.Select(catalog(1))

			Convey("Then selection fails", func() {
				So(errors.Is(errNone, ErrInsufficientItems), ShouldBeTrue)
				So(errors.Is(errOne, ErrInsufficientItems), ShouldBeTrue)
			})
		})

		Convey("When exactly two items exist", func() {
			items := catalog(2)

			Convey("Then the pair is always those two in some order", func() {
				for i := 0; i < 100; i++ {
					a, b, err := s.Select(items)
					So(err, ShouldBeNil)
					So(a.ID, ShouldNotEqual, b.ID)
				}
			})
		})

		Convey("When drawing many pairs from three items", func() {
			items := catalog(3)
			counts := map[string]int{}
			const draws = 30000
			for i := 0; i < draws; i++ {
				a, b, err := s.Select(items)
				So(err, ShouldBeNil)
				counts[model.NewPairKey(a.ID, b.ID).String()]++
			}

			Convey("Then every unordered pair shows up about a third of the time", func() {
				So(counts, ShouldHaveLength, 3)
				for _, n := range counts {
					So(n, ShouldBeBetween, draws/3-1000, draws/3+1000)
				}
			})
		})

		Convey("When two selectors share a seed", func() {
			other := New(WithSeed(7))
			items := catalog(10)

			Convey("Then they produce the same sequence", func() {
				for i := 0; i < 20; i++ {
					a1, b1, _ := s.Select(items)
					a2, b2, _ := other.Select(items)
					So(a1, ShouldResemble, a2)
					So(b1, ShouldResemble, b2)
				}
			})
		})
	})
}

func TestSelectConcurrent(t *testing.T) {
	Convey("Given a selector shared by many goroutines", t, func() {
		s := New()
		items := catalog(5)
		var wg sync.WaitGroup
		var mu sync.Mutex
		var failures int

		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 200; i++ {
					a, b, err := s.Select(items)
					if err != nil || a.ID == b.ID {
						mu.Lock()
						failures++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		Convey("Then every draw is a distinct pair", func() {
			So(failures, ShouldEqual, 0)
		})
	})
}
