package simulate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/faceoff/internal/adapters/http/api"
	service "github.com/okian/faceoff/internal/app"
	"github.com/okian/faceoff/internal/catalog"
	"github.com/okian/faceoff/internal/domain/model"
	"github.com/okian/faceoff/internal/domain/pairing"
	"github.com/okian/faceoff/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestQuality(t *testing.T) {
	Convey("Given hidden quality", t, func() {
		Convey("Then it is deterministic per seed and id and lies in [0,1)", func() {
			So(Quality(1, "img1"), ShouldEqual, Quality(1, "img1"))
			So(Quality(1, "img1"), ShouldNotEqual, Quality(2, "img1"))
			for _, id := range []string{"img1", "img2", "img3", "x"} {
				q := Quality(7, id)
				So(q, ShouldBeGreaterThanOrEqualTo, 0)
				So(q, ShouldBeLessThan, 1)
			}
		})

		Convey("Then win probability favours the better item symmetrically", func() {
			So(WinProbability(0.5, 0.5), ShouldEqual, 0.5)
			So(WinProbability(0.9, 0.1), ShouldBeGreaterThan, 0.99)
			So(WinProbability(0.9, 0.1)+WinProbability(0.1, 0.9), ShouldAlmostEqual, 1, 1e-9)
		})

		Convey("Then a voter always names a member of the pair", func() {
			v := NewVoter(3, 0)
			p := Pair{Image1: Item{ID: "a"}, Image2: Item{ID: "b"}}
			for i := 0; i < 50; i++ {
				So(v.Choose(p), ShouldBeIn, []string{"a", "b"})
			}
		})
	})
}

func TestVerify(t *testing.T) {
	Convey("Given leaderboards", t, func() {
		Convey("When rows are sorted with sane rates", func() {
			So(Verify([]Entry{
				{ID: "a", TotalMatchups: 3, BayesianWinRate: "80.0"},
				{ID: "b", TotalMatchups: 1, BayesianWinRate: "66.7"},
				{ID: "c", TotalMatchups: 1, BayesianWinRate: "66.7"},
			}), ShouldBeNil)
			So(Verify(nil), ShouldBeNil)
		})

		Convey("When a row breaks a rule", func() {
			cases := [][]Entry{
				{{ID: "a", TotalMatchups: 1, BayesianWinRate: "33.3"}, {ID: "b", TotalMatchups: 1, BayesianWinRate: "66.7"}},
				{{ID: "a", TotalMatchups: 0, BayesianWinRate: "50.0"}},
				{{ID: "a", TotalMatchups: 1, BayesianWinRate: "N/A"}},
				{{ID: "a", TotalMatchups: 1, BayesianWinRate: "100.0"}},
			}
			for _, c := range cases {
				So(errors.Is(Verify(c), ErrInconsistentLeaderboard), ShouldBeTrue)
			}
		})
	})
}

func TestRankCorrelation(t *testing.T) {
	Convey("Given entries ordered by hidden quality", t, func() {
		ids := []string{"img1", "img2", "img3", "img4", "img5"}
		entries := make([]Entry, len(ids))
		for i, id := range ids {
			entries[i] = Entry{ID: id}
		}
		const seed = 11
		// Selection sort by quality, descending.
		for i := range entries {
			best := i
			for j := i + 1; j < len(entries); j++ {
				if Quality(seed, entries[j].ID) > Quality(seed, entries[best].ID) {
					best = j
				}
			}
			entries[i], entries[best] = entries[best], entries[i]
		}

		Convey("Then the correlation is perfect", func() {
			So(RankCorrelation(seed, entries), ShouldAlmostEqual, 1, 1e-9)
		})

		Convey("Then reversing the order gives -1", func() {
			rev := make([]Entry, len(entries))
			for i := range entries {
				rev[len(entries)-1-i] = entries[i]
			}
			So(RankCorrelation(seed, rev), ShouldAlmostEqual, -1, 1e-9)
		})

		Convey("Then fewer than two entries give zero", func() {
			So(RankCorrelation(seed, entries[:1]), ShouldEqual, 0)
		})
	})
}

func newServer(n int) (*httptest.Server, *service.Service) {
	items := make([]model.Item, n)
	for i := range items {
		items[i] = model.Item{ID: "img" + string(rune('a'+i)), Link: "https://img.example/" + string(rune('a'+i))}
	}
	c, err := catalog.New(items)
	if err != nil {
		panic(err)
	}
	svc := service.New(c, nil, service.WithSelector(pairing.New(pairing.WithSeed(5))))
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, svc, 1000).Register(context.Background(), mux)
	return httptest.NewServer(mux), svc
}

func TestRun(t *testing.T) {
	Convey("Given a running voting server", t, func() {
		srv, svc := newServer(6)
		defer srv.Close()
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		Convey("When simulating concurrent voters", func() {
			stats, err := Run(ctx, &Config{
				BaseURL:  srv.URL,
				Votes:    200,
				Voters:   4,
				Timeout:  5 * time.Second,
				Seed:     9,
				Validate: true,
			})

			Convey("Then every vote lands and the leaderboard verifies", func() {
				So(err, ShouldBeNil)
				So(stats.VotesSubmitted, ShouldEqual, 200)
				So(stats.VotesAccepted, ShouldEqual, 200)
				So(stats.VotesFailed, ShouldEqual, 0)
				So(stats.InvalidProbes, ShouldEqual, invalidProbes)
				So(stats.LeaderboardEntries, ShouldEqual, 6)
				So(svc.Snapshot().Version, ShouldEqual, 200)
			})
		})

		Convey("When the rate is limited", func() {
			start := time.Now()
			stats, err := Run(ctx, &Config{BaseURL: srv.URL, Votes: 6, Voters: 1, Rate: 20, Timeout: time.Second})

			Convey("Then the run is paced", func() {
				So(err, ShouldBeNil)
				So(stats.VotesAccepted, ShouldEqual, 6)
				So(time.Since(start), ShouldBeGreaterThan, 200*time.Millisecond)
			})
		})
	})
}

func TestRunUnreachable(t *testing.T) {
	Convey("Given no server", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		Convey("Then the health check fails the run", func() {
			_, err := Run(context.Background(), &Config{BaseURL: url, Votes: 1, Voters: 1, Timeout: time.Second})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSetupLogging(t *testing.T) {
	Convey("Given a log file path", t, func() {
		path := filepath.Join(t.TempDir(), "sim.log")
		closeLog, err := SetupLogging(path, false)
		So(err, ShouldBeNil)
		logger.Get().Info(context.Background(), "hello from simulate")
		closeLog()

		Convey("Then records reach the file", func() {
			data, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, "hello from simulate")
		})
		So(logger.Init(), ShouldBeNil)
	})
}
