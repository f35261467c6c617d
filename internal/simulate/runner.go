package simulate

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/okian/faceoff/pkg/logger"
)

// invalidProbes is how many deliberately invalid votes Validate sends.
const invalidProbes = 3

// Run executes a full simulation against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{
		RunID:     uuid.NewString()[:8],
		StartTime: time.Now(),
	}
	log := logger.Named("simulate")
	client := NewClient(cfg.BaseURL, stats.RunID, cfg.Timeout)

	log.Info(ctx, "starting simulation",
		logger.String("runID", stats.RunID),
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("votes", cfg.Votes),
		logger.Int("voters", cfg.Voters),
		logger.Float64("rate", cfg.Rate),
		logger.Int64("seed", cfg.Seed))

	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	if cfg.Validate {
		if err := probeInvalid(ctx, client, stats); err != nil {
			return stats, err
		}
	}

	if err := castVotes(ctx, cfg, client, stats); err != nil {
		return stats, fmt.Errorf("vote submission failed: %w", err)
	}

	entries, err := client.Leaderboard(ctx, cfg.TopN)
	if err != nil {
		return stats, fmt.Errorf("leaderboard retrieval failed: %w", err)
	}
	stats.LeaderboardEntries = len(entries)
	if err := Verify(entries); err != nil {
		return stats, err
	}
	stats.RankCorrelation = RankCorrelation(cfg.Seed, entries)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	report(ctx, log, stats, entries)
	return stats, nil
}

// castVotes runs cfg.Voters concurrent voters until cfg.Votes votes are sent.
func castVotes(ctx context.Context, cfg *Config, client *Client, stats *Stats) error {
	limit := rate.Inf
	if cfg.Rate > 0 {
		limit = rate.Limit(cfg.Rate)
	}
	voters := max(cfg.Voters, 1)
	limiter := rate.NewLimiter(limit, voters)

	var tickets atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for n := 0; n < voters; n++ {
		voter := NewVoter(cfg.Seed, n)
		g.Go(func() error {
			for tickets.Add(1) <= int64(cfg.Votes) {
				// Each vote is two requests.
				if err := limiter.WaitN(gctx, min(2, voters)); err != nil {
					return err
				}
				castOne(gctx, cfg, client, voter, stats)
			}
			return nil
		})
	}
	return g.Wait()
}

func castOne(ctx context.Context, cfg *Config, client *Client, voter *Voter, stats *Stats) {
	pair, err := client.Pair(ctx)
	if err != nil {
		atomic.AddInt64(&stats.VotesFailed, 1)
		logger.Named("simulate").Warn(ctx, "pair fetch failed", logger.Error(err))
		return
	}
	atomic.AddInt64(&stats.PairsFetched, 1)

	winner := voter.Choose(pair)
	status, err := client.Vote(ctx, VoteRequest{Image1: pair.Image1.ID, Image2: pair.Image2.ID, Winner: winner})
	atomic.AddInt64(&stats.VotesSubmitted, 1)
	switch {
	case err != nil:
		atomic.AddInt64(&stats.VotesFailed, 1)
	case status == http.StatusOK:
		atomic.AddInt64(&stats.VotesAccepted, 1)
	case status == http.StatusBadRequest:
		atomic.AddInt64(&stats.VotesRejected, 1)
	default:
		atomic.AddInt64(&stats.VotesFailed, 1)
	}
	if cfg.Verbose {
		logger.Named("simulate").Debug(ctx, "vote cast",
			logger.String("image1", pair.Image1.ID),
			logger.String("image2", pair.Image2.ID),
			logger.String("winner", winner),
			logger.Int("status", status))
	}
}

// probeInvalid checks that the server rejects malformed votes.
func probeInvalid(ctx context.Context, client *Client, stats *Stats) error {
	pair, err := client.Pair(ctx)
	if err != nil {
		return fmt.Errorf("probe pair fetch failed: %w", err)
	}
	probes := [invalidProbes]VoteRequest{
		{Image1: pair.Image1.ID, Image2: pair.Image2.ID, Winner: "not-in-pair"},
		{Image1: pair.Image1.ID, Image2: pair.Image1.ID, Winner: pair.Image1.ID},
		{Image1: pair.Image1.ID, Image2: "missing-" + pair.Image2.ID, Winner: pair.Image1.ID},
	}
	for _, p := range probes {
		status, err := client.Vote(ctx, p)
		if err != nil {
			return fmt.Errorf("probe vote failed: %w", err)
		}
		if status != http.StatusBadRequest {
			return fmt.Errorf("invalid vote %+v accepted with status %d", p, status)
		}
		stats.InvalidProbes++
	}
	return nil
}

func report(ctx context.Context, log logger.Logger, stats *Stats, entries []Entry) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.VotesSubmitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "simulation finished",
		logger.String("runID", stats.RunID),
		logger.String("votesSubmitted", humanize.Comma(stats.VotesSubmitted)),
		logger.String("votesAccepted", humanize.Comma(stats.VotesAccepted)),
		logger.String("votesRejected", humanize.Comma(stats.VotesRejected)),
		logger.String("votesFailed", humanize.Comma(stats.VotesFailed)),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.String("votesPerSecond", humanize.FormatFloat("#,###.#", perSecond)),
		logger.String("rankCorrelation", humanize.FormatFloat("#.###", stats.RankCorrelation)),
		logger.Duration("duration", stats.Duration))

	top := min(len(entries), 10)
	for i := 0; i < top; i++ {
		log.Info(ctx, "leaderboard",
			logger.String("place", humanize.Ordinal(i+1)),
			logger.String("id", entries[i].ID),
			logger.String("rate", entries[i].BayesianWinRate),
			logger.Int("matchups", entries[i].TotalMatchups))
	}
}
