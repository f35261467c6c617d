package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/faceoff/internal/simulate"
	"github.com/okian/faceoff/pkg/logger"
)

// Default configuration constants.
const (
	defaultVotes       = 10000
	defaultVoters      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:3000", "Base URL of the service")
		votes    = flag.Int("votes", defaultVotes, "Number of votes to cast")
		voters   = flag.Int("voters", runtime.NumCPU()*defaultVoters, "Number of concurrent voters")
		rps      = flag.Float64("rate", 0, "Requests per second across all voters (0 = unlimited)")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed     = flag.Int64("seed", time.Now().UnixNano(), "Seed for hidden item quality")
		topN     = flag.Int("top", 0, "Leaderboard entries to fetch (0 = all)")
		logFile  = flag.String("log", "", "Also append logs to this file")
		validate = flag.Bool("validate", true, "Send invalid votes and expect them rejected")
		verbose  = flag.Bool("verbose", false, "Enable per-vote logging")
	)
	flag.Parse()

	closeLog, err := simulate.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closeLog()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &simulate.Config{
		BaseURL:  *baseURL,
		Votes:    *votes,
		Voters:   *voters,
		Rate:     *rps,
		Timeout:  *timeout,
		Seed:     *seed,
		TopN:     *topN,
		LogFile:  *logFile,
		Verbose:  *verbose,
		Validate: *validate,
	}

	if _, err := simulate.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "simulation failed", logger.Error(err))
		closeLog()
		os.Exit(1)
	}
}
