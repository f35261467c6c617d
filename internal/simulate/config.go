// Package simulate drives a running voting server with synthetic voters and
// checks that the resulting leaderboard is well formed.
package simulate

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Votes    int           // Total votes to cast
	Voters   int           // Concurrent voters
	Rate     float64       // Requests per second across all voters; 0 means unlimited
	Timeout  time.Duration // HTTP request timeout
	Seed     int64         // Seeds hidden item quality and voter choices
	TopN     int           // Leaderboard entries to fetch; 0 fetches all
	LogFile  string        // Optional log file in addition to stdout
	Verbose  bool          // Enable per-vote debug logging
	Validate bool          // Send a few deliberately invalid votes
}

// Item mirrors an image returned by GET /vote.
type Item struct {
	ID   string `json:"id"`
	Link string `json:"link"`
}

// Pair is the GET /vote response.
type Pair struct {
	Image1 Item `json:"image1"`
	Image2 Item `json:"image2"`
}

// VoteRequest is the POST /vote body.
type VoteRequest struct {
	Image1 string `json:"image1"`
	Image2 string `json:"image2"`
	Winner string `json:"winner"`
}

// Entry mirrors a leaderboard row.
type Entry struct {
	ID              string `json:"id"`
	Link            string `json:"link"`
	TotalMatchups   int    `json:"totalMatchups"`
	BayesianWinRate string `json:"bayesianWinRate"`
}

// Stats holds run statistics.
type Stats struct {
	RunID              string
	PairsFetched       int64
	VotesSubmitted     int64
	VotesAccepted      int64
	VotesRejected      int64
	VotesFailed        int64
	InvalidProbes      int64
	LeaderboardEntries int
	RankCorrelation    float64
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
