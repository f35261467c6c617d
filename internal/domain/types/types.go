// Package types contains common types used across the application
package types

// Entry represents a leaderboard entry. Only id, link, totalMatchups and
// bayesianWinRate are part of the wire format.
type Entry struct {
	Rank            int     `json:"-"`
	ID              string  `json:"id"`
	Link            string  `json:"link"`
	Wins            int     `json:"-"`
	TotalMatchups   int     `json:"totalMatchups"`
	WinRate         float64 `json:"-"`
	BayesianWinRate string  `json:"bayesianWinRate"`
}

// ItemStats is the global standing of a single item.
type ItemStats struct {
	ID              string  `json:"id"`
	Link            string  `json:"link"`
	Rank            int     `json:"rank"`
	Rating          float64 `json:"rating"`
	Wins            int     `json:"wins"`
	Matches         int     `json:"matches"`
	BayesianWinRate string  `json:"bayesianWinRate"`
}
