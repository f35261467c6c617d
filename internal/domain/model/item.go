// Package model contains domain models passed between layers.
package model

// Item is a votable image. Items are immutable once the catalog is loaded.
type Item struct {
	ID   string `json:"id"`
	Link string `json:"link"`
}

// VoteOutcome describes the state produced by a single accepted vote.
type VoteOutcome struct {
	Winner       string
	Loser        string
	Matchup      Matchup // pair record after the increment
	WinnerRating float64
	LoserRating  float64
	Version      uint64
}
