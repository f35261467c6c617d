// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	service "github.com/okian/faceoff/internal/app"
	"github.com/okian/faceoff/internal/domain/model"
	"github.com/okian/faceoff/internal/domain/pairing"
	"github.com/okian/faceoff/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// NextPair returns two distinct items to compare.
	NextPair(ctx context.Context) (model.Item, model.Item, error)

	// Vote records one comparison. Invalid votes wrap service.ErrInvalidVote.
	Vote(ctx context.Context, image1, image2, winner string) (model.VoteOutcome, error)

	// Read operations expose leaderboard data.
	Leaderboard(ctx context.Context, limit int) ([]Entry, error)
	ItemStats(ctx context.Context, id string) (types.ItemStats, error)
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the voting API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	voteHandler        *VoteHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		voteHandler:        NewVoteHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
		rankHandler:        NewRankHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.wrap(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", s.wrap(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/vote", s.wrap(s.voteHandler.HandleVote, "vote"))
	mux.HandleFunc("/leaderboard", s.wrap(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/rank/", s.wrap(s.rankHandler.HandleGetRank, "rank"))
}

func (s *Server) wrap(h http.HandlerFunc, endpoint string) http.HandlerFunc {
	return RequestIDMiddleware(MetricsMiddleware(h, endpoint))
}

// statusFor maps service errors to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidVote):
		return http.StatusBadRequest, "invalid_vote"
	case errors.Is(err, service.ErrUnknownItem), errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, pairing.ErrInsufficientItems):
		return http.StatusInternalServerError, "insufficient_items"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "not_started"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
