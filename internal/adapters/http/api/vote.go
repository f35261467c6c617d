package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/faceoff/internal/domain/model"
	"github.com/okian/faceoff/pkg/logger"
)

const maxVoteBodyBytes = 1 << 16

// VoteDependencies defines the interface for pairing and voting.
type VoteDependencies interface {
	NextPair(ctx context.Context) (model.Item, model.Item, error)
	Vote(ctx context.Context, image1, image2, winner string) (model.VoteOutcome, error)
}

// VoteHandler serves GET and POST /vote.
type VoteHandler struct {
	deps VoteDependencies
}

// NewVoteHandler creates a new vote handler.
func NewVoteHandler(deps VoteDependencies) *VoteHandler {
	return &VoteHandler{deps: deps}
}

// voteRequest mirrors the OpenAPI schema for POST /vote. Absent fields stay
// empty and are rejected by the service as an invalid vote.
type voteRequest struct {
	Image1 string `json:"image1"`
	Image2 string `json:"image2"`
	Winner string `json:"winner"`
}

type pairResponse struct {
	Image1 model.Item `json:"image1"`
	Image2 model.Item `json:"image2"`
}

type voteResponse struct {
	Message string        `json:"message"`
	Matchup model.Matchup `json:"matchup"`
}

// HandleVote dispatches on method.
func (h *VoteHandler) HandleVote(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.HandleGetPair(w, r)
	case http.MethodPost:
		h.HandlePostVote(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

// HandleGetPair handles GET /vote requests.
func (h *VoteHandler) HandleGetPair(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_pair"
	a, b, err := h.deps.NextPair(r.Context())
	if err != nil {
		status, code := statusFor(err)
		logger.Named("api").Error(r.Context(), "pair selection failed",
			logger.String("request_id", RequestIDFromContext(r.Context())),
			logger.Error(err))
		writeError(w, status, code, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, pairResponse{Image1: a, Image2: b})
}

// HandlePostVote handles POST /vote requests.
func (h *VoteHandler) HandlePostVote(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_vote"
	var req voteRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxVoteBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	outcome, err := h.deps.Vote(r.Context(), req.Image1, req.Image2, req.Winner)
	if err != nil {
		status, code := statusFor(err)
		if code == "invalid_vote" {
			// Fixed public message; the reason stays in logs and metrics.
			writeJSON(w, status, errorResponse{Error: "Invalid vote", Code: code})
			return
		}
		logger.Named("api").Error(r.Context(), "vote failed",
			logger.String("request_id", RequestIDFromContext(r.Context())),
			logger.Error(err))
		writeError(w, status, code, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, voteResponse{Message: "Vote recorded", Matchup: outcome.Matchup})
}
