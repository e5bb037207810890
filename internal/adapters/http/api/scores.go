// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/IMperiumX/ranker/internal/domain/types"
)

// ScoresDependencies defines the interface for score submission.
type ScoresDependencies interface {
	SubmitScore(ctx context.Context, userID, gameID string, score float64, metadata map[string]any) (types.SubmitResult, error)
}

// scoreRequest mirrors the JSON schema for POST /scores.
type scoreRequest struct {
	UserID   string         `json:"user_id" validate:"required"`
	GameID   string         `json:"game_id" validate:"required"`
	Score    float64        `json:"score" validate:"gte=0"`
	Metadata map[string]any `json:"metadata"`
}

// ScoresHandler handles score submissions.
type ScoresHandler struct {
	deps     ScoresDependencies
	validate *validator.Validate
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps ScoresDependencies) *ScoresHandler {
	return &ScoresHandler{
		deps:     deps,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// HandlePostScore handles POST /scores requests.
func (h *ScoresHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req scoreRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err)
		return
	}

	result, err := h.deps.SubmitScore(r.Context(), req.UserID, req.GameID, req.Score, req.Metadata)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}
