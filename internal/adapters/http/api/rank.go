// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/IMperiumX/ranker/internal/domain/types"
)

// RankDependencies defines the interface for rank lookups.
type RankDependencies interface {
	GetUserRank(ctx context.Context, gameID, userID string) (types.UserRank, error)
	GetUserGlobalRank(ctx context.Context, userID string) (types.GlobalUserRank, error)
}

// RankHandler handles rank requests.
type RankHandler struct {
	deps RankDependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps RankDependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

// HandleGetRank serves GET /rank/global/{user_id} and
// GET /rank/{game_id}/{user_id}.
func (h *RankHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/rank/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	if parts[0] == "global" {
		rank, err := h.deps.GetUserGlobalRank(r.Context(), parts[1])
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rank)
		return
	}

	rank, err := h.deps.GetUserRank(r.Context(), parts[0], parts[1])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rank)
}
