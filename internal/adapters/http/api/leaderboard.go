// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/IMperiumX/ranker/internal/domain/types"
)

// defaultWindowSize is the page served when no range is requested.
const defaultWindowSize = 10

// LeaderboardDependencies defines the interface for leaderboard reads
// and resets.
type LeaderboardDependencies interface {
	GetLeaderboard(ctx context.Context, gameID string, start, stop int64) ([]types.Row, error)
	GetGlobalLeaderboard(ctx context.Context, start, stop int64) ([]types.GlobalRow, error)
	ClearLeaderboard(ctx context.Context, gameID string) error
	ClearGlobalLeaderboard(ctx context.Context) error
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps        LeaderboardDependencies
	maxPageSize int64
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, maxPageSize int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:        deps,
		maxPageSize: int64(maxPageSize),
	}
}

// HandleLeaderboard serves GET and DELETE under /leaderboard/.
// The reserved segment "global" addresses the cross-game board; any
// other segment is a game id.
func (h *LeaderboardHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	board := strings.TrimPrefix(r.URL.Path, "/leaderboard/")
	if board == "" || strings.Contains(board, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r, board)
	case http.MethodDelete:
		h.handleDelete(w, r, board)
	default:
		http.NotFound(w, r)
	}
}

func (h *LeaderboardHandler) handleGet(w http.ResponseWriter, r *http.Request, board string) {
	start, stop, err := h.window(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_range", err)
		return
	}

	if board == "global" {
		rows, err := h.deps.GetGlobalLeaderboard(r.Context(), start, stop)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rows)
		return
	}

	rows, err := h.deps.GetLeaderboard(r.Context(), board, start, stop)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *LeaderboardHandler) handleDelete(w http.ResponseWriter, r *http.Request, board string) {
	var err error
	if board == "global" {
		err = h.deps.ClearGlobalLeaderboard(r.Context())
	} else {
		err = h.deps.ClearLeaderboard(r.Context(), board)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// window parses the inclusive 0-indexed rank range from start and end
// query parameters, defaulting to the first page.
func (h *LeaderboardHandler) window(r *http.Request) (int64, int64, error) {
	var (
		start int64
		stop  int64 = defaultWindowSize - 1
		err   error
	)
	if s := r.URL.Query().Get("start"); s != "" {
		if start, err = strconv.ParseInt(s, 10, 64); err != nil || start < 0 {
			return 0, 0, ErrBadRequest
		}
		stop = start + defaultWindowSize - 1
	}
	if s := r.URL.Query().Get("end"); s != "" {
		if stop, err = strconv.ParseInt(s, 10, 64); err != nil {
			return 0, 0, ErrBadRequest
		}
	}
	if stop < start {
		return 0, 0, ErrBadRequest
	}
	if stop-start+1 > h.maxPageSize {
		stop = start + h.maxPageSize - 1
	}
	return start, stop, nil
}
