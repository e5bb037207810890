// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/IMperiumX/ranker/internal/adapters/directory"
	"github.com/IMperiumX/ranker/internal/adapters/repository"
	"github.com/IMperiumX/ranker/internal/adapters/scorelog"
	service "github.com/IMperiumX/ranker/internal/app"
	"github.com/IMperiumX/ranker/internal/domain/policy"
	"github.com/IMperiumX/ranker/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SubmitScore(ctx context.Context, userID, gameID string, score float64, metadata map[string]any) (types.SubmitResult, error)
	GetLeaderboard(ctx context.Context, gameID string, start, stop int64) ([]types.Row, error)
	GetGlobalLeaderboard(ctx context.Context, start, stop int64) ([]types.GlobalRow, error)
	GetUserRank(ctx context.Context, gameID, userID string) (types.UserRank, error)
	GetUserGlobalRank(ctx context.Context, userID string) (types.GlobalUserRank, error)
	RebuildLeaderboard(ctx context.Context, gameID string) (int, error)
	ClearLeaderboard(ctx context.Context, gameID string) error
	ClearGlobalLeaderboard(ctx context.Context) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	scoresHandler      *ScoresHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	rebuildHandler     *RebuildHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxPageSize int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		scoresHandler:      NewScoresHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxPageSize),
		rankHandler:        NewRankHandler(deps),
		rebuildHandler:     NewRebuildHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/scores", MetricsMiddleware(s.scoresHandler.HandlePostScore, "scores"))
	mux.HandleFunc("/leaderboard/", MetricsMiddleware(s.leaderboardHandler.HandleLeaderboard, "leaderboard"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/rebuild/", MetricsMiddleware(s.rebuildHandler.HandleRebuild, "rebuild"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates upstream errors into status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, policy.ErrInvalidScore):
		writeError(w, http.StatusBadRequest, "invalid_score", err)
	case errors.Is(err, directory.ErrGameNotFound):
		writeError(w, http.StatusNotFound, "game_not_found", err)
	case errors.Is(err, directory.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user_not_found", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_ranked", err)
	case errors.Is(err, service.ErrGameInactive):
		writeError(w, http.StatusConflict, "game_inactive", err)
	case errors.Is(err, repository.ErrUnavailable), errors.Is(err, scorelog.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
