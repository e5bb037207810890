// Package types contains the plain read shapes exposed to the API boundary.
package types

// Row is one per-game leaderboard row.
type Row struct {
	Rank        int64   `json:"rank"`
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"name"`
	Score       float64 `json:"score"`
}

// GlobalRow is one global leaderboard row. The key is the cumulative
// raw score across every game the user ever submitted to.
type GlobalRow struct {
	Rank        int64   `json:"rank"`
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"name"`
	TotalScore  float64 `json:"total_score"`
}

// SubmitResult acknowledges a stored submission. Rank and TotalPlayers
// are best-effort and omitted when the index lookup failed.
type SubmitResult struct {
	Score        float64 `json:"score"`
	PersonalBest bool    `json:"is_personal_best"`
	Rank         int64   `json:"rank,omitempty"`
	TotalPlayers int64   `json:"total_players,omitempty"`
}

// UserRank is a user's position in one game plus the surrounding window.
type UserRank struct {
	Rank         int64   `json:"rank"`
	Score        float64 `json:"score"`
	TotalPlayers int64   `json:"total_players"`
	Surrounding  []Row   `json:"surrounding_players"`
}

// GlobalUserRank is a user's position in the global ordering.
type GlobalUserRank struct {
	Rank         int64   `json:"rank"`
	TotalScore   float64 `json:"total_score"`
	TotalPlayers int64   `json:"total_players"`
}
