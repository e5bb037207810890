// Package model contains domain records passed between layers.
package model

import (
	"time"

	"github.com/IMperiumX/ranker/internal/domain/policy"
)

// Game describes a scoreable activity. The core reads only the id,
// policy and active flag; ownership lives with the game directory.
type Game struct {
	ID     string
	Name   string
	Policy policy.Policy
	Active bool
}

// ScoreRecord is one append-only score log entry. Records are never
// mutated or deleted once written.
type ScoreRecord struct {
	ID          string
	UserID      string
	GameID      string
	Score       float64
	Metadata    map[string]any
	SubmittedAt time.Time
}

// IndexUpdate is a deferred ranking index write, queued when the index
// was unreachable after a durable log append.
type IndexUpdate struct {
	RecordID string
	UserID   string
	GameID   string
	Score    float64
	Policy   policy.Policy
	Attempt  int
}
