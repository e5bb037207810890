// Package policy defines scoring policies and the score normalization
// contract used by the ranking index.
//
// Every policy maps raw scores onto a single ascending total order: a
// smaller normalized key always means a better score. The index itself
// never branches on policy.
package policy

import (
	"errors"
	"fmt"
	"math"
)

// scale fixes scores to two decimal places. Normalization snaps to
// hundredths so Denormalize(Normalize(x)) == x with no float drift.
const scale = 100

// Policy is a closed variant of the supported scoring rules.
type Policy uint8

const (
	// HighestWins ranks bigger raw scores first.
	HighestWins Policy = iota + 1
	// LowestWins ranks smaller raw scores first.
	LowestWins
	// TimeWins ranks shorter times first.
	TimeWins
)

// Sentinel kinds for policy errors.
var (
	ErrUnknownPolicy = errors.New("unknown scoring policy")
	ErrInvalidScore  = errors.New("invalid score")
)

// Parse maps the wire names used by game configuration to a Policy.
func Parse(s string) (Policy, error) {
	switch s {
	case "highest":
		return HighestWins, nil
	case "lowest":
		return LowestWins, nil
	case "time":
		return TimeWins, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// String returns the wire name of the policy.
func (p Policy) String() string {
	switch p {
	case HighestWins:
		return "highest"
	case LowestWins:
		return "lowest"
	case TimeWins:
		return "time"
	default:
		return "unknown"
	}
}

// Valid reports whether p is one of the defined policies.
func (p Policy) Valid() bool {
	return p == HighestWins || p == LowestWins || p == TimeWins
}

// Round snaps a raw score to the supported two-decimal precision.
func Round(raw float64) float64 {
	return math.Round(raw*scale) / scale
}

// Validate rejects scores the normalizer is undefined for. Finite,
// non-negative input always normalizes.
func Validate(raw float64) error {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return fmt.Errorf("%w: not a finite number", ErrInvalidScore)
	}
	if raw < 0 {
		return fmt.Errorf("%w: must be non-negative", ErrInvalidScore)
	}
	return nil
}

// Normalize maps a raw score to its ascending sort key: smaller key,
// better score. HighestWins negates so the uniform ascending read of the
// backing index yields the highest raw scores first.
func (p Policy) Normalize(raw float64) float64 {
	r := Round(raw)
	if p == HighestWins {
		return -r
	}
	return r
}

// Denormalize is the exact inverse of Normalize.
func (p Policy) Denormalize(key float64) float64 {
	if p == HighestWins {
		return Round(-key)
	}
	return Round(key)
}

// Better reports whether a strictly beats b under the policy.
func (p Policy) Better(a, b float64) bool {
	return p.Normalize(a) < p.Normalize(b)
}
