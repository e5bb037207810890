// Package repository defines the ordered-index store interface and errors.
package repository

import "context"

// Member is one entry of an ordered keyspace: a user id and its sort key.
// Smaller keys rank earlier; the normalizer guarantees smaller == better.
type Member struct {
	ID  string
	Key float64
}

// Store provides ordered-keyspace access with O(log N) rank, insert and
// range operations. A keyspace ("board") holds at most one key per member.
type Store interface {
	// Set unconditionally upserts the member's sort key.
	Set(ctx context.Context, board, member string, key float64) error

	// Add atomically adds delta to the member's key, treating an absent
	// member as zero, and returns the resulting key. Implementations must
	// not use read-modify-write.
	Add(ctx context.Context, board, member string, delta float64) (float64, error)

	// SetAll upserts a batch of members.
	SetAll(ctx context.Context, board string, members []Member) error

	// Rank returns the member's 0-indexed position in ascending key order.
	// Returns ErrNotFound if the member is absent.
	Rank(ctx context.Context, board, member string) (int64, error)

	// Key returns the member's sort key, or ErrNotFound.
	Key(ctx context.Context, board, member string) (float64, error)

	// Range returns members with ranks in [start, stop] inclusive, in
	// ascending key order. Bounds are clamped; an empty range yields an
	// empty slice, never an error.
	Range(ctx context.Context, board string, start, stop int64) ([]Member, error)

	// Card returns the number of members in the keyspace.
	Card(ctx context.Context, board string) (int64, error)

	// Remove deletes the member. Removing an absent member is a no-op.
	Remove(ctx context.Context, board, member string) error

	// Clear deletes the whole keyspace.
	Clear(ctx context.Context, board string) error
}
