package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"testing"
)

// floatEqual compares two float64 values with a small tolerance for floating-point precision
func floatEqual(a, b float64) bool {
	const tolerance = 1e-10
	return math.Abs(a-b) < tolerance
}

func TestTreapStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()
	board := "leaderboard:game1"

	// Empty board
	if n, err := store.Card(ctx, board); err != nil || n != 0 {
		t.Errorf("expected empty board, got n=%d err=%v", n, err)
	}

	if err := store.Set(ctx, board, "alice", 85.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n, _ := store.Card(ctx, board); n != 1 {
		t.Errorf("expected card 1, got %d", n)
	}

	rank, err := store.Rank(ctx, board, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rank != 0 {
		t.Errorf("expected rank 0, got %d", rank)
	}

	key, err := store.Key(ctx, board, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !floatEqual(key, 85.5) {
		t.Errorf("expected key 85.5, got %f", key)
	}
}

func TestTreapStore_AscendingOrder(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()
	board := "leaderboard:game1"

	// Smaller key ranks first.
	_ = store.Set(ctx, board, "slow", 72.40)
	_ = store.Set(ctx, board, "fast", 58.31)
	_ = store.Set(ctx, board, "mid", 61.07)

	members, err := store.Range(ctx, board, 0, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"fast", "mid", "slow"}
	if len(members) != len(want) {
		t.Fatalf("expected %d members, got %d", len(want), len(members))
	}
	for i, id := range want {
		if members[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, members[i].ID)
		}
	}
}

func TestTreapStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()
	board := "leaderboard:game1"

	_ = store.Set(ctx, board, "alice", 100)
	_ = store.Set(ctx, board, "bob", 200)

	// Overwrite moves alice, never duplicates her.
	_ = store.Set(ctx, board, "alice", 300)

	if n, _ := store.Card(ctx, board); n != 2 {
		t.Errorf("expected card 2 after overwrite, got %d", n)
	}
	rank, err := store.Rank(ctx, board, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rank != 1 {
		t.Errorf("expected alice at rank 1 after overwrite, got %d", rank)
	}
}

func TestTreapStore_Add(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()
	board := "leaderboard:global"

	newKey, err := store.Add(ctx, board, "alice", 10.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !floatEqual(newKey, 10.5) {
		t.Errorf("expected 10.5, got %f", newKey)
	}

	newKey, err = store.Add(ctx, board, "alice", 4.25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !floatEqual(newKey, 14.75) {
		t.Errorf("expected 14.75, got %f", newKey)
	}

	if n, _ := store.Card(ctx, board); n != 1 {
		t.Errorf("expected card 1, got %d", n)
	}
}

func TestTreapStore_TieBreak(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()
	board := "leaderboard:game1"

	_ = store.Set(ctx, board, "zed", 50)
	_ = store.Set(ctx, board, "amy", 50)

	// Equal keys order by member id ascending.
	members, err := store.Range(ctx, board, 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if members[0].ID != "amy" || members[1].ID != "zed" {
		t.Errorf("expected [amy zed], got [%s %s]", members[0].ID, members[1].ID)
	}
}

func TestTreapStore_RangeClamping(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()
	board := "leaderboard:game1"

	for i := 0; i < 5; i++ {
		_ = store.Set(ctx, board, fmt.Sprintf("user%d", i), float64(i))
	}

	// Window past the end is clamped, not an error.
	members, err := store.Range(ctx, board, 3, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("expected 2 members, got %d", len(members))
	}

	// Fully out of range is empty, not an error.
	members, err = store.Range(ctx, board, 10, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(members) != 0 {
		t.Errorf("expected empty window, got %d members", len(members))
	}
}

func TestTreapStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()
	board := "leaderboard:game1"

	if _, err := store.Rank(ctx, board, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Key(ctx, board, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// Remove of an absent member is a no-op.
	if err := store.Remove(ctx, board, "ghost"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTreapStore_BoardIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	_ = store.Set(ctx, "leaderboard:game1", "alice", 100)
	_ = store.Set(ctx, "leaderboard:game2", "alice", 200)

	k1, _ := store.Key(ctx, "leaderboard:game1", "alice")
	k2, _ := store.Key(ctx, "leaderboard:game2", "alice")
	if !floatEqual(k1, 100) || !floatEqual(k2, 200) {
		t.Errorf("boards leaked: k1=%f k2=%f", k1, k2)
	}

	if err := store.Clear(ctx, "leaderboard:game1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, _ := store.Card(ctx, "leaderboard:game1"); n != 0 {
		t.Errorf("expected cleared board, got %d", n)
	}
	if n, _ := store.Card(ctx, "leaderboard:game2"); n != 1 {
		t.Errorf("expected untouched board, got %d", n)
	}
}

func TestTreapStore_SetAll(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()
	board := "leaderboard:game1"

	members := make([]Member, 0, 1000)
	for i := 0; i < 1000; i++ {
		members = append(members, Member{ID: fmt.Sprintf("user%04d", i), Key: float64(i)})
	}
	if err := store.SetAll(ctx, board, members); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, _ := store.Card(ctx, board); n != 1000 {
		t.Errorf("expected 1000 members, got %d", n)
	}
	rank, err := store.Rank(ctx, board, "user0500")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rank != 500 {
		t.Errorf("expected rank 500, got %d", rank)
	}
}

func TestTreapStore_RankAgainstSort(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()
	board := "leaderboard:game1"
	rng := rand.New(rand.NewSource(42))

	type pair struct {
		id  string
		key float64
	}
	pairs := make([]pair, 0, 500)
	for i := 0; i < 500; i++ {
		p := pair{id: fmt.Sprintf("user%04d", i), key: math.Floor(rng.Float64()*1e6) / 100}
		pairs = append(pairs, p)
		_ = store.Set(ctx, board, p.id, p.key)
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].id < pairs[j].id
	})

	for want, p := range pairs {
		got, err := store.Rank(ctx, board, p.id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != int64(want) {
			t.Fatalf("rank of %s: expected %d, got %d", p.id, want, got)
		}
	}

	members, err := store.Range(ctx, board, 100, 149)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(members) != 50 {
		t.Fatalf("expected 50 members, got %d", len(members))
	}
	for i, m := range members {
		if m.ID != pairs[100+i].id {
			t.Errorf("window position %d: expected %s, got %s", i, pairs[100+i].id, m.ID)
		}
	}
}

func TestTreapStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()
	board := "leaderboard:game1"

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := fmt.Sprintf("user-%d-%d", g, i)
				if err := store.Set(ctx, board, id, float64(i)); err != nil {
					t.Errorf("set failed: %v", err)
				}
				if _, err := store.Rank(ctx, board, id); err != nil {
					t.Errorf("rank failed: %v", err)
				}
				if _, err := store.Range(ctx, board, 0, 9); err != nil {
					t.Errorf("range failed: %v", err)
				}
			}
		}(g)
	}
	wg.Wait()

	if n, _ := store.Card(ctx, board); n != 800 {
		t.Errorf("expected 800 members, got %d", n)
	}
}
