package repository

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/IMperiumX/ranker/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: sort key ASC, then member id ASC (deterministic). In-order
// traversal of each keyspace produces the leaderboard from best to worst,
// and subtree size fields give O(log N) rank and range selection.

// keyScale fixes sort keys to two decimal places, matching the precision
// the normalizer guarantees. Integer keys make tie comparison exact.
const keyScale = 100

type keyFP int64

func toFixedPoint(x float64) keyFP {
	if math.IsNaN(x) {
		return 0
	}
	scaled := x * keyScale
	if scaled > float64(math.MaxInt64) {
		return keyFP(math.MaxInt64)
	}
	if scaled < float64(math.MinInt64) {
		return keyFP(math.MinInt64)
	}
	return keyFP(math.Round(scaled))
}

func toFloat(x keyFP) float64 {
	return float64(x) / keyScale
}

// treap node
type node struct {
	id    string
	key   keyFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aKey, aID) ranks before (bKey, bID).
func less(aKey keyFP, aID string, bKey keyFP, bID string) bool {
	if aKey != bKey {
		return aKey < bKey // smaller key ranks earlier
	}
	return aID < bID // tie-breaker by member id asc
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, key keyFP, prio uint64) *node {
	if n == nil {
		return &node{id: id, key: key, prio: prio, size: 1}
	}
	if less(key, id, n.key, n.id) {
		n.left = insert(n.left, id, key, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, key, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, key keyFP) *node {
	if n == nil {
		return nil
	}
	if key == n.key && id == n.id {
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, key)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, key)
		}
	} else if less(key, id, n.key, n.id) {
		n.left = deleteNode(n.left, id, key)
	} else {
		n.right = deleteNode(n.right, id, key)
	}
	fix(n)
	return n
}

// rankOf returns the 0-indexed position of (key, id) using subtree sizes,
// or -1 if the node is absent.
func rankOf(n *node, id string, key keyFP) int64 {
	var r int64
	for n != nil {
		switch {
		case key == n.key && id == n.id:
			return r + int64(nsize(n.left))
		case less(key, id, n.key, n.id):
			n = n.left
		default:
			r += int64(nsize(n.left)) + 1
			n = n.right
		}
	}
	return -1
}

// collectRange appends members with subtree-relative indices in
// [start, stop] in rank order.
func collectRange(n *node, start, stop int64, out *[]Member) {
	if n == nil || start > stop {
		return
	}
	ls := int64(nsize(n.left))
	if start < ls {
		hi := stop
		if hi > ls-1 {
			hi = ls - 1
		}
		collectRange(n.left, start, hi, out)
	}
	if start <= ls && ls <= stop {
		*out = append(*out, Member{ID: n.id, Key: toFloat(n.key)})
	}
	if stop > ls {
		lo := start - ls - 1
		if lo < 0 {
			lo = 0
		}
		collectRange(n.right, lo, stop-ls-1, out)
	}
}

// board is one ordered keyspace.
type board struct {
	root *node
	byID map[string]keyFP
}

// TreapStore implements Store with one treap per keyspace. All state is
// guarded by a single RWMutex, which also makes Add atomic.
type TreapStore struct {
	mu     sync.RWMutex
	boards map[string]*board
	rng    *rand.Rand
}

// NewTreapStore constructs an empty in-memory store.
func NewTreapStore() *TreapStore {
	return &TreapStore{
		boards: make(map[string]*board),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // treap priorities, not crypto
	}
}

func (s *TreapStore) getOrCreate(name string) *board {
	b, ok := s.boards[name]
	if !ok {
		b = &board{byID: make(map[string]keyFP)}
		s.boards[name] = b
	}
	return b
}

// set assumes the write lock is held.
func (s *TreapStore) set(b *board, member string, key keyFP) {
	if old, ok := b.byID[member]; ok {
		if old == key {
			return
		}
		b.root = deleteNode(b.root, member, old)
	}
	b.byID[member] = key
	b.root = insert(b.root, member, key, s.rng.Uint64())
}

// Set implements Store.Set in O(log N) expected time.
func (s *TreapStore) Set(ctx context.Context, boardName, member string, key float64) error {
	start := time.Now()
	defer func() {
		metrics.RecordIndexUpdateLatency(float64(time.Since(start).Microseconds()) / 1e3)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(s.getOrCreate(boardName), member, toFixedPoint(key))
	return nil
}

// Add implements Store.Add. The store lock makes it atomic with respect
// to concurrent adds for the same member.
func (s *TreapStore) Add(ctx context.Context, boardName, member string, delta float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.getOrCreate(boardName)
	next := b.byID[member] + toFixedPoint(delta)
	s.set(b, member, next)
	return toFloat(next), nil
}

// SetAll implements Store.SetAll.
func (s *TreapStore) SetAll(ctx context.Context, boardName string, members []Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.getOrCreate(boardName)
	for _, m := range members {
		s.set(b, m.ID, toFixedPoint(m.Key))
	}
	return nil
}

// Rank implements Store.Rank in O(log N).
func (s *TreapStore) Rank(ctx context.Context, boardName, member string) (int64, error) {
	start := time.Now()
	defer func() {
		metrics.RecordIndexQueryLatency(float64(time.Since(start).Microseconds()) / 1e3)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.boards[boardName]
	if !ok {
		return 0, ErrNotFound
	}
	key, ok := b.byID[member]
	if !ok {
		return 0, ErrNotFound
	}
	return rankOf(b.root, member, key), nil
}

// Key implements Store.Key.
func (s *TreapStore) Key(ctx context.Context, boardName, member string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.boards[boardName]
	if !ok {
		return 0, ErrNotFound
	}
	key, ok := b.byID[member]
	if !ok {
		return 0, ErrNotFound
	}
	return toFloat(key), nil
}

// Range implements Store.Range in O(log N + window size).
func (s *TreapStore) Range(ctx context.Context, boardName string, start, stop int64) ([]Member, error) {
	qs := time.Now()
	defer func() {
		metrics.RecordIndexQueryLatency(float64(time.Since(qs).Microseconds()) / 1e3)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.boards[boardName]
	if !ok {
		return nil, nil
	}
	size := int64(len(b.byID))
	if start < 0 {
		start = 0
	}
	if stop > size-1 {
		stop = size - 1
	}
	if size == 0 || start > stop {
		return nil, nil
	}
	out := make([]Member, 0, stop-start+1)
	collectRange(b.root, start, stop, &out)
	return out, nil
}

// Card implements Store.Card.
func (s *TreapStore) Card(ctx context.Context, boardName string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.boards[boardName]
	if !ok {
		return 0, nil
	}
	return int64(len(b.byID)), nil
}

// Remove implements Store.Remove.
func (s *TreapStore) Remove(ctx context.Context, boardName, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boards[boardName]
	if !ok {
		return nil
	}
	key, ok := b.byID[member]
	if !ok {
		return nil
	}
	b.root = deleteNode(b.root, member, key)
	delete(b.byID, member)
	return nil
}

// Clear implements Store.Clear.
func (s *TreapStore) Clear(ctx context.Context, boardName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.boards, boardName)
	return nil
}
