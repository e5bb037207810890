package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// setAllChunkSize bounds pipelined ZADD batches during rebuild writes.
const setAllChunkSize = 500

// RedisStore implements Store on Redis sorted sets. ZADD/ZINCRBY give the
// single-keyspace atomicity the engine relies on; no local lock is taken.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore wraps an explicitly constructed Redis client.
func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(board string) string {
	return s.keyPrefix + board
}

// wrap marks transport failures as retryable. redis.Nil is handled at the
// call sites that can observe it.
func wrap(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, ErrUnavailable)
}

// Set implements Store.Set via ZADD.
func (s *RedisStore) Set(ctx context.Context, board, member string, key float64) error {
	if err := s.client.ZAdd(ctx, s.key(board), redis.Z{Score: key, Member: member}).Err(); err != nil {
		return wrap("zadd", err)
	}
	return nil
}

// Add implements Store.Add via ZINCRBY, which is atomic server-side.
func (s *RedisStore) Add(ctx context.Context, board, member string, delta float64) (float64, error) {
	next, err := s.client.ZIncrBy(ctx, s.key(board), delta, member).Result()
	if err != nil {
		return 0, wrap("zincrby", err)
	}
	return next, nil
}

// SetAll implements Store.SetAll with pipelined ZADD chunks.
func (s *RedisStore) SetAll(ctx context.Context, board string, members []Member) error {
	for len(members) > 0 {
		chunk := members
		if len(chunk) > setAllChunkSize {
			chunk = chunk[:setAllChunkSize]
		}
		members = members[len(chunk):]

		pipe := s.client.Pipeline()
		zs := make([]redis.Z, len(chunk))
		for i, m := range chunk {
			zs[i] = redis.Z{Score: m.Key, Member: m.ID}
		}
		pipe.ZAdd(ctx, s.key(board), zs...)
		if _, err := pipe.Exec(ctx); err != nil {
			return wrap("zadd pipeline", err)
		}
	}
	return nil
}

// Rank implements Store.Rank via ZRANK (ascending).
func (s *RedisStore) Rank(ctx context.Context, board, member string) (int64, error) {
	rank, err := s.client.ZRank(ctx, s.key(board), member).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, wrap("zrank", err)
	}
	return rank, nil
}

// Key implements Store.Key via ZSCORE.
func (s *RedisStore) Key(ctx context.Context, board, member string) (float64, error) {
	key, err := s.client.ZScore(ctx, s.key(board), member).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, wrap("zscore", err)
	}
	return key, nil
}

// Range implements Store.Range via ZRANGE WITHSCORES; Redis clamps bounds.
func (s *RedisStore) Range(ctx context.Context, board string, start, stop int64) ([]Member, error) {
	if stop < 0 || (start > stop) {
		return nil, nil
	}
	if start < 0 {
		start = 0
	}
	zs, err := s.client.ZRangeWithScores(ctx, s.key(board), start, stop).Result()
	if err != nil {
		return nil, wrap("zrange", err)
	}
	out := make([]Member, 0, len(zs))
	for _, z := range zs {
		id, ok := z.Member.(string)
		if !ok {
			continue
		}
		out = append(out, Member{ID: id, Key: z.Score})
	}
	return out, nil
}

// Card implements Store.Card via ZCARD.
func (s *RedisStore) Card(ctx context.Context, board string) (int64, error) {
	n, err := s.client.ZCard(ctx, s.key(board)).Result()
	if err != nil {
		return 0, wrap("zcard", err)
	}
	return n, nil
}

// Remove implements Store.Remove via ZREM.
func (s *RedisStore) Remove(ctx context.Context, board, member string) error {
	if err := s.client.ZRem(ctx, s.key(board), member).Err(); err != nil {
		return wrap("zrem", err)
	}
	return nil
}

// Clear implements Store.Clear via DEL.
func (s *RedisStore) Clear(ctx context.Context, board string) error {
	if err := s.client.Del(ctx, s.key(board)).Err(); err != nil {
		return wrap("del", err)
	}
	return nil
}
