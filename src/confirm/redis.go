package confirm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const slotPrefix = "homeagent:confirm:"

// RedisStore keeps confirmation slots in redis with a TTL, so pending
// prompts survive agent restarts and expire on their own.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore returns a store over rdb expiring slots after ttl
// (DefaultTTL when ttl is zero).
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Put(ctx context.Context, requester string, p Pending) error {
	p.CreatedAt = time.Now().UTC()
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("confirm: encode slot: %w", err)
	}

	// SETNX keeps the at-most-one invariant atomic across front ends.
	ok, err := s.rdb.SetNX(ctx, slotPrefix+requester, payload, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("confirm: store slot: %w", err)
	}
	if !ok {
		return ErrAlreadyPending
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, requester string) (Pending, error) {
	raw, err := s.rdb.Get(ctx, slotPrefix+requester).Bytes()
	if err == redis.Nil {
		return Pending{}, ErrNoPending
	}
	if err != nil {
		return Pending{}, fmt.Errorf("confirm: read slot: %w", err)
	}

	var p Pending
	if err := json.Unmarshal(raw, &p); err != nil {
		return Pending{}, fmt.Errorf("confirm: decode slot: %w", err)
	}
	return p, nil
}

func (s *RedisStore) Clear(ctx context.Context, requester string) error {
	n, err := s.rdb.Del(ctx, slotPrefix+requester).Result()
	if err != nil {
		return fmt.Errorf("confirm: clear slot: %w", err)
	}
	if n == 0 {
		return ErrNoPending
	}
	return nil
}
