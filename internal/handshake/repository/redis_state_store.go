package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/allisson/squareconnect/internal/errors"
)

const redisKeyPrefix = "squareconnect:handshake:state:"

// RedisStateStore keeps pending handshake states in Redis so several
// processes can share them.
type RedisStateStore struct {
	client redis.UniversalClient
}

// NewRedisStateStore creates a Redis-backed state store.
func NewRedisStateStore(client redis.UniversalClient) *RedisStateStore {
	return &RedisStateStore{client: client}
}

// Put stores state for session with ttl as the key expiry.
func (s *RedisStateStore) Put(ctx context.Context, session, state string, ttl time.Duration) error {
	if err := s.client.Set(ctx, redisKeyPrefix+session, state, ttl).Err(); err != nil {
		return apperrors.Wrap(err, "failed to persist handshake state")
	}
	return nil
}

// Take reads and deletes the state for session in one GETDEL round trip.
func (s *RedisStateStore) Take(ctx context.Context, session string) (string, bool, error) {
	value, err := s.client.GetDel(ctx, redisKeyPrefix+session).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, apperrors.Wrap(err, "failed to load handshake state")
	}
	return value, true, nil
}
