package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	fieldToken   = "token"
	fieldProfile = "profile"
)

// RedisStore persists session records in Redis so sessions survive portal
// restarts and are shared across portal instances.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store with the given session TTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("session: redis client required")
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Save writes token and profile in one hash and refreshes the TTL.
func (s *RedisStore) Save(ctx context.Context, sessionID string, rec Record) error {
	key := sessionKey(sessionID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, fieldToken, rec.Token, fieldProfile, string(rec.Profile))
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session: failed to persist record: %w", err)
	}
	return nil
}

// Load reads the session hash. A missing or partial hash means logged out.
func (s *RedisStore) Load(ctx context.Context, sessionID string) (Record, error) {
	fields, err := s.client.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return Record{}, fmt.Errorf("session: failed to load record: %w", err)
	}
	token, okToken := fields[fieldToken]
	profile, okProfile := fields[fieldProfile]
	if !okToken || !okProfile || token == "" {
		return Record{}, ErrNotFound
	}
	return Record{Token: token, Profile: []byte(profile)}, nil
}

// Delete removes the session hash.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("session: failed to delete record: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}
