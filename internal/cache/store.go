package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"agora/internal/middleware"
	"agora/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Store wraps an optional Redis client. A Store built from a nil client is a
// no-op: every lookup misses and every write succeeds.
type Store struct {
	client *redis.Client
}

// NewStore returns a Store backed by client (which may be nil).
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Client exposes the underlying Redis client (nil when disabled).
func (s *Store) Client() *redis.Client {
	if s == nil {
		return nil
	}
	return s.client
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func (s *Store) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if s.Client() == nil {
		return false, nil
	}
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func (s *Store) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if s.Client() == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first; on a miss it calls fetch (which must populate
// dest) and stores the result with ttl. Cache failures never fail the call.
func (s *Store) Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := s.GetJSON(ctx, key, dest)
	switch {
	case err != nil:
		observability.CacheLookups.WithLabelValues("error").Inc()
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	case found:
		observability.CacheLookups.WithLabelValues("hit").Inc()
		return nil
	default:
		observability.CacheLookups.WithLabelValues("miss").Inc()
	}

	if err := fetch(); err != nil {
		return err
	}

	if err := s.SetJSON(ctx, key, dest, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

// Invalidate removes keys, ignoring failures.
func (s *Store) Invalidate(ctx context.Context, keys ...string) {
	if s.Client() == nil || len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed", slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}

// InvalidateUser drops the cached principal for userID.
func (s *Store) InvalidateUser(ctx context.Context, userID uint) {
	s.Invalidate(ctx, UserKey(userID))
}
