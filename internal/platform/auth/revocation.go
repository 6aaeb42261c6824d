package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore tracks revoked token JTIs in redis. Entries expire together
// with the token they belong to, so the set stays bounded by the token TTL.
// A nil store disables revocation checks (logout becomes a client-side
// concern), which keeps redis optional in development.
type RevocationStore struct {
	rdb *redis.Client
}

// NewRevocationStore connects to redis at redisURL. An empty URL returns a
// nil store.
func NewRevocationStore(ctx context.Context, redisURL string) (*RevocationStore, error) {
	if redisURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RevocationStore{rdb: rdb}, nil
}

func (s *RevocationStore) key(jti string) string {
	return "revoked:" + jti
}

// Revoke marks a token's JTI as revoked until expiresAt, after which the
// token is rejected by signature verification anyway.
func (s *RevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if s == nil {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, s.key(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token %s: %w", jti, err)
	}
	return nil
}

// IsRevoked reports whether a token JTI has been revoked. Redis errors fail
// open so a cache outage does not lock every user out.
func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) bool {
	if s == nil {
		return false
	}
	n, err := s.rdb.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		return false
	}
	return n > 0
}

// Close releases the underlying redis connection.
func (s *RevocationStore) Close() error {
	if s == nil {
		return nil
	}
	return s.rdb.Close()
}
