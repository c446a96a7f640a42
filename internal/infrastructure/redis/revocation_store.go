package redis

import (
	"context"
	"errors"
	"strings"
	"time"
)

// RevocationStore implements session.RevocationStore:
// - revoked:<key> -> "1" with TTL = remaining token lifetime
type RevocationStore struct {
	c      *Client
	prefix string
}

func NewRevocationStore(c *Client, namespace string) *RevocationStore {
	prefix := "revoked:"
	if ns := strings.TrimSpace(namespace); ns != "" {
		prefix = ns + ":revoked:"
	}
	return &RevocationStore{c: c, prefix: prefix}
}

func (s *RevocationStore) Revoke(ctx context.Context, key string, ttl time.Duration) error {
	if s.c == nil {
		return errors.New("redis revocation store not configured")
	}
	if ttl <= 0 {
		return nil
	}
	return s.c.rdb.Set(ctx, s.prefix+key, "1", ttl).Err()
}

func (s *RevocationStore) IsRevoked(ctx context.Context, key string) (bool, error) {
	if s.c == nil {
		return false, errors.New("redis revocation store not configured")
	}
	n, err := s.c.rdb.Exists(ctx, s.prefix+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
