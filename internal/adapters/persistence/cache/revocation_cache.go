package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"cleanorder-api/internal/pkg/password"
)

const (
	revocationPrefix = "cleanorder:revoked:"
	valueRevoked     = "1"
	valueActive      = "0"
)

// RevocationCache remembers revocation lookups keyed by a hash of the token id
type RevocationCache struct {
	client *redis.Client
}

// NewRevocationCache creates a revocation cache on top of a Redis client
func NewRevocationCache(client *redis.Client) *RevocationCache {
	return &RevocationCache{client: client}
}

func revocationKey(tokenID string) string {
	return revocationPrefix + password.HashToken(tokenID)
}

// Get returns the cached state. found is false on a cache miss.
func (c *RevocationCache) Get(ctx context.Context, tokenID string) (revoked bool, found bool, err error) {
	val, err := c.client.Get(ctx, revocationKey(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return val == valueRevoked, true, nil
}

// Set stores the state for ttl. Non-positive ttls are ignored.
func (c *RevocationCache) Set(ctx context.Context, tokenID string, revoked bool, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	val := valueActive
	if revoked {
		val = valueRevoked
	}
	return c.client.Set(ctx, revocationKey(tokenID), val, ttl).Err()
}
