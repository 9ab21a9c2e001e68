// Package redis provides the cache layer. Services depend on the
// CacheService interfaces defined here, never on the go-redis client.
package redis

import (
	"context"
	"time"
)

// CacheService is the synchronous cache surface.
type CacheService interface {
	// Set stores a key with a TTL (0 means no expiry).
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Get returns the value, or "" with a nil error when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	// GetOrError returns the value, or CodeNotFound when the key is absent.
	GetOrError(ctx context.Context, key string) (string, error)

	// Delete removes a key if it exists.
	Delete(ctx context.Context, key string) error
	// DeleteByPattern removes every key matching a glob pattern.
	DeleteByPattern(ctx context.Context, pattern string) error

	// AddToSet adds members to a set.
	AddToSet(ctx context.Context, key string, members ...interface{}) error
	// GetSetMembers returns all members of a set.
	GetSetMembers(ctx context.Context, key string) ([]string, error)
	// RemoveFromSet removes members from a set.
	RemoveFromSet(ctx context.Context, key string, members ...interface{}) error
	// IsSetMember reports membership in a set.
	IsSetMember(ctx context.Context, key string, member interface{}) (bool, error)
}

// AsyncCacheService adds non-blocking task submission on top of
// CacheService, for cache updates that must not sit on the hot path.
type AsyncCacheService interface {
	CacheService
	// SubmitTask enqueues action onto the worker pool; when the queue
	// is full the action runs synchronously instead of being dropped.
	SubmitTask(action func())
}
