package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// CacheService is the subset of the Redis cache the repositories use for
// read-through caching. A nil CacheService disables caching.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

func isDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
