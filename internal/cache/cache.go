// Package cache is the optional read-through cache for health log queries.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrMiss reports a missing or expired key
var ErrMiss = errors.New("cache miss")

// Cache stores encoded query results for a limited time
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Flush(ctx context.Context) error
}

// Key serializes params into a cache key under namespace. Params must be
// JSON-encodable; struct field order keeps the key deterministic.
func Key(namespace string, params interface{}) (string, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	return namespace + ":" + string(data), nil
}
