package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"wardwatch/internal/metrics"
)

// SnapshotCache caches serialized per-hour prediction responses in
// Redis. Cache failures are logged and treated as misses; the cache is
// never allowed to break serving.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a snapshot cache with the given entry TTL.
func New(client *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{client: client, ttl: ttl}
}

func predictionKey(hour int) string {
	return fmt.Sprintf("predictions:hour:%d", hour)
}

// GetPredictions returns the cached response body for an hour, if any.
func (c *SnapshotCache) GetPredictions(ctx context.Context, hour int) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, predictionKey(hour)).Bytes()
	if err == redis.Nil {
		metrics.RecordCacheLookup(false)
		return nil, false
	}
	if err != nil {
		log.Printf("Cache read failed for hour %d: %v", hour, err)
		metrics.RecordCacheLookup(false)
		return nil, false
	}

	metrics.RecordCacheLookup(true)
	return data, true
}

// SetPredictions stores the response body for an hour.
func (c *SnapshotCache) SetPredictions(ctx context.Context, hour int, payload []byte) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, predictionKey(hour), payload, c.ttl).Err(); err != nil {
		log.Printf("Cache write failed for hour %d: %v", hour, err)
	}
}
