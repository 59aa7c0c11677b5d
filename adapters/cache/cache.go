// Package cache stores finished analyses so repeated column selections skip the clustering run.
package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"geoprospect/domain/core"
	"geoprospect/ports"
)

const keyPrefix = "geoprospect:analysis:"

// Key builds the cache key of an analysis: dataset, column and option hash
func Key(datasetID core.DatasetID, column string, params map[string]interface{}) string {
	return fmt.Sprintf("%s%s:%s:%s", keyPrefix, datasetID, core.NewHash([]byte(column)).Short(), core.ComputeParamsHash(params).Short())
}

// New returns a Redis cache when redisURL is set and reachable, otherwise an
// in-memory cache
func New(ctx context.Context, redisURL string, ttl time.Duration) ports.AnalysisCache {
	if redisURL != "" {
		redisCache, err := NewRedisCache(ctx, redisURL, ttl)
		if err == nil {
			log.Printf("[Cache] Using Redis analysis cache")
			return redisCache
		}
		log.Printf("[Cache] Warning: Redis unavailable, falling back to memory: %v", err)
	}
	log.Printf("[Cache] Using in-memory analysis cache")
	return NewMemoryCache(ttl, 256)
}
