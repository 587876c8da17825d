package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"drheal-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const searchCachePrefix = "drheal:search:"

// CachedSearcher keeps recent search results in Redis. Redis problems are
// logged and the wrapped Searcher answers instead.
type CachedSearcher struct {
	inner  Searcher
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger logger.ILogger
}

func NewCachedSearcher(inner Searcher, rdb redis.UniversalClient, ttl time.Duration, log logger.ILogger) *CachedSearcher {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &CachedSearcher{inner: inner, rdb: rdb, ttl: ttl, logger: log}
}

func searchKey(query string, n int, filterType string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%d\x00%s", query, n, filterType)))
	return searchCachePrefix + hex.EncodeToString(sum[:])
}

func (c *CachedSearcher) Search(ctx context.Context, query string, n int, filterType string) ([]SearchResult, error) {
	if c.rdb == nil || c.ttl <= 0 {
		return c.inner.Search(ctx, query, n, filterType)
	}

	key := searchKey(query, n, filterType)
	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var cached []SearchResult
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	} else if err != redis.Nil {
		c.logger.Warn("SEARCH_CACHE", "Redis lookup failed", map[string]interface{}{"error": err.Error()})
	}

	results, err := c.inner.Search(ctx, query, n, filterType)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(results); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("SEARCH_CACHE", "Redis store failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return results, nil
}

// Invalidate drops every cached search result.
func (c *CachedSearcher) Invalidate(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}

	iter := c.rdb.Scan(ctx, 0, searchCachePrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
