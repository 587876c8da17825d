package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"drheal-be/internal/pkg/logger"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const embeddingCachePrefix = "drheal:emb:"

// CachedProvider memoizes another Provider. Lookups go to an in-process
// cache first and then to Redis when a client is configured. Cache failures
// are logged and treated as misses.
type CachedProvider struct {
	inner  Provider
	local  *cache.Cache
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger logger.ILogger
}

func NewCachedProvider(inner Provider, rdb redis.UniversalClient, ttl time.Duration, log logger.ILogger) *CachedProvider {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &CachedProvider{
		inner:  inner,
		local:  cache.New(ttl, 10*time.Minute),
		rdb:    rdb,
		ttl:    ttl,
		logger: log,
	}
}

func (p *CachedProvider) Dimension() int {
	return p.inner.Dimension()
}

func (p *CachedProvider) Encode(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := p.lookup(ctx, text); ok {
		return vec, nil
	}
	vec, err := p.inner.Encode(ctx, text)
	if err != nil {
		return nil, err
	}
	p.store(ctx, text, vec)
	return vec, nil
}

func (p *CachedProvider) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var misses []string
	var positions []int
	for i, text := range texts {
		if vec, ok := p.lookup(ctx, text); ok {
			out[i] = vec
			continue
		}
		misses = append(misses, text)
		positions = append(positions, i)
	}
	if len(misses) == 0 {
		return out, nil
	}

	vectors, err := p.inner.EncodeBatch(ctx, misses)
	if err != nil {
		return nil, err
	}
	for j, pos := range positions {
		out[pos] = vectors[j]
		p.store(ctx, misses[j], vectors[j])
	}
	return out, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return embeddingCachePrefix + hex.EncodeToString(sum[:])
}

func (p *CachedProvider) lookup(ctx context.Context, text string) ([]float32, bool) {
	key := cacheKey(text)
	if x, found := p.local.Get(key); found {
		return x.([]float32), true
	}
	if p.rdb == nil {
		return nil, false
	}

	raw, err := p.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			p.logger.Warn("EMBEDDING", "Redis lookup failed", map[string]interface{}{"error": err.Error()})
		}
		return nil, false
	}
	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil {
		p.logger.Warn("EMBEDDING", "Discarding corrupt cache entry", map[string]interface{}{"key": key})
		return nil, false
	}
	p.local.Set(key, vec, cache.DefaultExpiration)
	return vec, true
}

func (p *CachedProvider) store(ctx context.Context, text string, vec []float32) {
	key := cacheKey(text)
	p.local.Set(key, vec, cache.DefaultExpiration)
	if p.rdb == nil {
		return
	}
	raw, err := json.Marshal(vec)
	if err != nil {
		return
	}
	if err := p.rdb.Set(ctx, key, raw, p.ttl).Err(); err != nil {
		p.logger.Warn("EMBEDDING", "Redis store failed", map[string]interface{}{"error": err.Error()})
	}
}
