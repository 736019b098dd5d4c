package cms

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Yiling-J/theine-go"
	"golang.org/x/sync/singleflight"

	"github.com/eringen/pressfront/content"
)

// DefaultCacheSize bounds the number of cached results.
const DefaultCacheSize = 2000

// CachedFetcher serves repeated queries from memory for as long as their
// revalidate hint allows. Failed fetches are never cached.
type CachedFetcher struct {
	next    content.Fetcher
	cache   *theine.Cache[string, json.RawMessage]
	group   singleflight.Group
	metrics *Metrics
}

// NewCachedFetcher wraps next with a cache holding up to size results.
// metrics may be nil.
func NewCachedFetcher(next content.Fetcher, size int64, metrics *Metrics) (*CachedFetcher, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := theine.NewBuilder[string, json.RawMessage](size).Build()
	if err != nil {
		return nil, fmt.Errorf("could not build cms cache: %w", err)
	}
	return &CachedFetcher{next: next, cache: cache, metrics: metrics}, nil
}

// Fetch implements content.Fetcher. A zero revalidate hint bypasses the
// cache entirely.
func (c *CachedFetcher) Fetch(ctx context.Context, q content.Query, params content.Params, opts content.FetchOptions) (json.RawMessage, error) {
	if opts.Revalidate <= 0 {
		return c.next.Fetch(ctx, q, params, opts)
	}
	key, err := cacheKey(q, params)
	if err != nil {
		return c.next.Fetch(ctx, q, params, opts)
	}
	if raw, ok := c.cache.Get(key); ok {
		c.metrics.cacheHit()
		return raw, nil
	}

	// The shared fetch outlives any single caller; each caller stops waiting
	// when its own context ends.
	ch := c.group.DoChan(key, func() (any, error) {
		raw, err := c.next.Fetch(context.WithoutCancel(ctx), q, params, opts)
		if err != nil {
			return nil, err
		}
		c.cache.SetWithTTL(key, raw, 1, opts.Revalidate)
		return raw, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(json.RawMessage), nil
	}
}

// Close stops the cache's background maintenance.
func (c *CachedFetcher) Close() {
	c.cache.Close()
}

// cacheKey is the query name plus its parameters with sorted keys.
func cacheKey(q content.Query, params content.Params) (string, error) {
	b, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	return q.Name + "|" + string(b), nil
}
