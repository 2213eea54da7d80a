package client

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

type fetchedAfterKey struct{}

// FetchedAfter marks ctx so a caching client serves only submission lists it
// fetched after t. Callers that settle something at a deadline use it to avoid
// deciding on a list taken before the deadline.
func FetchedAfter(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, fetchedAfterKey{}, t)
}

func fetchedAfter(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(fetchedAfterKey{}).(time.Time)
	return t, ok
}

type cachedSubmissions struct {
	subs      []Submission
	fetchedAt time.Time
}

// cachedClient remembers recent submission lists for a short time, so one
// trigger that syncs and then resolves duels asks the platform once per
// handle. UserInfo is never cached.
type cachedClient struct {
	inner Client
	cache *lru.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewCachedClient wraps inner. A ttl of zero or less returns inner unchanged.
func NewCachedClient(inner Client, size int, ttl time.Duration) (Client, error) {
	if ttl <= 0 {
		return inner, nil
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("submission cache: %w", err)
	}
	return &cachedClient{inner: inner, cache: cache, ttl: ttl, now: time.Now}, nil
}

func (c *cachedClient) RecentSubmissions(ctx context.Context, handle string, count int) ([]Submission, error) {
	if count <= 0 {
		count = DefaultWindow
	}
	key := fmt.Sprintf("%s:%d", handle, count)

	if v, ok := c.cache.Get(key); ok {
		entry := v.(cachedSubmissions)
		fresh := c.now().Sub(entry.fetchedAt) < c.ttl
		if after, ok := fetchedAfter(ctx); ok && !entry.fetchedAt.After(after) {
			fresh = false
		}
		if fresh {
			return entry.subs, nil
		}
		c.cache.Remove(key)
	}

	subs, err := c.inner.RecentSubmissions(ctx, handle, count)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, cachedSubmissions{subs: subs, fetchedAt: c.now()})
	return subs, nil
}

func (c *cachedClient) UserInfo(ctx context.Context, handle string) (*UserInfo, error) {
	return c.inner.UserInfo(ctx, handle)
}
