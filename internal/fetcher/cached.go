package fetcher

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/epv-cli/internal/store"
)

// CachedFetcher is a read-through cache in front of a Getter. Cache errors
// are logged and never fail the fetch.
type CachedFetcher struct {
	Getter Getter
	Cache  store.Cache
	TTL    time.Duration
}

// Get returns the cached body for url when present, otherwise fetches it
// and stores the result.
func (c *CachedFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	if c.Cache == nil {
		return c.Getter.Get(ctx, url)
	}

	data, err := c.Cache.GetCached(ctx, url)
	if err != nil {
		zap.L().Warn("fetcher: cache read failed", zap.String("url", url), zap.Error(err))
	} else if data != nil {
		zap.L().Debug("fetcher: cache hit", zap.String("url", url))
		return data, nil
	}

	data, err = c.Getter.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	if err := c.Cache.SetCached(ctx, url, data, c.TTL); err != nil {
		zap.L().Warn("fetcher: cache write failed", zap.String("url", url), zap.Error(err))
	}
	return data, nil
}
