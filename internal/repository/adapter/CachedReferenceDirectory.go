package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	cacheport "medichat/internal/infrastructure/cache/port"
	repository "medichat/internal/repository/port"
)

// previewTTL bounds how stale a cached reference preview may be. Previews are
// display hints only, so a short window is acceptable.
const previewTTL = 5 * time.Minute

// CachedReferenceDirectory decorates a ReferenceDirectory with a key-value
// cache. Cache failures degrade to the inner lookup, never to an error.
type CachedReferenceDirectory struct {
	inner repository.ReferenceDirectory
	cache cacheport.Cache
}

func NewCachedReferenceDirectory(inner repository.ReferenceDirectory, cache cacheport.Cache) *CachedReferenceDirectory {
	return &CachedReferenceDirectory{inner: inner, cache: cache}
}

var _ repository.ReferenceDirectory = (*CachedReferenceDirectory)(nil)

func (d *CachedReferenceDirectory) FundRequest(ctx context.Context, id int64) (*repository.ReferencePreview, error) {
	return d.lookup(ctx, fmt.Sprintf("ref:fund_request:%d", id), func() (*repository.ReferencePreview, error) {
		return d.inner.FundRequest(ctx, id)
	})
}

func (d *CachedReferenceDirectory) Product(ctx context.Context, id int64) (*repository.ReferencePreview, error) {
	return d.lookup(ctx, fmt.Sprintf("ref:product:%d", id), func() (*repository.ReferencePreview, error) {
		return d.inner.Product(ctx, id)
	})
}

func (d *CachedReferenceDirectory) lookup(ctx context.Context, key string, fetch func() (*repository.ReferencePreview, error)) (*repository.ReferencePreview, error) {
	if d.cache != nil {
		if raw, err := d.cache.Get(ctx, key); err == nil {
			var p repository.ReferencePreview
			if json.Unmarshal([]byte(raw), &p) == nil {
				return &p, nil
			}
		} else if !errors.Is(err, cacheport.ErrMiss) {
			// transport error: fall through to the inner lookup
		}
	}

	p, err := fetch()
	if err != nil || p == nil {
		return p, err
	}

	if d.cache != nil {
		if raw, err := json.Marshal(p); err == nil {
			_ = d.cache.Set(ctx, key, string(raw), previewTTL)
		}
	}
	return p, nil
}
