// Package apicache keeps GitHub API responses in the sqlite metadata store.
// Freshness and If-None-Match revalidation are handled by httpcache; this
// package only persists what it hands over.
package apicache

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/rs/zerolog"

	"github.com/quantmind-br/binstall/internal/db"
)

// DefaultMaxEntryBytes caps the size of one serialized response
const DefaultMaxEntryBytes = 8 << 20

// storeTimeout bounds each store call; httpcache.Cache carries no context
const storeTimeout = 5 * time.Second

// Store persists serialized responses keyed by URL
type Store interface {
	Get(ctx context.Context, url string) (*db.Response, error)
	Put(ctx context.Context, resp *db.Response) error
	Delete(ctx context.Context, url string) error
}

// Cache adapts a Store to httpcache.Cache. Store failures are logged and
// treated as misses.
type Cache struct {
	store  Store
	logger *zerolog.Logger

	// MaxEntryBytes skips larger responses; 0 means no limit
	MaxEntryBytes int
}

var _ httpcache.Cache = (*Cache)(nil)

// NewCache creates a cache over store
func NewCache(store Store, logger *zerolog.Logger) *Cache {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Cache{
		store:         store,
		logger:        logger,
		MaxEntryBytes: DefaultMaxEntryBytes,
	}
}

// Get returns the serialized response stored for key
func (c *Cache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	resp, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			c.logger.Debug().Err(err).Str("url", key).Msg("metadata cache lookup failed")
		}
		return nil, false
	}
	c.logger.Debug().Str("url", key).Msg("metadata cache hit")
	return resp.Body, true
}

// Set stores a serialized response for key
func (c *Cache) Set(key string, data []byte) {
	if c.MaxEntryBytes > 0 && len(data) > c.MaxEntryBytes {
		c.logger.Debug().Str("url", key).Int("bytes", len(data)).Msg("response too large to cache")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := c.store.Put(ctx, &db.Response{URL: key, Body: data}); err != nil {
		c.logger.Debug().Err(err).Str("url", key).Msg("metadata cache store failed")
	}
}

// Delete drops the response stored for key
func (c *Cache) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := c.store.Delete(ctx, key); err != nil && !errors.Is(err, db.ErrNotFound) {
		c.logger.Debug().Err(err).Str("url", key).Msg("metadata cache delete failed")
	}
}

// NewTransport returns an httpcache transport over base (http.DefaultTransport
// when nil) that stores responses in store. Cached responses carry the
// httpcache.XFromCache header.
func NewTransport(base http.RoundTripper, store Store, logger *zerolog.Logger) *httpcache.Transport {
	t := httpcache.NewTransport(NewCache(store, logger))
	t.Transport = base
	t.MarkCachedResponses = true
	return t
}
