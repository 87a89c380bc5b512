package kvstore

import (
	"context"
	"log/slog"

	"github.com/coocood/freecache"
)

// CacheObserver is notified of cache lookups.
type CacheObserver interface {
	IncCacheHits()
	IncCacheMisses()
}

// CachedStore serves reads from an in-memory freecache in front of another Store.
// Writes go to the inner store first and then refresh the cache entry.
type CachedStore struct {
	inner    Store
	cache    *freecache.Cache
	ttl      int
	observer CacheObserver
}

// NewCachedStore wraps inner with a cache of sizeMB megabytes. A non-positive size returns inner unchanged.
func NewCachedStore(inner Store, sizeMB int, ttlSeconds int, observer CacheObserver) Store {
	if sizeMB <= 0 {
		return inner
	}
	slog.Default().Debug("kv cache initialized", "sizeMB", sizeMB, "ttlSeconds", ttlSeconds)
	return &CachedStore{
		inner:    inner,
		cache:    freecache.NewCache(sizeMB * 1024 * 1024),
		ttl:      ttlSeconds,
		observer: observer,
	}
}

func (s *CachedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if v, err := s.cache.Get([]byte(key)); err == nil {
		s.hit()
		return v, true, nil
	}
	s.miss()

	v, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return v, ok, err
	}
	_ = s.cache.Set([]byte(key), v, s.ttl)
	return v, true, nil
}

func (s *CachedStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.inner.Set(ctx, key, value); err != nil {
		s.cache.Del([]byte(key))
		return err
	}
	// values larger than the cache segment are simply not cached
	if err := s.cache.Set([]byte(key), value, s.ttl); err != nil {
		s.cache.Del([]byte(key))
	}
	return nil
}

func (s *CachedStore) Delete(ctx context.Context, key string) error {
	s.cache.Del([]byte(key))
	return s.inner.Delete(ctx, key)
}

func (s *CachedStore) hit() {
	if s.observer != nil {
		s.observer.IncCacheHits()
	}
}

func (s *CachedStore) miss() {
	if s.observer != nil {
		s.observer.IncCacheMisses()
	}
}
