// Package catalog caches the execution backend's runtime list so that
// every run request does not hit the upstream /runtimes endpoint.
package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"coderoom/internal/engine"
)

type Cache struct {
	backend engine.Backend
	ttl     time.Duration
	log     logrus.FieldLogger

	group singleflight.Group

	mu        sync.RWMutex
	fetchedAt time.Time
	entries   []engine.Runtime
}

func New(backend engine.Backend, ttl time.Duration, log logrus.FieldLogger) *Cache {
	return &Cache{
		backend: backend,
		ttl:     ttl,
		log:     log,
	}
}

// Runtimes returns the cached catalog, refreshing it when the TTL has
// expired or force is set. Concurrent refreshes coalesce into a single
// upstream call; when a refresh fails and older entries exist, those
// are served instead of the error.
func (c *Cache) Runtimes(ctx context.Context, force bool) ([]engine.Runtime, error) {
	if !force {
		c.mu.RLock()
		entries, fresh := c.entries, time.Since(c.fetchedAt) < c.ttl
		c.mu.RUnlock()

		if fresh && len(entries) > 0 {
			return entries, nil
		}
	}

	v, err, _ := c.group.Do("runtimes", func() (any, error) {
		entries, err := c.backend.Runtimes(ctx)
		if err != nil {
			return nil, err
		}

		// Whole-slice swap: readers never observe a partial update.
		c.mu.Lock()
		c.entries = entries
		c.fetchedAt = time.Now()
		c.mu.Unlock()

		return entries, nil
	})
	if err != nil {
		c.mu.RLock()
		stale := c.entries
		c.mu.RUnlock()

		if len(stale) > 0 {
			c.log.WithError(err).Warn("catalog refresh failed, serving stale entries")
			return stale, nil
		}
		return nil, err
	}

	return v.([]engine.Runtime), nil
}
