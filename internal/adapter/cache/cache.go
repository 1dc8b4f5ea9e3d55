// Package cache keeps raw timing-API payloads so repeated dataset runs do not
// refetch sessions. Lookups go to an in-memory LRU first, then to the
// on-disk SQLite store.
package cache

import (
	"context"

	"github.com/couchcryptid/f1-dataset-etl/internal/observability"
)

// Store is a persistent payload store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, payload []byte) error
}

// Tiered layers an LRU over a persistent store. Disk hits are promoted into memory.
type Tiered struct {
	memory  *LRU
	disk    Store
	metrics *observability.Metrics
}

// NewTiered creates a two-tier cache. disk may be nil for a memory-only cache.
func NewTiered(memory *LRU, disk Store, metrics *observability.Metrics) *Tiered {
	return &Tiered{memory: memory, disk: disk, metrics: metrics}
}

func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if payload, ok := t.memory.get(key); ok {
		t.metrics.CacheLookups.WithLabelValues("memory", "hit").Inc()
		return payload, true, nil
	}
	t.metrics.CacheLookups.WithLabelValues("memory", "miss").Inc()

	if t.disk == nil {
		return nil, false, nil
	}

	payload, ok, err := t.disk.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		t.metrics.CacheLookups.WithLabelValues("disk", "miss").Inc()
		return nil, false, nil
	}
	t.metrics.CacheLookups.WithLabelValues("disk", "hit").Inc()
	t.memory.put(key, payload)
	return payload, true, nil
}

func (t *Tiered) Put(ctx context.Context, key string, payload []byte) error {
	t.memory.put(key, payload)
	if t.disk == nil {
		return nil
	}
	return t.disk.Put(ctx, key, payload)
}
