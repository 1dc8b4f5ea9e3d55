package cache

import (
	"container/list"
	"sync"
)

// LRU is the memory tier: raw response payloads keyed by request, bounded
// by entry count. A payload is copied on put and never changed afterwards,
// so the slice returned by get may be shared by concurrent readers but must
// not be written to.
type LRU struct {
	mu         sync.Mutex
	maxEntries int
	order      *list.List // front is most recently used
	items      map[string]*list.Element
}

type lruItem struct {
	key     string
	payload []byte
}

// NewLRU creates an LRU holding at most maxEntries payloads.
func NewLRU(maxEntries int) *LRU {
	return &LRU{
		maxEntries: max(maxEntries, 1),
		order:      list.New(),
		items:      make(map[string]*list.Element),
	}
}

func (c *LRU) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruItem).payload, true
}

func (c *LRU) put(key string, payload []byte) {
	stored := append([]byte(nil), payload...)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*lruItem).payload = stored
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&lruItem{key: key, payload: stored})
	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*lruItem).key)
	}
}

// Len returns the number of cached payloads.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
