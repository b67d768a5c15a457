// Package dedupe maps idempotency keys to the session they created.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

const defaultMaxSize = 10000

// Deduper remembers which session an idempotency key produced.
type Deduper interface {
	// Claim binds key to id unless key is already bound. It returns the
	// bound id and whether key had been claimed before.
	Claim(ctx context.Context, key, id string) (string, bool)

	// Release forgets key so that a later submission can retry. Use it only
	// when the claimed session never made it into the queue.
	Release(ctx context.Context, key string)

	// Size returns the number of remembered keys.
	Size() int
}

type entry struct {
	key string
	id  string
}

// inMemoryDeduper keeps keys in a map and their claim order in a list;
// the front of the list is the oldest key.
type inMemoryDeduper struct {
	mu      sync.Mutex
	byKey   map[string]*list.Element
	order   *list.List
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
		byKey:   make(map[string]*list.Element),
		order:   list.New(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *inMemoryDeduper) Claim(ctx context.Context, key, id string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.byKey[key]; ok {
		return el.Value.(entry).id, true
	}

	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		oldest := d.order.Front()
		d.order.Remove(oldest)
		delete(d.byKey, oldest.Value.(entry).key)
	}

	d.byKey[key] = d.order.PushBack(entry{key: key, id: id})
	return id, false
}

func (d *inMemoryDeduper) Release(ctx context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.byKey[key]; ok {
		d.order.Remove(el)
		delete(d.byKey, key)
	}
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.order.Len()
}
