package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultMemoryCapacity bounds the in-process cache when the caller passes a
// non-positive capacity.
const DefaultMemoryCapacity = 1024

// Memory is a size-bounded in-process LRU cache.  It is the default backend;
// single-node deployments of the map service have no need for Redis.
type Memory struct {
	mu    sync.Mutex
	ll    *list.List
	items map[string]*list.Element
	cap   int

	opts  options
	group singleflight.Group
}

type memoryEntry struct {
	key       string
	data      []byte
	expiresAt time.Time // zero = never
}

// NewMemory builds an LRU cache holding at most capacity entries.
func NewMemory(capacity int, opts ...Option) *Memory {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Memory{
		ll:    list.New(),
		items: make(map[string]*list.Element),
		cap:   capacity,
		opts:  o,
	}
}

// Len returns the number of live entries (expired entries may be counted
// until their next access).
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Get implements Cache.
func (m *Memory) Get(ctx context.Context, key string, dest interface{}) error {
	data, ok := m.lookup(m.opts.fullKey(key))
	if !ok {
		return ErrMiss
	}
	if string(data) == nullMarker {
		return ErrMiss
	}
	if err := m.opts.serializer.Unmarshal(data, dest); err != nil {
		return ErrSerialization
	}
	return nil
}

// Set implements Cache.
func (m *Memory) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := m.opts.serializer.Marshal(value)
	if err != nil {
		return ErrSerialization
	}
	m.store(m.opts.fullKey(key), data, m.opts.effectiveTTL(ttl))
	return nil
}

// Delete implements Cache.
func (m *Memory) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		if el, ok := m.items[m.opts.fullKey(key)]; ok {
			m.removeElement(el)
		}
	}
	return nil
}

// Exists implements Cache.  Null markers count as present.
func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.lookup(m.opts.fullKey(key))
	return ok, nil
}

// GetOrSet implements Cache.  A cached null marker reports ErrMiss without
// re-running the loader.
func (m *Memory) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader Loader) error {
	if data, ok := m.lookup(m.opts.fullKey(key)); ok {
		if string(data) == nullMarker {
			return ErrMiss
		}
		if err := m.opts.serializer.Unmarshal(data, dest); err != nil {
			return ErrSerialization
		}
		return nil
	}

	val, err, _ := m.group.Do(key, func() (interface{}, error) {
		v, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		if v == nil {
			m.store(m.opts.fullKey(key), []byte(nullMarker), m.opts.jitter(m.opts.nullTTL))
			return nil, nil
		}
		if setErr := m.Set(ctx, key, v, ttl); setErr != nil {
			return nil, setErr
		}
		return v, nil
	})
	if err != nil {
		return err
	}
	if val == nil {
		return ErrMiss
	}

	data, err := m.opts.serializer.Marshal(val)
	if err != nil {
		return ErrSerialization
	}
	if err := m.opts.serializer.Unmarshal(data, dest); err != nil {
		return ErrSerialization
	}
	return nil
}

// Ping implements Cache; the in-process backend is always reachable.
func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

// lookup returns the stored bytes for a full key, expiring lazily.
func (m *Memory) lookup(fullKey string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.items[fullKey]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*memoryEntry)
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		m.removeElement(el)
		return nil, false
	}
	m.ll.MoveToFront(el)
	return entry.data, true
}

// store inserts or replaces a full key, evicting from the LRU tail.
func (m *Memory) store(fullKey string, data []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if el, ok := m.items[fullKey]; ok {
		entry := el.Value.(*memoryEntry)
		entry.data = data
		entry.expiresAt = expiresAt
		m.ll.MoveToFront(el)
		return
	}

	el := m.ll.PushFront(&memoryEntry{key: fullKey, data: data, expiresAt: expiresAt})
	m.items[fullKey] = el

	for m.ll.Len() > m.cap {
		oldest := m.ll.Back()
		if oldest == nil {
			break
		}
		m.removeElement(oldest)
	}
}

// removeElement must be called with m.mu held.
func (m *Memory) removeElement(el *list.Element) {
	m.ll.Remove(el)
	delete(m.items, el.Value.(*memoryEntry).key)
}
