package listmap

import "sync"

// Store is the dictionary's lifecycle boundary: set at session start, read
// through the interface, replaceable wholesale, with an explicit change
// notification channel so readers re-resolve instead of polling.
type Store interface {
	// Get returns the current dictionary. Readers must treat it as
	// read-only; replace via Set.
	Get() ListMap
	// Set replaces the dictionary wholesale and notifies subscribers.
	Set(lm ListMap)
	// Subscribe registers a replacement callback and returns a cancel
	// function. Callbacks run synchronously on the Set caller's goroutine.
	Subscribe(fn func()) (cancel func())
}

// MemoryStore is the in-process Store implementation.
type MemoryStore struct {
	mu     sync.RWMutex
	data   ListMap
	subs   map[int]func()
	nextID int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store, optionally seeded with an initial
// dictionary.
func NewMemoryStore(initial ...ListMap) *MemoryStore {
	store := &MemoryStore{subs: make(map[int]func())}
	if len(initial) > 0 {
		store.data = initial[0]
	}
	return store
}

// Get returns the current dictionary; nil when never set.
func (s *MemoryStore) Get() ListMap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Set replaces the dictionary and notifies every subscriber.
func (s *MemoryStore) Set(lm ListMap) {
	s.mu.Lock()
	s.data = lm
	subs := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// Subscribe registers a callback fired after each Set.
func (s *MemoryStore) Subscribe(fn func()) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
