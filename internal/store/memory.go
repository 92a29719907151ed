package store

import (
	"sync"
	"time"

	"github.com/i474232898/energy-weather-explorer/internal/weather"
)

// ErrNotFound is returned when no fresh entry is cached for a key.
var ErrNotFound = weather.ErrNotCached

type entry struct {
	readings []weather.Reading
	savedAt  time.Time
}

// MemoryStore is a concurrency-safe in-memory cache of archive weather ranges.
type MemoryStore struct {
	mu sync.RWMutex

	// key: weather.CacheKey, value: cached range
	data  map[string]entry
	order []string // keys, oldest first

	// retention configuration
	maxEntries int           // max number of cached ranges
	maxAge     time.Duration // optional max age for entries

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxEntries is <= 0, it is treated as unlimited.
func NewMemoryStore(maxEntries int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]entry),
		maxEntries: maxEntries,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Save stores readings under key and enforces retention.
func (s *MemoryStore) Save(key string, readings []weather.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; ok {
		s.removeLocked(key)
	}
	s.data[key] = entry{readings: readings, savedAt: s.now()}
	s.order = append(s.order, key)

	// Enforce retention by count.
	if s.maxEntries > 0 {
		for len(s.order) > s.maxEntries {
			delete(s.data, s.order[0])
			s.order = s.order[1:]
		}
	}
}

// Get returns the cached readings for key, or ErrNotFound when absent or
// older than the max age.
func (s *MemoryStore) Get(key string) ([]weather.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok || s.expired(e) {
		return nil, ErrNotFound
	}
	return e.readings, nil
}

// Prune removes expired entries and returns how many were dropped.
func (s *MemoryStore) Prune() int {
	if s.maxAge <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Entries are saved in order, so the expired ones form a prefix.
	i := 0
	for ; i < len(s.order); i++ {
		if !s.expired(s.data[s.order[i]]) {
			break
		}
		delete(s.data, s.order[i])
	}
	s.order = s.order[i:]
	return i
}

// Len returns the number of cached ranges, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryStore) expired(e entry) bool {
	return s.maxAge > 0 && s.now().Sub(e.savedAt) > s.maxAge
}

func (s *MemoryStore) removeLocked(key string) {
	delete(s.data, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
