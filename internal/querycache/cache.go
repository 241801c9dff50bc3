package querycache

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Key identifies a cached query: (entity kind, operation, identifying params...).
type Key []string

func (k Key) String() string {
	return strings.Join(k, ":")
}

// HasPrefix reports whether every element of prefix matches the start of k.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}

	return slices.Equal(k[:len(prefix)], prefix)
}

// With returns a copy of k extended by parts.
func (k Key) With(parts ...string) Key {
	out := make(Key, 0, len(k)+len(parts))
	out = append(out, k...)

	return append(out, parts...)
}

// Entry is a cached query result. A stale entry is refetched on the next read.
type Entry struct {
	Value     any
	FetchedAt time.Time
	Stale     bool
}

//go:generate mockgen -source=cache.go -destination=cache_mock.go -package=querycache
type Cache interface {
	Get(key Key) (Entry, bool)
	Set(key Key, value any)
	InvalidatePrefix(prefix Key) int
}

type storedEntry struct {
	key   Key
	entry Entry
}

// Store is the default Cache: a bounded LRU whose entries expire after ttl.
type Store struct {
	mu  sync.Mutex
	lru *expirable.LRU[string, storedEntry]
	now func() time.Time
}

func NewStore(size int, ttl time.Duration) *Store {
	return &Store{
		lru: expirable.NewLRU[string, storedEntry](size, nil, ttl),
		now: time.Now,
	}
}

func (s *Store) Get(key Key) (Entry, bool) {
	stored, ok := s.lru.Get(key.String())
	if !ok {
		return Entry{}, false
	}

	return stored.entry, true
}

func (s *Store) Set(key Key, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lru.Add(key.String(), storedEntry{
		key:   slices.Clone(key),
		entry: Entry{Value: value, FetchedAt: s.now()},
	})
}

// InvalidatePrefix marks every entry under prefix as stale and returns how
// many entries were affected.
func (s *Store) InvalidatePrefix(prefix Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0

	for _, k := range s.lru.Keys() {
		stored, ok := s.lru.Peek(k)
		if !ok || !stored.key.HasPrefix(prefix) || stored.entry.Stale {
			continue
		}

		stored.entry.Stale = true
		s.lru.Add(k, stored)
		n++
	}

	return n
}

func (s *Store) Len() int {
	return s.lru.Len()
}
