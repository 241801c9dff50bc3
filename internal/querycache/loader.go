package querycache

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// flight tracks the fetches of one key. Invalidate bumps gen so reads issued
// afterwards start a new fetch and older results are not stored as fresh.
type flight struct {
	key  Key
	gen  uint64
	refs int
}

// Loader reads through a Cache and collapses concurrent fetches of one key.
type Loader struct {
	cache  Cache
	group  singleflight.Group
	logger *slog.Logger

	mu       sync.Mutex
	inflight map[string]*flight
}

func NewLoader(cache Cache, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}

	return &Loader{cache: cache, logger: logger, inflight: map[string]*flight{}}
}

// Load returns the fresh cached value for key or calls fetch and caches its
// result. Errors are returned to every waiter and never cached. A result whose
// key was invalidated while the fetch ran is returned but not cached.
func Load[T any](ctx context.Context, l *Loader, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	if e, ok := l.cache.Get(key); ok && !e.Stale {
		if v, ok := e.Value.(T); ok {
			return v, nil
		}
	}

	name := key.String()
	gen := l.acquire(key)
	defer l.release(name)

	v, err, _ := l.group.Do(name+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		val, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		l.store(key, gen, val)

		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	out, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cached value for %s has type %T", key, v)
	}

	return out, nil
}

func (l *Loader) acquire(key Key) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	name := key.String()

	f, ok := l.inflight[name]
	if !ok {
		f = &flight{key: key}
		l.inflight[name] = f
	}

	f.refs++

	return f.gen
}

func (l *Loader) release(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, ok := l.inflight[name]
	if !ok {
		return
	}

	if f.refs--; f.refs == 0 {
		delete(l.inflight, name)
	}
}

func (l *Loader) store(key Key, gen uint64, val any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if f, ok := l.inflight[key.String()]; ok && f.gen != gen {
		l.logger.Debug("cache result dropped after invalidation", "key", key.String())
		return
	}

	l.cache.Set(key, val)
}

// Invalidate marks every entry under each prefix as stale. Fetches of those
// keys already running are not cached when they finish.
func (l *Loader) Invalidate(prefixes ...Key) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range prefixes {
		for _, f := range l.inflight {
			if f.key.HasPrefix(p) {
				f.gen++
			}
		}

		n := l.cache.InvalidatePrefix(p)
		l.logger.Debug("cache invalidated", "prefix", p.String(), "entries", n)
	}
}
