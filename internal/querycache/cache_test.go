package querycache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/procura/internal/querycache"
)

func TestKey_HasPrefix(t *testing.T) {
	type testCase struct {
		name   string
		key    querycache.Key
		prefix querycache.Key
		want   bool
	}

	tests := []testCase{
		{name: "Exact", key: querycache.Key{"boq", "list"}, prefix: querycache.Key{"boq", "list"}, want: true},
		{name: "Shorter", key: querycache.Key{"boq", "list", "p1", "status=draft"}, prefix: querycache.Key{"boq", "list"}, want: true},
		{name: "Kind only", key: querycache.Key{"boq", "detail", "1"}, prefix: querycache.Key{"boq"}, want: true},
		{name: "Other kind", key: querycache.Key{"boqx", "list"}, prefix: querycache.Key{"boq"}, want: false},
		{name: "Longer prefix", key: querycache.Key{"boq"}, prefix: querycache.Key{"boq", "list"}, want: false},
		{name: "Empty prefix", key: querycache.Key{"boq"}, prefix: querycache.Key{}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.HasPrefix(tt.prefix))
		})
	}
}

func TestKey_WithDoesNotAlias(t *testing.T) {
	base := make(querycache.Key, 1, 4)
	base[0] = "boq"

	a := base.With("list")
	b := base.With("detail")

	assert.Equal(t, querycache.Key{"boq", "list"}, a)
	assert.Equal(t, querycache.Key{"boq", "detail"}, b)
}

func TestStore_InvalidatePrefix(t *testing.T) {
	s := querycache.NewStore(100, time.Minute)

	s.Set(querycache.Key{"boq", "list", "p1", ""}, 1)
	s.Set(querycache.Key{"boq", "list", "p2", "status=draft"}, 2)
	s.Set(querycache.Key{"boq", "detail", "b1"}, 3)
	s.Set(querycache.Key{"estimate", "list", "p1", ""}, 4)

	n := s.InvalidatePrefix(querycache.Key{"boq", "list"})
	assert.Equal(t, 2, n)

	e, ok := s.Get(querycache.Key{"boq", "list", "p1", ""})
	require.True(t, ok)
	assert.True(t, e.Stale)
	assert.Equal(t, 1, e.Value)

	e, ok = s.Get(querycache.Key{"boq", "detail", "b1"})
	require.True(t, ok)
	assert.False(t, e.Stale)

	e, ok = s.Get(querycache.Key{"estimate", "list", "p1", ""})
	require.True(t, ok)
	assert.False(t, e.Stale)

	// Already stale entries are not counted twice.
	assert.Equal(t, 0, s.InvalidatePrefix(querycache.Key{"boq", "list"}))
}

func TestLoader_Load(t *testing.T) {
	s := querycache.NewStore(10, time.Minute)
	l := querycache.NewLoader(s, nil)
	key := querycache.Key{"material", "list", "", "search=бетон"}

	var calls int

	fetch := func(context.Context) ([]string, error) {
		calls++
		return []string{"Бетон B25"}, nil
	}

	got, err := querycache.Load(context.Background(), l, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"Бетон B25"}, got)

	_, err = querycache.Load(context.Background(), l, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "fresh entry must be served from cache")

	l.Invalidate(querycache.Key{"material"})

	_, err = querycache.Load(context.Background(), l, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "stale entry must be refetched")
}

func TestLoader_Load_ErrorNotCached(t *testing.T) {
	s := querycache.NewStore(10, time.Minute)
	l := querycache.NewLoader(s, nil)
	key := querycache.Key{"boq", "detail", "1"}

	_, err := querycache.Load(context.Background(), l, key, func(context.Context) (int, error) {
		return 0, errors.New("boom")
	})
	require.Error(t, err)

	_, ok := s.Get(key)
	assert.False(t, ok)
}

func TestLoader_Load_CollapsesConcurrentFetches(t *testing.T) {
	s := querycache.NewStore(10, time.Minute)
	l := querycache.NewLoader(s, nil)
	key := querycache.Key{"project", "list", "", ""}

	var calls atomic.Int32

	release := make(chan struct{})

	var wg sync.WaitGroup

	for range 5 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, _ = querycache.Load(context.Background(), l, key, func(context.Context) (int, error) {
				calls.Add(1)
				<-release

				return 42, nil
			})
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(5))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))

	e, ok := s.Get(key)
	require.True(t, ok)
	assert.Equal(t, 42, e.Value)
}

func TestLoader_InvalidateDuringFetch(t *testing.T) {
	s := querycache.NewStore(10, time.Minute)
	l := querycache.NewLoader(s, nil)
	key := querycache.Key{"boq", "detail", "1"}

	started := make(chan struct{})
	release := make(chan struct{})
	oldResult := make(chan string, 1)

	go func() {
		v, _ := querycache.Load(context.Background(), l, key, func(context.Context) (string, error) {
			close(started)
			<-release

			return "before-mutation", nil
		})
		oldResult <- v
	}()

	<-started
	l.Invalidate(querycache.Key{"boq"})

	got, err := querycache.Load(context.Background(), l, key, func(context.Context) (string, error) {
		return "after-mutation", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "after-mutation", got, "a read after invalidation does not join the older fetch")

	close(release)
	assert.Equal(t, "before-mutation", <-oldResult)

	got, err = querycache.Load(context.Background(), l, key, func(context.Context) (string, error) {
		t.Error("fresh entry should be served from the cache")
		return "", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "after-mutation", got, "the older result is not stored")
}

func TestLoader_InvalidateWithoutNewRead(t *testing.T) {
	s := querycache.NewStore(10, time.Minute)
	l := querycache.NewLoader(s, nil)
	key := querycache.Key{"boq", "detail", "1"}

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)

		_, _ = querycache.Load(context.Background(), l, key, func(context.Context) (string, error) {
			close(started)
			<-release

			return "before-mutation", nil
		})
	}()

	<-started
	l.Invalidate(querycache.Key{"boq"})
	close(release)
	<-done

	_, ok := s.Get(key)
	assert.False(t, ok, "a fetch invalidated while running is not cached")
}
