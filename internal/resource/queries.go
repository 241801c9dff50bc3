package resource

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/procura/internal/apiclient"
	"github.com/MrJamesThe3rd/procura/internal/querycache"
)

// Queries are the cached reads of one entity kind.
type Queries[T any] struct {
	ep   Endpoint
	deps Deps
}

func NewQueries[T any](ep Endpoint, deps Deps) *Queries[T] {
	ep.Fallbacks = ep.Fallbacks.withDefaults()
	return &Queries[T]{ep: ep, deps: deps}
}

func (q *Queries[T]) Endpoint() Endpoint {
	return q.ep
}

// Get fetches one entity. A nil id is not found without asking the server.
func (q *Queries[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	if id == uuid.Nil {
		return nil, ErrNotFound
	}

	return querycache.Load(ctx, q.deps.Loader, q.ep.DetailKey(id), func(ctx context.Context) (*T, error) {
		var out T

		_, err := q.deps.API.Do(ctx, apiclient.Request{
			Method:   http.MethodGet,
			Path:     q.ep.DetailPath(id),
			Fallback: q.ep.Fallbacks.Get,
		}, &out)
		if err != nil {
			return nil, err
		}

		return &out, nil
	})
}

// List fetches one page of entities. When the endpoint is nested under a
// parent and parentID is nil the query is disabled and ErrDisabled is returned.
func (q *Queries[T]) List(ctx context.Context, parentID uuid.UUID, f Filter) (Page[T], error) {
	if q.ep.Parent != "" && parentID == uuid.Nil {
		return Page[T]{}, ErrDisabled
	}

	return querycache.Load(ctx, q.deps.Loader, q.ep.ListKey(parentID, f), func(ctx context.Context) (Page[T], error) {
		var items []T

		meta, err := q.deps.API.Do(ctx, apiclient.Request{
			Method:   http.MethodGet,
			Path:     q.ep.ListPath(parentID),
			Query:    f.Values(),
			Fallback: q.ep.Fallbacks.List,
		}, &items)
		if err != nil {
			return Page[T]{}, err
		}

		total := len(items)
		if meta != nil && meta.Total > 0 {
			total = meta.Total
		}

		return Page[T]{Items: items, Total: total}, nil
	})
}
