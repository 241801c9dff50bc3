package resource

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/procura/internal/apiclient"
	"github.com/MrJamesThe3rd/procura/internal/querycache"
)

// Items are the line rows owned by a header document.
type Items[I any, C any, U any] struct {
	ep   Endpoint
	deps Deps
}

func NewItems[I any, C any, U any](ep Endpoint, deps Deps) *Items[I, C, U] {
	ep.Fallbacks = ep.Fallbacks.withDefaults()
	return &Items[I, C, U]{ep: ep, deps: deps}
}

func (it *Items[I, C, U]) List(ctx context.Context, headerID uuid.UUID) ([]I, error) {
	if headerID == uuid.Nil {
		return nil, ErrDisabled
	}

	return querycache.Load(ctx, it.deps.Loader, it.ep.ItemsKey(headerID), func(ctx context.Context) ([]I, error) {
		var out []I

		_, err := it.deps.API.Do(ctx, apiclient.Request{
			Method:   http.MethodGet,
			Path:     it.ep.ItemsPath(headerID),
			Fallback: it.ep.Fallbacks.List,
		}, &out)
		if err != nil {
			return nil, err
		}

		return out, nil
	})
}

func (it *Items[I, C, U]) Create(ctx context.Context, headerID uuid.UUID, payload C) (*I, error) {
	if headerID == uuid.Nil {
		return nil, ErrNotFound
	}

	return it.write(ctx, headerID, apiclient.Request{
		Method:   http.MethodPost,
		Path:     it.ep.ItemsPath(headerID),
		Body:     payload,
		Fallback: it.ep.Fallbacks.Create,
	})
}

func (it *Items[I, C, U]) Update(ctx context.Context, headerID, itemID uuid.UUID, patch U) (*I, error) {
	if headerID == uuid.Nil || itemID == uuid.Nil {
		return nil, ErrNotFound
	}

	return it.write(ctx, headerID, apiclient.Request{
		Method:   http.MethodPut,
		Path:     it.ep.ItemPath(headerID, itemID),
		Body:     patch,
		Fallback: it.ep.Fallbacks.Update,
	})
}

func (it *Items[I, C, U]) Delete(ctx context.Context, headerID, itemID uuid.UUID) error {
	if headerID == uuid.Nil || itemID == uuid.Nil {
		return ErrNotFound
	}

	_, err := it.deps.API.Do(ctx, apiclient.Request{
		Method:   http.MethodDelete,
		Path:     it.ep.ItemPath(headerID, itemID),
		Fallback: it.ep.Fallbacks.Delete,
	}, nil)
	if err != nil {
		return err
	}

	it.invalidate(headerID)

	return nil
}

func (it *Items[I, C, U]) write(ctx context.Context, headerID uuid.UUID, req apiclient.Request) (*I, error) {
	var out I

	if _, err := it.deps.API.Do(ctx, req, &out); err != nil {
		return nil, err
	}

	it.invalidate(headerID)

	return &out, nil
}

// invalidate marks the header's items, the header (its totals change) and the
// header lists stale.
func (it *Items[I, C, U]) invalidate(headerID uuid.UUID) {
	it.deps.Loader.Invalidate(
		it.ep.ItemsKey(headerID),
		it.ep.DetailKey(headerID),
		it.ep.ListPrefix(),
	)
}
