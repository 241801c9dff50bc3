// Package notification reads the current user's inbox.
package notification

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/procura/internal/apiclient"
	"github.com/MrJamesThe3rd/procura/internal/querycache"
	"github.com/MrJamesThe3rd/procura/internal/resource"
)

type Notification struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Body       string     `json:"body,omitempty"`
	EntityType string     `json:"entity_type,omitempty"`
	EntityID   *uuid.UUID `json:"entity_id,omitempty"`
	Read       bool       `json:"is_read"`
	CreatedAt  time.Time  `json:"created_at"`
}

var Endpoint = resource.Endpoint{
	Kind:     "notification",
	Resource: "notifications",
	Fallbacks: resource.Fallbacks{
		List:   "Не удалось загрузить уведомления",
		Update: "Не удалось отметить уведомление прочитанным",
	},
}

type unreadCount struct {
	Count int `json:"count"`
}

type Handle struct {
	Queries *resource.Queries[Notification]

	deps resource.Deps
}

func NewHandle(deps resource.Deps) *Handle {
	return &Handle{
		Queries: resource.NewQueries[Notification](Endpoint, deps),
		deps:    deps,
	}
}

// UnreadCount always asks the server; the badge is refreshed on a timer and a
// cached value would hide new notifications.
func (h *Handle) UnreadCount(ctx context.Context) (int, error) {
	var out unreadCount

	_, err := h.deps.API.Do(ctx, apiclient.Request{
		Method:   http.MethodGet,
		Path:     Endpoint.CollectionPath() + "/unread-count",
		Fallback: "Не удалось получить число уведомлений",
	}, &out)
	if err != nil {
		return 0, err
	}

	return out.Count, nil
}

// Recent lists the newest notifications, unread first when unreadOnly is set.
func (h *Handle) Recent(ctx context.Context, unreadOnly bool, limit int) ([]Notification, error) {
	f := resource.Filter{Limit: limit}
	if unreadOnly {
		f.Extra = map[string][]string{"is_read": {"false"}}
	}

	page, err := h.Queries.List(ctx, uuid.Nil, f)
	if err != nil {
		return nil, err
	}

	return page.Items, nil
}

func (h *Handle) MarkRead(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return resource.ErrNotFound
	}

	return h.post(ctx, Endpoint.ActionPath(id, "read"))
}

func (h *Handle) MarkAllRead(ctx context.Context) error {
	return h.post(ctx, Endpoint.CollectionPath()+"/read-all")
}

func (h *Handle) post(ctx context.Context, path string) error {
	_, err := h.deps.API.Do(ctx, apiclient.Request{
		Method:   http.MethodPost,
		Path:     path,
		Fallback: Endpoint.Fallbacks.Update,
	}, nil)
	if err != nil {
		return err
	}

	h.deps.Loader.Invalidate(querycache.Key{Endpoint.Kind})

	return nil
}
