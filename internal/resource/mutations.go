package resource

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/procura/internal/apiclient"
	"github.com/MrJamesThe3rd/procura/internal/querycache"
	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

type transitionBody struct {
	Comment string `json:"comment,omitempty"`
}

type statusPatch struct {
	Status workflow.Status `json:"status"`
	Notes  string          `json:"notes,omitempty"`
}

// Mutations are the writes of one entity kind. C is the create payload and U
// the partial update payload. Cache entries are invalidated only after the
// server accepted the write.
type Mutations[T any, C any, U any] struct {
	ep      Endpoint
	machine *workflow.Machine
	deps    Deps
	related []querycache.Key
}

func NewMutations[T any, C any, U any](ep Endpoint, machine *workflow.Machine, deps Deps) *Mutations[T, C, U] {
	ep.Fallbacks = ep.Fallbacks.withDefaults()
	return &Mutations[T, C, U]{ep: ep, machine: machine, deps: deps}
}

// AlsoInvalidate adds prefixes of other kinds affected by every write, for
// instance the parent document whose totals include this one.
func (m *Mutations[T, C, U]) AlsoInvalidate(prefixes ...querycache.Key) *Mutations[T, C, U] {
	m.related = append(m.related, prefixes...)
	return m
}

func (m *Mutations[T, C, U]) Machine() *workflow.Machine {
	return m.machine
}

func (m *Mutations[T, C, U]) Create(ctx context.Context, payload C) (*T, error) {
	return m.write(ctx, uuid.Nil, apiclient.Request{
		Method:   http.MethodPost,
		Path:     m.ep.CollectionPath(),
		Body:     payload,
		Fallback: m.ep.Fallbacks.Create,
	})
}

// CreateMultipart creates a file-bearing entity.
func (m *Mutations[T, C, U]) CreateMultipart(ctx context.Context, form *apiclient.Multipart) (*T, error) {
	return m.write(ctx, uuid.Nil, apiclient.Request{
		Method:   http.MethodPost,
		Path:     m.ep.CollectionPath(),
		Form:     form,
		Fallback: m.ep.Fallbacks.Create,
	})
}

func (m *Mutations[T, C, U]) Update(ctx context.Context, id uuid.UUID, patch U) (*T, error) {
	if id == uuid.Nil {
		return nil, ErrNotFound
	}

	return m.write(ctx, id, apiclient.Request{
		Method:   http.MethodPut,
		Path:     m.ep.DetailPath(id),
		Body:     patch,
		Fallback: m.ep.Fallbacks.Update,
	})
}

func (m *Mutations[T, C, U]) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrNotFound
	}

	_, err := m.deps.API.Do(ctx, apiclient.Request{
		Method:   http.MethodDelete,
		Path:     m.ep.DetailPath(id),
		Fallback: m.ep.Fallbacks.Delete,
	}, nil)
	if err != nil {
		return err
	}

	m.invalidate(id)

	return nil
}

// Transition performs action on e. The machine decides whether the action is
// allowed from e's current status and whether it is sent to a dedicated
// endpoint or as a status patch. A refused transition makes no request.
func (m *Mutations[T, C, U]) Transition(ctx context.Context, e Entity, action workflow.Action, comment string) (*T, error) {
	if m.machine == nil {
		return nil, fmt.Errorf("%s has no workflow: %w", m.ep.Kind, workflow.ErrUnknownAction)
	}

	id := e.EntityID()
	if id == uuid.Nil {
		return nil, ErrNotFound
	}

	tr, err := m.machine.Plan(e.EntityStatus(), action, m.deps.Role, comment)
	if err != nil {
		return nil, err
	}

	req := apiclient.Request{Fallback: m.ep.Fallbacks.Transition}

	switch tr.Mode {
	case workflow.ModeStatusPatch:
		req.Method = http.MethodPut
		req.Path = m.ep.DetailPath(id)
		req.Body = statusPatch{Status: tr.To, Notes: comment}
	default:
		req.Method = http.MethodPost
		req.Path = m.ep.ActionPath(id, tr.Path())
		req.Body = transitionBody{Comment: comment}
	}

	out, err := m.write(ctx, id, req)
	if err != nil {
		return nil, err
	}

	m.deps.logger().Info("status changed",
		"kind", m.ep.Kind,
		"id", id,
		"action", action,
		"from", e.EntityStatus(),
		"to", tr.To,
	)

	return out, nil
}

func (m *Mutations[T, C, U]) write(ctx context.Context, id uuid.UUID, req apiclient.Request) (*T, error) {
	var out T

	if _, err := m.deps.API.Do(ctx, req, &out); err != nil {
		return nil, err
	}

	if id == uuid.Nil {
		if e, ok := any(&out).(Entity); ok {
			id = e.EntityID()
		}
	}

	m.invalidate(id)

	return &out, nil
}

// invalidate marks the list, the detail and the items of id stale, in that
// order.
func (m *Mutations[T, C, U]) invalidate(id uuid.UUID) {
	keys := []querycache.Key{m.ep.ListPrefix()}

	if id != uuid.Nil {
		keys = append(keys, m.ep.DetailKey(id))

		if m.ep.Items != "" {
			keys = append(keys, m.ep.ItemsKey(id))
		}
	}

	m.deps.Loader.Invalidate(append(keys, m.related...)...)
}
