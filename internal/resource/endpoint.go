package resource

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/procura/internal/apiclient"
	"github.com/MrJamesThe3rd/procura/internal/querycache"
	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

const apiPrefix = "/api/v1"

var (
	ErrNotFound = apiclient.ErrNotFound
	// ErrDisabled is returned by a list whose required parent id is empty.
	// No request is made.
	ErrDisabled = errors.New("query disabled: parent id is empty")
)

// Doer is the transport. *apiclient.Client implements it.
type Doer interface {
	Do(ctx context.Context, req apiclient.Request, out any) (*apiclient.Meta, error)
}

// Entity is a header document with a status lifecycle.
type Entity interface {
	EntityID() uuid.UUID
	EntityStatus() workflow.Status
}

// Deps are shared by every query and mutation module.
type Deps struct {
	API    Doer
	Loader *querycache.Loader
	Role   workflow.Role
	Logger *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}

	return d.Logger
}

// Fallbacks are the messages shown when the server gives no readable error.
type Fallbacks struct {
	Get        string
	List       string
	Create     string
	Update     string
	Delete     string
	Transition string
}

func (f Fallbacks) withDefaults() Fallbacks {
	f.Get = cmp.Or(f.Get, "Не удалось загрузить документ")
	f.List = cmp.Or(f.List, "Не удалось загрузить список")
	f.Create = cmp.Or(f.Create, "Не удалось создать документ")
	f.Update = cmp.Or(f.Update, "Не удалось сохранить изменения")
	f.Delete = cmp.Or(f.Delete, "Не удалось удалить")
	f.Transition = cmp.Or(f.Transition, "Не удалось изменить статус")

	return f
}

// Endpoint describes where an entity kind lives on the REST API and under
// which keys it is cached.
type Endpoint struct {
	Kind     string // cache key root, e.g. "boq"
	Resource string // URL segment, e.g. "boqs"
	Parent   string // list is nested under /{Parent}/{id}; the parent id is then required
	Items    string // child rows segment, e.g. "items"

	Fallbacks Fallbacks
}

func (e Endpoint) ListPrefix() querycache.Key {
	return querycache.Key{e.Kind, "list"}
}

func (e Endpoint) ListKey(parentID uuid.UUID, f Filter) querycache.Key {
	parent := ""
	if parentID != uuid.Nil {
		parent = parentID.String()
	}

	return e.ListPrefix().With(parent, f.Encode())
}

func (e Endpoint) DetailKey(id uuid.UUID) querycache.Key {
	return querycache.Key{e.Kind, "detail", id.String()}
}

func (e Endpoint) ItemsKey(id uuid.UUID) querycache.Key {
	return querycache.Key{e.Kind, "items", id.String()}
}

func (e Endpoint) ListPath(parentID uuid.UUID) string {
	if e.Parent != "" {
		return apiPrefix + "/" + e.Parent + "/" + parentID.String() + "/" + e.Resource
	}

	return apiPrefix + "/" + e.Resource
}

func (e Endpoint) CollectionPath() string {
	return apiPrefix + "/" + e.Resource
}

func (e Endpoint) DetailPath(id uuid.UUID) string {
	return e.CollectionPath() + "/" + id.String()
}

func (e Endpoint) ActionPath(id uuid.UUID, action string) string {
	return e.DetailPath(id) + "/" + action
}

func (e Endpoint) ItemsPath(id uuid.UUID) string {
	return e.DetailPath(id) + "/" + e.Items
}

func (e Endpoint) ItemPath(id, itemID uuid.UUID) string {
	return e.ItemsPath(id) + "/" + itemID.String()
}

// Filter narrows a list query. Zero values are omitted from the query string.
type Filter struct {
	Status workflow.Status
	Search string
	Page   int
	Limit  int
	Extra  url.Values
}

func (f Filter) Values() url.Values {
	v := url.Values{}

	if f.Status != "" {
		v.Set("status", string(f.Status))
	}

	if s := strings.TrimSpace(f.Search); s != "" {
		v.Set("search", s)
	}

	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}

	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}

	for k, vals := range f.Extra {
		for _, val := range vals {
			if val != "" {
				v.Add(k, val)
			}
		}
	}

	return v
}

// Encode is the canonical, order independent form used in cache keys.
func (f Filter) Encode() string {
	v := f.Values()
	for k := range v {
		slices.Sort(v[k])
	}

	return v.Encode()
}

// Page is one page of a list response.
type Page[T any] struct {
	Items []T
	Total int
}

// ParseID turns a route id into a uuid. Malformed ids are reported as not
// found so callers render an empty state.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrNotFound
	}

	return id, nil
}
