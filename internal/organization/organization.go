// Package organization lists counterparties: contractors, suppliers and
// customers.
package organization

import (
	"context"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/procura/internal/resource"
)

type Role string

const (
	RoleContractor Role = "contractor"
	RoleSupplier   Role = "supplier"
	RoleCustomer   Role = "customer"
)

type Organization struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	INN   string    `json:"inn,omitempty"`
	KPP   string    `json:"kpp,omitempty"`
	Roles []Role    `json:"roles"`
	Phone string    `json:"phone,omitempty"`
	Email string    `json:"email,omitempty"`
}

func (o Organization) String() string {
	if o.INN == "" {
		return o.Name
	}

	return o.Name + " (ИНН " + o.INN + ")"
}

var Endpoint = resource.Endpoint{
	Kind:     "organization",
	Resource: "organizations",
	Fallbacks: resource.Fallbacks{
		Get:  "Не удалось загрузить организацию",
		List: "Не удалось загрузить список организаций",
	},
}

type Handle struct {
	Queries *resource.Queries[Organization]
}

func NewHandle(deps resource.Deps) *Handle {
	return &Handle{Queries: resource.NewQueries[Organization](Endpoint, deps)}
}

// ByRole lists organizations acting in role, optionally narrowed by search.
func (h *Handle) ByRole(ctx context.Context, role Role, search string) ([]Organization, error) {
	page, err := h.Queries.List(ctx, uuid.Nil, resource.Filter{
		Search: search,
		Extra:  map[string][]string{"role": {string(role)}},
	})
	if err != nil {
		return nil, err
	}

	return page.Items, nil
}
