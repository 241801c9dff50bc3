// Package project is the construction project every document belongs to.
package project

import (
	"context"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/procura/internal/document"
	"github.com/MrJamesThe3rd/procura/internal/resource"
)

type Project struct {
	ID         uuid.UUID     `json:"id"`
	Code       string        `json:"code"`
	Name       string        `json:"name"`
	Address    string        `json:"address,omitempty"`
	CustomerID *uuid.UUID    `json:"customer_id,omitempty"`
	StartDate  document.Date `json:"start_date"`
	EndDate    document.Date `json:"end_date"`
	Active     bool          `json:"is_active"`
}

func (p Project) String() string {
	if p.Code == "" {
		return p.Name
	}

	return p.Code + " · " + p.Name
}

var Endpoint = resource.Endpoint{
	Kind:     "project",
	Resource: "projects",
	Fallbacks: resource.Fallbacks{
		Get:  "Не удалось загрузить объект",
		List: "Не удалось загрузить список объектов",
	},
}

type Handle struct {
	Queries *resource.Queries[Project]
}

func NewHandle(deps resource.Deps) *Handle {
	return &Handle{Queries: resource.NewQueries[Project](Endpoint, deps)}
}

// Active lists the projects still under construction.
func (h *Handle) Active(ctx context.Context, search string) ([]Project, error) {
	page, err := h.Queries.List(ctx, uuid.Nil, resource.Filter{
		Search: search,
		Extra:  map[string][]string{"is_active": {"true"}},
	})
	if err != nil {
		return nil, err
	}

	return page.Items, nil
}
