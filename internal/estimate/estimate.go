// Package estimate is the contractor cost estimate (Смета) priced from a BOQ.
package estimate

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/procura/internal/document"
	"github.com/MrJamesThe3rd/procura/internal/resource"
	"github.com/MrJamesThe3rd/procura/internal/totals"
	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

type Estimate struct {
	document.Header
	BOQID        uuid.UUID           `json:"boq_id"`
	ContractorID uuid.UUID           `json:"contractor_id"`
	Title        string              `json:"title"`
	Total        decimal.NullDecimal `json:"total"`
	ApprovedAt   *time.Time          `json:"approved_at,omitempty"`
}

type Item struct {
	ID         uuid.UUID           `json:"id"`
	EstimateID uuid.UUID           `json:"estimate_id"`
	BOQItemID  *uuid.UUID          `json:"boq_item_id,omitempty"`
	Section    string              `json:"section"`
	Name       string              `json:"name"`
	Unit       string              `json:"unit"`
	Quantity   decimal.Decimal     `json:"quantity"`
	UnitPrice  decimal.Decimal     `json:"unit_price"`
	Total      decimal.NullDecimal `json:"total"`
}

func (i Item) Line() totals.Line {
	return totals.Line{Section: i.Section, Quantity: i.Quantity, UnitPrice: i.UnitPrice, Total: i.Total}
}

type CreateParams struct {
	ProjectID    uuid.UUID `json:"project_id"`
	BOQID        uuid.UUID `json:"boq_id"`
	ContractorID uuid.UUID `json:"contractor_id"`
	Title        string    `json:"title"`
	Notes        string    `json:"notes,omitempty"`
}

type UpdateParams struct {
	Title        *string    `json:"title,omitempty"`
	ContractorID *uuid.UUID `json:"contractor_id,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
}

type ItemParams struct {
	BOQItemID *uuid.UUID      `json:"boq_item_id,omitempty"`
	Section   string          `json:"section"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type ItemUpdate struct {
	Quantity  *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

var Workflow = &workflow.Machine{
	Kind:     "estimate",
	Initial:  workflow.StatusDraft,
	States:   []workflow.Status{workflow.StatusDraft, workflow.StatusReview, workflow.StatusApproved, workflow.StatusArchived},
	Editable: []workflow.Status{workflow.StatusDraft, workflow.StatusReview},
	Terminal: []workflow.Status{workflow.StatusArchived},
	Transitions: []workflow.Transition{
		workflow.Submit(workflow.ModeStatusPatch),
		workflow.Approve(workflow.StatusReview, workflow.StatusApproved, workflow.RoleManager),
		workflow.Reject(workflow.StatusReview),
		workflow.Archive(workflow.StatusApproved),
	},
}

var Endpoint = resource.Endpoint{
	Kind:     "estimate",
	Resource: "estimates",
	Parent:   "projects",
	Items:    "items",
	Fallbacks: resource.Fallbacks{
		Get:    "Не удалось загрузить смету",
		List:   "Не удалось загрузить сметы",
		Create: "Не удалось создать смету",
	},
}

type Handle struct {
	Queries   *resource.Queries[Estimate]
	Mutations *resource.Mutations[Estimate, CreateParams, UpdateParams]
	Items     *resource.Items[Item, ItemParams, ItemUpdate]
}

func NewHandle(deps resource.Deps) *Handle {
	return &Handle{
		Queries:   resource.NewQueries[Estimate](Endpoint, deps),
		Mutations: resource.NewMutations[Estimate, CreateParams, UpdateParams](Endpoint, Workflow, deps),
		Items:     resource.NewItems[Item, ItemParams, ItemUpdate](Endpoint, deps),
	}
}

// Approved lists the approved estimates of a project, the sources a purchase
// request may be raised from.
func (h *Handle) Approved(ctx context.Context, projectID uuid.UUID) ([]Estimate, error) {
	page, err := h.Queries.List(ctx, projectID, resource.Filter{Status: workflow.StatusApproved})
	if err != nil {
		return nil, err
	}

	return page.Items, nil
}
