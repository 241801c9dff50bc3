// Package request is the purchase request (Заявка): materials to procure,
// raised from an approved estimate and classified by funding type.
package request

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/procura/internal/document"
	"github.com/MrJamesThe3rd/procura/internal/querycache"
	"github.com/MrJamesThe3rd/procura/internal/resource"
	"github.com/MrJamesThe3rd/procura/internal/totals"
	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

type FundingType string

const (
	FundingOwn                FundingType = "own"
	FundingDistributionLetter FundingType = "distribution_letter"
	FundingAdvance            FundingType = "advance"
)

var FundingTypes = []FundingType{FundingOwn, FundingDistributionLetter, FundingAdvance}

func (f FundingType) Label() string {
	switch f {
	case FundingOwn:
		return "Собственные средства"
	case FundingDistributionLetter:
		return "Распределительное письмо"
	case FundingAdvance:
		return "Авансирование поставщика"
	default:
		return string(f)
	}
}

func (f FundingType) Valid() bool {
	switch f {
	case FundingOwn, FundingDistributionLetter, FundingAdvance:
		return true
	default:
		return false
	}
}

type PurchaseRequest struct {
	document.Header
	EstimateID  uuid.UUID           `json:"estimate_id"`
	FundingType FundingType         `json:"funding_type"`
	NeededBy    document.Date       `json:"needed_by"`
	Total       decimal.NullDecimal `json:"total"`
	ApprovedAt  *time.Time          `json:"approved_at,omitempty"`
}

type Item struct {
	ID             uuid.UUID           `json:"id"`
	RequestID      uuid.UUID           `json:"request_id"`
	EstimateItemID *uuid.UUID          `json:"estimate_item_id,omitempty"`
	MaterialID     *uuid.UUID          `json:"material_id,omitempty"`
	Section        string              `json:"section,omitempty"`
	Name           string              `json:"name"`
	Unit           string              `json:"unit"`
	Quantity       decimal.Decimal     `json:"quantity"`
	UnitPrice      decimal.Decimal     `json:"unit_price"`
	Total          decimal.NullDecimal `json:"total"`
}

func (i Item) Line() totals.Line {
	return totals.Line{Section: i.Section, Quantity: i.Quantity, UnitPrice: i.UnitPrice, Total: i.Total}
}

type CreateParams struct {
	ProjectID   uuid.UUID     `json:"project_id"`
	EstimateID  uuid.UUID     `json:"estimate_id"`
	FundingType FundingType   `json:"funding_type"`
	NeededBy    document.Date `json:"needed_by"`
	Notes       string        `json:"notes,omitempty"`
}

type UpdateParams struct {
	FundingType *FundingType   `json:"funding_type,omitempty"`
	NeededBy    *document.Date `json:"needed_by,omitempty"`
	Notes       *string        `json:"notes,omitempty"`
}

type ItemParams struct {
	EstimateItemID *uuid.UUID      `json:"estimate_item_id,omitempty"`
	MaterialID     *uuid.UUID      `json:"material_id,omitempty"`
	Section        string          `json:"section,omitempty"`
	Name           string          `json:"name"`
	Unit           string          `json:"unit"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
}

type ItemUpdate struct {
	Quantity   *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice  *decimal.Decimal `json:"unit_price,omitempty"`
	MaterialID *uuid.UUID       `json:"material_id,omitempty"`
}

var Workflow = &workflow.Machine{
	Kind:     "purchase_request",
	Initial:  workflow.StatusDraft,
	States:   []workflow.Status{workflow.StatusDraft, workflow.StatusReview, workflow.StatusApproved, workflow.StatusOrdered, workflow.StatusFulfilled, workflow.StatusCancelled},
	Editable: []workflow.Status{workflow.StatusDraft, workflow.StatusReview},
	Terminal: []workflow.Status{workflow.StatusFulfilled, workflow.StatusCancelled},
	Transitions: []workflow.Transition{
		workflow.Submit(workflow.ModeEndpoint),
		workflow.Approve(workflow.StatusReview, workflow.StatusApproved, workflow.RoleManager),
		workflow.Reject(workflow.StatusReview),
		// Drafts are deleted rather than cancelled.
		workflow.Cancel(workflow.StatusReview, workflow.StatusApproved),
		{
			Action: workflow.ActionOrder,
			Label:  "Передать в закупку",
			From:   []workflow.Status{workflow.StatusApproved},
			To:     workflow.StatusOrdered,
			Mode:   workflow.ModeStatusPatch,
			Roles:  []workflow.Role{workflow.RoleBuyer, workflow.RoleManager},
		},
		{
			Action: workflow.ActionFulfill,
			Label:  "Исполнена",
			From:   []workflow.Status{workflow.StatusOrdered},
			To:     workflow.StatusFulfilled,
			Mode:   workflow.ModeEndpoint,
		},
	},
}

var Endpoint = resource.Endpoint{
	Kind:     "purchase_request",
	Resource: "purchase-requests",
	Parent:   "projects",
	Items:    "items",
	Fallbacks: resource.Fallbacks{
		Get:    "Не удалось загрузить заявку",
		List:   "Не удалось загрузить заявки",
		Create: "Не удалось создать заявку",
	},
}

type Handle struct {
	Queries   *resource.Queries[PurchaseRequest]
	Mutations *resource.Mutations[PurchaseRequest, CreateParams, UpdateParams]
	Items     *resource.Items[Item, ItemParams, ItemUpdate]

	Letters  *LetterHandle
	Advances *AdvanceHandle
}

func NewHandle(deps resource.Deps) *Handle {
	return &Handle{
		Queries:   resource.NewQueries[PurchaseRequest](Endpoint, deps),
		Mutations: resource.NewMutations[PurchaseRequest, CreateParams, UpdateParams](Endpoint, Workflow, deps),
		Items:     resource.NewItems[Item, ItemParams, ItemUpdate](Endpoint, deps),
		Letters:   newLetterHandle(deps),
		Advances:  newAdvanceHandle(deps),
	}
}

// Funding returns the sub-documents that back a request, depending on its
// funding type. Own-funded requests have none.
func (h *Handle) Funding(ctx context.Context, pr *PurchaseRequest) ([]DistributionLetter, []Advance, error) {
	switch pr.FundingType {
	case FundingDistributionLetter:
		page, err := h.Letters.Queries.List(ctx, pr.ID, resource.Filter{})
		return page.Items, nil, err
	case FundingAdvance:
		page, err := h.Advances.Queries.List(ctx, pr.ID, resource.Filter{})
		return nil, page.Items, err
	default:
		return nil, nil, nil
	}
}

// requestDetails is invalidated by sub-document writes: a request's detail
// shows its funding state.
var requestDetails = querycache.Key{Endpoint.Kind, "detail"}
