// Package boq is the bill of quantities (ВОР): a versioned list of work items
// with quantities and unit prices for a project.
package boq

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/procura/internal/document"
	"github.com/MrJamesThe3rd/procura/internal/totals"
	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

type BOQ struct {
	document.Header
	Title      string              `json:"title"`
	Total      decimal.NullDecimal `json:"total"`
	ApprovedAt *time.Time          `json:"approved_at,omitempty"`
}

type Item struct {
	ID         uuid.UUID           `json:"id"`
	BOQID      uuid.UUID           `json:"boq_id"`
	Section    string              `json:"section"`
	Code       string              `json:"code,omitempty"`
	Name       string              `json:"name"`
	Unit       string              `json:"unit"`
	Quantity   decimal.Decimal     `json:"quantity"`
	UnitPrice  decimal.Decimal     `json:"unit_price"`
	Total      decimal.NullDecimal `json:"total"`
	MaterialID *uuid.UUID          `json:"material_id,omitempty"`
}

func (i Item) Line() totals.Line {
	return totals.Line{Section: i.Section, Quantity: i.Quantity, UnitPrice: i.UnitPrice, Total: i.Total}
}

type CreateParams struct {
	ProjectID uuid.UUID `json:"project_id"`
	Title     string    `json:"title"`
	Notes     string    `json:"notes,omitempty"`
}

type UpdateParams struct {
	Title *string `json:"title,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

type ItemParams struct {
	Section    string          `json:"section"`
	Code       string          `json:"code,omitempty"`
	Name       string          `json:"name"`
	Unit       string          `json:"unit"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	MaterialID *uuid.UUID      `json:"material_id,omitempty"`
}

type ItemUpdate struct {
	Section   *string          `json:"section,omitempty"`
	Name      *string          `json:"name,omitempty"`
	Unit      *string          `json:"unit,omitempty"`
	Quantity  *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

var Workflow = &workflow.Machine{
	Kind:     "boq",
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
