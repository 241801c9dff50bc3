package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/procura/internal/document"
	"github.com/MrJamesThe3rd/procura/internal/resource"
	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

// DistributionLetter instructs the customer to pay a supplier directly for a
// request.
type DistributionLetter struct {
	document.Header
	RequestID  uuid.UUID       `json:"request_id"`
	SupplierID uuid.UUID       `json:"supplier_id"`
	Amount     decimal.Decimal `json:"amount"`
	ApprovedAt *time.Time      `json:"approved_at,omitempty"`
}

type LetterParams struct {
	RequestID  uuid.UUID       `json:"request_id"`
	SupplierID uuid.UUID       `json:"supplier_id"`
	Amount     decimal.Decimal `json:"amount"`
	Notes      string          `json:"notes,omitempty"`
}

type LetterUpdate struct {
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Notes  *string          `json:"notes,omitempty"`
}

var LetterWorkflow = &workflow.Machine{
	Kind:     "distribution_letter",
	Initial:  workflow.StatusDraft,
	States:   []workflow.Status{workflow.StatusDraft, workflow.StatusReview, workflow.StatusApproved, workflow.StatusCancelled},
	Editable: []workflow.Status{workflow.StatusDraft},
	Terminal: []workflow.Status{workflow.StatusApproved, workflow.StatusCancelled},
	Transitions: []workflow.Transition{
		workflow.Submit(workflow.ModeEndpoint),
		workflow.Approve(workflow.StatusReview, workflow.StatusApproved, workflow.RoleManager),
		workflow.Reject(workflow.StatusReview),
		workflow.Cancel(workflow.StatusDraft, workflow.StatusReview),
	},
}

var LetterEndpoint = resource.Endpoint{
	Kind:     "distribution_letter",
	Resource: "distribution-letters",
	Parent:   "purchase-requests",
	Fallbacks: resource.Fallbacks{
		List:   "Не удалось загрузить распределительные письма",
		Create: "Не удалось создать распределительное письмо",
	},
}

type LetterHandle struct {
	Queries   *resource.Queries[DistributionLetter]
	Mutations *resource.Mutations[DistributionLetter, LetterParams, LetterUpdate]
}

func newLetterHandle(deps resource.Deps) *LetterHandle {
	return &LetterHandle{
		Queries:   resource.NewQueries[DistributionLetter](LetterEndpoint, deps),
		Mutations: resource.NewMutations[DistributionLetter, LetterParams, LetterUpdate](LetterEndpoint, LetterWorkflow, deps).AlsoInvalidate(requestDetails),
	}
}

// Advance is a prepayment to a supplier for a request.
type Advance struct {
	document.Header
	RequestID  uuid.UUID       `json:"request_id"`
	SupplierID uuid.UUID       `json:"supplier_id"`
	Amount     decimal.Decimal `json:"amount"`
	Percent    decimal.Decimal `json:"percent"`
	DueDate    document.Date   `json:"due_date"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
}

type AdvanceParams struct {
	RequestID  uuid.UUID       `json:"request_id"`
	SupplierID uuid.UUID       `json:"supplier_id"`
	Amount     decimal.Decimal `json:"amount"`
	Percent    decimal.Decimal `json:"percent"`
	DueDate    document.Date   `json:"due_date"`
}

type AdvanceUpdate struct {
	Amount  *decimal.Decimal `json:"amount,omitempty"`
	DueDate *document.Date   `json:"due_date,omitempty"`
}

var AdvanceWorkflow = &workflow.Machine{
	Kind:     "advance",
	Initial:  workflow.StatusDraft,
	States:   []workflow.Status{workflow.StatusDraft, workflow.StatusReview, workflow.StatusApproved, workflow.StatusPaid, workflow.StatusCancelled},
	Editable: []workflow.Status{workflow.StatusDraft},
	Terminal: []workflow.Status{workflow.StatusPaid, workflow.StatusCancelled},
	Transitions: []workflow.Transition{
		workflow.Submit(workflow.ModeEndpoint),
		workflow.Approve(workflow.StatusReview, workflow.StatusApproved, workflow.RoleManager),
		workflow.Reject(workflow.StatusReview),
		{
			Action: workflow.ActionPay,
			Label:  "Оплачен",
			From:   []workflow.Status{workflow.StatusApproved},
			To:     workflow.StatusPaid,
			Mode:   workflow.ModeEndpoint,
			Roles:  []workflow.Role{workflow.RoleAccountant},
		},
		workflow.Cancel(workflow.StatusDraft, workflow.StatusReview, workflow.StatusApproved),
	},
}

var AdvanceEndpoint = resource.Endpoint{
	Kind:     "advance",
	Resource: "advances",
	Parent:   "purchase-requests",
	Fallbacks: resource.Fallbacks{
		List:   "Не удалось загрузить авансы",
		Create: "Не удалось создать аванс",
	},
}

type AdvanceHandle struct {
	Queries   *resource.Queries[Advance]
	Mutations *resource.Mutations[Advance, AdvanceParams, AdvanceUpdate]
}

func newAdvanceHandle(deps resource.Deps) *AdvanceHandle {
	return &AdvanceHandle{
		Queries:   resource.NewQueries[Advance](AdvanceEndpoint, deps),
		Mutations: resource.NewMutations[Advance, AdvanceParams, AdvanceUpdate](AdvanceEndpoint, AdvanceWorkflow, deps).AlsoInvalidate(requestDetails),
	}
}
