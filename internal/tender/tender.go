// Package tender is competitive sourcing: a tender is published, bids are
// collected per lot, then it is closed and awarded.
package tender

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/procura/internal/document"
	"github.com/MrJamesThe3rd/procura/internal/resource"
	"github.com/MrJamesThe3rd/procura/internal/totals"
	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

type Tender struct {
	document.Header
	RequestID   *uuid.UUID          `json:"request_id,omitempty"`
	Title       string              `json:"title"`
	Deadline    *time.Time          `json:"deadline,omitempty"`
	WinnerID    *uuid.UUID          `json:"winner_id,omitempty"`
	StartPrice  decimal.NullDecimal `json:"start_price"`
	PublishedAt *time.Time          `json:"published_at,omitempty"`
}

// Lot is a biddable unit of a tender.
type Lot struct {
	ID         uuid.UUID           `json:"id"`
	TenderID   uuid.UUID           `json:"tender_id"`
	Number     int                 `json:"number"`
	Name       string              `json:"name"`
	Unit       string              `json:"unit"`
	Quantity   decimal.Decimal     `json:"quantity"`
	StartPrice decimal.Decimal     `json:"start_price"`
	Total      decimal.NullDecimal `json:"total"`
}

func (l Lot) Line() totals.Line {
	return totals.Line{Quantity: l.Quantity, UnitPrice: l.StartPrice, Total: l.Total}
}

type CreateParams struct {
	ProjectID uuid.UUID  `json:"project_id"`
	RequestID *uuid.UUID `json:"request_id,omitempty"`
	Title     string     `json:"title"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

type UpdateParams struct {
	Title    *string    `json:"title,omitempty"`
	Deadline *time.Time `json:"deadline,omitempty"`
	WinnerID *uuid.UUID `json:"winner_id,omitempty"`
}

type LotParams struct {
	Number     int             `json:"number"`
	Name       string          `json:"name"`
	Unit       string          `json:"unit"`
	Quantity   decimal.Decimal `json:"quantity"`
	StartPrice decimal.Decimal `json:"start_price"`
}

type LotUpdate struct {
	Name       *string          `json:"name,omitempty"`
	Quantity   *decimal.Decimal `json:"quantity,omitempty"`
	StartPrice *decimal.Decimal `json:"start_price,omitempty"`
}

var Workflow = &workflow.Machine{
	Kind:     "tender",
	Initial:  workflow.StatusDraft,
	States:   []workflow.Status{workflow.StatusDraft, workflow.StatusPublished, workflow.StatusClosed, workflow.StatusAwarded, workflow.StatusCancelled},
	Editable: []workflow.Status{workflow.StatusDraft},
	Terminal: []workflow.Status{workflow.StatusAwarded, workflow.StatusCancelled},
	Transitions: []workflow.Transition{
		{
			Action: workflow.ActionPublish,
			Label:  "Опубликовать",
			From:   []workflow.Status{workflow.StatusDraft},
			To:     workflow.StatusPublished,
			Mode:   workflow.ModeEndpoint,
			Roles:  []workflow.Role{workflow.RoleBuyer, workflow.RoleManager},
		},
		{
			Action: workflow.ActionClose,
			Label:  "Завершить приём заявок",
			From:   []workflow.Status{workflow.StatusPublished},
			To:     workflow.StatusClosed,
			Mode:   workflow.ModeEndpoint,
			Roles:  []workflow.Role{workflow.RoleBuyer, workflow.RoleManager},
		},
		{
			Action:          workflow.ActionAward,
			Label:           "Определить победителя",
			From:            []workflow.Status{workflow.StatusClosed},
			To:              workflow.StatusAwarded,
			Mode:            workflow.ModeEndpoint,
			CommentRequired: true,
			Roles:           []workflow.Role{workflow.RoleManager},
		},
		workflow.Cancel(workflow.StatusDraft, workflow.StatusPublished),
	},
}

var Endpoint = resource.Endpoint{
	Kind:     "tender",
	Resource: "tenders",
	Parent:   "projects",
	Items:    "lots",
	Fallbacks: resource.Fallbacks{
		Get:  "Не удалось загрузить тендер",
		List: "Не удалось загрузить тендеры",
	},
}

type Handle struct {
	Queries   *resource.Queries[Tender]
	Mutations *resource.Mutations[Tender, CreateParams, UpdateParams]
	Lots      *resource.Items[Lot, LotParams, LotUpdate]
}

func NewHandle(deps resource.Deps) *Handle {
	return &Handle{
		Queries:   resource.NewQueries[Tender](Endpoint, deps),
		Mutations: resource.NewMutations[Tender, CreateParams, UpdateParams](Endpoint, Workflow, deps),
		Lots:      resource.NewItems[Lot, LotParams, LotUpdate](Endpoint, deps),
	}
}

// Award records the winner and then moves the tender to awarded. If the
// second call fails the winner stays recorded on a closed tender and Award can
// simply be repeated.
func (h *Handle) Award(ctx context.Context, t *Tender, winnerID uuid.UUID, justification string) (*Tender, error) {
	if _, err := Workflow.Plan(t.Status, workflow.ActionAward, "", justification); err != nil {
		return nil, err
	}

	updated, err := h.Mutations.Update(ctx, t.ID, UpdateParams{WinnerID: &winnerID})
	if err != nil {
		return nil, fmt.Errorf("recording winner: %w", err)
	}

	return h.Mutations.Transition(ctx, updated, workflow.ActionAward, justification)
}
