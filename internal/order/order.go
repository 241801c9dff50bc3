// Package order is the purchase order placed with a supplier and the
// deliveries received against it.
package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/procura/internal/document"
	"github.com/MrJamesThe3rd/procura/internal/querycache"
	"github.com/MrJamesThe3rd/procura/internal/resource"
	"github.com/MrJamesThe3rd/procura/internal/totals"
	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

type PurchaseOrder struct {
	document.Header
	RequestID    *uuid.UUID          `json:"request_id,omitempty"`
	TenderID     *uuid.UUID          `json:"tender_id,omitempty"`
	SupplierID   uuid.UUID           `json:"supplier_id"`
	DeliveryDate document.Date       `json:"delivery_date"`
	Total        decimal.NullDecimal `json:"total"`
	ConfirmedAt  *time.Time          `json:"confirmed_at,omitempty"`
}

type Item struct {
	ID         uuid.UUID           `json:"id"`
	OrderID    uuid.UUID           `json:"order_id"`
	MaterialID *uuid.UUID          `json:"material_id,omitempty"`
	Name       string              `json:"name"`
	Unit       string              `json:"unit"`
	Quantity   decimal.Decimal     `json:"quantity"`
	UnitPrice  decimal.Decimal     `json:"unit_price"`
	Total      decimal.NullDecimal `json:"total"`
}

func (i Item) Line() totals.Line {
	return totals.Line{Quantity: i.Quantity, UnitPrice: i.UnitPrice, Total: i.Total}
}

type CreateParams struct {
	ProjectID    uuid.UUID     `json:"project_id"`
	RequestID    *uuid.UUID    `json:"request_id,omitempty"`
	TenderID     *uuid.UUID    `json:"tender_id,omitempty"`
	SupplierID   uuid.UUID     `json:"supplier_id"`
	DeliveryDate document.Date `json:"delivery_date"`
	Notes        string        `json:"notes,omitempty"`
}

type UpdateParams struct {
	DeliveryDate *document.Date `json:"delivery_date,omitempty"`
	Notes        *string        `json:"notes,omitempty"`
}

type ItemParams struct {
	MaterialID *uuid.UUID      `json:"material_id,omitempty"`
	Name       string          `json:"name"`
	Unit       string          `json:"unit"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

type ItemUpdate struct {
	Quantity  *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

var Workflow = &workflow.Machine{
	Kind:     "purchase_order",
	Initial:  workflow.StatusDraft,
	States:   []workflow.Status{workflow.StatusDraft, workflow.StatusSent, workflow.StatusConfirmed, workflow.StatusDelivered, workflow.StatusCancelled},
	Editable: []workflow.Status{workflow.StatusDraft},
	Terminal: []workflow.Status{workflow.StatusDelivered, workflow.StatusCancelled},
	Transitions: []workflow.Transition{
		{
			Action: workflow.ActionSubmit,
			Label:  "Отправить поставщику",
			From:   []workflow.Status{workflow.StatusDraft},
			To:     workflow.StatusSent,
			Mode:   workflow.ModeEndpoint,
			Roles:  []workflow.Role{workflow.RoleBuyer, workflow.RoleManager},
		},
		{
			Action: workflow.ActionApprove,
			Label:  "Подтверждён поставщиком",
			From:   []workflow.Status{workflow.StatusSent},
			To:     workflow.StatusConfirmed,
			Mode:   workflow.ModeEndpoint,
			Roles:  []workflow.Role{workflow.RoleBuyer, workflow.RoleManager},
		},
		{
			Action: workflow.ActionFulfill,
			Label:  "Поставка завершена",
			From:   []workflow.Status{workflow.StatusConfirmed},
			To:     workflow.StatusDelivered,
			Mode:   workflow.ModeEndpoint,
		},
		workflow.Cancel(workflow.StatusDraft, workflow.StatusSent),
	},
}

var Endpoint = resource.Endpoint{
	Kind:     "purchase_order",
	Resource: "purchase-orders",
	Parent:   "projects",
	Items:    "items",
	Fallbacks: resource.Fallbacks{
		Get:  "Не удалось загрузить заказ",
		List: "Не удалось загрузить заказы",
	},
}

type Handle struct {
	Queries   *resource.Queries[PurchaseOrder]
	Mutations *resource.Mutations[PurchaseOrder, CreateParams, UpdateParams]
	Items     *resource.Items[Item, ItemParams, ItemUpdate]

	Deliveries *DeliveryHandle
}

func NewHandle(deps resource.Deps) *Handle {
	return &Handle{
		Queries:    resource.NewQueries[PurchaseOrder](Endpoint, deps),
		Mutations:  resource.NewMutations[PurchaseOrder, CreateParams, UpdateParams](Endpoint, Workflow, deps),
		Items:      resource.NewItems[Item, ItemParams, ItemUpdate](Endpoint, deps),
		Deliveries: newDeliveryHandle(deps),
	}
}

// Delivery is one shipment received on site against an order.
type Delivery struct {
	document.Header
	OrderID    uuid.UUID     `json:"order_id"`
	ExpectedAt document.Date `json:"expected_at"`
	ReceivedAt *time.Time    `json:"received_at,omitempty"`
	WaybillNo  string        `json:"waybill_no,omitempty"`
	ReceivedBy string        `json:"received_by,omitempty"`
}

type DeliveryParams struct {
	OrderID    uuid.UUID     `json:"order_id"`
	ExpectedAt document.Date `json:"expected_at"`
	WaybillNo  string        `json:"waybill_no,omitempty"`
}

type DeliveryUpdate struct {
	ExpectedAt *document.Date `json:"expected_at,omitempty"`
	WaybillNo  *string        `json:"waybill_no,omitempty"`
}

var DeliveryWorkflow = &workflow.Machine{
	Kind:     "delivery",
	Initial:  workflow.StatusExpected,
	States:   []workflow.Status{workflow.StatusExpected, workflow.StatusReceived, workflow.StatusRejected},
	Editable: []workflow.Status{workflow.StatusExpected},
	Terminal: []workflow.Status{workflow.StatusReceived, workflow.StatusRejected},
	Transitions: []workflow.Transition{
		{
			Action: workflow.ActionReceive,
			Label:  "Принять",
			From:   []workflow.Status{workflow.StatusExpected},
			To:     workflow.StatusReceived,
			Mode:   workflow.ModeEndpoint,
		},
		{
			Action:          workflow.ActionReject,
			Label:           "Отказать в приёмке",
			From:            []workflow.Status{workflow.StatusExpected},
			To:              workflow.StatusRejected,
			Mode:            workflow.ModeStatusPatch,
			CommentRequired: true,
		},
	},
}

var DeliveryEndpoint = resource.Endpoint{
	Kind:     "delivery",
	Resource: "deliveries",
	Parent:   "purchase-orders",
	Fallbacks: resource.Fallbacks{
		List: "Не удалось загрузить поставки",
	},
}

type DeliveryHandle struct {
	Queries   *resource.Queries[Delivery]
	Mutations *resource.Mutations[Delivery, DeliveryParams, DeliveryUpdate]
}

func newDeliveryHandle(deps resource.Deps) *DeliveryHandle {
	// A received delivery can complete its order.
	m := resource.NewMutations[Delivery, DeliveryParams, DeliveryUpdate](DeliveryEndpoint, DeliveryWorkflow, deps).
		AlsoInvalidate(querycache.Key{Endpoint.Kind})

	return &DeliveryHandle{
		Queries:   resource.NewQueries[Delivery](DeliveryEndpoint, deps),
		Mutations: m,
	}
}
