package order_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/procura/internal/apitest"
	"github.com/MrJamesThe3rd/procura/internal/document"
	"github.com/MrJamesThe3rd/procura/internal/order"
	"github.com/MrJamesThe3rd/procura/internal/querycache"
	"github.com/MrJamesThe3rd/procura/internal/resource"
	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

func TestWorkflows_Valid(t *testing.T) {
	require.NoError(t, order.Workflow.Validate())
	require.NoError(t, order.DeliveryWorkflow.Validate())
}

func TestDelivery_ReceiveRefreshesOrder(t *testing.T) {
	orderID := uuid.New()
	deliveryID := uuid.New()

	srv := apitest.New(t)
	srv.Respond(http.MethodGet, "/api/v1/purchase-orders/{id}", http.StatusOK,
		order.PurchaseOrder{Header: document.Header{ID: orderID, Status: workflow.StatusConfirmed}})
	srv.Respond(http.MethodPost, "/api/v1/deliveries/{id}/receive", http.StatusOK,
		order.Delivery{Header: document.Header{ID: deliveryID, Status: workflow.StatusReceived}, OrderID: orderID})

	h := order.NewHandle(resource.Deps{
		API:    srv.Client(t),
		Loader: querycache.NewLoader(querycache.NewStore(10, time.Minute), nil),
	})

	_, err := h.Queries.Get(context.Background(), orderID)
	require.NoError(t, err)

	_, err = h.Deliveries.Mutations.Transition(context.Background(),
		order.Delivery{Header: document.Header{ID: deliveryID, Status: workflow.StatusExpected}}, workflow.ActionReceive, "")
	require.NoError(t, err)

	_, err = h.Queries.Get(context.Background(), orderID)
	require.NoError(t, err)

	assert.Len(t, srv.CallsTo(http.MethodGet, "/api/v1/purchase-orders/"+orderID.String()), 2)
}

func TestDelivery_RejectNeedsReason(t *testing.T) {
	_, err := order.DeliveryWorkflow.Plan(workflow.StatusExpected, workflow.ActionReject, "", "")
	assert.ErrorIs(t, err, workflow.ErrCommentRequired)

	tr, err := order.DeliveryWorkflow.Plan(workflow.StatusExpected, workflow.ActionReject, "", "Бой стекла")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusRejected, tr.To)
}
