package boq_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/procura/internal/apitest"
	"github.com/MrJamesThe3rd/procura/internal/boq"
	"github.com/MrJamesThe3rd/procura/internal/document"
	"github.com/MrJamesThe3rd/procura/internal/querycache"
	"github.com/MrJamesThe3rd/procura/internal/resource"
	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

func newHandle(t *testing.T, srv *apitest.Server) *boq.Handle {
	t.Helper()

	return boq.NewHandle(resource.Deps{
		API:    srv.Client(t),
		Loader: querycache.NewLoader(querycache.NewStore(50, time.Minute), nil),
		Role:   workflow.RoleEngineer,
	})
}

func TestWorkflow_Valid(t *testing.T) {
	require.NoError(t, boq.Workflow.Validate())
}

func TestWorkflow_EditableSubset(t *testing.T) {
	assert.True(t, boq.Workflow.IsEditable(workflow.StatusDraft))
	assert.True(t, boq.Workflow.IsEditable(workflow.StatusReview))
	assert.False(t, boq.Workflow.IsEditable(workflow.StatusApproved))
	assert.False(t, boq.Workflow.IsEditable(workflow.StatusArchived))
	assert.False(t, boq.Workflow.IsEditable("unknown"))
}

func TestItem_DecodesBackendTotal(t *testing.T) {
	srv := apitest.New(t)
	headerID := uuid.New()
	srv.RespondRaw(http.MethodGet, "/api/v1/boqs/{id}/items", http.StatusOK,
		`{"data":[{"id":"`+uuid.NewString()+`","section":"Фундаменты","name":"Бетон B25","unit":"м3","quantity":"12.5","unit_price":5400.1,"total":null},`+
			`{"id":"`+uuid.NewString()+`","section":"Фундаменты","name":"Арматура","unit":"т","quantity":2,"unit_price":"61000","total":"122000.00"}]}`)

	items, err := newHandle(t, srv).Items.List(context.Background(), headerID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.False(t, items[0].Total.Valid)
	assert.True(t, decimal.RequireFromString("12.5").Equal(items[0].Quantity))
	assert.True(t, items[1].Total.Valid)
	assert.True(t, decimal.RequireFromString("122000").Equal(items[1].Line().Total.Decimal))
}

func TestHandle_AddItems(t *testing.T) {
	b := &boq.BOQ{Header: document.Header{ID: uuid.New(), Number: "ВОР-7", Status: workflow.StatusDraft}}

	params := []boq.ItemParams{
		{Section: "Фундаменты", Name: "Бетон B25", Unit: "м3", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(5400)},
		{Section: "Фундаменты", Name: "Арматура А500", Unit: "т", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(61000)},
		{Section: "Каркас", Name: "Опалубка", Unit: "м2", Quantity: decimal.NewFromInt(40), UnitPrice: decimal.NewFromInt(800)},
	}

	t.Run("AllCreated", func(t *testing.T) {
		srv := apitest.New(t)
		srv.Respond(http.MethodPost, "/api/v1/boqs/{id}/items", http.StatusCreated, boq.Item{ID: uuid.New()})

		res, err := newHandle(t, srv).AddItems(context.Background(), b, params)
		require.NoError(t, err)
		assert.Equal(t, boq.ImportResult{Created: 3, Total: 3}, res)

		calls := srv.CallsTo(http.MethodPost, "/api/v1/boqs/"+b.ID.String()+"/items")
		require.Len(t, calls, 3)

		var first boq.ItemParams
		calls[0].DecodeJSON(t, &first)
		assert.Equal(t, "Бетон B25", first.Name)
	})

	t.Run("StopsAtFirstFailure", func(t *testing.T) {
		srv := apitest.New(t)

		var n atomic.Int32

		srv.Handle(http.MethodPost, "/api/v1/boqs/{id}/items", func(w http.ResponseWriter, _ *http.Request) {
			if n.Add(1) == 2 {
				apitest.WriteEnvelope(w, http.StatusUnprocessableEntity, map[string]any{"error": map[string]string{"message": "Единица измерения не найдена"}})
				return
			}

			apitest.WriteEnvelope(w, http.StatusCreated, map[string]any{"data": boq.Item{ID: uuid.New()}})
		})

		res, err := newHandle(t, srv).AddItems(context.Background(), b, params)
		require.Error(t, err)
		assert.Equal(t, 1, res.Created)
		assert.Contains(t, err.Error(), "Единица измерения не найдена")
		assert.Len(t, srv.Calls(), 2)
	})

	t.Run("NotEditable", func(t *testing.T) {
		srv := apitest.New(t)
		approved := &boq.BOQ{Header: document.Header{ID: uuid.New(), Status: workflow.StatusApproved}}

		_, err := newHandle(t, srv).AddItems(context.Background(), approved, params)
		assert.ErrorIs(t, err, document.ErrNotEditable)
		assert.Empty(t, srv.Calls())
	})
}

func TestHandle_Submit(t *testing.T) {
	srv := apitest.New(t)
	id := uuid.New()
	srv.Respond(http.MethodPut, "/api/v1/boqs/{id}", http.StatusOK, boq.BOQ{Header: document.Header{ID: id, Status: workflow.StatusReview}})

	h := newHandle(t, srv)

	got, err := h.Mutations.Transition(context.Background(), boq.BOQ{Header: document.Header{ID: id, Status: workflow.StatusDraft}}, workflow.ActionSubmit, "")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusReview, got.Status)

	calls := srv.CallsTo(http.MethodPut, "/api/v1/boqs/"+id.String())
	require.Len(t, calls, 1)

	var body map[string]any
	calls[0].DecodeJSON(t, &body)
	assert.Equal(t, map[string]any{"status": "review"}, body)
}

func TestHandle_EngineerCannotApprove(t *testing.T) {
	srv := apitest.New(t)
	h := newHandle(t, srv)

	_, err := h.Mutations.Transition(context.Background(), boq.BOQ{Header: document.Header{ID: uuid.New(), Status: workflow.StatusReview}}, workflow.ActionApprove, "")
	assert.ErrorIs(t, err, workflow.ErrForbidden)
	assert.Empty(t, srv.Calls())
}
