package request_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/procura/internal/apitest"
	"github.com/MrJamesThe3rd/procura/internal/document"
	"github.com/MrJamesThe3rd/procura/internal/querycache"
	"github.com/MrJamesThe3rd/procura/internal/request"
	"github.com/MrJamesThe3rd/procura/internal/resource"
	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

func newHandle(t *testing.T, srv *apitest.Server, role workflow.Role) *request.Handle {
	t.Helper()

	return request.NewHandle(resource.Deps{
		API:    srv.Client(t),
		Loader: querycache.NewLoader(querycache.NewStore(10, time.Minute), nil),
		Role:   role,
	})
}

func TestWorkflows_Valid(t *testing.T) {
	for _, m := range []*workflow.Machine{request.Workflow, request.LetterWorkflow, request.AdvanceWorkflow} {
		t.Run(m.Kind, func(t *testing.T) {
			require.NoError(t, m.Validate())
		})
	}
}

func TestWorkflow_DraftOffersOnlySubmit(t *testing.T) {
	for _, role := range []workflow.Role{workflow.RoleAdmin, workflow.RoleManager, workflow.RoleBuyer, ""} {
		t.Run(string(role), func(t *testing.T) {
			available := request.Workflow.Available(workflow.StatusDraft, role)
			require.Len(t, available, 1)
			assert.Equal(t, workflow.ActionSubmit, available[0].Action)
			assert.False(t, request.Workflow.Can(workflow.StatusDraft, workflow.ActionApprove, role))
		})
	}
}

func TestHandle_ApproveDraftMakesNoRequest(t *testing.T) {
	srv := apitest.New(t)
	h := newHandle(t, srv, workflow.RoleManager)

	pr := request.PurchaseRequest{Header: document.Header{ID: uuid.New(), Status: workflow.StatusDraft}}

	_, err := h.Mutations.Transition(context.Background(), pr, workflow.ActionApprove, "")
	assert.ErrorIs(t, err, workflow.ErrTransitionNotAllowed)
	assert.Empty(t, srv.Calls())
}

func TestHandle_SubmitUsesEndpoint(t *testing.T) {
	id := uuid.New()
	srv := apitest.New(t)
	srv.Respond(http.MethodPost, "/api/v1/purchase-requests/{id}/submit", http.StatusOK,
		request.PurchaseRequest{Header: document.Header{ID: id, Status: workflow.StatusReview}})

	h := newHandle(t, srv, workflow.RoleEngineer)

	got, err := h.Mutations.Transition(context.Background(),
		request.PurchaseRequest{Header: document.Header{ID: id, Status: workflow.StatusDraft}}, workflow.ActionSubmit, "")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusReview, got.Status)
	assert.Len(t, srv.CallsTo(http.MethodPost, "/api/v1/purchase-requests/"+id.String()+"/submit"), 1)
}

func TestHandle_CreateSendsNeededByDate(t *testing.T) {
	srv := apitest.New(t)
	srv.Respond(http.MethodPost, "/api/v1/purchase-requests", http.StatusCreated, request.PurchaseRequest{Header: document.Header{ID: uuid.New()}})

	_, err := newHandle(t, srv, "").Mutations.Create(context.Background(), request.CreateParams{
		ProjectID:   uuid.New(),
		EstimateID:  uuid.New(),
		FundingType: request.FundingAdvance,
		NeededBy:    document.NewDate(2026, time.November, 2),
	})
	require.NoError(t, err)

	calls := srv.Calls()
	require.Len(t, calls, 1)

	var body map[string]any
	calls[0].DecodeJSON(t, &body)
	assert.Equal(t, "2026-11-02", body["needed_by"])
	assert.Equal(t, "advance", body["funding_type"])
}

func TestHandle_Funding(t *testing.T) {
	reqID := uuid.New()
	srv := apitest.New(t)
	srv.RespondList("/api/v1/purchase-requests/{id}/distribution-letters", []request.DistributionLetter{
		{Header: document.Header{ID: uuid.New(), Number: "РП-3"}, Amount: decimal.NewFromInt(150000)},
	}, 1)
	srv.RespondList("/api/v1/purchase-requests/{id}/advances", []request.Advance{
		{Header: document.Header{ID: uuid.New()}, Percent: decimal.NewFromInt(30)},
	}, 1)

	h := newHandle(t, srv, "")

	type testCase struct {
		funding     request.FundingType
		wantLetters int
		wantAdv     int
		wantCalls   int
	}

	tests := []testCase{
		{funding: request.FundingOwn},
		{funding: request.FundingDistributionLetter, wantLetters: 1, wantCalls: 1},
		{funding: request.FundingAdvance, wantAdv: 1, wantCalls: 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.funding), func(t *testing.T) {
			letters, advances, err := h.Funding(context.Background(), &request.PurchaseRequest{
				Header:      document.Header{ID: reqID},
				FundingType: tt.funding,
			})
			require.NoError(t, err)
			assert.Len(t, letters, tt.wantLetters)
			assert.Len(t, advances, tt.wantAdv)
			assert.Len(t, srv.Calls(), tt.wantCalls)
		})
	}
}

func TestLetter_ApproveInvalidatesRequestDetails(t *testing.T) {
	id := uuid.New()
	srv := apitest.New(t)
	srv.Respond(http.MethodPost, "/api/v1/distribution-letters/{id}/approve", http.StatusOK,
		request.DistributionLetter{Header: document.Header{ID: id, Status: workflow.StatusApproved}})

	cache := querycache.NewMockCache(gomock.NewController(t))
	gomock.InOrder(
		cache.EXPECT().InvalidatePrefix(request.LetterEndpoint.ListPrefix()).Return(1),
		cache.EXPECT().InvalidatePrefix(request.LetterEndpoint.DetailKey(id)).Return(0),
		cache.EXPECT().InvalidatePrefix(querycache.Key{"purchase_request", "detail"}).Return(1),
	)

	h := request.NewHandle(resource.Deps{
		API:    srv.Client(t),
		Loader: querycache.NewLoader(cache, nil),
		Role:   workflow.RoleManager,
	})

	_, err := h.Letters.Mutations.Transition(context.Background(),
		request.DistributionLetter{Header: document.Header{ID: id, Status: workflow.StatusReview}}, workflow.ActionApprove, "")
	require.NoError(t, err)
}

func TestAdvance_PayIsAccountantOnly(t *testing.T) {
	assert.True(t, request.AdvanceWorkflow.Can(workflow.StatusApproved, workflow.ActionPay, workflow.RoleAccountant))
	assert.False(t, request.AdvanceWorkflow.Can(workflow.StatusApproved, workflow.ActionPay, workflow.RoleManager))
	assert.Nil(t, request.AdvanceWorkflow.Available(workflow.StatusPaid, workflow.RoleAdmin))
}

func TestFundingType(t *testing.T) {
	assert.True(t, request.FundingAdvance.Valid())
	assert.False(t, request.FundingType("barter").Valid())
	assert.Equal(t, "barter", request.FundingType("barter").Label())
}
