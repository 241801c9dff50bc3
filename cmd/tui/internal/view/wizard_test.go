package view

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/procura/internal/apitest"
	"github.com/MrJamesThe3rd/procura/internal/document"
	"github.com/MrJamesThe3rd/procura/internal/drafts"
	"github.com/MrJamesThe3rd/procura/internal/request"
	"github.com/MrJamesThe3rd/procura/internal/wizard"
)

// requestDraft is a saved request wizard stopped on the lines step.
func requestDraft(t *testing.T) *drafts.Draft {
	t.Helper()

	w := wizard.NewRequest(uuid.New())
	w.EstimateID = uuid.New()
	w.EstimateTitle = "Смета на фундамент"
	w.NeededBy = document.NewDate(2026, time.April, 1)
	w.Lines = []request.ItemParams{
		{Section: "Фундамент", Name: "Бетон B25", Unit: "м3", Quantity: decimal.NewFromInt(12), UnitPrice: decimal.NewFromInt(5400)},
		{Section: "Фундамент", Name: "Арматура A500", Unit: "т", Quantity: decimal.RequireFromString("1.5"), UnitPrice: decimal.NewFromInt(78000)},
	}

	payload, err := json.Marshal(w)
	require.NoError(t, err)

	return &drafts.Draft{
		ID:      uuid.New(),
		Kind:    drafts.KindRequest,
		Title:   "Заявка",
		Step:    int(wizard.StepLines),
		Payload: payload,
	}
}

func wizardServices(repo drafts.Repository) *Services {
	return &Services{Drafts: drafts.NewService(repo), Timeout: 5 * time.Second}
}

func TestWizard_ResumesOnSavedStep(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := requestDraft(t)

	m := NewRequestWizard(wizardServices(drafts.NewMockRepository(ctrl)), uuid.Nil, d)
	require.NoError(t, m.err)

	model, _ := m.Update(exec(m.Init()))
	got := model.(WizardModel)

	assert.Equal(t, wizStateLines, got.state)
	assert.Len(t, got.flow.lines(), 2)
	assert.Contains(t, got.View(), "Итого: 181")
}

func TestWizard_WrongDraftKind(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := requestDraft(t)
	d.Kind = drafts.KindEstimate

	m := NewRequestWizard(wizardServices(drafts.NewMockRepository(ctrl)), uuid.New(), d)
	assert.Error(t, m.err)
	assert.Equal(t, wizard.StepSource, m.flow.step(), "falls back to a fresh wizard")
}

func TestWizard_EscSavesDraftAndLeaves(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := drafts.NewMockRepository(ctrl)
	d := requestDraft(t)

	var saved *drafts.Draft

	repo.EXPECT().
		Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, got *drafts.Draft) error {
			saved = got
			return nil
		})

	m := NewRequestWizard(wizardServices(repo), uuid.Nil, d)
	model, _ := m.Update(exec(m.Init()))

	// Drop the first line, then leave.
	model, _ = model.Update(key("x"))
	require.Len(t, model.(WizardModel).flow.lines(), 1)

	model, cmd := model.Update(key("esc"))
	msg := exec(cmd)
	require.IsType(t, wizSavedMsg{}, msg)

	_, cmd = model.Update(msg)
	assert.IsType(t, BackMsg{}, exec(cmd))

	require.NotNil(t, saved)
	assert.Equal(t, d.ID, saved.ID, "the same draft is overwritten")
	assert.Equal(t, int(wizard.StepLines), saved.Step)

	restored, err := wizard.RestoreRequest(saved)
	require.NoError(t, err)
	require.Len(t, restored.Lines, 1)
	assert.Equal(t, "Арматура A500", restored.Lines[0].Name)
}

func TestWizard_LinesToReviewAndBack(t *testing.T) {
	ctrl := gomock.NewController(t)

	m := NewRequestWizard(wizardServices(drafts.NewMockRepository(ctrl)), uuid.Nil, requestDraft(t))
	model, _ := m.Update(exec(m.Init()))

	model, _ = model.Update(key("enter"))
	got := model.(WizardModel)
	require.Equal(t, wizStateReview, got.state)
	assert.Contains(t, got.View(), "Смета на фундамент")

	model, cmd := model.Update(key("ctrl+b"))
	assert.Nil(t, cmd)
	assert.Equal(t, wizStateLines, model.(WizardModel).state)
}

func TestWizard_EmptyLinesBlockNext(t *testing.T) {
	ctrl := gomock.NewController(t)

	m := NewRequestWizard(wizardServices(drafts.NewMockRepository(ctrl)), uuid.Nil, requestDraft(t))
	model, _ := m.Update(exec(m.Init()))

	model, _ = model.Update(key("x"))
	model, _ = model.Update(key("x"))
	model, _ = model.Update(key("enter"))

	got := model.(WizardModel)
	assert.Equal(t, wizStateLines, got.state)
	assert.Error(t, got.err)
}

func TestWizard_SubmitPartialFailureSavesHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := drafts.NewMockRepository(ctrl)
	srv := apitest.New(t)

	headerID := uuid.New()
	srv.Respond(http.MethodPost, "/api/v1/purchase-requests", http.StatusCreated,
		request.PurchaseRequest{Header: document.Header{ID: headerID}})

	var items atomic.Int32

	srv.Handle(http.MethodPost, "/api/v1/purchase-requests/{id}/items", func(w http.ResponseWriter, _ *http.Request) {
		if items.Add(1) == 1 {
			apitest.WriteEnvelope(w, http.StatusCreated, map[string]any{"data": request.Item{ID: uuid.New()}})
			return
		}

		apitest.WriteEnvelope(w, http.StatusInternalServerError, map[string]any{"error": map[string]string{"message": "Склад недоступен"}})
	})

	var saved *drafts.Draft

	repo.EXPECT().
		Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, got *drafts.Draft) error {
			saved = got
			return nil
		})

	svc := newTestServices(t, srv)
	svc.Drafts = drafts.NewService(repo)

	d := requestDraft(t)
	m := NewRequestWizard(svc, uuid.Nil, d)
	model, _ := m.Update(exec(m.Init()))
	model, _ = model.Update(key("enter"))

	shown := model.(WizardModel)
	require.Equal(t, wizStateReview, shown.state)

	msg := exec(shown.submitCmd())
	assert.False(t, shown.flow.started(), "a running submit leaves the shown wizard alone")

	submitted, ok := msg.(wizSubmittedMsg)
	require.True(t, ok)

	model, save := shown.Update(submitted)
	got := model.(WizardModel)

	assert.True(t, got.flow.started())
	assert.Equal(t, wizard.Progress{HeaderID: headerID, Created: 1}, got.flow.progress())
	require.NotNil(t, got.partial)
	assert.Contains(t, got.View(), "Создано строк 1 из 2")

	require.NotNil(t, save, "a partial failure saves the draft")
	model, _ = model.Update(exec(save))

	require.NotNil(t, saved)
	assert.Equal(t, d.ID, saved.ID)
	assert.Equal(t, headerID, saved.HeaderID)
	assert.Equal(t, 1, saved.Created)
	assert.Equal(t, d.ID, model.(WizardModel).flow.draftID())
}

func TestWizard_EscIgnoredWhileSubmitting(t *testing.T) {
	ctrl := gomock.NewController(t)

	m := NewRequestWizard(wizardServices(drafts.NewMockRepository(ctrl)), uuid.Nil, requestDraft(t))
	m.state = wizStateSubmitting

	_, cmd := m.Update(key("esc"))
	assert.Nil(t, cmd)
}
