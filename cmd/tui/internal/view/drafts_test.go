package view

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/procura/internal/drafts"
)

func TestDrafts_EnterResumesMatchingWizard(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := drafts.NewMockRepository(ctrl)

	req := requestDraft(t)
	est := &drafts.Draft{ID: uuid.New(), Kind: drafts.KindEstimate, Title: "Смета", Payload: []byte(`{"step":0}`)}

	repo.EXPECT().List(gomock.Any(), drafts.Kind("")).Return([]*drafts.Draft{req, est}, nil)

	m := NewDraftsModel(wizardServices(repo), uuid.New())
	model, _ := m.Update(exec(m.Init()))

	_, cmd := model.Update(key("enter"))
	push, ok := exec(cmd).(PushMsg)
	require.True(t, ok)

	w, ok := push.View.(WizardModel)
	require.True(t, ok)
	assert.IsType(t, &requestFlow{}, w.flow)
	assert.Equal(t, req.ID, w.flow.(*requestFlow).w.DraftID)
}

func TestDrafts_DeleteAsksFirst(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := drafts.NewMockRepository(ctrl)
	d := requestDraft(t)

	gomock.InOrder(
		repo.EXPECT().List(gomock.Any(), gomock.Any()).Return([]*drafts.Draft{d}, nil),
		repo.EXPECT().Delete(gomock.Any(), d.ID).Return(nil),
	)

	m := NewDraftsModel(wizardServices(repo), uuid.Nil)
	model, _ := m.Update(exec(m.Init()))

	model, cmd := model.Update(key("x"))
	assert.Nil(t, cmd)
	assert.Contains(t, model.View(), "Удалить черновик")

	model, cmd = model.Update(key("y"))
	require.NotNil(t, cmd)

	_, reload := model.Update(exec(cmd))
	assert.NotNil(t, reload)
}
