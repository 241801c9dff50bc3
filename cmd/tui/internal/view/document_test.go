package view

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/procura/internal/boq"
	"github.com/MrJamesThe3rd/procura/internal/resource"
	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

type transitionCall struct {
	action  workflow.Action
	comment string
}

// loadedDocument is a BOQ-like document in status, already loaded.
func loadedDocument(t *testing.T, status workflow.Status, role workflow.Role, withLines bool, calls *[]transitionCall) DocumentModel {
	t.Helper()

	src := docSource{
		kind:    "ВОР",
		machine: boq.Workflow,
		role:    role,
		load: func(context.Context) (docData, error) {
			return docData{}, nil
		},
		transition: func(_ context.Context, _ resource.Entity, action workflow.Action, comment string) error {
			*calls = append(*calls, transitionCall{action: action, comment: comment})
			return nil
		},
	}

	if withLines {
		src.lines = &lineOps{}
	}

	m := newDocument(&Services{}, src)

	model, _ := m.Update(docLoadedMsg{data: docData{
		entity: testEntity{id: uuid.New(), status: status},
		number: "ВОР-001",
		lines: []docLine{
			{id: uuid.New(), section: "Фундамент", name: "Бетон", unit: "м3", quantity: decimal.NewFromInt(10), price: decimal.NewFromInt(5000)},
		},
	}})

	return model.(DocumentModel)
}

func TestDocument_LineControlsOnlyWhenEditable(t *testing.T) {
	type testCase struct {
		name      string
		status    workflow.Status
		withLines bool
		want      bool
	}

	tests := []testCase{
		{name: "DraftWithItems", status: workflow.StatusDraft, withLines: true, want: true},
		{name: "ReviewWithItems", status: workflow.StatusReview, withLines: true, want: true},
		{name: "Approved", status: workflow.StatusApproved, withLines: true, want: false},
		{name: "Archived", status: workflow.StatusArchived, withLines: true, want: false},
		{name: "ReadOnlyKind", status: workflow.StatusDraft, withLines: false, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []transitionCall

			m := loadedDocument(t, tt.status, workflow.RoleManager, tt.withLines, &calls)

			assert.Equal(t, tt.want, m.editable())
			assert.Equal(t, tt.want, strings.Contains(m.ShortHelp(), "n: добавить строку"))

			model, _ := m.Update(key("n"))
			assert.Equal(t, tt.want, model.(DocumentModel).state == docStateLine)
		})
	}
}

func TestDocument_ActionsFollowMachine(t *testing.T) {
	type testCase struct {
		name   string
		status workflow.Status
		role   workflow.Role
	}

	tests := []testCase{
		{name: "DraftEngineer", status: workflow.StatusDraft, role: workflow.RoleEngineer},
		{name: "ReviewManager", status: workflow.StatusReview, role: workflow.RoleManager},
		{name: "ReviewViewer", status: workflow.StatusReview, role: workflow.RoleViewer},
		{name: "Archived", status: workflow.StatusArchived, role: workflow.RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []transitionCall

			m := loadedDocument(t, tt.status, tt.role, true, &calls)
			offered := len(boq.Workflow.Available(tt.status, tt.role)) > 0

			model, _ := m.Update(key("a"))
			got := model.(DocumentModel)

			assert.Equal(t, offered, got.state == docStateAction)

			if offered {
				for _, tr := range got.actions.available {
					assert.True(t, boq.Workflow.Can(tt.status, tr.Action, tt.role), "offered %s", tr.Action)
				}
			} else {
				assert.Contains(t, got.status, "Нет доступных действий")
			}

			assert.Empty(t, calls)
		})
	}
}

func TestDocument_TransitionReloads(t *testing.T) {
	var calls []transitionCall

	m := loadedDocument(t, workflow.StatusReview, workflow.RoleManager, true, &calls)

	cmd := m.transitionCmd(actionChoice{
		tr:      workflow.Reject(workflow.StatusReview),
		comment: "Нет раздела кровли",
	})

	msg := exec(cmd)
	done, ok := msg.(docDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)

	require.Len(t, calls, 1)
	assert.Equal(t, workflow.ActionReject, calls[0].action)
	assert.Equal(t, "Нет раздела кровли", calls[0].comment)

	model, reload := m.Update(done)
	assert.NotNil(t, reload)
	assert.Contains(t, model.(DocumentModel).status, "ВОР-001")
}

func TestDocument_FailedMutationShowsMessage(t *testing.T) {
	var calls []transitionCall

	m := loadedDocument(t, workflow.StatusDraft, workflow.RoleManager, true, &calls)

	model, cmd := m.Update(docDoneMsg{err: errors.New("Недостаточно прав")})
	assert.Nil(t, cmd)
	assert.Contains(t, model.(DocumentModel).status, "Недостаточно прав")
}

func TestDocument_ShownReloads(t *testing.T) {
	var calls []transitionCall

	m := loadedDocument(t, workflow.StatusDraft, workflow.RoleManager, true, &calls)

	_, cmd := m.Update(ShownMsg{})
	require.NotNil(t, cmd)

	_, ok := exec(cmd).(docLoadedMsg)
	assert.True(t, ok)
}

func TestParseAmount(t *testing.T) {
	type testCase struct {
		name    string
		in      string
		want    string
		wantErr bool
	}

	tests := []testCase{
		{name: "Comma", in: "1 234,56", want: "1234.56"},
		{name: "Dot", in: "1234.56", want: "1234.56"},
		{name: "NoBreakSpace", in: "12\u00a0000", want: "12000"},
		{name: "Integer", in: " 7 ", want: "7"},
		{name: "Empty", in: "", wantErr: true},
		{name: "Letters", in: "abc", wantErr: true},
		{name: "Negative", in: "-5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestPositiveAmount(t *testing.T) {
	assert.Error(t, positiveAmount("0"))
	assert.NoError(t, positiveAmount("0,5"))
}

func TestDocument_Keys(t *testing.T) {
	type testCase struct {
		name      string
		key       string
		wantState docState
		wantPush  bool
	}

	tests := []testCase{
		{name: "DeleteLine", key: "x", wantState: docStateDelete},
		{name: "DeleteKey", key: "delete", wantState: docStateDelete},
		{name: "Export", key: "w", wantState: docStateBrowse, wantPush: true},
		{name: "DIsNotDelete", key: "d", wantState: docStateBrowse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []transitionCall

			m := loadedDocument(t, workflow.StatusDraft, workflow.RoleManager, true, &calls)

			model, cmd := m.Update(key(tt.key))
			assert.Equal(t, tt.wantState, model.(DocumentModel).state)

			if tt.wantPush {
				push, ok := exec(cmd).(PushMsg)
				require.True(t, ok)
				assert.IsType(t, ExportModel{}, push.View)
			}

			assert.Empty(t, calls)
		})
	}
}
