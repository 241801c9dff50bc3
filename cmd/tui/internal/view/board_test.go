package view

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/procura/internal/boq"
	"github.com/MrJamesThe3rd/procura/internal/resource"
	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

// loadedBoard is a BOQ board showing one document in status.
func loadedBoard(t *testing.T, status workflow.Status, removed *int) BoardModel {
	t.Helper()

	src := boardSource{
		title:   "ВОР",
		machine: boq.Workflow,
		role:    workflow.RoleManager,
		list: func(context.Context, resource.Filter) ([]boardRow, int, error) {
			return nil, 0, nil
		},
		remove: func(context.Context, resource.Entity) error {
			*removed++
			return nil
		},
	}

	m := newBoard(&Services{}, src)

	model, _ := m.Update(boardLoadedMsg{
		rows:  []boardRow{{entity: testEntity{id: uuid.New(), status: status}, number: "ВОР-001", title: "Фундамент"}},
		total: 1,
	})

	return model.(BoardModel)
}

func TestBoard_Keys(t *testing.T) {
	type testCase struct {
		name       string
		status     workflow.Status
		key        string
		wantState  boardState
		wantStatus string
	}

	tests := []testCase{
		{name: "PeriodPicker", status: workflow.StatusDraft, key: "p", wantState: boardStateTimeframe},
		{name: "DeleteDraft", status: workflow.StatusDraft, key: "x", wantState: boardStateDelete},
		{name: "DeleteKey", status: workflow.StatusDraft, key: "delete", wantState: boardStateDelete},
		{name: "DeleteApproved", status: workflow.StatusApproved, key: "x", wantState: boardStateBrowse, wantStatus: "Удалить можно только черновик"},
		{name: "DIsNotDelete", status: workflow.StatusDraft, key: "d", wantState: boardStateBrowse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var removed int

			m := loadedBoard(t, tt.status, &removed)

			model, _ := m.Update(key(tt.key))
			got := model.(BoardModel)

			assert.Equal(t, tt.wantState, got.state)
			assert.Contains(t, got.status, tt.wantStatus)
			assert.Zero(t, removed, "nothing is removed without confirmation")
		})
	}
}

func TestBoard_HelpNamesDeleteKey(t *testing.T) {
	var removed int

	m := loadedBoard(t, workflow.StatusDraft, &removed)

	require.Contains(t, m.ShortHelp(), "x: удалить")
	assert.Contains(t, m.ShortHelp(), "p: период")
}
