package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

func newMachine() *workflow.Machine {
	return &workflow.Machine{
		Kind:     "boq",
		Initial:  workflow.StatusDraft,
		States:   []workflow.Status{workflow.StatusDraft, workflow.StatusReview, workflow.StatusApproved, workflow.StatusArchived},
		Editable: []workflow.Status{workflow.StatusDraft, workflow.StatusReview},
		Terminal: []workflow.Status{workflow.StatusArchived},
		Transitions: []workflow.Transition{
			workflow.Submit(workflow.ModeStatusPatch),
			workflow.Approve(workflow.StatusReview, workflow.StatusApproved, workflow.RoleManager),
			workflow.Reject(workflow.StatusReview),
			workflow.Archive(workflow.StatusApproved),
		},
	}
}

func actions(ts []workflow.Transition) []workflow.Action {
	out := make([]workflow.Action, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Action)
	}

	return out
}

func TestMachine_Badge(t *testing.T) {
	m := newMachine()

	assert.Equal(t, workflow.Badge{Label: "Черновик", Color: workflow.ColorGray}, m.Badge(workflow.StatusDraft))
	assert.Equal(t, "Утверждён", m.Badge(workflow.StatusApproved).Label)

	t.Run("UnknownStatusShowsRawValue", func(t *testing.T) {
		assert.NotPanics(t, func() {
			assert.Equal(t, "on_hold", m.Badge("on_hold").Label)
		})
	})

	t.Run("StatusOfAnotherKindShowsRawValue", func(t *testing.T) {
		assert.Equal(t, "paid", m.Badge(workflow.StatusPaid).Label)
	})

	t.Run("Override", func(t *testing.T) {
		m.Badges = map[workflow.Status]workflow.Badge{workflow.StatusApproved: {Label: "Принят", Color: workflow.ColorGreen}}
		assert.Equal(t, "Принят", m.Badge(workflow.StatusApproved).Label)
	})
}

func TestMachine_Available(t *testing.T) {
	type testCase struct {
		name   string
		status workflow.Status
		role   workflow.Role
		want   []workflow.Action
	}

	tests := []testCase{
		{name: "Draft", status: workflow.StatusDraft, role: workflow.RoleManager, want: []workflow.Action{workflow.ActionSubmit}},
		{name: "ReviewManager", status: workflow.StatusReview, role: workflow.RoleManager, want: []workflow.Action{workflow.ActionApprove, workflow.ActionReject}},
		{name: "ReviewEngineer", status: workflow.StatusReview, role: workflow.RoleEngineer, want: []workflow.Action{workflow.ActionReject}},
		{name: "ReviewAdmin", status: workflow.StatusReview, role: workflow.RoleAdmin, want: []workflow.Action{workflow.ActionApprove, workflow.ActionReject}},
		{name: "ReviewUnknownRole", status: workflow.StatusReview, role: "", want: []workflow.Action{workflow.ActionApprove, workflow.ActionReject}},
		{name: "Approved", status: workflow.StatusApproved, role: workflow.RoleManager, want: []workflow.Action{workflow.ActionArchive}},
		{name: "Terminal", status: workflow.StatusArchived, role: workflow.RoleAdmin, want: []workflow.Action{}},
		{name: "Unknown", status: "on_hold", role: workflow.RoleAdmin, want: []workflow.Action{}},
	}

	m := newMachine()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, actions(m.Available(tt.status, tt.role)))
		})
	}
}

func TestMachine_ApproveNeverFromDraft(t *testing.T) {
	m := newMachine()

	assert.False(t, m.Can(workflow.StatusDraft, workflow.ActionApprove, workflow.RoleAdmin))
	assert.True(t, m.Can(workflow.StatusReview, workflow.ActionApprove, workflow.RoleAdmin))
}

func TestMachine_Plan(t *testing.T) {
	type testCase struct {
		name     string
		status   workflow.Status
		action   workflow.Action
		role     workflow.Role
		comment  string
		wantErr  error
		wantMode workflow.Mode
		wantTo   workflow.Status
	}

	tests := []testCase{
		{
			name:     "Submit",
			status:   workflow.StatusDraft,
			action:   workflow.ActionSubmit,
			wantMode: workflow.ModeStatusPatch,
			wantTo:   workflow.StatusReview,
		},
		{
			name:     "Approve",
			status:   workflow.StatusReview,
			action:   workflow.ActionApprove,
			role:     workflow.RoleManager,
			wantMode: workflow.ModeEndpoint,
			wantTo:   workflow.StatusApproved,
		},
		{
			name:     "RejectWithComment",
			status:   workflow.StatusReview,
			action:   workflow.ActionReject,
			comment:  "missing pricing",
			wantMode: workflow.ModeStatusPatch,
			wantTo:   workflow.StatusDraft,
		},
		{
			name:    "RejectWithoutComment",
			status:  workflow.StatusReview,
			action:  workflow.ActionReject,
			comment: "   ",
			wantErr: workflow.ErrCommentRequired,
		},
		{
			name:    "ApproveFromDraft",
			status:  workflow.StatusDraft,
			action:  workflow.ActionApprove,
			wantErr: workflow.ErrTransitionNotAllowed,
		},
		{
			name:    "ApproveAsEngineer",
			status:  workflow.StatusReview,
			action:  workflow.ActionApprove,
			role:    workflow.RoleEngineer,
			wantErr: workflow.ErrForbidden,
		},
		{
			name:    "UnknownAction",
			status:  workflow.StatusReview,
			action:  workflow.ActionPay,
			wantErr: workflow.ErrUnknownAction,
		},
	}

	m := newMachine()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := m.Plan(tt.status, tt.action, tt.role, tt.comment)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantMode, tr.Mode)
			assert.Equal(t, tt.wantTo, tr.To)
		})
	}
}

func TestTransition_Path(t *testing.T) {
	assert.Equal(t, "approve", workflow.Approve(workflow.StatusReview, workflow.StatusApproved).Path())

	tr := workflow.Transition{Action: workflow.ActionVerify, Endpoint: "verification"}
	assert.Equal(t, "verification", tr.Path())
}

func TestMachine_Validate(t *testing.T) {
	require.NoError(t, newMachine().Validate())

	type testCase struct {
		name   string
		mutate func(m *workflow.Machine)
	}

	tests := []testCase{
		{name: "NoKind", mutate: func(m *workflow.Machine) { m.Kind = "" }},
		{name: "BadInitial", mutate: func(m *workflow.Machine) { m.Initial = "new" }},
		{name: "UndeclaredEditable", mutate: func(m *workflow.Machine) { m.Editable = append(m.Editable, "open") }},
		{
			name: "LeavesTerminal",
			mutate: func(m *workflow.Machine) {
				m.Transitions = append(m.Transitions, workflow.Transition{
					Action: "restore", From: []workflow.Status{workflow.StatusArchived}, To: workflow.StatusDraft, Mode: workflow.ModeStatusPatch,
				})
			},
		},
		{
			name: "DuplicateEdge",
			mutate: func(m *workflow.Machine) {
				m.Transitions = append(m.Transitions, workflow.Submit(workflow.ModeEndpoint))
			},
		},
		{
			name: "NoMode",
			mutate: func(m *workflow.Machine) {
				m.Transitions = append(m.Transitions, workflow.Transition{
					Action: workflow.ActionVerify, From: []workflow.Status{workflow.StatusReview}, To: workflow.StatusApproved,
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMachine()
			tt.mutate(m)
			assert.Error(t, m.Validate())
		})
	}
}
