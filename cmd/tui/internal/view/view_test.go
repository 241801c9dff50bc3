package view

import (
	"io"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/procura/internal/apitest"
	"github.com/MrJamesThe3rd/procura/internal/material"
	"github.com/MrJamesThe3rd/procura/internal/notification"
	"github.com/MrJamesThe3rd/procura/internal/querycache"
	"github.com/MrJamesThe3rd/procura/internal/request"
	"github.com/MrJamesThe3rd/procura/internal/resource"
	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

// testEntity is a header document in a given status.
type testEntity struct {
	id     uuid.UUID
	status workflow.Status
}

func (e testEntity) EntityID() uuid.UUID           { return e.id }
func (e testEntity) EntityStatus() workflow.Status { return e.status }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServices wires handles against the fake backend.
func newTestServices(t *testing.T, srv *apitest.Server) *Services {
	t.Helper()

	deps := resource.Deps{
		API:    srv.Client(t),
		Loader: querycache.NewLoader(querycache.NewStore(32, time.Minute), discardLogger()),
		Logger: discardLogger(),
	}

	return &Services{
		Materials:      material.NewHandle(deps),
		Notifications:  notification.NewHandle(deps),
		Requests:       request.NewHandle(deps),
		Timeout:        5 * time.Second,
		SearchDebounce: 10 * time.Millisecond,
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+b":
		return tea.KeyMsg{Type: tea.KeyCtrlB}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "delete":
		return tea.KeyMsg{Type: tea.KeyDelete}
	}

	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// typeText feeds s to m one rune at a time.
func typeText(m tea.Model, s string) tea.Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	return m
}

// exec runs cmd and returns the message it produces, or nil.
func exec(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}

	return cmd()
}
