package view

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/procura/internal/boq"
	"github.com/MrJamesThe3rd/procura/internal/drafts"
	"github.com/MrJamesThe3rd/procura/internal/estimate"
	"github.com/MrJamesThe3rd/procura/internal/export"
	"github.com/MrJamesThe3rd/procura/internal/importer"
	"github.com/MrJamesThe3rd/procura/internal/material"
	"github.com/MrJamesThe3rd/procura/internal/notification"
	"github.com/MrJamesThe3rd/procura/internal/order"
	"github.com/MrJamesThe3rd/procura/internal/organization"
	"github.com/MrJamesThe3rd/procura/internal/project"
	"github.com/MrJamesThe3rd/procura/internal/request"
	"github.com/MrJamesThe3rd/procura/internal/session"
	"github.com/MrJamesThe3rd/procura/internal/tender"
	"github.com/MrJamesThe3rd/procura/internal/volume"
)

const defaultTimeout = 30 * time.Second

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all views.
type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// ShownMsg is sent to a screen when the one above it closes. Screens showing
// server data reload on it.
type ShownMsg struct{}

// PushMsg opens a screen on top of the current one.
type PushMsg struct {
	View View
}

func Push(v View) tea.Cmd {
	return func() tea.Msg {
		return PushMsg{View: v}
	}
}

// Services are the handles the screens work with.
type Services struct {
	Projects      *project.Handle
	Organizations *organization.Handle
	Materials     *material.Handle
	BOQs          *boq.Handle
	Estimates     *estimate.Handle
	Volumes       *volume.Handle
	Requests      *request.Handle
	Tenders       *tender.Handle
	Orders        *order.Handle
	Notifications *notification.Handle

	Drafts   *drafts.Service
	Importer *importer.Service
	Export   *export.Service

	Session        session.Session
	Timeout        time.Duration
	SearchDebounce time.Duration
	NotifyInterval time.Duration
	ExportDir      string
}

// Ctx returns a context bounded by the request timeout. Commands create it
// when they start so a mutation is never cut short by the screen closing.
func (s *Services) Ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.RequestTimeout())
}

// RequestTimeout is the budget of a single API request.
func (s *Services) RequestTimeout() time.Duration {
	if s.Timeout <= 0 {
		return defaultTimeout
	}

	return s.Timeout
}
