package view

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

const defaultNotifyInterval = 30 * time.Second

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	badgeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("161")).Padding(0, 1)
)

// App is the root model. Screens are stacked: Push opens one on top, Back
// closes it and the screen below receives ShownMsg.
type App struct {
	svc    *Services
	logger *slog.Logger

	stack  []View
	width  int
	height int
	unread int
}

func NewApp(svc *Services, logger *slog.Logger, root View) App {
	return App{svc: svc, logger: logger, stack: []View{root}}
}

type unreadMsg struct {
	count int
	err   error
	// poll schedules the next request.
	poll bool
}

type unreadTickMsg struct{}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.top().Init(), a.unreadCmd(true))
}

func (a App) top() View {
	return a.stack[len(a.stack)-1]
}

func (a App) interval() time.Duration {
	if a.svc.NotifyInterval <= 0 {
		return defaultNotifyInterval
	}

	return a.svc.NotifyInterval
}

func (a App) unreadCmd(poll bool) tea.Cmd {
	svc := a.svc

	return func() tea.Msg {
		ctx, cancel := svc.Ctx()
		defer cancel()

		n, err := svc.Notifications.UnreadCount(ctx)

		return unreadMsg{count: n, err: err, poll: poll}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}

	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, a.forward(a.contentSize())

	case PushMsg:
		a.logger.Debug("open screen", "title", msg.View.Title(), "depth", len(a.stack)+1)
		a.stack = append(a.stack, msg.View)

		cmds := []tea.Cmd{msg.View.Init()}
		if a.width > 0 {
			cmds = append(cmds, a.forward(a.contentSize()))
		}

		return a, tea.Batch(cmds...)

	case BackMsg:
		if len(a.stack) == 1 {
			return a, tea.Quit
		}

		a.stack = a.stack[:len(a.stack)-1]

		return a, a.forward(ShownMsg{})

	case unreadMsg:
		if msg.err != nil {
			a.logger.Warn("unread count failed", "error", msg.err)
		} else {
			a.unread = msg.count
		}

		if !msg.poll {
			return a, nil
		}

		return a, tea.Tick(a.interval(), func(time.Time) tea.Msg { return unreadTickMsg{} })

	case unreadTickMsg:
		return a, a.unreadCmd(true)

	case UnreadChangedMsg:
		return a, a.unreadCmd(false)
	}

	return a, a.forward(msg)
}

// forward hands msg to the top screen.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	m, cmd := a.top().Update(msg)

	v, ok := m.(View)
	if !ok {
		a.logger.Error("screen returned a model that is not a view", "type", fmt.Sprintf("%T", m))
		return cmd
	}

	a.stack[len(a.stack)-1] = v

	return cmd
}

func (a App) contentSize() tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: a.width, Height: max(a.height-2, 0)}
}

func (a App) View() string {
	titles := make([]string, len(a.stack))
	for i, v := range a.stack {
		titles[i] = v.Title()
	}

	header := headerStyle.Render(strings.Join(titles, " › "))

	if role := a.svc.Session.Role; role != "" {
		header += headerStyle.Render("  [" + workflow.RoleLabel(role) + "]")
	}

	if a.unread > 0 {
		header += "  " + badgeStyle.Render(fmt.Sprintf("✉ %d", a.unread))
	}

	footer := faintStyle.Render(a.top().ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, header, a.top().View(), footer)
}
