package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/procura/internal/notification"
)

const notificationLimit = 100

type NotificationsModel struct {
	CommonModel
	svc *Services

	table      table.Model
	items      []notification.Notification
	unreadOnly bool
	loading    bool
	err        error
}

func NewNotificationsModel(svc *Services) NotificationsModel {
	t := newTable([]table.Column{
		{Title: " ", Width: 2},
		{Title: "Дата", Width: 17},
		{Title: "Заголовок", Width: 40},
		{Title: "Текст", Width: 50},
	}, 15)

	return NotificationsModel{svc: svc, table: t, unreadOnly: true, loading: true}
}

func (m NotificationsModel) Title() string { return "Уведомления" }

func (m NotificationsModel) ShortHelp() string {
	return "Enter: прочитано | a: прочитать все | u: только непрочитанные/все | r: обновить | Esc: назад"
}

func (m NotificationsModel) Init() tea.Cmd {
	return m.loadCmd()
}

type notificationsMsg struct {
	items []notification.Notification
	err   error
}

// UnreadChangedMsg tells the menu to refresh its unread badge.
type UnreadChangedMsg struct{}

type markedMsg struct {
	err error
}

func (m NotificationsModel) loadCmd() tea.Cmd {
	h, svc, unread := m.svc.Notifications, m.svc, m.unreadOnly

	return func() tea.Msg {
		ctx, cancel := svc.Ctx()
		defer cancel()

		items, err := h.Recent(ctx, unread, notificationLimit)

		return notificationsMsg{items: items, err: err}
	}
}

func (m NotificationsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case notificationsMsg:
		m.loading = false
		m.err = msg.err
		m.items = msg.items
		m.refreshTable()

		return m, nil

	case markedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		return m, tea.Batch(m.loadCmd(), func() tea.Msg { return UnreadChangedMsg{} })

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-10, 5))

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "u":
			m.unreadOnly = !m.unreadOnly
			m.loading = true

			return m, m.loadCmd()
		case "a":
			return m, m.markCmd(nil)
		case "enter":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.items) || m.items[idx].Read {
				return m, nil
			}

			return m, m.markCmd(&m.items[idx])
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

// markCmd marks n read, or everything when n is nil.
func (m NotificationsModel) markCmd(n *notification.Notification) tea.Cmd {
	h, svc := m.svc.Notifications, m.svc

	return func() tea.Msg {
		ctx, cancel := svc.Ctx()
		defer cancel()

		if n == nil {
			return markedMsg{err: h.MarkAllRead(ctx)}
		}

		return markedMsg{err: h.MarkRead(ctx, n.ID)}
	}
}

func (m *NotificationsModel) refreshTable() {
	rows := make([]table.Row, len(m.items))

	for i, n := range m.items {
		mark := ""
		if !n.Read {
			mark = "•"
		}

		rows[i] = table.Row{mark, n.CreatedAt.Local().Format("02.01.2006 15:04"), n.Title, n.Body}
	}

	m.table.SetRows(rows)
}

func (m NotificationsModel) View() string {
	scope := "все"
	if m.unreadOnly {
		scope = "непрочитанные"
	}

	parts := []string{titleStyle.Render("Уведомления") + faintStyle.Render(" · "+scope), ""}

	switch {
	case m.loading:
		parts = append(parts, "Загрузка…")
	case len(m.items) == 0:
		parts = append(parts, faintStyle.Render("Уведомлений нет"))
	default:
		parts = append(parts,
			lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240")).
				Render(m.table.View()),
			fmt.Sprintf("Показано: %d", len(m.items)),
		)
	}

	if m.err != nil {
		parts = append(parts, "", errorStyle.Render(errText(m.err)))
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
