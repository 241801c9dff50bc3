package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/procura/internal/drafts"
)

// DraftsModel lists the wizards saved on this machine.
type DraftsModel struct {
	CommonModel
	svc       *Services
	projectID uuid.UUID

	table   table.Model
	drafts  []*drafts.Draft
	confirm bool
	loading bool
	status  string
	err     error
}

func NewDraftsModel(svc *Services, projectID uuid.UUID) DraftsModel {
	t := newTable([]table.Column{
		{Title: "Вид", Width: 10},
		{Title: "Наименование", Width: 40},
		{Title: "Шаг", Width: 5},
		{Title: "На сервере", Width: 14},
		{Title: "Изменён", Width: 17},
	}, 15)

	return DraftsModel{svc: svc, projectID: projectID, table: t, loading: true}
}

func (m DraftsModel) Title() string { return "Черновики" }

func (m DraftsModel) ShortHelp() string {
	if m.confirm {
		return "y: удалить | n: отмена"
	}

	return "Enter: продолжить | x: удалить | Esc: назад"
}

func (m DraftsModel) Init() tea.Cmd {
	return m.loadCmd()
}

type draftsLoadedMsg struct {
	drafts []*drafts.Draft
	err    error
}

type draftDeletedMsg struct {
	err error
}

func (m DraftsModel) loadCmd() tea.Cmd {
	svc := m.svc

	return func() tea.Msg {
		ctx, cancel := svc.Ctx()
		defer cancel()

		list, err := svc.Drafts.List(ctx, "")

		return draftsLoadedMsg{drafts: list, err: err}
	}
}

func (m DraftsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case draftsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.drafts = msg.drafts
		m.refreshTable()

		return m, nil

	case draftDeletedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.status = successStyle.Render("Черновик удалён")

		return m, m.loadCmd()

	case ShownMsg:
		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-10, 5))

		return m, nil

	case tea.KeyMsg:
		if m.confirm {
			m.confirm = false
			if msg.String() == "y" {
				return m, m.deleteCmd()
			}

			return m, nil
		}

		switch msg.String() {
		case "esc":
			return m, Back
		case "enter":
			if d := m.current(); d != nil {
				return m, Push(m.resume(d))
			}

			return m, nil
		case "x", "delete":
			if m.current() != nil {
				m.confirm = true
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m DraftsModel) current() *drafts.Draft {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.drafts) {
		return nil
	}

	return m.drafts[idx]
}

// resume opens the wizard of d. The project saved in the draft wins over the
// one currently selected.
func (m DraftsModel) resume(d *drafts.Draft) View {
	if d.Kind == drafts.KindRequest {
		return NewRequestWizard(m.svc, m.projectID, d)
	}

	return NewEstimateWizard(m.svc, m.projectID, d)
}

func (m DraftsModel) deleteCmd() tea.Cmd {
	svc, d := m.svc, m.current()

	return func() tea.Msg {
		ctx, cancel := svc.Ctx()
		defer cancel()

		return draftDeletedMsg{err: svc.Drafts.Delete(ctx, d.ID)}
	}
}

func (m *DraftsModel) refreshTable() {
	rows := make([]table.Row, len(m.drafts))

	for i, d := range m.drafts {
		remote := ""
		if d.Started() {
			remote = fmt.Sprintf("строк %d", d.Created)
		}

		rows[i] = table.Row{
			d.Kind.Label(),
			d.Title,
			fmt.Sprint(d.Step + 1),
			remote,
			d.UpdatedAt.Local().Format("02.01.2006 15:04"),
		}
	}

	m.table.SetRows(rows)
}

func (m DraftsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Загрузка…")
	}

	body := "Черновиков нет"
	if len(m.drafts) > 0 {
		body = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View())
	}

	parts := []string{titleStyle.Render("Черновики"), "", body}

	if m.confirm {
		if d := m.current(); d != nil {
			parts = append(parts, "", errorStyle.Render(fmt.Sprintf("Удалить черновик «%s»? (y/n)", d.Title)))
		}
	}

	if m.err != nil {
		parts = append(parts, "", errorStyle.Render(errText(m.err)))
	}

	if m.status != "" {
		parts = append(parts, "", m.status)
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
