package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/procura/internal/project"
)

// ProjectsModel is the start screen: pick a construction project to work in.
type ProjectsModel struct {
	CommonModel
	svc *Services

	table     table.Model
	search    textinput.Model
	searching bool
	projects  []project.Project
	loading   bool
	err       error
}

func NewProjectsModel(svc *Services) ProjectsModel {
	t := newTable([]table.Column{
		{Title: "Шифр", Width: 12},
		{Title: "Объект", Width: 44},
		{Title: "Адрес", Width: 36},
		{Title: "Срок", Width: 24},
	}, 15)

	search := textinput.New()
	search.Placeholder = "шифр или наименование"
	search.Prompt = "Поиск: "

	return ProjectsModel{svc: svc, table: t, search: search, loading: true}
}

func (m ProjectsModel) Title() string { return "Объекты" }

func (m ProjectsModel) ShortHelp() string {
	if m.searching {
		return "Enter: найти | Esc: отмена"
	}

	return "Enter: открыть | /: поиск | m: материалы | n: уведомления | d: черновики | q: выход"
}

func (m ProjectsModel) Init() tea.Cmd {
	return m.loadCmd()
}

type projectsMsg struct {
	projects []project.Project
	err      error
}

func (m ProjectsModel) loadCmd() tea.Cmd {
	svc, text := m.svc, strings.TrimSpace(m.search.Value())

	return func() tea.Msg {
		ctx, cancel := svc.Ctx()
		defer cancel()

		list, err := svc.Projects.Active(ctx, text)

		return projectsMsg{projects: list, err: err}
	}
}

func (m ProjectsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case projectsMsg:
		m.loading = false
		m.err = msg.err
		m.projects = msg.projects
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-12, 5))

		return m, nil

	case tea.KeyMsg:
		if m.searching {
			switch msg.Type {
			case tea.KeyEnter:
				m.searching = false
				m.search.Blur()
				m.table.Focus()
				m.loading = true

				return m, m.loadCmd()
			case tea.KeyEsc:
				m.searching = false
				m.search.Blur()
				m.table.Focus()

				return m, nil
			}

			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)

			return m, cmd
		}

		switch msg.String() {
		case "q", "esc":
			return m, Back
		case "/":
			m.searching = true
			m.table.Blur()

			return m, m.search.Focus()
		case "m":
			return m, Push(NewMaterialsModel(m.svc))
		case "n":
			return m, Push(NewNotificationsModel(m.svc))
		case "d":
			return m, Push(NewDraftsModel(m.svc, uuid.Nil))
		case "enter":
			idx := m.table.Cursor()
			if idx >= 0 && idx < len(m.projects) {
				return m, Push(NewProjectMenu(m.svc, m.projects[idx]))
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *ProjectsModel) refreshTable() {
	rows := make([]table.Row, len(m.projects))

	for i, p := range m.projects {
		term := ""
		if !p.StartDate.IsZero() || !p.EndDate.IsZero() {
			term = p.StartDate.String() + "–" + p.EndDate.String()
		}

		rows[i] = table.Row{p.Code, p.Name, p.Address, term}
	}

	m.table.SetRows(rows)
}

func (m ProjectsModel) View() string {
	parts := []string{titleStyle.Render("Объекты строительства"), ""}

	if m.searching || m.search.Value() != "" {
		parts = append(parts, m.search.View(), "")
	}

	switch {
	case m.loading:
		parts = append(parts, "Загрузка…")
	case m.err != nil:
		parts = append(parts, errorStyle.Render(errText(m.err)))
	case len(m.projects) == 0:
		parts = append(parts, faintStyle.Render("Активных объектов нет"))
	default:
		parts = append(parts, lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()))
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// menuEntry is one screen reachable from a project.
type menuEntry struct {
	key   string
	label string
	open  func(svc *Services, projectID uuid.UUID) View
}

var projectMenu = []menuEntry{
	{"1", "Ведомости объёмов работ", NewBOQBoard},
	{"2", "Сметы", NewEstimateBoard},
	{"3", "Тома проектной документации", NewVolumeBoard},
	{"4", "Заявки на закупку", NewRequestBoard},
	{"5", "Тендеры", NewTenderBoard},
	{"6", "Заказы поставщикам", NewOrderBoard},
	{"7", "Новая смета", func(svc *Services, id uuid.UUID) View { return NewEstimateWizard(svc, id, nil) }},
	{"8", "Новая заявка", func(svc *Services, id uuid.UUID) View { return NewRequestWizard(svc, id, nil) }},
	{"9", "Черновики", func(svc *Services, id uuid.UUID) View { return NewDraftsModel(svc, id) }},
}

// ProjectMenu lists the document boards of one project.
type ProjectMenu struct {
	CommonModel
	svc     *Services
	project project.Project
	cursor  int
}

func NewProjectMenu(svc *Services, p project.Project) ProjectMenu {
	return ProjectMenu{svc: svc, project: p}
}

func (m ProjectMenu) Title() string { return m.project.String() }

func (m ProjectMenu) ShortHelp() string {
	return "1-9/Enter: открыть | m: материалы | n: уведомления | Esc: к объектам"
}

func (m ProjectMenu) Init() tea.Cmd { return nil }

func (m ProjectMenu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(projectMenu)-1 {
				m.cursor++
			}
		case "enter":
			return m, Push(projectMenu[m.cursor].open(m.svc, m.project.ID))
		case "m":
			return m, Push(NewMaterialsModel(m.svc))
		case "n":
			return m, Push(NewNotificationsModel(m.svc))
		default:
			for _, e := range projectMenu {
				if e.key == msg.String() {
					return m, Push(e.open(m.svc, m.project.ID))
				}
			}
		}
	}

	return m, nil
}

func (m ProjectMenu) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.project.String()) + "\n")

	if m.project.Address != "" {
		b.WriteString(faintStyle.Render(m.project.Address) + "\n")
	}

	b.WriteString("\n")

	for i, e := range projectMenu {
		line := fmt.Sprintf("%s. %s", e.key, e.label)
		if i == m.cursor {
			line = activeStyle("> " + line)
		} else {
			line = "  " + line
		}

		b.WriteString(line + "\n")
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
