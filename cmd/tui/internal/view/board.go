package view

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/procura/internal/resource"
	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

const boardPageSize = 50

// boardRow is one document on a board.
type boardRow struct {
	entity resource.Entity
	number string
	title  string
	amount string
	date   time.Time
}

// boardKey is an extra key binding a source offers on the selected row.
type boardKey struct {
	key  string
	help string
	run  func(row boardRow) tea.Cmd
}

// boardSource adapts one document kind to the board.
type boardSource struct {
	title   string
	machine *workflow.Machine
	role    workflow.Role

	list       func(ctx context.Context, f resource.Filter) ([]boardRow, int, error)
	transition func(ctx context.Context, e resource.Entity, action workflow.Action, comment string) error
	remove     func(ctx context.Context, e resource.Entity) error

	// Optional.
	open   func(row boardRow) View
	create func() View
	custom map[workflow.Action]func(row boardRow, comment string) View
	keys   []boardKey
}

// newSource builds a board source over the queries and mutations of one kind.
func newSource[T resource.Entity, C any, U any](
	title string,
	parentID uuid.UUID,
	role workflow.Role,
	q *resource.Queries[T],
	m *resource.Mutations[T, C, U],
	describe func(T) boardRow,
) boardSource {
	return boardSource{
		title:   title,
		machine: m.Machine(),
		role:    role,
		list: func(ctx context.Context, f resource.Filter) ([]boardRow, int, error) {
			page, err := q.List(ctx, parentID, f)
			if err != nil {
				return nil, 0, err
			}

			rows := make([]boardRow, 0, len(page.Items))
			for _, it := range page.Items {
				r := describe(it)
				r.entity = it
				rows = append(rows, r)
			}

			return rows, page.Total, nil
		},
		transition: func(ctx context.Context, e resource.Entity, action workflow.Action, comment string) error {
			_, err := m.Transition(ctx, e, action, comment)
			return err
		},
		remove: func(ctx context.Context, e resource.Entity) error {
			return m.Delete(ctx, e.EntityID())
		},
	}
}

type boardState int

const (
	boardStateBrowse boardState = iota
	boardStateAction
	boardStateDelete
	boardStateTimeframe
	boardStateSearch
)

// BoardModel lists the documents of one kind with their status badges and
// offers the transitions the workflow allows for the selected one.
type BoardModel struct {
	CommonModel
	svc *Services
	src boardSource

	state boardState
	table table.Model
	rows  []boardRow
	total int

	actions actionForm
	form    *huh.Form
	input   *transitionInput
	row     boardRow

	statusFilterIdx int
	timeframe       TimeframePicker
	period          TimeframeSelectedMsg
	search          textinput.Model
	filter          resource.Filter

	loading bool
	err     error
	status  string
}

func newBoard(svc *Services, src boardSource) BoardModel {
	columns := []table.Column{
		{Title: "Номер", Width: 14},
		{Title: "Статус", Width: 22},
		{Title: "Наименование", Width: 40},
		{Title: "Сумма", Width: 18},
		{Title: "Создан", Width: 12},
	}

	t := newTable(columns, 15)

	search := textinput.New()
	search.Placeholder = "номер или наименование"
	search.Prompt = "Поиск: "

	return BoardModel{
		svc:       svc,
		src:       src,
		table:     t,
		timeframe: NewTimeframePicker(),
		period:    TimeframeSelectedMsg{Label: TimeframeAll.String(), All: true},
		search:    search,
		filter:    resource.Filter{Page: 1, Limit: boardPageSize},
		loading:   true,
	}
}

func (m BoardModel) Title() string { return m.src.title }

func (m BoardModel) ShortHelp() string {
	switch m.state {
	case boardStateAction, boardStateDelete:
		return "Esc: отмена"
	case boardStateTimeframe:
		return "Esc: назад"
	case boardStateSearch:
		return "Enter: искать | Esc: сбросить"
	}

	help := "Esc: назад | a: действия | s: статус | p: период | /: поиск | [ ]: страницы | r: обновить"
	if m.src.open != nil {
		help += " | Enter: открыть"
	}

	if m.src.create != nil {
		help += " | n: создать"
	}

	for _, b := range m.src.keys {
		help += " | " + b.key + ": " + b.help
	}

	return help + " | x: удалить черновик"
}

func (m BoardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case boardLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.rows = msg.rows
			m.total = msg.total
			m.refreshTable()
		}

		return m, nil

	case boardDoneMsg:
		m = m.closeForm()

		if msg.err != nil {
			m.status = errorStyle.Render(errText(msg.err))
			return m, nil
		}

		m.status = successStyle.Render(msg.text)

		return m, m.loadCmd()

	case TimeframeSelectedMsg:
		m.period = msg
		m.state = boardStateBrowse
		m.applyFilter()

		return m, m.loadCmd()

	case ShownMsg:
		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-12, 5))

		return m, nil
	}

	switch m.state {
	case boardStateBrowse:
		return m.updateBrowse(msg)
	case boardStateAction:
		return m.updateActions(msg)
	case boardStateDelete:
		return m.updateDelete(msg)
	case boardStateTimeframe:
		return m.updateTimeframe(msg)
	case boardStateSearch:
		return m.updateSearch(msg)
	}

	return m, nil
}

func (m BoardModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)

		return m, cmd
	}

	key := keyMsg.String()

	switch key {
	case "esc":
		return m, Back
	case "r":
		m.loading = true
		return m, m.loadCmd()
	case "s":
		m.statusFilterIdx = (m.statusFilterIdx + 1) % (len(m.src.machine.States) + 1)
		m.filter.Page = 1
		m.applyFilter()

		return m, m.loadCmd()
	case "p":
		m.state = boardStateTimeframe
		m.timeframe.Reset()

		return m, nil
	case "/":
		m.state = boardStateSearch
		m.table.Blur()

		return m, m.search.Focus()
	case "]":
		if m.filter.Page*boardPageSize < m.total {
			m.filter.Page++
			return m, m.loadCmd()
		}

		return m, nil
	case "[":
		if m.filter.Page > 1 {
			m.filter.Page--
			return m, m.loadCmd()
		}

		return m, nil
	case "n":
		if m.src.create != nil {
			return m, Push(m.src.create())
		}
	case "a":
		if row, ok := m.selected(); ok {
			return m.openActions(row)
		}
	case "x", "delete":
		if row, ok := m.selected(); ok {
			return m.openDelete(row)
		}
	case "enter":
		if row, ok := m.selected(); ok && m.src.open != nil {
			return m, Push(m.src.open(row))
		}
	}

	for _, b := range m.src.keys {
		if b.key != key {
			continue
		}

		if row, ok := m.selected(); ok {
			return m, b.run(row)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m BoardModel) selected() (boardRow, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return boardRow{}, false
	}

	return m.rows[idx], true
}

// openActions offers only the transitions available from the row's status
// for the current role.
func (m BoardModel) openActions(row boardRow) (tea.Model, tea.Cmd) {
	a, cmd, err := newActionForm(m.src.machine, row.entity.EntityStatus(), m.src.role, row.number)
	if err != nil {
		m.status = faintStyle.Render("Нет доступных действий")
		return m, nil
	}

	m.row = row
	m.actions = a
	m.state = boardStateAction
	m.table.Blur()

	return m, cmd
}

func (m BoardModel) updateActions(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m.closeForm(), nil
	}

	var (
		cmd    tea.Cmd
		choice *actionChoice
	)

	m.actions, cmd, choice = m.actions.Update(msg)
	if choice != nil {
		return m.runAction(m.row, *choice)
	}

	if m.actions.form.State == huh.StateCompleted {
		return m.closeForm(), nil
	}

	return m, cmd
}

// runAction performs a chosen transition, or opens the screen of an action
// that needs more than a comment.
func (m BoardModel) runAction(row boardRow, c actionChoice) (tea.Model, tea.Cmd) {
	m = m.closeForm()

	if custom, ok := m.src.custom[c.tr.Action]; ok {
		return m, Push(custom(row, c.comment))
	}

	return m, m.transitionCmd(row, c.tr, c.comment)
}

func (m BoardModel) openDelete(row boardRow) (tea.Model, tea.Cmd) {
	st := row.entity.EntityStatus()
	if st != m.src.machine.Initial || !m.src.machine.IsEditable(st) {
		m.status = faintStyle.Render("Удалить можно только черновик")
		return m, nil
	}

	m.row = row
	m.input = &transitionInput{}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Удалить " + row.number + "?").
				Affirmative("Удалить").
				Negative("Отмена").
				Value(&m.input.confirm),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = boardStateDelete
	m.table.Blur()

	return m, m.form.Init()
}

func (m BoardModel) updateDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m.closeForm(), nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	confirmed := m.input.confirm
	m = m.closeForm()

	if confirmed {
		return m, m.deleteCmd(m.row)
	}

	return m, nil
}

func (m BoardModel) closeForm() BoardModel {
	m.state = boardStateBrowse
	m.form = nil
	m.actions = actionForm{}
	m.table.Focus()

	return m
}

func (m BoardModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.timeframe.IsSelecting() {
		m.state = boardStateBrowse
		return m, nil
	}

	var cmd tea.Cmd
	m.timeframe, cmd = m.timeframe.Update(msg)

	return m, cmd
}

func (m BoardModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.search.SetValue("")
			fallthrough
		case tea.KeyEnter:
			m.search.Blur()
			m.table.Focus()
			m.state = boardStateBrowse
			m.filter.Page = 1
			m.applyFilter()

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)

	return m, cmd
}

func (m *BoardModel) applyFilter() {
	m.filter.Status = ""
	if m.statusFilterIdx > 0 {
		m.filter.Status = m.src.machine.States[m.statusFilterIdx-1]
	}

	m.filter.Search = m.search.Value()
	m.filter.Extra = nil

	if !m.period.All {
		m.filter.Extra = map[string][]string{
			"created_from": {m.period.Start.Format(time.DateOnly)},
			"created_to":   {m.period.End.Format(time.DateOnly)},
		}
	}
}

func (m BoardModel) statusLabel() string {
	if m.statusFilterIdx == 0 {
		return "Все"
	}

	return m.src.machine.Badge(m.src.machine.States[m.statusFilterIdx-1]).Label
}

func (m *BoardModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.rows))
	for _, r := range m.rows {
		rows = append(rows, table.Row{
			r.number,
			m.src.machine.Badge(r.entity.EntityStatus()).Label,
			r.title,
			r.amount,
			FormatDate(r.date),
		})
	}

	m.table.SetRows(rows)
}

func (m BoardModel) View() string {
	if m.state == boardStateTimeframe {
		return lipgloss.NewStyle().Padding(2).Render(m.timeframe.View())
	}

	header := titleStyle.Render(m.src.title) + "\n" + fmt.Sprintf(
		"[s] Статус: %s | [d] Период: %s | Всего: %d | Стр. %d",
		activeStyle(m.statusLabel()),
		activeStyle(m.period.Label),
		m.total,
		m.filter.Page,
	)

	if m.state == boardStateSearch || m.search.Value() != "" {
		header += "\n" + m.search.View()
	}

	var body string

	switch {
	case m.loading:
		body = "Загрузка…"
	case m.err != nil:
		body = errorStyle.Render(errText(m.err))
	case len(m.rows) == 0:
		body = faintStyle.Render("Документов нет")
	default:
		body = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View())
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		body,
	)

	var form string

	switch m.state {
	case boardStateAction:
		form = m.actions.View()
	case boardStateDelete:
		form = m.form.View()
	}

	if form != "" {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Render(form))
	}

	if m.status != "" {
		content += "\n" + m.status
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// Messages

type boardLoadedMsg struct {
	rows  []boardRow
	total int
	err   error
}

type boardDoneMsg struct {
	text string
	err  error
}

func (m BoardModel) loadCmd() tea.Cmd {
	list, filter := m.src.list, m.filter

	return func() tea.Msg {
		ctx, cancel := m.svc.Ctx()
		defer cancel()

		rows, total, err := list(ctx, filter)

		return boardLoadedMsg{rows: rows, total: total, err: err}
	}
}

func (m BoardModel) transitionCmd(row boardRow, tr workflow.Transition, comment string) tea.Cmd {
	transition := m.src.transition

	return func() tea.Msg {
		ctx, cancel := m.svc.Ctx()
		defer cancel()

		if err := transition(ctx, row.entity, tr.Action, comment); err != nil {
			return boardDoneMsg{err: err}
		}

		return boardDoneMsg{text: fmt.Sprintf("%s: %s", row.number, tr.Label)}
	}
}

func (m BoardModel) deleteCmd(row boardRow) tea.Cmd {
	remove := m.src.remove

	return func() tea.Msg {
		ctx, cancel := m.svc.Ctx()
		defer cancel()

		if err := remove(ctx, row.entity); err != nil {
			return boardDoneMsg{err: err}
		}

		return boardDoneMsg{text: row.number + " удалён"}
	}
}
