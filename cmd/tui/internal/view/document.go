package view

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/procura/internal/export"
	"github.com/MrJamesThe3rd/procura/internal/resource"
	"github.com/MrJamesThe3rd/procura/internal/totals"
	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

// docLine is one line of a document as the editor shows it.
type docLine struct {
	id       uuid.UUID
	section  string
	code     string
	name     string
	unit     string
	quantity decimal.Decimal
	price    decimal.Decimal
	total    decimal.NullDecimal
}

func (l docLine) Line() totals.Line {
	return totals.Line{Section: l.section, Quantity: l.quantity, UnitPrice: l.price, Total: l.total}
}

type lineValues struct {
	section  string
	code     string
	name     string
	unit     string
	quantity decimal.Decimal
	price    decimal.Decimal
}

// lineOps are the item mutations of an editable kind.
type lineOps struct {
	add    func(ctx context.Context, headerID uuid.UUID, v lineValues) error
	update func(ctx context.Context, headerID uuid.UUID, l docLine, v lineValues) error
	remove func(ctx context.Context, headerID, lineID uuid.UUID) error

	// priceOnly limits edits of an existing line to quantity and price.
	priceOnly bool
	code      bool
}

type docField struct {
	label string
	value string
}

type docData struct {
	entity resource.Entity
	number string
	title  string
	fields []docField
	lines  []docLine
	export export.Document
}

type docKey struct {
	key  string
	help string
	run  func(d docData) tea.Cmd
}

type docSource struct {
	kind    string
	machine *workflow.Machine
	role    workflow.Role

	load       func(ctx context.Context) (docData, error)
	transition func(ctx context.Context, e resource.Entity, action workflow.Action, comment string) error

	// nil when the lines of this kind are read-only.
	lines  *lineOps
	keys   []docKey
	custom map[workflow.Action]func(d docData, comment string) View
}

type docState int

const (
	docStateBrowse docState = iota
	docStateLine
	docStateDelete
	docStateAction
)

// lineInput is bound to the line form.
type lineInput struct {
	section  string
	code     string
	name     string
	unit     string
	quantity string
	price    string
	confirm  bool
}

// DocumentModel shows a header document with its lines grouped by section.
// Totals are recomputed from the loaded lines on every render.
type DocumentModel struct {
	CommonModel
	svc *Services
	src docSource

	state   docState
	data    *docData
	table   table.Model
	rowLine []int // table row -> line index, -1 for section and subtotal rows

	form    *huh.Form
	input   *lineInput
	editing *docLine
	actions actionForm

	loading bool
	err     error
	status  string
}

func newDocument(svc *Services, src docSource) DocumentModel {
	columns := []table.Column{
		{Title: "№", Width: 4},
		{Title: "Наименование", Width: 44},
		{Title: "Ед.", Width: 6},
		{Title: "Кол-во", Width: 10},
		{Title: "Цена", Width: 16},
		{Title: "Сумма", Width: 18},
	}

	t := newTable(columns, 15)

	return DocumentModel{svc: svc, src: src, table: t, loading: true}
}

func (m DocumentModel) Title() string {
	if m.data == nil {
		return m.src.kind
	}

	return m.src.kind + " " + m.data.number
}

// editable reports whether line controls are offered: the kind has item
// mutations and the workflow allows edits in the current status.
func (m DocumentModel) editable() bool {
	return m.src.lines != nil && m.data != nil && m.src.machine.IsEditable(m.data.entity.EntityStatus())
}

func (m DocumentModel) ShortHelp() string {
	if m.state != docStateBrowse {
		return "Esc: отмена"
	}

	help := "Esc: назад | a: действия | w: выгрузить в Excel | r: обновить"
	if m.editable() {
		help += " | n: добавить строку | e: изменить | x: удалить"
	}

	for _, k := range m.src.keys {
		help += " | " + k.key + ": " + k.help
	}

	return help
}

func (m DocumentModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DocumentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case docLoadedMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.data = &msg.data
			m.refreshTable()
		}

		return m, nil

	case docDoneMsg:
		m = m.closeForm()

		if msg.err != nil {
			m.status = errorStyle.Render(errText(msg.err))
			return m, nil
		}

		m.status = successStyle.Render(msg.text)

		return m, m.loadCmd()

	case ShownMsg:
		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-16, 5))

		return m, nil
	}

	switch m.state {
	case docStateBrowse:
		return m.updateBrowse(msg)
	case docStateLine, docStateDelete:
		return m.updateForm(msg)
	case docStateAction:
		return m.updateActions(msg)
	}

	return m, nil
}

func (m DocumentModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.data == nil {
		if ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}

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
	case "a":
		a, cmd, err := newActionForm(m.src.machine, m.data.entity.EntityStatus(), m.src.role, m.data.number)
		if err != nil {
			m.status = faintStyle.Render("Нет доступных действий")
			return m, nil
		}

		m.actions = a
		m.state = docStateAction
		m.table.Blur()

		return m, cmd
	case "w":
		return m, Push(NewExportModel(m.svc, m.data.export))
	case "n":
		if m.editable() {
			return m.openLineForm(nil)
		}
	case "e":
		if l, ok := m.selectedLine(); ok && m.editable() {
			return m.openLineForm(&l)
		}
	case "x", "delete":
		if l, ok := m.selectedLine(); ok && m.editable() {
			return m.openDelete(l)
		}
	}

	for _, k := range m.src.keys {
		if k.key == key {
			return m, k.run(*m.data)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m DocumentModel) selectedLine() (docLine, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rowLine) || m.rowLine[idx] < 0 {
		return docLine{}, false
	}

	return m.data.lines[m.rowLine[idx]], true
}

func (m DocumentModel) openLineForm(l *docLine) (tea.Model, tea.Cmd) {
	m.input = &lineInput{unit: "шт"}
	m.editing = l

	if l != nil {
		m.input = &lineInput{
			section:  l.section,
			code:     l.code,
			name:     l.name,
			unit:     l.unit,
			quantity: totals.FormatQuantity(l.quantity),
			price:    strings.Replace(l.price.String(), ".", ",", 1),
		}
	}

	var fields []huh.Field

	if l == nil || !m.src.lines.priceOnly {
		fields = append(fields,
			huh.NewInput().Title("Раздел").Value(&m.input.section),
		)

		if m.src.lines.code {
			fields = append(fields, huh.NewInput().Title("Шифр").Value(&m.input.code))
		}

		fields = append(fields,
			huh.NewInput().Title("Наименование").Value(&m.input.name).Validate(required("наименование")),
			huh.NewInput().Title("Ед. изм.").Value(&m.input.unit).Validate(required("единицу измерения")),
		)
	}

	fields = append(fields,
		huh.NewInput().Title("Количество").Value(&m.input.quantity).Validate(positiveAmount),
		huh.NewInput().Title("Цена за единицу, ₽").Value(&m.input.price).Validate(amount),
	)

	title := "Новая строка"
	if l != nil {
		title = l.name
	}

	m.form = huh.NewForm(huh.NewGroup(fields...).Title(title)).WithWidth(50).WithShowHelp(false)
	m.state = docStateLine
	m.table.Blur()

	return m, m.form.Init()
}

func (m DocumentModel) openDelete(l docLine) (tea.Model, tea.Cmd) {
	m.input = &lineInput{}
	m.editing = &l
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Удалить строку «" + l.name + "»?").
				Affirmative("Удалить").
				Negative("Отмена").
				Value(&m.input.confirm),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = docStateDelete
	m.table.Blur()

	return m, m.form.Init()
}

func (m DocumentModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
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

	if m.state == docStateDelete {
		if !m.input.confirm {
			return m.closeForm(), nil
		}

		return m, m.deleteLineCmd(*m.editing)
	}

	v, err := m.input.values()
	if err != nil {
		m = m.closeForm()
		m.status = errorStyle.Render(err.Error())

		return m, nil
	}

	return m, m.saveLineCmd(m.editing, v)
}

func (m DocumentModel) updateActions(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m.closeForm(), nil
	}

	var (
		cmd    tea.Cmd
		choice *actionChoice
	)

	m.actions, cmd, choice = m.actions.Update(msg)
	if choice != nil {
		if custom, ok := m.src.custom[choice.tr.Action]; ok {
			m = m.closeForm()
			return m, Push(custom(*m.data, choice.comment))
		}

		return m, m.transitionCmd(*choice)
	}

	if m.actions.form.State == huh.StateCompleted {
		return m.closeForm(), nil
	}

	return m, cmd
}

func (m DocumentModel) closeForm() DocumentModel {
	m.state = docStateBrowse
	m.form = nil
	m.editing = nil
	m.actions = actionForm{}
	m.table.Focus()

	return m
}

func (in *lineInput) values() (lineValues, error) {
	q, err := parseAmount(in.quantity)
	if err != nil {
		return lineValues{}, fmt.Errorf("количество: %w", err)
	}

	p, err := parseAmount(in.price)
	if err != nil {
		return lineValues{}, fmt.Errorf("цена: %w", err)
	}

	return lineValues{
		section:  strings.TrimSpace(in.section),
		code:     strings.TrimSpace(in.code),
		name:     strings.TrimSpace(in.name),
		unit:     strings.TrimSpace(in.unit),
		quantity: q,
		price:    p,
	}, nil
}

var errAmount = errors.New("введите число, например 1 234,56")

// parseAmount accepts "1 234,56" and "1234.56".
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer(" ", "", "\u00a0", "", ",", ".").Replace(strings.TrimSpace(s))
	if s == "" {
		return decimal.Zero, errAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errAmount
	}

	if d.IsNegative() {
		return decimal.Zero, errors.New("значение не может быть отрицательным")
	}

	return d, nil
}

func amount(s string) error {
	_, err := parseAmount(s)
	return err
}

func positiveAmount(s string) error {
	d, err := parseAmount(s)
	if err != nil {
		return err
	}

	if d.IsZero() {
		return errors.New("количество должно быть больше нуля")
	}

	return nil
}

func required(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("укажите %s", what)
		}

		return nil
	}
}

func (m *DocumentModel) refreshTable() {
	lines := totals.Of(m.data.lines)

	var rows []table.Row

	m.rowLine = nil
	n := 0

	for _, sec := range totals.Sections(lines) {
		if sec.Name != "" {
			rows = append(rows, table.Row{"", "▸ " + sec.Name, "", "", "", ""})
			m.rowLine = append(m.rowLine, -1)
		}

		for i, l := range m.data.lines {
			if l.section != sec.Name {
				continue
			}

			n++

			rows = append(rows, table.Row{
				fmt.Sprint(n),
				l.name,
				l.unit,
				totals.FormatQuantity(l.quantity),
				totals.Format(l.price),
				totals.Format(totals.Row(l.Line())),
			})
			m.rowLine = append(m.rowLine, i)
		}

		if sec.Name != "" {
			rows = append(rows, table.Row{"", "  Итого по разделу", "", "", "", totals.Format(sec.Subtotal)})
			m.rowLine = append(m.rowLine, -1)
		}
	}

	m.table.SetRows(rows)
}

func (m DocumentModel) View() string {
	switch {
	case m.loading && m.data == nil:
		return lipgloss.NewStyle().Padding(2).Render("Загрузка…")
	case m.err != nil && m.data == nil:
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(errText(m.err)) + "\n\n(Esc: назад)")
	}

	d := m.data
	status := d.entity.EntityStatus()

	var hb strings.Builder

	fmt.Fprintf(&hb, "%s %s  %s\n", titleStyle.Render(m.src.kind), titleStyle.Render(d.number), RenderBadge(m.src.machine.Badge(status)))

	if d.title != "" {
		hb.WriteString(d.title + "\n")
	}

	for _, f := range d.fields {
		if f.value != "" {
			fmt.Fprintf(&hb, "%s: %s\n", faintStyle.Render(f.label), f.value)
		}
	}

	if !m.src.machine.IsEditable(status) && m.src.lines != nil {
		hb.WriteString(faintStyle.Render("Документ недоступен для редактирования") + "\n")
	}

	body := faintStyle.Render("Строк нет")
	if len(d.lines) > 0 {
		body = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View())
	}

	grand := totals.Grand(totals.Of(d.lines))
	footer := fmt.Sprintf("Позиций: %d   Итого: %s", len(d.lines), lipgloss.NewStyle().Bold(true).Render(FormatMoney(grand)))

	content := lipgloss.JoinVertical(lipgloss.Left, hb.String(), body, footer)

	var form string

	switch m.state {
	case docStateLine, docStateDelete:
		form = m.form.View()
	case docStateAction:
		form = m.actions.View()
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

type docLoadedMsg struct {
	data docData
	err  error
}

type docDoneMsg struct {
	text string
	err  error
}

func (m DocumentModel) loadCmd() tea.Cmd {
	load := m.src.load

	return func() tea.Msg {
		ctx, cancel := m.svc.Ctx()
		defer cancel()

		data, err := load(ctx)

		return docLoadedMsg{data: data, err: err}
	}
}

func (m DocumentModel) saveLineCmd(l *docLine, v lineValues) tea.Cmd {
	ops, headerID := m.src.lines, m.data.entity.EntityID()

	var existing docLine
	if l != nil {
		existing = *l
	}

	return func() tea.Msg {
		ctx, cancel := m.svc.Ctx()
		defer cancel()

		if l == nil {
			if err := ops.add(ctx, headerID, v); err != nil {
				return docDoneMsg{err: err}
			}

			return docDoneMsg{text: "Строка добавлена"}
		}

		if err := ops.update(ctx, headerID, existing, v); err != nil {
			return docDoneMsg{err: err}
		}

		return docDoneMsg{text: "Строка изменена"}
	}
}

func (m DocumentModel) deleteLineCmd(l docLine) tea.Cmd {
	ops, headerID := m.src.lines, m.data.entity.EntityID()

	return func() tea.Msg {
		ctx, cancel := m.svc.Ctx()
		defer cancel()

		if err := ops.remove(ctx, headerID, l.id); err != nil {
			return docDoneMsg{err: err}
		}

		return docDoneMsg{text: "Строка удалена"}
	}
}

func (m DocumentModel) transitionCmd(c actionChoice) tea.Cmd {
	transition, e, number := m.src.transition, m.data.entity, m.data.number

	return func() tea.Msg {
		ctx, cancel := m.svc.Ctx()
		defer cancel()

		if err := transition(ctx, e, c.tr.Action, c.comment); err != nil {
			return docDoneMsg{err: err}
		}

		return docDoneMsg{text: fmt.Sprintf("%s: %s", number, c.tr.Label)}
	}
}
