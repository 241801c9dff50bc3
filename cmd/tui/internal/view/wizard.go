package view

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/procura/internal/drafts"
	"github.com/MrJamesThe3rd/procura/internal/totals"
	"github.com/MrJamesThe3rd/procura/internal/wizard"
)

type wizState int

const (
	wizStateLoading wizState = iota
	wizStateForm
	wizStateLines
	wizStateLineEdit
	wizStateReview
	wizStateSubmitting
	wizStateDone
)

var wizSteps = []wizard.Step{wizard.StepSource, wizard.StepDetails, wizard.StepLines, wizard.StepReview}

// WizardModel walks a creation wizard step by step. Nothing reaches the
// server before the review step is confirmed; Esc keeps a local draft.
type WizardModel struct {
	CommonModel
	svc  *Services
	flow flow

	state   wizState
	form    *huh.Form
	edit    *lineInput
	editIdx int
	table   table.Model
	spinner spinner.Model

	createdID uuid.UUID
	partial   *wizard.PartialError
	status    string
	err       error
}

// NewEstimateWizard starts a new estimate, or resumes d.
func NewEstimateWizard(svc *Services, projectID uuid.UUID, d *drafts.Draft) WizardModel {
	w := wizard.NewEstimate(projectID)

	var err error
	if d != nil {
		var restored *wizard.Estimate
		if restored, err = wizard.RestoreEstimate(d); err == nil {
			w = restored
		}
	}

	m := newWizard(svc, &estimateFlow{svc: svc, w: w})
	m.err = err

	return m
}

// NewRequestWizard starts a new purchase request, or resumes d.
func NewRequestWizard(svc *Services, projectID uuid.UUID, d *drafts.Draft) WizardModel {
	w := wizard.NewRequest(projectID)

	var err error
	if d != nil {
		var restored *wizard.Request
		if restored, err = wizard.RestoreRequest(d); err == nil {
			w = restored
		}
	}

	m := newWizard(svc, &requestFlow{svc: svc, w: w})
	m.err = err

	return m
}

func newWizard(svc *Services, f flow) WizardModel {
	t := newTable([]table.Column{
		{Title: "№", Width: 4},
		{Title: "Раздел", Width: 18},
		{Title: "Наименование", Width: 40},
		{Title: "Ед.", Width: 6},
		{Title: "Кол-во", Width: 10},
		{Title: "Цена", Width: 14},
		{Title: "Сумма", Width: 16},
	}, 12)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return WizardModel{svc: svc, flow: f, table: t, spinner: sp}
}

func (m WizardModel) Title() string { return m.flow.kind() }

func (m WizardModel) ShortHelp() string {
	switch m.state {
	case wizStateLines:
		return "Enter: далее | e: изменить | x: исключить | ctrl+b: назад | ctrl+s: черновик | Esc: выйти"
	case wizStateReview:
		return "Enter: создать | ctrl+b: назад | ctrl+s: черновик | Esc: выйти"
	case wizStateLineEdit:
		return "Enter: сохранить | Esc: отмена"
	case wizStateDone:
		return "Enter: открыть документ | Esc: назад"
	case wizStateSubmitting:
		return "Создание…"
	}

	return "Enter: далее | ctrl+b: назад | ctrl+s: черновик | Esc: выйти"
}

func (m WizardModel) Init() tea.Cmd {
	return func() tea.Msg { return wizEnterMsg{} }
}

// Messages

// wizEnterMsg asks the model to show its current step. A restored draft may
// start on any step.
type wizEnterMsg struct{}

type wizFormMsg struct {
	form *huh.Form
	err  error
}

type wizAdvanceMsg struct {
	err error
}

type wizSubmittedMsg struct {
	id       uuid.UUID
	progress wizard.Progress
	err      error
}

type wizSavedMsg struct {
	draftID uuid.UUID
	err     error
	leave   bool
}

// enterStep prepares the screen of the current step.
func (m *WizardModel) enterStep() tea.Cmd {
	switch m.flow.step() {
	case wizard.StepSource:
		return m.buildCmd(m.flow.sourceForm)
	case wizard.StepDetails:
		return m.buildCmd(m.flow.detailsForm)
	case wizard.StepLines:
		m.state = wizStateLines
		m.refreshTable()
		m.table.Focus()
	default:
		m.state = wizStateReview
	}

	return nil
}

func (m *WizardModel) buildCmd(build func(context.Context) (*huh.Form, error)) tea.Cmd {
	m.state = wizStateLoading
	svc := m.svc

	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := svc.Ctx()
		defer cancel()

		form, err := build(ctx)

		return wizFormMsg{form: form, err: err}
	})
}

func (m WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case wizEnterMsg:
		cmd := m.enterStep()
		return m, cmd

	case wizFormMsg:
		if msg.err != nil {
			m.err = msg.err
			// Without options the step cannot be completed; the user can
			// still go back or leave.
			m.state = wizStateForm
			m.form = nil

			return m, nil
		}

		m.form = msg.form.WithWidth(70).WithShowHelp(false)
		m.state = wizStateForm

		return m, m.form.Init()

	case wizAdvanceMsg:
		m.err = msg.err
		if m.err == nil {
			m.err = m.flow.next()
		}

		// On failure the same step is shown again with the error.
		cmd := m.enterStep()

		return m, cmd

	case wizSubmittedMsg:
		m.createdID = msg.id
		m.flow.setProgress(msg.progress)

		var partial *wizard.PartialError
		if errors.As(msg.err, &partial) {
			m.partial = partial
			m.state = wizStateReview
			m.err = msg.err

			// The draft remembers the created header so a later run
			// resumes instead of creating a second one.
			return m, m.saveCmd(false)
		}

		if msg.err != nil {
			m.state = wizStateReview
			m.err = msg.err

			return m, nil
		}

		m.partial = nil
		m.err = nil
		m.state = wizStateDone

		return m, nil

	case wizSavedMsg:
		if msg.draftID != uuid.Nil {
			m.flow.setDraftID(msg.draftID)
		}

		if msg.err != nil {
			m.err = errors.Join(m.err, msg.err)
			return m, nil
		}

		if msg.leave {
			return m, Back
		}

		m.status = successStyle.Render("Черновик сохранён")

		return m, nil

	case spinner.TickMsg:
		if m.state != wizStateLoading && m.state != wizStateSubmitting {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-14, 5))

		return m, nil

	case tea.KeyMsg:
		if m.state == wizStateLineEdit {
			break
		}

		switch msg.String() {
		case "esc":
			if m.state == wizStateDone {
				return m, Back
			}

			if m.state == wizStateSubmitting {
				return m, nil
			}

			return m, m.saveCmd(true)
		case "ctrl+s":
			if m.state != wizStateDone && m.state != wizStateSubmitting {
				return m, m.saveCmd(false)
			}
		case "ctrl+b":
			if m.state != wizStateDone && m.state != wizStateSubmitting && m.flow.step() > wizard.StepSource {
				m.flow.back()
				m.err = nil
				cmd := m.enterStep()

				return m, cmd
			}
		}
	}

	switch m.state {
	case wizStateForm:
		return m.updateForm(msg)
	case wizStateLines:
		return m.updateLines(msg)
	case wizStateLineEdit:
		return m.updateLineEdit(msg)
	case wizStateReview:
		if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEnter {
			m.state = wizStateSubmitting
			m.err = nil

			return m, tea.Batch(m.spinner.Tick, m.submitCmd())
		}
	case wizStateDone:
		if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEnter {
			return m, tea.Sequence(Back, Push(m.flow.open(m.createdID)))
		}
	}

	return m, nil
}

func (m WizardModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = wizStateLoading

	if m.flow.step() == wizard.StepSource {
		return m, tea.Batch(m.spinner.Tick, m.advanceCmd(m.flow.selectSource))
	}

	f := m.flow

	return m, m.advanceCmd(func(context.Context) error { return f.applyDetails() })
}

func (m WizardModel) advanceCmd(apply func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.svc.Ctx()
		defer cancel()

		return wizAdvanceMsg{err: apply(ctx)}
	}
}

func (m WizardModel) updateLines(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			if err := m.flow.next(); err != nil {
				m.err = err
				return m, nil
			}

			m.err = nil
			cmd := m.enterStep()

			return m, cmd
		case "e":
			return m.openLineEdit()
		case "x", "delete":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.flow.lines()) {
				return m, nil
			}

			if err := m.flow.removeLine(idx); err != nil {
				m.err = err
				return m, nil
			}

			m.refreshTable()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m WizardModel) openLineEdit() (tea.Model, tea.Cmd) {
	lines := m.flow.lines()

	idx := m.table.Cursor()
	if idx < 0 || idx >= len(lines) {
		return m, nil
	}

	l := lines[idx]
	m.editIdx = idx
	m.edit = &lineInput{
		quantity: totals.FormatQuantity(l.quantity),
		price:    strings.Replace(l.price.String(), ".", ",", 1),
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Количество").Value(&m.edit.quantity).Validate(positiveAmount),
			huh.NewInput().Title("Цена за единицу, ₽").Value(&m.edit.price).Validate(amount),
		).Title(l.name),
	).WithWidth(50).WithShowHelp(false)

	m.state = wizStateLineEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m WizardModel) updateLineEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
		m.state = wizStateLines
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = wizStateLines
	m.table.Focus()

	v, err := m.edit.values()
	if err != nil {
		m.err = err
		return m, nil
	}

	if err := m.flow.setLine(m.editIdx, v.quantity, v.price); err != nil {
		m.err = err
		return m, nil
	}

	m.err = nil
	m.refreshTable()

	return m, nil
}

func (m *WizardModel) refreshTable() {
	lines := m.flow.lines()
	rows := make([]table.Row, len(lines))

	for i, l := range lines {
		rows[i] = table.Row{
			fmt.Sprint(i + 1),
			l.section,
			l.name,
			l.unit,
			totals.FormatQuantity(l.quantity),
			totals.Format(l.price),
			totals.Format(totals.Row(totals.Line{Quantity: l.quantity, UnitPrice: l.price})),
		}
	}

	m.table.SetRows(rows)
}

// submitCmd creates the document from a copy of the wizard. The model adopts
// the resulting progress when wizSubmittedMsg arrives.
func (m WizardModel) submitCmd() tea.Cmd {
	snap := m.flow.snapshot()
	svc := m.svc

	return func() tea.Msg {
		id, err := snap.submit(context.Background(), svc.RequestTimeout())
		msg := wizSubmittedMsg{id: id, progress: snap.progress(), err: err}

		if err != nil {
			return msg
		}

		ctx, cancel := svc.Ctx()
		defer cancel()

		if err := snap.dropDraft(ctx); err != nil {
			msg.err = fmt.Errorf("документ создан, черновик не удалён: %w", err)
		}

		return msg
	}
}

func (m WizardModel) saveCmd(leave bool) tea.Cmd {
	snap := m.flow.snapshot()
	svc := m.svc

	return func() tea.Msg {
		ctx, cancel := svc.Ctx()
		defer cancel()

		err := snap.saveDraft(ctx)

		return wizSavedMsg{draftID: snap.draftID(), err: err, leave: leave}
	}
}

func (m WizardModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.flow.kind()) + "\n")
	b.WriteString(m.stepsView() + "\n\n")

	switch m.state {
	case wizStateLoading:
		b.WriteString(m.spinner.View() + " Загрузка…")
	case wizStateSubmitting:
		b.WriteString(m.spinner.View() + " Создание документа и строк…")
	case wizStateForm:
		if m.form != nil {
			b.WriteString(m.form.View())
		}
	case wizStateLines, wizStateLineEdit:
		content := lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View())

		if m.state == wizStateLineEdit {
			content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Render(m.form.View()))
		}

		b.WriteString(content + "\n")
		b.WriteString(fmt.Sprintf("Строк: %d   Итого: %s", len(m.flow.lines()), FormatMoney(m.flow.total())))
	case wizStateReview:
		b.WriteString(m.reviewView())
	case wizStateDone:
		b.WriteString(successStyle.Render("Документ создан со всеми строками"))
	}

	if m.flow.started() && m.state != wizStateDone {
		b.WriteString("\n\n" + faintStyle.Render("Документ уже создан на сервере, будут досозданы недостающие строки"))
	}

	if m.err != nil {
		b.WriteString("\n\n" + errorStyle.Render(errText(m.err)))
	}

	if m.status != "" {
		b.WriteString("\n" + m.status)
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m WizardModel) stepsView() string {
	parts := make([]string, len(wizSteps))
	current := m.flow.step()

	for i, s := range wizSteps {
		label := fmt.Sprintf("%d. %s", i+1, stepLabel(m.flow, s))

		switch {
		case s == current:
			parts[i] = activeStyle(label)
		case s < current:
			parts[i] = label
		default:
			parts[i] = faintStyle.Render(label)
		}
	}

	return strings.Join(parts, " → ")
}

// stepLabel names step s of f without moving f.
func stepLabel(f flow, s wizard.Step) string {
	switch f.(type) {
	case *estimateFlow:
		return (&wizard.Estimate{Step: s}).StepTitle()
	case *requestFlow:
		return (&wizard.Request{Step: s}).StepTitle()
	}

	return fmt.Sprint(int(s) + 1)
}

func (m WizardModel) reviewView() string {
	var b strings.Builder

	for _, f := range m.flow.review() {
		if f.value != "" {
			fmt.Fprintf(&b, "%s: %s\n", faintStyle.Render(f.label), f.value)
		}
	}

	fmt.Fprintf(&b, "\nИтого: %s\n", lipgloss.NewStyle().Bold(true).Render(FormatMoney(m.flow.total())))

	if m.partial != nil {
		fmt.Fprintf(&b, "\n%s\n", errorStyle.Render(
			fmt.Sprintf("Создано строк %d из %d. Enter: досоздать оставшиеся", m.partial.Created, m.partial.Total),
		))
	}

	return b.String()
}
