package view

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// formSpec is a single form that creates or changes something on the server.
type formSpec struct {
	title string

	// build runs off the UI loop so it can load the options the form offers.
	// Values must be bound to variables allocated outside build.
	build  func(ctx context.Context) (*huh.Form, error)
	submit func(ctx context.Context) (string, error)
}

type formState int

const (
	formStateLoading formState = iota
	formStateEditing
	formStateSaving
	formStateDone
)

// FormModel drives a formSpec: load, edit, save, report.
type FormModel struct {
	CommonModel
	svc  *Services
	spec formSpec

	state   formState
	form    *huh.Form
	spinner spinner.Model
	result  string
	err     error
}

func newForm(svc *Services, spec formSpec) FormModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return FormModel{svc: svc, spec: spec, spinner: sp}
}

func (m FormModel) Title() string { return m.spec.title }

func (m FormModel) ShortHelp() string {
	switch m.state {
	case formStateEditing:
		return "Enter: далее | Esc: отмена"
	case formStateDone:
		return "Enter/Esc: назад"
	}

	return "Esc: отмена"
}

func (m FormModel) Init() tea.Cmd {
	build := m.spec.build

	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := m.svc.Ctx()
		defer cancel()

		form, err := build(ctx)

		return formBuiltMsg{form: form, err: err}
	})
}

type formBuiltMsg struct {
	form *huh.Form
	err  error
}

type formSavedMsg struct {
	text string
	err  error
}

func (m FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case formBuiltMsg:
		if msg.err != nil {
			m.state = formStateDone
			m.err = msg.err

			return m, nil
		}

		m.form = msg.form.WithWidth(60).WithShowHelp(false)
		m.state = formStateEditing

		return m, m.form.Init()

	case formSavedMsg:
		if msg.err != nil {
			// Inputs outlive the form, so a rebuilt form keeps what was typed.
			m.state = formStateLoading
			m.err = msg.err

			return m, m.Init()
		}

		m.state = formStateDone
		m.err = nil
		m.result = msg.text

		return m, nil

	case spinner.TickMsg:
		if m.state != formStateLoading && m.state != formStateSaving {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.KeyMsg:
		switch {
		case msg.Type == tea.KeyEsc:
			return m, Back
		case m.state == formStateDone && msg.Type == tea.KeyEnter:
			return m, Back
		}
	}

	if m.state != formStateEditing {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.state = formStateSaving
		return m, tea.Batch(m.spinner.Tick, m.submitCmd())
	}

	return m, cmd
}

func (m FormModel) submitCmd() tea.Cmd {
	submit := m.spec.submit

	return func() tea.Msg {
		ctx, cancel := m.svc.Ctx()
		defer cancel()

		text, err := submit(ctx)

		return formSavedMsg{text: text, err: err}
	}
}

func (m FormModel) View() string {
	var body string

	switch m.state {
	case formStateLoading:
		body = m.spinner.View() + " Загрузка…"
	case formStateSaving:
		body = m.spinner.View() + " Сохранение…"
	case formStateEditing:
		body = m.form.View()
	case formStateDone:
		if m.err != nil {
			body = errorStyle.Render(errText(m.err))
		} else {
			body = successStyle.Render(m.result)
		}

		body += "\n\n" + faintStyle.Render("(Enter: назад)")
	}

	if m.state == formStateEditing && m.err != nil {
		body += "\n" + errorStyle.Render(errText(m.err))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(titleStyle.Render(m.spec.title) + "\n\n" + body)
}

var errNoOptions = errors.New("список пуст")
