package view

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

var errNoActions = errors.New("нет доступных действий")

// transitionInput is bound to the action forms. It lives behind a pointer so
// copies of the model share it.
type transitionInput struct {
	action  workflow.Action
	comment string
	confirm bool
}

// actionChoice is what the user picked.
type actionChoice struct {
	tr      workflow.Transition
	comment string
}

// actionForm offers the transitions available from a status and asks for a
// comment when the chosen one requires it.
type actionForm struct {
	title     string
	available []workflow.Transition
	chosen    workflow.Transition
	comment   bool

	input *transitionInput
	form  *huh.Form
}

func newActionForm(machine *workflow.Machine, status workflow.Status, role workflow.Role, title string) (actionForm, tea.Cmd, error) {
	available := machine.Available(status, role)
	if len(available) == 0 {
		return actionForm{}, nil, errNoActions
	}

	a := actionForm{
		title:     title,
		available: available,
		input:     &transitionInput{action: available[0].Action},
	}

	opts := make([]huh.Option[workflow.Action], len(available))
	for i, tr := range available {
		opts[i] = huh.NewOption(tr.Label, tr.Action)
	}

	a.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[workflow.Action]().
				Title(title).
				Options(opts...).
				Value(&a.input.action),
		),
	).WithWidth(45).WithShowHelp(false)

	return a, a.form.Init(), nil
}

// commentFor switches the form to the comment of tr.
func (a actionForm) commentFor(tr workflow.Transition) (actionForm, tea.Cmd) {
	a.chosen = tr
	a.comment = true

	if a.input == nil {
		a.input = &transitionInput{action: tr.Action}
	}

	a.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(tr.Label + ": " + a.title).
				Description("Комментарий обязателен").
				Value(&a.input.comment).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("укажите причину")
					}

					return nil
				}),
		),
	).WithWidth(60).WithShowHelp(false)

	return a, a.form.Init()
}

// Update returns a choice once the user is done.
func (a actionForm) Update(msg tea.Msg) (actionForm, tea.Cmd, *actionChoice) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	if a.form.State != huh.StateCompleted {
		return a, cmd, nil
	}

	if a.comment {
		return a, nil, &actionChoice{tr: a.chosen, comment: strings.TrimSpace(a.input.comment)}
	}

	for _, tr := range a.available {
		if tr.Action != a.input.action {
			continue
		}

		if tr.CommentRequired {
			a, cmd = a.commentFor(tr)
			return a, cmd, nil
		}

		return a, nil, &actionChoice{tr: tr}
	}

	return a, nil, nil
}

func (a actionForm) View() string {
	if a.form == nil {
		return ""
	}

	return a.form.View()
}
