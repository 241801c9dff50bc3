package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/procura/internal/material"
)

const materialLimit = 50

// MaterialsModel searches the catalogue as the user types. Keystrokes within
// the debounce window result in a single query.
type MaterialsModel struct {
	CommonModel
	svc *Services

	input    textinput.Model
	debounce *material.Debouncer
	table    table.Model
	results  []material.Material

	searching string
	err       error
}

func NewMaterialsModel(svc *Services) MaterialsModel {
	in := textinput.New()
	in.Placeholder = "наименование или код"
	in.Prompt = "Поиск: "
	in.Width = 50
	in.Focus()

	t := newTable([]table.Column{
		{Title: "Код", Width: 14},
		{Title: "Наименование", Width: 44},
		{Title: "Ед.", Width: 6},
		{Title: "Категория", Width: 18},
		{Title: "Цена", Width: 16},
	}, 15)
	t.Blur()

	return MaterialsModel{
		svc:      svc,
		input:    in,
		debounce: material.NewDebouncer(svc.SearchDebounce),
		table:    t,
	}
}

func (m MaterialsModel) Title() string { return "Материалы" }

func (m MaterialsModel) ShortHelp() string {
	return "Ввод: поиск | ↑/↓: результаты | Esc: назад"
}

func (m MaterialsModel) Init() tea.Cmd {
	return textinput.Blink
}

// searchTickMsg fires when the debounce window of keystroke seq ends.
type searchTickMsg struct {
	seq uint64
}

type materialsMsg struct {
	text    string
	results []material.Material
	err     error
}

func (m MaterialsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case searchTickMsg:
		text, ok := m.debounce.Fire(msg.seq)
		if !ok {
			return m, nil
		}

		m.searching = text

		return m, m.searchCmd(text)

	case materialsMsg:
		// A slower response for older text is dropped.
		if msg.text != m.searching {
			return m, nil
		}

		m.searching = ""
		m.err = msg.err
		m.results = msg.results
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-12, 5))

		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc:
			return m, Back
		case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
			m.table.Focus()

			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			m.table.Blur()

			return m, cmd
		}

		before := m.input.Value()

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)

		if m.input.Value() == before {
			return m, cmd
		}

		seq := m.debounce.Touch(m.input.Value())

		return m, tea.Batch(cmd, tea.Tick(m.debounce.Window(), func(time.Time) tea.Msg {
			return searchTickMsg{seq: seq}
		}))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m MaterialsModel) searchCmd(text string) tea.Cmd {
	h := m.svc.Materials
	svc := m.svc

	return func() tea.Msg {
		ctx, cancel := svc.Ctx()
		defer cancel()

		res, err := h.Search(ctx, text, materialLimit)

		return materialsMsg{text: text, results: res, err: err}
	}
}

func (m *MaterialsModel) refreshTable() {
	rows := make([]table.Row, len(m.results))

	for i, r := range m.results {
		rows[i] = table.Row{r.Code, r.Name, r.Unit, r.Category, FormatNullMoney(r.Price)}
	}

	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

func (m MaterialsModel) View() string {
	parts := []string{titleStyle.Render("Каталог материалов"), "", m.input.View(), ""}

	switch {
	case m.searching != "":
		parts = append(parts, faintStyle.Render("Поиск…"))
	case m.err != nil:
		parts = append(parts, errorStyle.Render(errText(m.err)))
	case len([]rune(m.input.Value())) < material.MinSearchLen:
		parts = append(parts, faintStyle.Render(fmt.Sprintf("Введите не менее %d символов", material.MinSearchLen)))
	case len(m.results) == 0:
		parts = append(parts, faintStyle.Render("Ничего не найдено"))
	default:
		parts = append(parts,
			lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240")).
				Render(m.table.View()),
			fmt.Sprintf("Найдено: %d", len(m.results)),
		)
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
