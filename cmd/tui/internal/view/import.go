package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/procura/internal/boq"
	"github.com/MrJamesThe3rd/procura/internal/importer"
	"github.com/MrJamesThe3rd/procura/internal/importer/sheet"
	"github.com/MrJamesThe3rd/procura/internal/totals"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateParsing
	importStatePreview
	importStateImporting
	importStateResult
)

// ImportModel reads BOQ lines from a spreadsheet, lets the user pick which to
// keep and adds them to an editable BOQ.
type ImportModel struct {
	CommonModel
	svc *Services
	boq *boq.BOQ

	state      importState
	filePicker filepicker.Model

	parsed   *sheet.Result
	lineList list.Model
	selected map[int]bool

	status string
	err    error
}

func NewImportModel(svc *Services, b *boq.BOQ) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = importer.Extensions
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		svc:        svc,
		boq:        b,
		filePicker: fp,
		selected:   make(map[int]bool),
	}
}

func (m ImportModel) Title() string { return "Импорт строк в " + m.boq.Number }

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStatePreview:
		return "Space: отметить | a: все | n: ни одной | Enter: добавить | Esc: другой файл"
	case importStateResult:
		return "Esc: назад"
	}

	return "Esc: назад | Enter: выбрать"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStatePreview {
			return m.updatePreview(msg)
		}

	case parsedMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = "Ошибка: " + errText(msg.err)

			return m, nil
		}

		m.parsed = msg.result
		m.selected = make(map[int]bool, len(msg.result.Items))
		m.state = importStatePreview

		items := make([]list.Item, len(msg.result.Items))
		for i, p := range msg.result.Items {
			items[i] = lineItem{params: p, index: i}
			m.selected[i] = true
		}

		delegate := lineDelegate{selected: &m.selected}
		m.lineList = list.New(items, delegate, 100, 20)
		m.lineList.Title = fmt.Sprintf("Формат «%s»: строк %d, пропущено %d", msg.result.Profile, len(msg.result.Items), msg.result.Skipped)
		m.lineList.SetShowStatusBar(false)
		m.lineList.SetFilteringEnabled(false)
		m.lineList.SetShowHelp(false)

		return m, nil

	case addedMsg:
		m.state = importStateResult
		m.err = msg.err

		if msg.err != nil {
			m.status = fmt.Sprintf("Добавлено %d из %d строк. Ошибка: %s", msg.result.Created, msg.result.Total, errText(msg.err))
			return m, nil
		}

		m.status = fmt.Sprintf("Добавлено строк: %d", msg.result.Created)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateParsing
		m.status = fmt.Sprintf("Чтение %s…", path)

		return m, m.parseCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStatePreview:
		m.state = importStateFilePick
		m.parsed = nil
		m.selected = make(map[int]bool)

		return m, nil
	case importStateResult:
		if m.err != nil && m.parsed == nil {
			m.state = importStateFilePick
			m.err = nil
			m.status = ""

			return m, nil
		}
	}

	return m, Back
}

func (m ImportModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.lineList.Index()
		m.selected[idx] = !m.selected[idx]

		return m, nil
	case "a":
		for i := range m.parsed.Items {
			m.selected[i] = true
		}

		return m, nil
	case "n":
		for i := range m.parsed.Items {
			m.selected[i] = false
		}

		return m, nil
	case "enter":
		chosen := m.chosen()
		if len(chosen) == 0 {
			return m, nil
		}

		m.state = importStateImporting
		m.status = fmt.Sprintf("Добавление %d строк…", len(chosen))

		return m, m.addCmd(chosen)
	}

	var cmd tea.Cmd
	m.lineList, cmd = m.lineList.Update(msg)

	return m, cmd
}

func (m ImportModel) chosen() []boq.ItemParams {
	var out []boq.ItemParams

	for i, p := range m.parsed.Items {
		if m.selected[i] {
			out = append(out, p)
		}
	}

	return out
}

func chosenTotal(items []boq.ItemParams) string {
	lines := make([]totals.Line, len(items))
	for i, p := range items {
		lines[i] = totals.Line{Section: p.Section, Quantity: p.Quantity, UnitPrice: p.UnitPrice}
	}

	return FormatMoney(totals.Grand(lines))
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Файл ВОР (%v):\n\n%s", importer.Extensions, m.filePicker.View()),
		)
	case importStateParsing, importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStatePreview:
		chosen := m.chosen()
		footer := fmt.Sprintf("Отмечено: %d   Сумма: %s", len(chosen), chosenTotal(chosen))

		return lipgloss.NewStyle().Padding(1).Render(m.lineList.View() + "\n" + footer)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle.Render(m.status) + "\n\n(Esc: назад)")
	}

	return style.Render(successStyle.Render(m.status) + "\n\n(Esc: назад)")
}

// Messages

type parsedMsg struct {
	result *sheet.Result
	err    error
}

type addedMsg struct {
	result boq.ImportResult
	err    error
}

var errNoLines = errors.New("в файле не найдено ни одной строки с количеством")

func (m ImportModel) parseCmd(path string) tea.Cmd {
	imp := m.svc.Importer

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		res, err := imp.Import(ctx, path)
		if err != nil {
			return parsedMsg{err: err}
		}

		if len(res.Items) == 0 {
			return parsedMsg{err: errNoLines}
		}

		return parsedMsg{result: res}
	}
}

func (m ImportModel) addCmd(items []boq.ItemParams) tea.Cmd {
	h, b := m.svc.BOQs, m.boq

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		res, err := h.AddItems(ctx, b, items)

		return addedMsg{result: res, err: err}
	}
}

// Line list item

type lineItem struct {
	params boq.ItemParams
	index  int
}

func (i lineItem) Title() string       { return i.params.Name }
func (i lineItem) Description() string { return i.params.Section }
func (i lineItem) FilterValue() string { return i.params.Name }

// Line list delegate

type lineDelegate struct {
	selected *map[int]bool
}

func (d lineDelegate) Height() int                             { return 2 }
func (d lineDelegate) Spacing() int                            { return 0 }
func (d lineDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d lineDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(lineItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if (*d.selected)[item.index] {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	p := item.params
	line := totals.Line{Quantity: p.Quantity, UnitPrice: p.UnitPrice}

	line1 := fmt.Sprintf("%s%s %s %s", cursor, checkbox, p.Code, p.Name)
	line2 := fmt.Sprintf("      %s  %s %s × %s = %s",
		p.Section,
		totals.FormatQuantity(p.Quantity), p.Unit,
		totals.Format(p.UnitPrice),
		FormatMoney(totals.Row(line)),
	)

	fmt.Fprintf(w, "%s\n%s\n", line1, faintStyle.Render(line2))
}
