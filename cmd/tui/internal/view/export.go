package view

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/procura/internal/export"
	"github.com/MrJamesThe3rd/procura/internal/volume"
)

type exportState int

const (
	exportStatePath exportState = iota
	exportStateExporting
	exportStateResult
)

const defaultExportDir = "./exports"

// exportJob writes something into dir and returns the written path with a
// text summary of it.
type exportJob func(ctx context.Context, dir string) (path, summary string, err error)

type ExportModel struct {
	CommonModel
	svc *Services

	title    string
	progress string
	job      exportJob

	state   exportState
	err     error
	form    *huh.Form
	dir     *string
	spinner spinner.Model

	path    string
	summary string
	copied  string
}

func newExportModel(svc *Services, title, progress string, job exportJob) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	dir := svc.ExportDir
	if dir == "" {
		dir = defaultExportDir
	}

	m := ExportModel{
		svc:      svc,
		title:    title,
		progress: progress,
		job:      job,
		state:    exportStatePath,
		dir:      &dir,
		spinner:  s,
	}
	m.form = m.buildPathForm()

	return m
}

// NewExportModel saves doc as an Excel workbook.
func NewExportModel(svc *Services, doc export.Document) ExportModel {
	title := fmt.Sprintf("Выгрузка: %s %s", doc.Kind, doc.Number)

	return newExportModel(svc, title, "Формирование книги Excel…", func(_ context.Context, dir string) (string, string, error) {
		path, err := svc.Export.SaveWorkbook(doc, dir)
		if err != nil {
			return "", "", err
		}

		return path, export.Summary(doc), nil
	})
}

func newDownloadModel(svc *Services, v volume.Volume) ExportModel {
	title := fmt.Sprintf("Скачивание тома %s", v.Code)

	return newExportModel(svc, title, "Скачивание файла…", func(ctx context.Context, dir string) (string, string, error) {
		path, err := svc.Export.DownloadVolume(ctx, &v, dir)
		if err != nil {
			return "", "", err
		}

		summary := fmt.Sprintf("%s %s, ред. %d (%s)", v.Code, v.Title, v.Version, volume.Workflow.Badge(v.Status).Label)

		return path, summary, nil
	})
}

func (m ExportModel) Title() string { return m.title }

func (m ExportModel) ShortHelp() string {
	switch m.state {
	case exportStateResult:
		if m.err == nil {
			return "Esc: назад | c: скопировать сводку"
		}

		return "Esc: назад"
	case exportStateExporting:
		return "Выполняется…"
	}

	return "Esc: назад | Enter: выгрузить"
}

func (m ExportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case exportStatePath:
		return m.updatePath(msg)
	case exportStateExporting:
		return m.updateExporting(msg)
	case exportStateResult:
		return m.updateResult(msg)
	}

	return m, nil
}

func (m ExportModel) updatePath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = exportStateExporting
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.runExportCmd(*m.dir))
}

func (m ExportModel) updateExporting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(exportResultMsg); ok {
		m.state = exportStateResult
		m.err = result.err
		m.path = result.path
		m.summary = result.summary

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m ExportModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc", "enter":
		return m, Back
	case "c":
		if m.err != nil {
			return m, nil
		}

		if err := clipboard.WriteAll(m.summary); err != nil {
			m.copied = errorStyle.Render("Буфер обмена недоступен: " + err.Error())
			return m, nil
		}

		m.copied = successStyle.Render("Сводка скопирована")
	}

	return m, nil
}

func (m ExportModel) buildPathForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("path").
				Title("Каталог").
				Description("Будет создан, если не существует").
				Placeholder(defaultExportDir).
				Value(m.dir).
				Validate(required("каталог")),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExportModel) View() string {
	switch m.state {
	case exportStatePath:
		return lipgloss.NewStyle().Padding(1).Render(titleStyle.Render(m.title) + "\n\n" + m.form.View())

	case exportStateExporting:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s %s", m.spinner.View(), m.progress),
		)

	case exportStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ExportModel) viewResult() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(
			errorStyle.Render("Ошибка: " + errText(m.err)),
		)
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("46")).
		Render("Готово")

	parts := []string{header, "", "Файл: " + m.path, "", m.summary}
	if m.copied != "" {
		parts = append(parts, "", m.copied)
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

type exportResultMsg struct {
	path    string
	summary string
	err     error
}

const exportTimeout = 2 * time.Minute

func (m ExportModel) runExportCmd(dir string) tea.Cmd {
	job := m.job

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		path, summary, err := job(ctx, dir)

		return exportResultMsg{path: path, summary: summary, err: err}
	}
}
