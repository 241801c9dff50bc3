package view

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/procura/internal/apiclient"
	"github.com/MrJamesThe3rd/procura/internal/totals"
	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	panelStyle   = lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63"))
)

var badgeColors = map[workflow.Color]lipgloss.Color{
	workflow.ColorGray:   lipgloss.Color("245"),
	workflow.ColorBlue:   lipgloss.Color("39"),
	workflow.ColorYellow: lipgloss.Color("220"),
	workflow.ColorGreen:  lipgloss.Color("42"),
	workflow.ColorRed:    lipgloss.Color("196"),
	workflow.ColorPurple: lipgloss.Color("135"),
}

// FormatMoney renders an amount in roubles with kopecks.
func FormatMoney(d decimal.Decimal) string {
	return totals.Format(d) + " ₽"
}

// FormatNullMoney renders a dash for a missing amount.
func FormatNullMoney(d decimal.NullDecimal) string {
	if !d.Valid {
		return "—"
	}

	return FormatMoney(d.Decimal)
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format("02.01.2006")
}

// RenderBadge colours a status label.
func RenderBadge(b workflow.Badge) string {
	c, ok := badgeColors[b.Color]
	if !ok {
		c = badgeColors[workflow.ColorGray]
	}

	return lipgloss.NewStyle().Foreground(c).Render(b.Label)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

// errText is the user-facing text of err.
func errText(err error) string {
	return apiclient.Message(err, err.Error())
}

// newTable is a focused table in the common style.
func newTable(columns []table.Column, height int) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}
