package report

import (
	"fmt"
	"strings"

	"fjacquet/spend-dashboard/internal/presenter"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// TextRenderer draws a dashboard for the terminal.
type TextRenderer struct {
	title   lipgloss.Style
	heading lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	notice  lipgloss.Style
	up      lipgloss.Style
	down    lipgloss.Style
	border  lipgloss.Style
}

// NewTextRenderer returns a renderer with the default palette.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa")),
		heading: lipgloss.NewStyle().Bold(true).MarginTop(1),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c")).Italic(true),
		notice:  lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af")),
		up:      lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1")),
		down:    lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8")),
		border:  lipgloss.NewStyle().Foreground(lipgloss.Color("#585b70")),
	}
}

// Render returns the whole dashboard as one string.
func (r *TextRenderer) Render(d *presenter.Dashboard) string {
	var b strings.Builder

	b.WriteString(r.title.Render("Spending Dashboard"))
	b.WriteString("\n")
	b.WriteString(r.label.Render(r.summaryLine(d)))
	b.WriteString("\n")
	if d.Filter.Notice != "" {
		b.WriteString(r.notice.Render(d.Filter.Notice))
		b.WriteString("\n")
	}

	b.WriteString(r.kpis(d.KPIs))
	b.WriteString("\n")

	r.breakdown(&b, d.ExpenseByCategory)
	r.daily(&b, d.DailyExpense)
	r.breakdown(&b, d.ExpenseByAccount)
	r.trend(&b, d.MonthlyTrend)
	r.breakdown(&b, d.NetExpenseByCategory)
	r.breakdown(&b, d.NetIncomeByCategory)
	r.transactions(&b, d)

	return b.String()
}

func (r *TextRenderer) summaryLine(d *presenter.Dashboard) string {
	period := d.Filter.From + " to " + d.Filter.To
	if d.Filter.From == "" {
		period = "no dates"
	}
	line := fmt.Sprintf("format %s | %s | %d of %d lines shown", d.Format, period, d.Matched, d.Lines)
	if d.Filter.Month != "" {
		line += " | month " + d.Filter.Month
	}
	if d.Dropped > 0 {
		line += fmt.Sprintf(" | %d malformed lines skipped", d.Dropped)
	}
	return line
}

func (r *TextRenderer) kpis(kpis []presenter.KPI) string {
	cells := make([]string, 0, len(kpis))
	for _, k := range kpis {
		value := k.Value
		switch k.Delta {
		case presenter.DeltaUp:
			value = r.up.Render(value + " ▲")
		case presenter.DeltaDown:
			value = r.down.Render(value + " ▼")
		}
		cell := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#585b70")).
			Padding(0, 2).
			Render(r.label.Render(k.Label) + "\n" + value)
		cells = append(cells, cell)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (r *TextRenderer) section(b *strings.Builder, title string) {
	b.WriteString(r.heading.Render(title))
	b.WriteString("\n")
}

func (r *TextRenderer) empty(b *strings.Builder, msg string) {
	b.WriteString(r.muted.Render(msg))
	b.WriteString("\n")
}

func (r *TextRenderer) newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.border).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Bold(true)
			}
			return style
		}).
		Headers(headers...)
}

func (r *TextRenderer) breakdown(b *strings.Builder, s presenter.Breakdown) {
	r.section(b, s.Title)
	if s.NoData {
		r.empty(b, s.Message)
		return
	}
	t := r.newTable("", "Amount", "Share")
	for _, row := range s.Rows {
		t.Row(row.Label, row.Value, row.Percent)
	}
	b.WriteString(t.Render())
	b.WriteString("\n")
}

func (r *TextRenderer) daily(b *strings.Builder, s presenter.DailySeries) {
	r.section(b, s.Title)
	if s.NoData {
		r.empty(b, s.Message)
		return
	}
	t := r.newTable("Date", "Expense")
	for _, p := range s.Points {
		t.Row(p.Date, p.Value)
	}
	b.WriteString(t.Render())
	b.WriteString("\n")
}

func (r *TextRenderer) trend(b *strings.Builder, s presenter.Trend) {
	r.section(b, s.Title)
	if s.NoData {
		r.empty(b, s.Message)
		return
	}
	t := r.newTable("Month", "Income", "Expense")
	for _, row := range s.Rows {
		t.Row(row.Label, row.IncomeValue, row.ExpenseValue)
	}
	b.WriteString(t.Render())
	b.WriteString("\n")
}

func (r *TextRenderer) transactions(b *strings.Builder, d *presenter.Dashboard) {
	r.section(b, "Transactions")
	if len(d.Transactions) == 0 {
		r.empty(b, d.TransactionsMessage)
		return
	}
	t := r.newTable("Date", "Account", "Description", "Category", "Expense", "Income")
	for _, row := range d.Transactions {
		t.Row(row.Date, row.Account, row.Description, row.Category, row.Expense, row.Income)
	}
	b.WriteString(t.Render())
	b.WriteString("\n")
}
