package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/vsinha/sop/pkg/application/dto"
	"github.com/vsinha/sop/pkg/domain/entities"
)

// UtilizationAlertThreshold is the utilization (percent) above which the card is flagged
const UtilizationAlertThreshold = 95.0

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(30)

	alertCardStyle = cardStyle.
			BorderForeground(lipgloss.Color("9"))

	cardLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	cardValueStyle = lipgloss.NewStyle().
			Bold(true)

	alertValueStyle = cardValueStyle.
			Foreground(lipgloss.Color("9"))

	narrationStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color("240")).
			Width(100)
)

type card struct {
	label   string
	value   string
	subtext string
	alert   bool
}

func kpiCards(plan dto.PlanResult) []card {
	k := plan.KPI
	gapSubtext := "Surplus available"
	if k.CapacityGap < 0 {
		gapSubtext = "Shortage against Target"
	}
	return []card{
		{label: "Current N+3 Order Volume", value: formatQuantity(k.CurrentOrderVolume), subtext: "Committed new orders"},
		{label: "Active Backlog Volume", value: formatQuantity(k.TotalBacklog), subtext: "Carry over demand to clear"},
		{label: plan.GapLabel, value: formatQuantity(k.CapacityGap), subtext: gapSubtext, alert: k.CapacityGap < 0},
		{
			label:   "Resource Utilization Rate",
			value:   fmt.Sprintf("%.1f%%", k.UtilizationRate),
			subtext: "Of theoretical max capacity",
			alert:   k.UtilizationRate > UtilizationAlertThreshold,
		},
	}
}

// targetCard is shown under the KPI row
func targetCard(plan dto.PlanResult) card {
	return card{
		label:   "Annual Target (Est.)",
		value:   formatQuantity(plan.KPI.AnnualTarget),
		subtext: "Theoretical max x 0.75 x 3",
	}
}

func renderCard(c card) string {
	style, valueStyle := cardStyle, cardValueStyle
	value := c.value
	if c.alert {
		style, valueStyle = alertCardStyle, alertValueStyle
		value = "⚠ " + value
	}
	body := cardLabelStyle.Render(c.label) + "\n" + valueStyle.Render(value)
	if c.subtext != "" {
		body += "\n" + cardLabelStyle.Render(c.subtext)
	}
	return style.Render(body)
}

func renderCards(cards []card) string {
	rendered := make([]string, 0, len(cards))
	for _, c := range cards {
		rendered = append(rendered, renderCard(c))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func renderChartTable(plan dto.PlanResult) string {
	columns := []table.Column{
		{Title: "Month", Width: 9},
		{Title: "Theoretical", Width: 11},
		{Title: "Actual", Width: 9},
		{Title: "OT 0", Width: 9},
		{Title: "OT +2", Width: 9},
		{Title: "OT +4", Width: 9},
		{Title: "Orders", Width: 9},
		{Title: "Backlog", Width: 9},
		{Title: "Total Req", Width: 9},
		{Title: "Unused", Width: 9},
		{Title: "Gap", Width: 9},
	}

	rows := make([]table.Row, len(plan.Chart))
	for i, p := range plan.Chart {
		var gap entities.Quantity
		if i < len(plan.MonthlyGaps) {
			gap = plan.MonthlyGaps[i]
		}
		rows[i] = table.Row{
			p.Month,
			formatQuantity(p.TheoreticalMax),
			formatQuantity(p.ActualCapacity),
			formatQuantity(p.CapacityOT0),
			formatQuantity(p.CapacityOT2),
			formatQuantity(p.CapacityOT4),
			formatQuantity(p.Demand),
			formatQuantity(p.Backlog),
			formatQuantity(p.TotalRequirement),
			formatQuantity(p.UnusedCapacity),
			formatSigned(gap),
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+3),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color("12"))
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)

	return t.View()
}

// RenderText renders the plan report for a terminal
func RenderText(report Report) string {
	plan := report.Plan
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("📊 S&OP Capacity Plan: %s (%s)", plan.ProductLine, plan.PlanningMonth)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("View: %s\n\n", plan.ViewMode))

	b.WriteString(renderCards(kpiCards(plan)))
	b.WriteString("\n")
	b.WriteString(renderCard(targetCard(plan)))
	b.WriteString("\n\n")

	b.WriteString(renderChartTable(plan))
	b.WriteString("\n")

	if report.Narration != nil {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("🤖 Capacity Risk Analysis"))
		b.WriteString("\n")
		b.WriteString(narrationStyle.Render(report.Narration.Text))
		b.WriteString("\n")
	}

	return b.String()
}

// formatQuantity groups thousands with commas
func formatQuantity(q entities.Quantity) string {
	s := strconv.FormatInt(int64(q), 10)
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if negative {
		return "-" + s
	}
	return s
}

func formatSigned(q entities.Quantity) string {
	if q > 0 {
		return "+" + formatQuantity(q)
	}
	return formatQuantity(q)
}
