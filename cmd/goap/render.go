package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/metalagman/goap/internal/goap"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	trueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A"))
	falseStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
	unknownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
)

// renderTable draws a plain column-aligned table.
func renderTable(title string, headers []string, rows [][]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(titleStyle.Render(title))
		sb.WriteString("\n")
	}
	if len(rows) == 0 {
		sb.WriteString(mutedStyle.Render("(none)"))
		sb.WriteString("\n")
		return sb.String()
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	for i := range widths {
		widths[i] += 2
	}

	sep := mutedStyle.Render("|")
	for i, h := range headers {
		sb.WriteString(headerStyle.Width(widths[i]).Render(h))
		if i < len(headers)-1 {
			sb.WriteString(sep)
		}
	}
	sb.WriteString("\n")
	for i, w := range widths {
		sb.WriteString(mutedStyle.Render(strings.Repeat("-", w)))
		if i < len(widths)-1 {
			sb.WriteString(mutedStyle.Render("+"))
		}
	}
	sb.WriteString("\n")
	for _, row := range rows {
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			sb.WriteString(cellStyle.Width(widths[i]).Render(cell))
			if i < len(headers)-1 {
				sb.WriteString(sep)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderDetermination(d goap.Determination) string {
	switch d {
	case goap.True:
		return trueStyle.Render(d.String())
	case goap.False:
		return falseStyle.Render(d.String())
	default:
		return unknownStyle.Render(d.String())
	}
}

func renderPlan(plan *goap.Plan) string {
	if plan == nil {
		return falseStyle.Render("no plan") + "\n"
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Plan to " + plan.Goal.Name))
	sb.WriteString("\n")
	if plan.Empty() {
		sb.WriteString(mutedStyle.Render("goal already satisfied"))
		sb.WriteString("\n")
		return sb.String()
	}
	for i, a := range plan.Actions {
		fmt.Fprintf(&sb, "%2d. %s %s\n", i+1, a.Name, mutedStyle.Render(fmt.Sprintf("(cost %g)", a.Cost)))
	}
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("cost %g, net value %g", plan.Cost(), plan.NetValue())))
	sb.WriteString("\n")
	return sb.String()
}

// renderMarkdown renders md for the terminal.
func renderMarkdown(md string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
