package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	purple = lipgloss.Color("99")
	red    = lipgloss.Color("204")
	dim    = lipgloss.Color("243")
	faint  = lipgloss.Color("238")
)

// renderTable draws rows under headers with a rounded border. Rows whose
// highlight cell matches highlight are drawn in red.
func renderTable(headers []string, rows [][]string, highlight int, value string) string {
	headerStyle := lipgloss.NewStyle().Foreground(purple).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	hotStyle := cellStyle.Foreground(red)
	oddStyle := cellStyle.Foreground(dim)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(faint)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case highlight >= 0 && row < len(rows) && rows[row][highlight] == value:
				return hotStyle
			case row%2 == 0:
				return cellStyle
			default:
				return oddStyle
			}
		}).
		Headers(headers...).
		Rows(rows...)

	return t.String()
}
