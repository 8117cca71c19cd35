// internal/report/summary.go
package report

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mwiater/ollabench/internal/benchmark"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	tableEmptyStyle  = tableCellStyle.Foreground(lipgloss.Color("241"))
)

var summaryHeaders = []string{
	"Model",
	"Runs",
	"Avg Gen Time (s)",
	"Min / Max (s)",
	"Avg Tokens",
	"Avg Tokens/s",
	"Min / Max (tok/s)",
}

// SummaryTable renders one row per model with the mean, min and max of the
// generation time, token count and throughput.
func SummaryTable(summaries []benchmark.ModelSummary) string {
	rows := make([][]string, 0, len(summaries))
	empty := make(map[int]bool)
	for i, s := range summaries {
		if s.Runs == 0 {
			empty[i] = true
			rows = append(rows, []string{s.Model, "0", "-", "-", "-", "-", "-"})
			continue
		}
		rows = append(rows, []string{
			s.Model,
			fmt.Sprintf("%d", s.Runs),
			fmt.Sprintf("%.2f", s.AverageStats.GenerationTime),
			fmt.Sprintf("%.2f / %.2f", s.MinStats.GenerationTime, s.MaxStats.GenerationTime),
			fmt.Sprintf("%.1f", s.AverageStats.TokensGenerated),
			fmt.Sprintf("%.2f", s.AverageStats.TokensPerSecond),
			fmt.Sprintf("%.2f / %.2f", s.MinStats.TokensPerSecond, s.MaxStats.TokensPerSecond),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(summaryHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case empty[row]:
				return tableEmptyStyle
			default:
				return tableCellStyle
			}
		})
	return t.String()
}
