// internal/report/report.go
// Package report renders a finished run for the terminal and writes its exports.
package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/ollabench/internal/benchmark"
)

// NoResultsMessage is printed instead of a report when a run produced no records.
const NoResultsMessage = "No results available to render or save."

var headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

// Render writes the summary table, per-task charts and the qualitative
// listing of responses. It reports false when there was nothing to render.
func Render(w io.Writer, result *benchmark.RunResult) bool {
	if result == nil || len(result.Records) == 0 {
		fmt.Fprintln(w, NoResultsMessage)
		return false
	}

	fmt.Fprintln(w, headingStyle.Render("Summary"))
	fmt.Fprintln(w, SummaryTable(benchmark.Summarize(result.Models, result.Records)))
	fmt.Fprintln(w)

	fmt.Fprintln(w, headingStyle.Render("Per-task comparison"))
	for _, task := range result.Tasks {
		fmt.Fprintln(w, TaskCharts(task.Name, result.Models, result.Records))
	}

	fmt.Fprintln(w, headingStyle.Render("Responses"))
	Responses(w, result.Tasks, result.Models, result.Records)
	return true
}
