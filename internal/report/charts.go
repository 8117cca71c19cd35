// internal/report/charts.go
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/ollabench/internal/benchmark"
)

const barWidth = 30

var (
	chartTitleStyle = lipgloss.NewStyle().Bold(true)
	timeBarStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	speedBarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	missingStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)

type bar struct {
	label string
	value float64
	ok    bool
}

// TaskCharts renders two horizontal bar charts for one task: generation time
// and tokens per second, one bar per model.
func TaskCharts(task string, models []string, records []benchmark.Record) string {
	times := make([]bar, 0, len(models))
	speeds := make([]bar, 0, len(models))
	for _, model := range models {
		r, ok := benchmark.Lookup(records, model, task)
		times = append(times, bar{label: model, value: r.GenerationTime, ok: ok})
		speeds = append(speeds, bar{label: model, value: r.TokensPerSecond, ok: ok})
	}

	var b strings.Builder
	b.WriteString(chartTitleStyle.Render(fmt.Sprintf("Generation Time (s) · %s", task)))
	b.WriteString("\n")
	b.WriteString(barChart(times, timeBarStyle))
	b.WriteString(chartTitleStyle.Render(fmt.Sprintf("Tokens per Second · %s", task)))
	b.WriteString("\n")
	b.WriteString(barChart(speeds, speedBarStyle))
	return b.String()
}

func barChart(bars []bar, style lipgloss.Style) string {
	labelWidth := 0
	peak := 0.0
	for _, b := range bars {
		labelWidth = max(labelWidth, lipgloss.Width(b.label))
		if b.ok {
			peak = max(peak, b.value)
		}
	}

	var out strings.Builder
	for _, b := range bars {
		label := b.label + strings.Repeat(" ", labelWidth-lipgloss.Width(b.label))
		if !b.ok {
			fmt.Fprintf(&out, "  %s  %s\n", label, missingStyle.Render("no data"))
			continue
		}
		filled := scaledWidth(b.value, peak)
		fmt.Fprintf(&out, "  %s  %s%s %.2f\n",
			label,
			style.Render(strings.Repeat("█", filled)),
			strings.Repeat("░", barWidth-filled),
			b.value,
		)
	}
	return out.String()
}

// scaledWidth maps value onto [0, barWidth] relative to peak. Any positive
// value gets at least one cell.
func scaledWidth(value, peak float64) int {
	if peak <= 0 || value <= 0 {
		return 0
	}
	n := int(value / peak * barWidth)
	return min(max(n, 1), barWidth)
}
