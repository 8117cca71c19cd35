// internal/report/responses.go
package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/mwiater/ollabench/internal/benchmark"
)

// ResponseWidth is the wrap width of the qualitative listing.
const ResponseWidth = 100

var (
	taskTitle  = color.New(color.FgCyan, color.Bold).SprintFunc()
	modelTitle = color.New(color.Bold).SprintFunc()
	warning    = color.New(color.FgYellow).SprintFunc()
)

// Responses prints each task's prompt followed by every model's answer. A
// warning line stands in for each (model, task) pair without a record.
func Responses(w io.Writer, tasks []benchmark.Task, models []string, records []benchmark.Record) {
	for _, task := range tasks {
		fmt.Fprintf(w, "%s\n", taskTitle("Task: "+task.Name))
		fmt.Fprintf(w, "Prompt: %s\n\n", task.Prompt)
		for _, model := range models {
			r, ok := benchmark.Lookup(records, model, task.Name)
			if !ok {
				fmt.Fprintln(w, warning(fmt.Sprintf("Warning: No data for model %s on task %s", model, task.Name)))
				continue
			}
			fmt.Fprintf(w, "%s\n", modelTitle(model+":"))
			fmt.Fprintln(w, indent(wrapToWidth(strings.TrimSpace(r.Response), ResponseWidth), "  "))
			fmt.Fprintln(w)
		}
	}
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// wrapToWidth wraps text to width runes, breaking words longer than a line.
func wrapToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		var cur strings.Builder
		n := 0
		flush := func() {
			if n > 0 {
				out = append(out, cur.String())
				cur.Reset()
				n = 0
			}
		}
		for _, w := range words {
			wLen := utf8.RuneCountInString(w)
			if n > 0 && n+1+wLen <= width {
				cur.WriteByte(' ')
				cur.WriteString(w)
				n += 1 + wLen
				continue
			}
			flush()
			for r := []rune(w); len(r) > 0; {
				take := min(len(r), width)
				if take < len(r) {
					out = append(out, string(r[:take]))
				} else {
					cur.WriteString(string(r))
					n = take
				}
				r = r[take:]
			}
		}
		flush()
	}
	return strings.Join(out, "\n")
}
