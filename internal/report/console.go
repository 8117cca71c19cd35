// internal/report/console.go
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mwiater/ollabench/internal/benchmark"
)

var (
	successfulResult = color.New(color.FgGreen).SprintFunc()
	failedResult     = color.New(color.FgRed).SprintFunc()
	pulledModel      = color.New(color.FgCyan).SprintFunc()
)

// Console prints one coloured status line per finished request. It is the
// plain-terminal counterpart of the live view.
type Console struct {
	out       io.Writer
	succeeded int
	failed    int
}

// NewConsole returns a Console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Observe is a benchmark.Observer.
func (c *Console) Observe(ev benchmark.Event) {
	switch ev.Kind {
	case benchmark.EventRunStarted:
		c.succeeded, c.failed = 0, 0
		fmt.Fprintf(c.out, "Run %s\n", ev.RunID)
	case benchmark.EventModelReady:
		if ev.Pulled {
			fmt.Fprintf(c.out, "%s %s pulled\n", pulledModel("↓"), ev.Model)
		}
	case benchmark.EventRequestFinished:
		if ev.Err != nil {
			c.failed++
			fmt.Fprintf(c.out, "%s [%d/%d] %s · %s: %v\n", failedResult("✗"), ev.Index, ev.Total, ev.Model, ev.Task, ev.Err)
			return
		}
		c.succeeded++
		r := ev.Record
		fmt.Fprintf(c.out, "%s [%d/%d] %s · %s: %d tokens in %.2fs (%.2f tok/s)\n",
			successfulResult("✓"), ev.Index, ev.Total, ev.Model, ev.Task, r.TokensGenerated, r.GenerationTime, r.TokensPerSecond)
	case benchmark.EventRunFinished:
		fmt.Fprintf(c.out, "Completed %d of %d requests (%d failed).\n", c.succeeded, ev.Total, c.failed)
	}
}

// Counts returns the successes and failures seen since the last run started.
func (c *Console) Counts() (succeeded, failed int) {
	return c.succeeded, c.failed
}
