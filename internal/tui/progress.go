// internal/tui/progress.go
// Package tui shows a live view of a benchmark run.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/ollabench/internal/benchmark"
)

// RunFunc performs a run, reporting progress to observe.
type RunFunc func(ctx context.Context, observe benchmark.Observer) (*benchmark.RunResult, error)

// eventMsg carries one orchestrator event into the program.
type eventMsg benchmark.Event

// doneMsg is sent once the run returns.
type doneMsg struct {
	result *benchmark.RunResult
	err    error
}

// tickMsg is a message sent at regular intervals, used for the elapsed timer.
type tickMsg time.Time

// maxLines is how many finished requests stay on screen.
const maxLines = 12

const progressWidth = 30

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	filledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// model is the Bubble Tea model of the live view.
type model struct {
	spinner   spinner.Model
	cancel    context.CancelFunc
	now       func() time.Time
	started   time.Time
	runID     string
	index     int
	total     int
	task      string
	current   string
	pulled    []string
	lines     []string
	succeeded int
	failed    int
	width     int
	stopping  bool
	done      bool
	result    *benchmark.RunResult
	err       error
}

func newModel(cancel context.CancelFunc) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return &model{
		spinner: s,
		cancel:  cancel,
		now:     time.Now,
		started: time.Now(),
	}
}

// tickCmd creates a Bubble Tea command that sends a tickMsg at a regular interval.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the spinner and the elapsed timer.
func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

// Update folds run events and key presses into the view state.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.stopping {
				m.stopping = true
				if m.cancel != nil {
					m.cancel()
				}
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case eventMsg:
		m.apply(benchmark.Event(msg))
		return m, nil

	case doneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit

	case tickMsg:
		if m.done {
			return m, nil
		}
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) apply(ev benchmark.Event) {
	switch ev.Kind {
	case benchmark.EventRunStarted:
		m.runID = ev.RunID
		m.started = m.now()
	case benchmark.EventModelReady:
		if ev.Pulled {
			m.pulled = append(m.pulled, ev.Model)
		}
	case benchmark.EventTaskStarted:
		m.task = ev.Task
		m.total = ev.Total
	case benchmark.EventRequestStarted:
		m.current = ev.Model
		m.index = ev.Index - 1
		m.total = ev.Total
	case benchmark.EventRequestFinished:
		m.index = ev.Index
		m.current = ""
		if ev.Err != nil {
			m.failed++
			m.push(failStyle.Render("✗") + fmt.Sprintf(" %s · %s  %v", ev.Task, ev.Model, ev.Err))
			return
		}
		m.succeeded++
		r := ev.Record
		m.push(okStyle.Render("✓") + fmt.Sprintf(" %s · %s  %d tokens  %.2fs  %.2f tok/s", ev.Task, ev.Model, r.TokensGenerated, r.GenerationTime, r.TokensPerSecond))
	case benchmark.EventRunFinished:
		m.index = ev.Index
		m.total = ev.Total
		m.current = ""
	}
}

func (m *model) push(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > maxLines {
		m.lines = m.lines[len(m.lines)-maxLines:]
	}
}

// View renders the progress bar, the request in flight and the latest results.
func (m *model) View() string {
	var b strings.Builder

	header := "Benchmarking"
	if m.runID != "" {
		header += dimStyle.Render(" run " + m.runID)
	}
	b.WriteString("\n  " + titleStyle.Render(header) + "\n\n")

	elapsed := m.now().Sub(m.started).Seconds()
	fmt.Fprintf(&b, "  %s %s %d/%d  %.1fs\n", m.spinner.View(), progressBar(m.index, m.total), m.index, m.total, elapsed)

	switch {
	case m.stopping && !m.done:
		b.WriteString("  " + warningStyle.Render("Stopping...") + "\n")
	case m.current != "":
		fmt.Fprintf(&b, "  Task: %s · Model: %s\n", m.task, m.current)
	case m.runID == "":
		b.WriteString("  " + dimStyle.Render("Checking server and models...") + "\n")
	}
	if len(m.pulled) > 0 {
		b.WriteString("  " + dimStyle.Render("Pulled: "+strings.Join(m.pulled, ", ")) + "\n")
	}

	if len(m.lines) > 0 {
		b.WriteString("\n")
		for _, line := range m.lines {
			b.WriteString("  " + line + "\n")
		}
	}

	fmt.Fprintf(&b, "\n  %s\n", dimStyle.Render(fmt.Sprintf("%d ok · %d failed · q to stop", m.succeeded, m.failed)))
	return b.String()
}

func progressBar(done, total int) string {
	filled := 0
	if total > 0 {
		filled = min(done*progressWidth/total, progressWidth)
	}
	return filledStyle.Render(strings.Repeat("█", filled)) + strings.Repeat("░", progressWidth-filled)
}

// Run executes run on a background goroutine and shows its progress until it
// returns. Quitting the view cancels the run's context and waits for it to
// wind down.
func Run(ctx context.Context, run RunFunc, opts ...tea.ProgramOption) (*benchmark.RunResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newModel(cancel)
	p := tea.NewProgram(m, opts...)

	go func() {
		result, err := run(ctx, func(ev benchmark.Event) {
			p.Send(eventMsg(ev))
		})
		p.Send(doneMsg{result: result, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("error running progress view: %w", err)
	}
	fm := final.(*model)
	return fm.result, fm.err
}
