package benchmark

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"

	"github.com/mwiater/ollabench/internal/logging"
	"github.com/mwiater/ollabench/internal/ollama"
)

// captureLog redirects the standard logger into a buffer for the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}

func TestRunLogsStartAndFinish(t *testing.T) {
	buf := captureLog(t)
	probe, models, runner := readyFixtures("m1")
	o := newTestOrchestrator(probe, models, runner, WithRunIDFunc(func() string { return "run-1" }))

	if _, err := o.RunAll(context.Background(), []string{"m1"}, []Task{{Name: "A"}}, DefaultOptions()); err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Run run-1 started: 1 models, 1 tasks") {
		t.Fatalf("missing start line: %s", out)
	}
	if !strings.Contains(out, "Run run-1 finished: 1 of 1 requests succeeded") {
		t.Fatalf("missing finish line: %s", out)
	}
}

func TestRunnerTracesAttemptsInDebug(t *testing.T) {
	buf := captureLog(t)
	logging.SetDebug(true)
	t.Cleanup(func() { logging.SetDebug(false) })

	gen := &scriptedGenerator{
		errs:      []error{context.DeadlineExceeded, nil},
		responses: []ollama.GenerateResponse{{}, {EvalCount: 1}},
	}
	if _, err := NewRunner(gen).Run(context.Background(), "m1", Task{Name: "t"}, testOpts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "[DEBUG] generate model=m1 attempt=1") || !strings.Contains(out, "attempt=2") {
		t.Fatalf("expected per-attempt debug lines, got: %s", out)
	}
}
