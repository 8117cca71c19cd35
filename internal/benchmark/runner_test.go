package benchmark

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mwiater/ollabench/internal/ollama"
)

type scriptedGenerator struct {
	responses []ollama.GenerateResponse
	errs      []error
	timeouts  []time.Duration
	requests  []ollama.GenerateRequest
	// clock, when set, is advanced by delays[i] during attempt i.
	clock  *manualClock
	delays []time.Duration
}

func (g *scriptedGenerator) Generate(_ context.Context, req ollama.GenerateRequest, timeout time.Duration) (ollama.GenerateResponse, error) {
	i := len(g.timeouts)
	g.timeouts = append(g.timeouts, timeout)
	g.requests = append(g.requests, req)
	if g.clock != nil && i < len(g.delays) {
		g.clock.advance(g.delays[i])
	}
	var resp ollama.GenerateResponse
	if i < len(g.responses) {
		resp = g.responses[i]
	}
	if i < len(g.errs) && g.errs[i] != nil {
		return ollama.GenerateResponse{}, g.errs[i]
	}
	return resp, nil
}

// steppingClock advances by step on every call.
func steppingClock(step time.Duration) func() time.Time {
	current := time.Unix(0, 0)
	return func() time.Time {
		current = current.Add(step)
		return current
	}
}

type manualClock struct{ current time.Time }

func (c *manualClock) now() time.Time          { return c.current }
func (c *manualClock) advance(d time.Duration) { c.current = c.current.Add(d) }

var testOpts = Options{Temperature: 0.2, RequestTimeout: 2 * time.Second, RetryTimeout: 5 * time.Second}

func TestRunSuccess(t *testing.T) {
	gen := &scriptedGenerator{responses: []ollama.GenerateResponse{{
		Response:      "Paris",
		TotalDuration: 3_000_000_000,
		LoadDuration:  250_000_000,
		EvalCount:     40,
	}}}
	r := NewRunner(gen)
	r.now = steppingClock(2 * time.Second)

	res, err := r.Run(context.Background(), "m1", Task{Name: "capital", Prompt: "Capital of France?"}, testOpts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Response != "Paris" || res.EvalCount != 40 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.TotalDurationSeconds != 3 || res.LoadDurationSeconds != 0.25 {
		t.Fatalf("unexpected durations: %+v", res)
	}
	if res.GenerationTimeSeconds != 2 || res.TokensPerSecond != 20 {
		t.Fatalf("unexpected timing: %+v", res)
	}

	req := gen.requests[0]
	if req.Model != "m1" || req.Prompt != "Capital of France?" || req.MaxTokens != DefaultMaxTokens || req.Temperature != 0.2 {
		t.Fatalf("unexpected request: %+v", req)
	}
	if len(gen.timeouts) != 1 || gen.timeouts[0] != testOpts.RequestTimeout {
		t.Fatalf("expected a single attempt with the request timeout, got %v", gen.timeouts)
	}
}

func TestRunZeroElapsedHasZeroThroughput(t *testing.T) {
	gen := &scriptedGenerator{responses: []ollama.GenerateResponse{{EvalCount: 12}}}
	r := NewRunner(gen)
	fixed := time.Unix(100, 0)
	r.now = func() time.Time { return fixed }

	res, err := r.Run(context.Background(), "m1", Task{Name: "t", Prompt: "p", MaxTokens: 5}, testOpts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.GenerationTimeSeconds != 0 || res.TokensPerSecond != 0 {
		t.Fatalf("expected zero throughput, got %+v", res)
	}
	if gen.requests[0].MaxTokens != 5 {
		t.Fatalf("expected task token cap to be sent, got %d", gen.requests[0].MaxTokens)
	}
}

func TestRunNon200IsNotRetried(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{&ollama.StatusError{Code: 500, Body: "oops"}}}
	_, err := NewRunner(gen).Run(context.Background(), "m1", Task{Name: "t"}, testOpts)
	if err == nil || err.Error() != "Error: 500 - oops" {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gen.timeouts) != 1 {
		t.Fatalf("expected no retry, got %d attempts", len(gen.timeouts))
	}
}

func TestRunTransportErrorIsNotRetried(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{errors.New("connection refused")}}
	_, err := NewRunner(gen).Run(context.Background(), "m1", Task{Name: "t"}, testOpts)
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gen.timeouts) != 1 {
		t.Fatalf("expected no retry, got %d attempts", len(gen.timeouts))
	}
}

func TestRunRetriesOnceAfterTimeout(t *testing.T) {
	clock := &manualClock{current: time.Unix(0, 0)}
	gen := &scriptedGenerator{
		errs:      []error{context.DeadlineExceeded, nil},
		responses: []ollama.GenerateResponse{{}, {Response: "late", EvalCount: 10}},
		clock:     clock,
		delays:    []time.Duration{2 * time.Second, 3 * time.Second},
	}
	r := NewRunner(gen)
	r.now = clock.now

	res, err := r.Run(context.Background(), "m1", Task{Name: "t"}, testOpts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Response != "late" || res.EvalCount != 10 {
		t.Fatalf("unexpected retry result: %+v", res)
	}
	// Both attempts are timed: 2s lost to the timeout plus 3s for the retry.
	if res.GenerationTimeSeconds != 5 || res.TokensPerSecond != 2 {
		t.Fatalf("expected timing across both attempts, got %+v", res)
	}
	if len(gen.timeouts) != 2 || gen.timeouts[0] != testOpts.RequestTimeout || gen.timeouts[1] != testOpts.RetryTimeout {
		t.Fatalf("unexpected attempt timeouts: %v", gen.timeouts)
	}
}

func TestRunTimeoutTwiceFails(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{context.DeadlineExceeded, context.DeadlineExceeded, nil}}
	_, err := NewRunner(gen).Run(context.Background(), "m1", Task{Name: "t"}, testOpts)
	if err == nil || !strings.Contains(err.Error(), "second attempt") {
		t.Fatalf("expected second-attempt failure, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wrapped deadline error, got %v", err)
	}
	if len(gen.timeouts) != 2 {
		t.Fatalf("expected exactly two attempts, got %d", len(gen.timeouts))
	}
}

func TestRunRetryStatusErrorKeepsPlainMessage(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{context.DeadlineExceeded, &ollama.StatusError{Code: 503, Body: "busy"}}}
	_, err := NewRunner(gen).Run(context.Background(), "m1", Task{Name: "t"}, testOpts)
	if err == nil || err.Error() != "Error: 503 - busy" {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gen.timeouts) != 2 {
		t.Fatalf("expected two attempts, got %d", len(gen.timeouts))
	}
}

func TestRunRetryTransportErrorIsPrefixed(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{context.DeadlineExceeded, errors.New("connection reset")}}
	_, err := NewRunner(gen).Run(context.Background(), "m1", Task{Name: "t"}, testOpts)
	if err == nil || err.Error() != "error on second attempt: connection reset" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunDoesNotRetryWhenCallerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := &scriptedGenerator{errs: []error{context.DeadlineExceeded}}
	if _, err := NewRunner(gen).Run(ctx, "m1", Task{Name: "t"}, testOpts); err == nil {
		t.Fatalf("expected error")
	}
	if len(gen.timeouts) != 1 {
		t.Fatalf("expected no retry for a cancelled caller, got %d attempts", len(gen.timeouts))
	}
}

func TestRunRetryAgainstSlowServer(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
			return
		}
		_, _ = io.WriteString(w, `{"response":"ok","eval_count":3,"total_duration":1000,"load_duration":10}`)
	}))
	defer server.Close()

	opts := Options{Temperature: 0.7, RequestTimeout: 50 * time.Millisecond, RetryTimeout: 5 * time.Second}
	res, err := NewRunner(ollama.New(server.URL)).Run(context.Background(), "m1", Task{Name: "t", Prompt: "p"}, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Response != "ok" || res.EvalCount != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 requests, got %d", got)
	}
	if res.GenerationTimeSeconds < opts.RequestTimeout.Seconds() {
		t.Fatalf("generation time %.3fs should include the timed-out attempt (%s)", res.GenerationTimeSeconds, opts.RequestTimeout)
	}
	if want := 3 / res.GenerationTimeSeconds; res.TokensPerSecond != want {
		t.Fatalf("tokens/s = %v, want %v", res.TokensPerSecond, want)
	}
}
