// internal/benchmark/runner.go
package benchmark

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/mwiater/ollabench/internal/logging"
	"github.com/mwiater/ollabench/internal/ollama"
)

// Generator issues one non-streaming generation request bounded by timeout.
type Generator interface {
	Generate(ctx context.Context, req ollama.GenerateRequest, timeout time.Duration) (ollama.GenerateResponse, error)
}

// Runner benchmarks a single (model, prompt) pair.
type Runner struct {
	client Generator
	now    func() time.Time
}

// NewRunner returns a Runner that sends requests through client.
func NewRunner(client Generator) *Runner {
	return &Runner{client: client, now: time.Now}
}

// Run sends task's prompt to model and measures the request. A timeout on the
// first attempt is retried exactly once with opts.RetryTimeout; every other
// failure is returned as is. The clock starts before the first attempt, so a
// retried request's generation time includes the attempt that timed out.
func (r *Runner) Run(ctx context.Context, model string, task Task, opts Options) (GenerationResult, error) {
	opts = opts.withDefaults()
	req := ollama.GenerateRequest{
		Model:       model,
		Prompt:      task.Prompt,
		Temperature: opts.Temperature,
		MaxTokens:   task.Tokens(),
	}

	start := r.now()
	resp, err := r.attempt(ctx, req, 1, opts.RequestTimeout)
	if err != nil {
		if !isTimeout(err) || ctx.Err() != nil {
			return GenerationResult{}, err
		}

		log.Printf("    Timeout for request to %s. Trying with increased timeout (%s)...", model, opts.RetryTimeout)
		resp, err = r.attempt(ctx, req, 2, opts.RetryTimeout)
		if err != nil {
			var statusErr *ollama.StatusError
			if errors.As(err, &statusErr) {
				return GenerationResult{}, err
			}
			return GenerationResult{}, fmt.Errorf("error on second attempt: %w", err)
		}
	}

	elapsed := r.now().Sub(start).Seconds()
	return GenerationResult{
		Response:              resp.Response,
		TotalDurationSeconds:  nanosToSeconds(resp.TotalDuration),
		LoadDurationSeconds:   nanosToSeconds(resp.LoadDuration),
		EvalCount:             resp.EvalCount,
		GenerationTimeSeconds: elapsed,
		TokensPerSecond:       tokensPerSecond(resp.EvalCount, elapsed),
	}, nil
}

func (r *Runner) attempt(ctx context.Context, req ollama.GenerateRequest, n int, timeout time.Duration) (ollama.GenerateResponse, error) {
	began := time.Now()
	resp, err := r.client.Generate(ctx, req, timeout)
	logging.Debugf("generate model=%s attempt=%d timeout=%s took=%s err=%v", req.Model, n, timeout, time.Since(began).Round(time.Millisecond), err)
	return resp, err
}

func nanosToSeconds(ns int64) float64 {
	return float64(ns) / float64(time.Second)
}

// tokensPerSecond is 0 when no time elapsed.
func tokensPerSecond(count int, seconds float64) float64 {
	if seconds <= 0 {
		return 0
	}
	return float64(count) / seconds
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
