// internal/benchmark/benchmark.go
// Package benchmark runs every task against every model on one inference
// server, one request at a time, and collects latency and throughput records.
package benchmark

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mwiater/ollabench/internal/logging"
)

// ServerProbe reports and restores server reachability.
type ServerProbe interface {
	IsReachable(ctx context.Context) bool
	Start(ctx context.Context) bool
}

// ModelManager reports and restores model availability.
type ModelManager interface {
	Exists(ctx context.Context, model string) bool
	EnsureLoaded(ctx context.Context, model string) bool
}

// RequestRunner benchmarks one (model, task) pair.
type RequestRunner interface {
	Run(ctx context.Context, model string, task Task, opts Options) (GenerationResult, error)
}

// Orchestrator sequences a run across the model × task matrix.
type Orchestrator struct {
	probe    ServerProbe
	models   ModelManager
	runner   RequestRunner
	state    RunState
	newRunID func() string
	now      func() time.Time
	observer Observer
}

// OrchestratorOption customises an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithObserver registers fn to receive progress events.
func WithObserver(fn Observer) OrchestratorOption {
	return func(o *Orchestrator) { o.observer = fn }
}

// WithRunIDFunc overrides run identifier generation.
func WithRunIDFunc(fn func() string) OrchestratorOption {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newRunID = fn
		}
	}
}

// NewOrchestrator wires the three collaborators of a run.
func NewOrchestrator(probe ServerProbe, models ModelManager, runner RequestRunner, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		probe:    probe,
		models:   models,
		runner:   runner,
		newRunID: NewRunID,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Running reports whether a run is in flight.
func (o *Orchestrator) Running() bool {
	return o.state.Running()
}

// RunAll executes the run and returns its records in task-then-model order.
// A non-nil error means the run did not execute; a run whose every request
// failed returns an empty, non-nil slice.
func (o *Orchestrator) RunAll(ctx context.Context, models []string, tasks []Task, opts Options) ([]Record, error) {
	result, err := o.Run(ctx, models, tasks, opts)
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}

// Run is RunAll with the run's identity, timing and deduplicated inputs attached.
func (o *Orchestrator) Run(ctx context.Context, models []string, tasks []Task, opts Options) (*RunResult, error) {
	if o.state.Running() {
		log.Printf("Benchmark is already running.")
		return nil, ErrRunInProgress
	}

	runID := o.newRunID()
	if err := o.state.TryAcquire(runID); err != nil {
		switch err {
		case ErrDuplicateRun:
			log.Printf("Duplicate call of the same benchmark execution detected and skipped.")
		default:
			log.Printf("Benchmark is already running.")
		}
		return nil, err
	}
	defer o.state.Release()

	// Checked models are scoped to this call.
	checked := make(map[string]struct{}, len(models))

	if err := validate(models, tasks); err != nil {
		log.Printf("%v", err)
		return nil, err
	}

	opts = opts.withDefaults()
	started := o.now()
	o.emit(Event{Kind: EventRunStarted, RunID: runID})
	logging.LogEvent("Run %s started: %d models, %d tasks", runID, len(models), len(tasks))

	if !o.probe.IsReachable(ctx) && !o.probe.Start(ctx) {
		log.Printf("Inference server could not be started.")
		return nil, ErrServerUnavailable
	}

	for _, model := range models {
		if _, ok := checked[model]; ok {
			continue
		}
		checked[model] = struct{}{}

		if o.models.Exists(ctx, model) {
			log.Printf("Model %s is ready.", model)
			o.emit(Event{Kind: EventModelReady, RunID: runID, Model: model})
			continue
		}
		log.Printf("Model %s not found. Loading...", model)
		if !o.models.EnsureLoaded(ctx, model) {
			log.Printf("Model %s could not be loaded.", model)
			return nil, fmt.Errorf("%w: %s", ErrModelUnavailable, model)
		}
		o.emit(Event{Kind: EventModelReady, RunID: runID, Model: model, Pulled: true})
	}

	distinctTasks := uniqueTasks(tasks)
	distinctModels := uniqueModels(models)
	total := len(distinctTasks) * len(distinctModels)

	records := make([]Record, 0, total)
	index := 0
matrix:
	for _, task := range distinctTasks {
		log.Printf("Task: %s", task.Name)
		o.emit(Event{Kind: EventTaskStarted, RunID: runID, Task: task.Name, Total: total, Index: index})

		for _, model := range distinctModels {
			if ctx.Err() != nil {
				log.Printf("Run cancelled after %d of %d requests.", index, total)
				break matrix
			}
			index++
			log.Printf("  %s...", model)
			o.emit(Event{Kind: EventRequestStarted, RunID: runID, Task: task.Name, Model: model, Total: total, Index: index})

			res, err := o.runner.Run(ctx, model, task, opts)
			if err != nil {
				log.Printf("    Error: %v", err)
				o.emit(Event{Kind: EventRequestFinished, RunID: runID, Task: task.Name, Model: model, Total: total, Index: index, Err: err})
				continue
			}

			record := Record{
				Model:           model,
				Task:            task.Name,
				Prompt:          task.Prompt,
				Response:        res.Response,
				GenerationTime:  res.GenerationTimeSeconds,
				LoadTime:        res.LoadDurationSeconds,
				TokensGenerated: res.EvalCount,
				TokensPerSecond: res.TokensPerSecond,
			}
			records = append(records, record)
			log.Printf("    %d tokens in %.2fs", res.EvalCount, res.GenerationTimeSeconds)
			o.emit(Event{Kind: EventRequestFinished, RunID: runID, Task: task.Name, Model: model, Total: total, Index: index, Record: &record})
		}
	}

	result := &RunResult{
		RunID:      runID,
		StartedAt:  started,
		FinishedAt: o.now(),
		Models:     distinctModels,
		Tasks:      distinctTasks,
		Options:    opts,
		Records:    records,
	}
	o.emit(Event{Kind: EventRunFinished, RunID: runID, Total: total, Index: index})
	logging.LogEvent("Run %s finished: %d of %d requests succeeded in %s", runID, len(records), total, result.FinishedAt.Sub(started).Round(time.Millisecond))
	return result, nil
}

func (o *Orchestrator) emit(ev Event) {
	if o.observer != nil {
		o.observer(ev)
	}
}

func validate(models []string, tasks []Task) error {
	if len(models) == 0 {
		return ErrNoModels
	}
	if len(tasks) == 0 {
		return ErrNoTasks
	}
	for i, model := range models {
		if strings.TrimSpace(model) == "" {
			return fmt.Errorf("%w: model %d has an empty name", ErrInvalidInput, i+1)
		}
	}
	for i, task := range tasks {
		if strings.TrimSpace(task.Name) == "" {
			return fmt.Errorf("%w: task %d has an empty name", ErrInvalidInput, i+1)
		}
	}
	return nil
}

// uniqueTasks collapses tasks by name: the last definition wins, the first
// occurrence fixes the position.
func uniqueTasks(tasks []Task) []Task {
	index := make(map[string]int, len(tasks))
	out := make([]Task, 0, len(tasks))
	for _, task := range tasks {
		if i, ok := index[task.Name]; ok {
			out[i] = task
			continue
		}
		index[task.Name] = len(out)
		out = append(out, task)
	}
	return out
}

// uniqueModels keeps the first occurrence of each model.
func uniqueModels(models []string) []string {
	seen := make(map[string]struct{}, len(models))
	out := make([]string, 0, len(models))
	for _, model := range models {
		if _, ok := seen[model]; ok {
			continue
		}
		seen[model] = struct{}{}
		out = append(out, model)
	}
	return out
}
