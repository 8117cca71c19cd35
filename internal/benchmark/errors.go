// internal/benchmark/errors.go
package benchmark

import "errors"

// Errors returned by RunAll when a run does not execute. A run that executes
// but produces no records returns an empty slice and a nil error instead.
var (
	ErrRunInProgress     = errors.New("benchmark is already running")
	ErrDuplicateRun      = errors.New("duplicate call of the same benchmark execution")
	ErrNoModels          = errors.New("no models specified for benchmarking")
	ErrNoTasks           = errors.New("no tasks specified for benchmarking")
	ErrInvalidInput      = errors.New("invalid benchmark input")
	ErrServerUnavailable = errors.New("inference server could not be started")
	ErrModelUnavailable  = errors.New("model could not be loaded")
)
