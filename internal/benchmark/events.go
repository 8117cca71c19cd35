// internal/benchmark/events.go
package benchmark

// EventKind identifies a step of a run.
type EventKind int

const (
	EventRunStarted EventKind = iota
	EventModelReady
	EventTaskStarted
	EventRequestStarted
	EventRequestFinished
	EventRunFinished
)

func (k EventKind) String() string {
	switch k {
	case EventRunStarted:
		return "run-started"
	case EventModelReady:
		return "model-ready"
	case EventTaskStarted:
		return "task-started"
	case EventRequestStarted:
		return "request-started"
	case EventRequestFinished:
		return "request-finished"
	case EventRunFinished:
		return "run-finished"
	default:
		return "unknown"
	}
}

// Event describes progress of a run. Index counts (task, model) pairs from 1
// and Total is the size of the deduplicated matrix.
type Event struct {
	Kind   EventKind
	RunID  string
	Model  string
	Task   string
	Index  int
	Total  int
	Pulled bool
	Record *Record
	Err    error
}

// Observer receives events synchronously on the run's goroutine.
type Observer func(Event)
