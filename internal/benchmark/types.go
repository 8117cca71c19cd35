// internal/benchmark/types.go
package benchmark

import "time"

const (
	// DefaultMaxTokens is the token cap applied to tasks that do not set one.
	DefaultMaxTokens = 100
	// DefaultTemperature is the sampling temperature used when none is configured.
	DefaultTemperature = 0.7
	// DefaultRequestTimeout bounds the first attempt of a generation request.
	DefaultRequestTimeout = 120 * time.Second
	// DefaultRetryTimeout bounds the single retry after a first-attempt timeout.
	DefaultRetryTimeout = 300 * time.Second
)

// Task is a named prompt sent to every model under test.
type Task struct {
	Name      string `json:"name" yaml:"name" mapstructure:"name"`
	Prompt    string `json:"prompt" yaml:"prompt" mapstructure:"prompt"`
	MaxTokens int    `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty" mapstructure:"max_tokens"`
}

// Tokens returns the task's token cap, falling back to DefaultMaxTokens.
func (t Task) Tokens() int {
	if t.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return t.MaxTokens
}

// Options are the sampling and timeout settings shared by every request of a run.
type Options struct {
	Temperature    float64       `json:"temperature"`
	RequestTimeout time.Duration `json:"request_timeout"`
	RetryTimeout   time.Duration `json:"retry_timeout"`
}

// DefaultOptions returns the stock temperature and timeouts.
func DefaultOptions() Options {
	return Options{
		Temperature:    DefaultTemperature,
		RequestTimeout: DefaultRequestTimeout,
		RetryTimeout:   DefaultRetryTimeout,
	}
}

// withDefaults fills unset timeouts.
func (o Options) withDefaults() Options {
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = DefaultRequestTimeout
	}
	if o.RetryTimeout <= 0 {
		o.RetryTimeout = DefaultRetryTimeout
	}
	return o
}

// GenerationResult is the outcome of one successful generation request.
type GenerationResult struct {
	Response              string  `json:"response"`
	TotalDurationSeconds  float64 `json:"total_duration_seconds"`
	LoadDurationSeconds   float64 `json:"load_duration_seconds"`
	EvalCount             int     `json:"eval_count"`
	GenerationTimeSeconds float64 `json:"generation_time_seconds"`
	TokensPerSecond       float64 `json:"tokens_per_second"`
}

// Record is one row of a run: a successful (model, task) pair.
type Record struct {
	Model           string  `json:"model"`
	Task            string  `json:"task"`
	Prompt          string  `json:"prompt"`
	Response        string  `json:"response"`
	GenerationTime  float64 `json:"generation_time_s"`
	LoadTime        float64 `json:"load_time_s"`
	TokensGenerated int     `json:"tokens_generated"`
	TokensPerSecond float64 `json:"tokens_per_second"`
}

// RunResult is a completed run together with its identity and inputs.
type RunResult struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Models     []string  `json:"models"`
	Tasks      []Task    `json:"tasks"`
	Options    Options   `json:"options"`
	Records    []Record  `json:"records"`
}
