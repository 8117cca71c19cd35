// internal/ollama/client.go
// Package ollama is a thin HTTP client for the Ollama-compatible inference API
// consumed by the benchmark engine: /tags, /pull and /generate.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mwiater/ollabench/internal/logging"
)

const (
	// DefaultEndpoint is the base URL of a local Ollama API.
	DefaultEndpoint = "http://localhost:11434/api"
	// defaultListTimeout bounds listing and probing requests.
	defaultListTimeout = 10 * time.Second
	// maxStreamLine caps a single NDJSON line of the pull stream.
	maxStreamLine = 1 << 20
)

// Client talks to a single inference endpoint.
type Client struct {
	endpoint    string
	client      *http.Client
	listTimeout time.Duration
	pullTimeout time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithListTimeout bounds /tags requests.
func WithListTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.listTimeout = d
		}
	}
}

// WithPullTimeout bounds a whole /pull stream. Zero leaves it bounded only by the caller's context.
func WithPullTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.pullTimeout = d
	}
}

// New returns a Client for endpoint, e.g. "http://localhost:11434/api".
func New(endpoint string, opts ...Option) *Client {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: endpoint,
		// Per-request deadlines come from contexts so that the runner can
		// distinguish the first attempt from the extended retry.
		client:      &http.Client{Transport: &http.Transport{ForceAttemptHTTP2: false, Proxy: http.ProxyFromEnvironment}},
		listTimeout: defaultListTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the base URL the client talks to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// StatusError is returned when the server answers with a non-200 status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Error: %d - %s", e.Code, e.Body)
}

// doRequest executes an HTTP request against the API. A non-positive timeout
// leaves the request bounded only by ctx. The returned cancel func must be
// called once the body has been consumed.
func (c *Client) doRequest(ctx context.Context, timeout time.Duration, method, path string, body []byte) (*http.Response, context.CancelFunc, error) {
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return resp, cancel, nil
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Ping issues the lightweight listing request and succeeds only on HTTP 200.
func (c *Client) Ping(ctx context.Context) error {
	resp, cancel, err := c.doRequest(ctx, c.listTimeout, http.MethodGet, "/tags", nil)
	if err != nil {
		return err
	}
	defer cancel()
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, Body: resp.Status}
	}
	return nil
}

// ListModels returns the model names reported by /tags.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	logging.LogRequest("BENCH->LLM", c.endpoint, "", map[string]string{"method": http.MethodGet, "path": "/tags"})
	resp, cancel, err := c.doRequest(ctx, c.listTimeout, http.MethodGet, "/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer cancel()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read /tags response: %w", err)
	}
	logging.LogRequest("LLM->BENCH", c.endpoint, "", body)

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var tags tagsResponse
	if err := json.Unmarshal(body, &tags); err != nil {
		return nil, fmt.Errorf("parse /tags response: %w", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// PullStatus is one line of the /pull progress stream.
type PullStatus struct {
	Status    string  `json:"status"`
	Error     *string `json:"error,omitempty"`
	Digest    string  `json:"digest,omitempty"`
	Total     int64   `json:"total,omitempty"`
	Completed int64   `json:"completed,omitempty"`
}

// Pull asks the server to pull model and feeds every decoded status line to
// handle until handle returns false or the stream ends.
func (c *Client) Pull(ctx context.Context, model string, handle func(PullStatus) bool) error {
	body, err := json.Marshal(map[string]string{"name": model})
	if err != nil {
		return err
	}
	logging.LogRequest("BENCH->LLM", c.endpoint, model, body)

	resp, cancel, err := c.doRequest(ctx, c.pullTimeout, http.MethodPost, "/pull", body)
	if err != nil {
		return fmt.Errorf("pull %s: %w", model, err)
	}
	defer cancel()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLine)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		logging.LogRequest("LLM->BENCH", c.endpoint, model, line)
		var status PullStatus
		if err := json.Unmarshal(line, &status); err != nil {
			return fmt.Errorf("decode pull status: %w", err)
		}
		if !handle(status) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read pull stream: %w", err)
	}
	return nil
}

// GenerateRequest is a non-streaming generation request.
type GenerateRequest struct {
	Model       string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

func (r GenerateRequest) payload() map[string]any {
	return map[string]any{
		"model":       r.Model,
		"prompt":      r.Prompt,
		"temperature": r.Temperature,
		"max_tokens":  r.MaxTokens,
		"stream":      false,
		"options": map[string]any{
			"temperature": r.Temperature,
			"num_predict": r.MaxTokens,
		},
	}
}

// GenerateResponse holds the fields of a /generate reply the benchmark uses.
type GenerateResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	TotalDuration   int64  `json:"total_duration"`
	LoadDuration    int64  `json:"load_duration"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
	EvalDuration    int64  `json:"eval_duration"`
}

// Generate posts req to /generate with the given timeout. Non-200 replies are
// returned as *StatusError.
func (c *Client) Generate(ctx context.Context, req GenerateRequest, timeout time.Duration) (GenerateResponse, error) {
	body, err := json.Marshal(req.payload())
	if err != nil {
		return GenerateResponse{}, err
	}
	logging.LogRequest("BENCH->LLM", c.endpoint, req.Model, body)

	resp, cancel, err := c.doRequest(ctx, timeout, http.MethodPost, "/generate", body)
	if err != nil {
		return GenerateResponse{}, err
	}
	defer cancel()
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return GenerateResponse{}, err
	}
	logging.LogRequest("LLM->BENCH", c.endpoint, req.Model, respBody)

	if resp.StatusCode != http.StatusOK {
		return GenerateResponse{}, &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	var out GenerateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return GenerateResponse{}, fmt.Errorf("parse /generate response: %w", err)
	}
	return out, nil
}
