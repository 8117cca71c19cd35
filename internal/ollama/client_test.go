package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestListModels(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" || r.Method != http.MethodGet {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3.2:1b","size":1},{"name":"qwen3:1.7b"}]}`))
	}))
	defer server.Close()

	c := New(server.URL + "/api/")
	if c.Endpoint() != server.URL+"/api" {
		t.Fatalf("endpoint not normalised: %s", c.Endpoint())
	}
	names, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(names) != 2 || names[0] != "llama3.2:1b" || names[1] != "qwen3:1.7b" {
		t.Fatalf("unexpected models: %v", names)
	}
}

func TestListModelsErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
		"malformed": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"models":`))
		},
	}
	for name, handler := range cases {
		server := httptest.NewServer(handler)
		_, err := New(server.URL).ListModels(context.Background())
		server.Close()
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestPing(t *testing.T) {
	t.Parallel()

	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer ok.Close()
	if err := New(ok.URL).Ping(context.Background()); err != nil {
		t.Fatalf("expected ping success, got %v", err)
	}

	down := httptest.NewServer(http.NotFoundHandler())
	url := down.URL
	down.Close()
	if err := New(url).Ping(context.Background()); err == nil {
		t.Fatalf("expected ping failure against closed server")
	}

	notFound := httptest.NewServer(http.NotFoundHandler())
	defer notFound.Close()
	var statusErr *StatusError
	if err := New(notFound.URL).Ping(context.Background()); !errors.As(err, &statusErr) || statusErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
}

func TestPullStreamsStatuses(t *testing.T) {
	t.Parallel()

	var gotName string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotName = body["name"]
		_, _ = io.WriteString(w, "{\"status\":\"pulling manifest\"}\n\n{\"status\":\"verifying\"}\n{\"status\":\"success\"}\n")
	}))
	defer server.Close()

	var statuses []string
	err := New(server.URL).Pull(context.Background(), "m1", func(s PullStatus) bool {
		statuses = append(statuses, s.Status)
		return s.Status != "verifying"
	})
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if gotName != "m1" {
		t.Fatalf("expected name m1 in payload, got %q", gotName)
	}
	if len(statuses) != 2 {
		t.Fatalf("expected handler to stop after verifying, got %v", statuses)
	}
}

func TestPullMalformedLine(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "not json\n")
	}))
	defer server.Close()

	err := New(server.URL).Pull(context.Background(), "m1", func(PullStatus) bool { return true })
	if err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestPullNon200(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "pull disabled", http.StatusForbidden)
	}))
	defer server.Close()

	called := false
	err := New(server.URL).Pull(context.Background(), "m1", func(PullStatus) bool {
		called = true
		return true
	})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusForbidden || statusErr.Body != "pull disabled" {
		t.Fatalf("expected *StatusError 403, got %v", err)
	}
	if called {
		t.Fatalf("handler should not see an error body")
	}
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_, _ = w.Write([]byte(`{"model":"m1","response":"hi","done":true,"total_duration":2000000000,"load_duration":500000000,"eval_count":42}`))
	}))
	defer server.Close()

	resp, err := New(server.URL).Generate(context.Background(), GenerateRequest{Model: "m1", Prompt: "p", Temperature: 0.5, MaxTokens: 64}, time.Second)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Response != "hi" || resp.EvalCount != 42 || resp.TotalDuration != 2_000_000_000 || resp.LoadDuration != 500_000_000 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if payload["stream"] != false || payload["model"] != "m1" || payload["prompt"] != "p" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if payload["max_tokens"].(float64) != 64 || payload["temperature"].(float64) != 0.5 {
		t.Fatalf("unexpected sampling fields: %v", payload)
	}
}

func TestGenerateNon200(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer server.Close()

	_, err := New(server.URL).Generate(context.Background(), GenerateRequest{Model: "missing"}, time.Second)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusNotFound || statusErr.Error() != `Error: 404 - {"error":"model not found"}` {
		t.Fatalf("unexpected status error: %v", statusErr)
	}
}
