package logging

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testStringer string

func (s testStringer) String() string { return string(s) }

func TestInitAndLoggingToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "ollabench.log")

	if err := Init(logPath); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	t.Cleanup(func() { _ = Close() })

	LogEvent("hello %s", "world")
	_ = Close()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello world") {
		t.Fatalf("expected LogEvent content, got: %s", string(data))
	}
}

func TestSetConsoleKeepsFileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "quiet.log")
	if err := Init(logPath); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	SetConsole(false)
	t.Cleanup(func() {
		SetConsole(true)
		_ = Close()
	})

	LogEvent("only in the file")
	_ = Close()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "only in the file") {
		t.Fatalf("expected file output while console is off, got: %s", string(data))
	}
}

func TestLogRequestRespectsDebug(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() {
		log.SetOutput(prev)
		SetDebug(false)
	})

	SetDebug(false)
	LogRequest("bench->llm", "http://x/api", "m1", "quiet")
	Debugf("quiet %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("expected no output with debug off, got: %s", buf.String())
	}

	SetDebug(true)
	LogRequest("bench->llm", "http://x/api", "m1", map[string]any{"ok": true})
	Debugf("loud %d", 2)
	out := buf.String()
	if !strings.Contains(out, "[BENCH->LLM] endpoint=http://x/api model=m1 payload={\"ok\":true}") {
		t.Fatalf("unexpected request trace: %s", out)
	}
	if !strings.Contains(out, "[DEBUG] loud 2") {
		t.Fatalf("expected debug line, got: %s", out)
	}
}

func TestBuildRequestMessageDefaults(t *testing.T) {
	msg := buildRequestMessage(" in ", " ", " ", nil)
	if msg != "[IN] endpoint=unknown payload=null" {
		t.Fatalf("unexpected message: %s", msg)
	}
}

func TestFormatPayloadVariants(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, "null"},
		{" ", `""`},
		{[]byte{}, "[]"},
		{[]byte("hi\n"), "hi"},
		{testStringer("ok"), "ok"},
		{map[string]int{"n": 1}, `{"n":1}`},
	}
	for _, tc := range cases {
		if got := formatPayload(tc.in); got != tc.want {
			t.Fatalf("formatPayload(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
