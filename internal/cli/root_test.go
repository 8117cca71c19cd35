package ollabench

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestShowConfigMergesFileAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	payload := `{
  "endpoint": "http://gpu-box:11434/api",
  "models": ["llama3.2:1b"],
  "requestTimeout": 30,
  "logFile": "` + filepath.ToSlash(filepath.Join(dir, "ollabench.log")) + `"
}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"show", "config", "--config", path, "--endpoint", "http://other:11434/api"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Config file: " + path,
		"Endpoint:        http://other:11434/api",
		"Models:          llama3.2:1b",
		"Request Timeout: 30s",
		"Retry Timeout:   5m0s",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}

	cfg := GetConfig()
	if cfg == nil || cfg.Endpoint != "http://other:11434/api" || len(cfg.Models) != 1 {
		t.Fatalf("unexpected merged config: %+v", cfg)
	}
}

func TestRunListCommands(t *testing.T) {
	var out bytes.Buffer
	runListCommands(&out, rootCmd)

	text := out.String()
	for _, want := range []string{
		"ollabench",
		"  ollabench benchmark",
		"    ollabench history show",
		"    ollabench models pull",
		"    ollabench server check",
		"    ollabench show config",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in listing:\n%s", want, text)
		}
	}
	if strings.Contains(text, "completion") {
		t.Fatalf("completion commands should be hidden:\n%s", text)
	}
}
