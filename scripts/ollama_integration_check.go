// scripts/ollama_integration_check.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mwiater/ollabench/internal/appconfig"
	"github.com/mwiater/ollabench/internal/benchmark"
	"github.com/mwiater/ollabench/internal/ollama"
)

// Probes a live Ollama server with the configured endpoint and models:
// the raw /tags payload, then one short generation per model.
func main() {
	configPath := flag.String("config", appconfig.DefaultConfigPath, "Path to config JSON")
	endpoint := flag.String("endpoint", "", "Override the API base URL")
	modelName := flag.String("model", "", "Probe only this model")
	timeout := flag.Duration("timeout", 60*time.Second, "Generation timeout")
	flag.Parse()

	cfg, models, err := resolveTarget(*configPath, *endpoint, *modelName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	base := cfg.Endpoint
	fmt.Printf("Target endpoint: %s\n", base)
	fmt.Printf("Target models: %s\n\n", strings.Join(models, ", "))

	if err := checkTags(base, cfg.ListTimeout()); err != nil {
		fmt.Fprintf(os.Stderr, "tags check failed: %v\n", err)
		os.Exit(1)
	}
	probeGenerate(cfg.NewClient(), models, *timeout)
}

func resolveTarget(configPath, overrideEndpoint, overrideModel string) (appconfig.Config, []string, error) {
	cfg, err := appconfig.Load(configPath)
	if err != nil {
		if overrideEndpoint == "" || overrideModel == "" {
			return appconfig.Config{}, nil, err
		}
		cfg = appconfig.Defaults()
	}

	if overrideEndpoint != "" {
		cfg.Endpoint = overrideEndpoint
	}
	models := cfg.Models
	if overrideModel != "" {
		models = []string{overrideModel}
	}
	if len(models) == 0 {
		return appconfig.Config{}, nil, fmt.Errorf("no models configured in %s", configPath)
	}
	return cfg, models, nil
}

func checkTags(base string, timeout time.Duration) error {
	fmt.Println("== /tags ==")
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(strings.TrimRight(base, "/") + "/tags")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	fmt.Printf("Status: %s\n", resp.Status)
	fmt.Println("Raw:")
	fmt.Println(indentJSON(body))
	fmt.Println()
	return nil
}

func probeGenerate(client *ollama.Client, models []string, timeout time.Duration) {
	fmt.Println("== /generate probe ==")
	runner := benchmark.NewRunner(client)
	task := benchmark.Task{Name: "ping", Prompt: "Reply with the single word: pong", MaxTokens: 8}
	opts := benchmark.Options{Temperature: 0, RequestTimeout: timeout, RetryTimeout: 2 * timeout}

	for _, model := range models {
		res, err := runner.Run(context.Background(), model, task, opts)
		if err != nil {
			fmt.Printf("%s: error=%v\n", model, err)
			continue
		}
		msg := strings.TrimSpace(res.Response)
		if len(msg) > 200 {
			msg = msg[:200] + "..."
		}
		fmt.Printf("%s: tokens=%d time=%.2fs load=%.2fs tok/s=%.2f response=%q\n",
			model, res.EvalCount, res.GenerationTimeSeconds, res.LoadDurationSeconds, res.TokensPerSecond, msg)
	}
	fmt.Println()
}

func indentJSON(body []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		return string(body)
	}
	return out.String()
}
