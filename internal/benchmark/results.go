// internal/benchmark/results.go
package benchmark

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultResultsDir is where JSON run files land when no path is configured.
var DefaultResultsDir = filepath.Join("benchmarkData", "runs")

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9_]+`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Report is the JSON document written for a run.
type Report struct {
	*RunResult
	Summaries []ModelSummary `json:"summaries"`
}

// ResultsPath returns the default JSON file name for a run: the models'
// slug followed by the first block of the run id.
func ResultsPath(dir string, result *RunResult) string {
	if dir == "" {
		dir = DefaultResultsDir
	}
	id := result.RunID
	if i := strings.Index(id, "-"); i > 0 {
		id = id[:i]
	}
	name := Slugify(strings.Join(result.Models, "-"))
	if name == "" {
		name = "run"
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s.json", name, id))
}

// WriteResults writes result and its per-model summaries as indented JSON.
func WriteResults(path string, result *RunResult) error {
	if result == nil {
		return fmt.Errorf("no benchmark results to write")
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating results directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating result file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	report := Report{RunResult: result, Summaries: Summarize(result.Models, result.Records)}
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("error writing results to file: %w", err)
	}

	log.Printf("Benchmark results written to %s", path)
	return nil
}

// Slugify converts a string into a "slug" format,
// including replacing colons (:) with underscores (_).
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, ":", "_")
	s = slugInvalid.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-_")
}
