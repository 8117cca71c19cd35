// internal/report/csv.go
package report

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mwiater/ollabench/internal/benchmark"
)

var csvHeader = []string{
	"Model",
	"Task",
	"Prompt",
	"Response",
	"Generation Time (s)",
	"Load Time (s)",
	"Tokens Generated",
	"Tokens per Second",
}

// WriteCSV overwrites path with one row per record.
func WriteCSV(path string, records []benchmark.Record) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating export directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("error writing CSV header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.Model,
			r.Task,
			r.Prompt,
			r.Response,
			formatFloat(r.GenerationTime),
			formatFloat(r.LoadTime),
			strconv.Itoa(r.TokensGenerated),
			formatFloat(r.TokensPerSecond),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("error writing CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("error flushing CSV: %w", err)
	}

	log.Printf("Results saved to %s", path)
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
