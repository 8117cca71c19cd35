package appconfig

import (
	"fmt"
	"io"
	"strings"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, file string, cfg Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Endpoint:        %s\n", cfg.Endpoint)
	fmt.Fprintf(out, "  Models:          %s\n", strings.Join(cfg.Models, ", "))
	fmt.Fprintf(out, "  Tasks:           %d inline\n", len(cfg.Tasks))
	if cfg.TasksFile != "" {
		fmt.Fprintf(out, "  Tasks File:      %s\n", cfg.TasksFile)
	}
	fmt.Fprintf(out, "  Temperature:     %g\n", cfg.Temperature)
	fmt.Fprintf(out, "  Request Timeout: %s\n", cfg.RequestTimeout())
	fmt.Fprintf(out, "  Retry Timeout:   %s\n", cfg.RetryTimeout())
	fmt.Fprintf(out, "  Pull Timeout:    %s\n", cfg.PullTimeout())
	fmt.Fprintf(out, "  List Timeout:    %s\n", cfg.ListTimeout())
	fmt.Fprintf(out, "  Auto Start:      %v\n", cfg.AutoStart)
	fmt.Fprintf(out, "  Server Binary:   %s\n", cfg.ServerBinary)
	fmt.Fprintf(out, "  Settle:          %s\n", cfg.Settle())
	fmt.Fprintf(out, "  Export CSV:      %s\n", cfg.CSVPath())
	fmt.Fprintf(out, "  Export JSON:     %s\n", cfg.ExportJSON)
	fmt.Fprintf(out, "  Export HTML:     %s\n", cfg.ExportHTML)
	fmt.Fprintf(out, "  History DB:      %s\n", cfg.HistoryDB)
	fmt.Fprintf(out, "  Log File:        %s\n", cfg.LogFilePath())
	fmt.Fprintf(out, "  Debug:           %v\n", cfg.Debug)
	fmt.Fprintf(out, "  TUI:             %v\n", cfg.TUI)
}
