// internal/cli/history.go
package ollabench

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mwiater/ollabench/internal/report"
	"github.com/mwiater/ollabench/internal/store"
	"github.com/spf13/cobra"
)

// historyCmd represents the 'history' command group.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse runs saved in the history database",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		path, err := historyPath()
		if err != nil {
			return err
		}
		s, err := store.Open(path)
		if err != nil {
			return err
		}
		defer s.Close()

		runs, err := s.ListRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}
		printRuns(cmd.OutOrStdout(), runs)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <runID>",
	Short: "Render a saved run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := historyPath()
		if err != nil {
			return err
		}
		s, err := store.Open(path)
		if err != nil {
			return err
		}
		defer s.Close()

		result, err := s.LoadRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Run %s (%s, %s)\n\n", result.RunID, result.StartedAt.Local().Format("2006-01-02 15:04:05"), result.FinishedAt.Sub(result.StartedAt).Round(time.Second))
		report.Render(out, result)
		return nil
	},
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "maximum number of runs to list (0 for all)")
	historyCmd.AddCommand(historyListCmd, historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

// errHistoryDisabled is returned by the history commands when no database is configured.
var errHistoryDisabled = errors.New("history is disabled: set historyDB in the config (e.g. " + store.DefaultPath + ")")

// historyPath returns the configured database. The file must already exist,
// so browsing never creates an empty database.
func historyPath() (string, error) {
	cfg := GetConfig()
	if cfg == nil || strings.TrimSpace(cfg.HistoryDB) == "" {
		return "", errHistoryDisabled
	}
	if _, err := os.Stat(cfg.HistoryDB); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("no history at %s: run a benchmark first", cfg.HistoryDB)
		}
		return "", err
	}
	return cfg.HistoryDB, nil
}

func printRuns(out io.Writer, runs []store.RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs saved yet.")
		return
	}
	for _, r := range runs {
		fmt.Fprintf(out, "%s  %s  %d tasks  %d records  %s\n",
			r.RunID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.TaskCount,
			r.RecordCount,
			strings.Join(r.Models, ", "),
		)
	}
}
