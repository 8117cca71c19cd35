// internal/cli/benchmark.go
package ollabench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mwiater/ollabench/internal/appconfig"
	"github.com/mwiater/ollabench/internal/benchmark"
	"github.com/mwiater/ollabench/internal/logging"
	"github.com/mwiater/ollabench/internal/models"
	"github.com/mwiater/ollabench/internal/report"
	"github.com/mwiater/ollabench/internal/server"
	"github.com/mwiater/ollabench/internal/store"
	"github.com/mwiater/ollabench/internal/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// benchmarkCmd represents the benchmark command.
var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Run every configured task against every configured model",
	Long: `Run every configured task against every configured model, one request at a time,
then print a summary, per-task charts and the responses, and save the exports.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return errors.New("config is not loaded")
		}
		useTUI := cfg.TUI && term.IsTerminal(int(os.Stdout.Fd()))
		return runBenchmark(cmd.Context(), *cfg, cmd.OutOrStdout(), useTUI)
	},
}

func init() {
	flags := benchmarkCmd.Flags()
	flags.StringSlice("models", nil, "models to benchmark (overrides config)")
	flags.String("tasksFile", "", "YAML or JSON file with additional tasks")
	flags.Float64("temperature", benchmark.DefaultTemperature, "sampling temperature")
	flags.String("exportCSV", "", "CSV export path (\"-\" disables it)")
	flags.String("exportJSON", "", "JSON export path")
	flags.String("exportHTML", "", "HTML report path")
	flags.String("historyDB", "", "SQLite run history path")
	flags.Bool("tui", false, "show a live progress view when attached to a terminal")
	flags.Bool("autoStart", true, "start the inference server when it is not reachable")

	for _, name := range []string{"models", "tasksFile", "temperature", "exportCSV", "exportJSON", "exportHTML", "historyDB", "tui", "autoStart"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
	rootCmd.AddCommand(benchmarkCmd)
}

// newRunFunc wires the inference client, the server probe, the model manager
// and the request runner into one orchestrated run.
func newRunFunc(cfg appconfig.Config, tasks []benchmark.Task) tui.RunFunc {
	client := cfg.NewClient()

	var launcher server.Launcher
	if cfg.AutoStart {
		launcher = server.NewProcessLauncher(cfg.ServerBinary)
	}
	probe := server.NewProbe(client, launcher, cfg.Settle())
	manager := models.NewManager(client)
	runner := benchmark.NewRunner(client)

	return func(ctx context.Context, observe benchmark.Observer) (*benchmark.RunResult, error) {
		o := benchmark.NewOrchestrator(probe, manager, runner, benchmark.WithObserver(observe))
		return o.Run(ctx, cfg.Models, tasks, cfg.BenchmarkOptions())
	}
}

// runBenchmark executes the run, renders it to out and writes the exports.
func runBenchmark(ctx context.Context, cfg appconfig.Config, out io.Writer, useTUI bool) error {
	tasks, err := cfg.ResolveTasks()
	if err != nil {
		return err
	}
	run := newRunFunc(cfg, tasks)

	var result *benchmark.RunResult
	if useTUI {
		logging.SetConsole(false)
		result, err = tui.Run(ctx, run)
		logging.SetConsole(true)
	} else {
		result, err = run(ctx, report.NewConsole(out).Observe)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	if !report.Render(out, result) {
		return nil
	}
	return persist(ctx, cfg, result)
}

// persist writes every configured export. A failing export does not stop the others.
func persist(ctx context.Context, cfg appconfig.Config, result *benchmark.RunResult) error {
	var errs []error

	if path := cfg.CSVPath(); path != "" {
		if err := report.WriteCSV(path, result.Records); err != nil {
			errs = append(errs, err)
		}
	}
	if cfg.ExportJSON != "" {
		if err := benchmark.WriteResults(cfg.ExportJSON, result); err != nil {
			errs = append(errs, err)
		}
	}
	if cfg.ExportHTML != "" {
		if err := report.WriteHTML(cfg.ExportHTML, result); err != nil {
			errs = append(errs, err)
		}
	}
	if cfg.HistoryDB != "" {
		if err := saveHistory(ctx, cfg.HistoryDB, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func saveHistory(ctx context.Context, path string, result *benchmark.RunResult) error {
	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.SaveRun(ctx, result); err != nil {
		return fmt.Errorf("save run history: %w", err)
	}
	log.Printf("Run %s saved to %s", result.RunID, path)
	return nil
}
