// internal/cli/models.go
package ollabench

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/mwiater/ollabench/internal/models"
	"github.com/spf13/cobra"
)

// modelsCmd represents the 'models' command group.
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Group commands for models on the inference server",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the server's models, marking the configured ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		manager := models.NewManager(cfg.NewClient())
		lines, err := manager.Render(cmd.Context(), cfg.Models)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Models at %s:\n", cfg.Endpoint)
		if len(lines) == 0 {
			fmt.Fprintln(out, "  (none)")
		}
		for _, line := range lines {
			fmt.Fprintln(out, "  "+line)
		}

		missing, err := manager.Missing(cmd.Context(), cfg.Models)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			fmt.Fprintf(out, "%s configured but not present: %s\n", color.YellowString("!"), strings.Join(missing, ", "))
		}
		return nil
	},
}

var modelsPullCmd = &cobra.Command{
	Use:   "pull [model...]",
	Short: "Pull the named models, or every configured model the server lacks",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		manager := models.NewManager(cfg.NewClient())
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		targets := args
		if len(targets) == 0 {
			missing, err := manager.Missing(ctx, cfg.Models)
			if err != nil {
				return err
			}
			if len(missing) == 0 {
				fmt.Fprintln(out, "All configured models are present.")
				return nil
			}
			targets = missing
		}

		var failed []string
		for _, name := range targets {
			if manager.Exists(ctx, name) {
				fmt.Fprintf(out, "%s %s already present\n", color.GreenString("✓"), name)
				continue
			}
			if !manager.EnsureLoaded(ctx, name) {
				fmt.Fprintf(out, "%s %s could not be pulled\n", color.RedString("✗"), name)
				failed = append(failed, name)
				continue
			}
			fmt.Fprintf(out, "%s %s pulled\n", color.GreenString("✓"), name)
		}
		if len(failed) > 0 {
			return fmt.Errorf("failed to pull: %s", strings.Join(failed, ", "))
		}
		return nil
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd, modelsPullCmd)
	rootCmd.AddCommand(modelsCmd)
}
