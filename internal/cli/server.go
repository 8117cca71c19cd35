// internal/cli/server.go
package ollabench

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/mwiater/ollabench/internal/server"
	"github.com/spf13/cobra"
)

// serverCmd represents the 'server' command group.
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Group commands for the inference server",
}

var serverCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether the inference server answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		client := cfg.NewClient()
		probe := server.NewProbe(client, nil, 0)
		if !probe.IsReachable(cmd.Context()) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s is not reachable\n", color.RedString("✗"), client.Endpoint())
			return fmt.Errorf("server unavailable")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s is reachable\n", color.GreenString("✓"), client.Endpoint())
		return nil
	},
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the inference server unless it already answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		client := cfg.NewClient()
		probe := server.NewProbe(client, server.NewProcessLauncher(cfg.ServerBinary), cfg.Settle())
		if !probe.EnsureStarted(cmd.Context()) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s could not start the server at %s\n", color.RedString("✗"), client.Endpoint())
			return fmt.Errorf("server unavailable")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s is running\n", color.GreenString("✓"), client.Endpoint())
		return nil
	},
}

func init() {
	serverCmd.AddCommand(serverCheckCmd, serverStartCmd)
	rootCmd.AddCommand(serverCmd)
}
