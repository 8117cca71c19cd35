// internal/cli/show_config.go
package ollabench

import (
	"github.com/k0kubun/pp"
	"github.com/mwiater/ollabench/internal/appconfig"
	"github.com/spf13/cobra"
)

// showConfigCmd implements 'show config', which prints the merged configuration.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the JSON configs are loaded properly and overridden by flags accordingly.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := GetConfig()
		if cfg == nil {
			defaults := appconfig.Defaults()
			cfg = &defaults
		}
		out := cmd.OutOrStdout()
		appconfig.ShowConfig(out, cfg.ConfigPath, *cfg)
		if cfg.Debug {
			pp.Fprintln(out, cfg)
		}
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
}
