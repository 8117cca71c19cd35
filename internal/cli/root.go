// internal/cli/root.go
package ollabench

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/mwiater/ollabench/internal/appconfig"
	"github.com/mwiater/ollabench/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
)

var rootCmd = &cobra.Command{
	Use:           "ollabench",
	Short:         "ollabench — benchmark local Ollama models on a set of prompts",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 1) Load config (file or defaults)
		if err := ensureConfigLoaded(); err != nil {
			return err
		}

		// 2) Materialize the fully merged configuration into currentConfig
		//    (flags > config > defaults).
		var cfg appconfig.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		cfg.ConfigPath = viper.ConfigFileUsed()
		if err := cfg.Validate(); err != nil {
			return err
		}
		currentConfig = &cfg

		// 3) Logging follows the merged configuration.
		if err := logging.Init(cfg.LogFilePath()); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		logging.SetDebug(cfg.Debug)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Close()
	},
}

// Execute runs the root command. An interrupt cancels the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("endpoint", "", "inference API base URL, including /api")
	rootCmd.PersistentFlags().String("logFile", "", "log file path")

	// Bind flags to Viper keys (flags override config)
	for _, name := range []string{"debug", "endpoint", "logFile"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// ensureConfigLoaded reads the config and sets safe defaults.
func ensureConfigLoaded() error {
	setDefaults(appconfig.Defaults())

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			// No file: fine, we'll use defaults/flags
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

func setDefaults(d appconfig.Config) {
	viper.SetDefault("endpoint", d.Endpoint)
	viper.SetDefault("temperature", d.Temperature)
	viper.SetDefault("requestTimeout", d.RequestTimeoutSeconds)
	viper.SetDefault("retryTimeout", d.RetryTimeoutSeconds)
	viper.SetDefault("pullTimeout", d.PullTimeoutSeconds)
	viper.SetDefault("listTimeout", d.ListTimeoutSeconds)
	viper.SetDefault("autoStart", d.AutoStart)
	viper.SetDefault("serverBinary", d.ServerBinary)
	viper.SetDefault("settleSeconds", d.SettleSeconds)
	viper.SetDefault("exportCSV", d.ExportCSV)
	viper.SetDefault("debug", false)
	viper.SetDefault("tui", false)
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}
