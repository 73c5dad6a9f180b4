// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/spend-dashboard/internal/config"
	"fjacquet/spend-dashboard/internal/container"
	"fjacquet/spend-dashboard/internal/logging"

	"github.com/spf13/cobra"
)

// GlobalFlags are the persistent flags shared by every subcommand.
type GlobalFlags struct {
	ConfigFile string
	Format     string
	LogLevel   string
}

var (
	// Flags holds the parsed persistent flags.
	Flags = GlobalFlags{}

	// AppContainer is built before any subcommand runs.
	AppContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "spend-dashboard",
		Short: "Summarize delimiter-separated bank transaction files.",
		Long: `spend-dashboard reads a transaction file (account, date, description,
two amount columns and a category per line), filters it by date, account,
category and month, and reports totals, breakdowns and monthly trends
in the terminal, as JSON or CSV, or over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Welcome to spend-dashboard!")
			fmt.Fprintln(cmd.OutOrStdout(), "Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()

			cfg, err := config.LoadFile(Flags.ConfigFile)
			if err != nil {
				return err
			}
			applyOverrides(cfg, Flags)

			c, err := container.NewContainer(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			AppContainer = c
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer == nil {
				return
			}
			if err := AppContainer.Close(); err != nil {
				AppContainer.GetLogger().WithError(err).Warn("Failed to release resources")
			}
		},
	}
)

// Init registers the persistent flags.
func Init() {
	Cmd.PersistentFlags().StringVar(&Flags.ConfigFile, "config", "", "Config file (default searches $HOME/.spend-dashboard, .spend-dashboard and .)")
	Cmd.PersistentFlags().StringVarP(&Flags.Format, "format", "f", "", "Input file format (see 'formats')")
	Cmd.PersistentFlags().StringVar(&Flags.LogLevel, "log-level", "", "Log level override (debug, info, warn, error)")
}

func applyOverrides(cfg *config.Config, flags GlobalFlags) {
	if flags.Format != "" {
		cfg.Format.Default = flags.Format
	}
	if flags.LogLevel != "" {
		cfg.Log.Level = flags.LogLevel
	}
}

// GetLogger returns the container logger, or a discard logger before the
// container exists.
func GetLogger() logging.Logger {
	if AppContainer == nil {
		return logging.NewDiscardLogger()
	}
	return AppContainer.GetLogger()
}
