// Package cli provides the portfolio command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"portfolio-site/internal/config"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	cfg        config.Config
	logCleanup func() error
)

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Portfolio site backend and operator tools",
	Long: `Portfolio serves the site API (contact form and chat assistant) and
provides tools to chat with the assistant, send test contact messages, and
manage the profile document.

Configuration is read from the environment and an optional .env file.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		var logger *slog.Logger
		logger, logCleanup = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCleanup != nil {
			if err := logCleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(contactCmd)
	rootCmd.AddCommand(profileCmd)
}
