package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andrzejf1994/ha-ios-nextalarm/internal/config"
	"github.com/andrzejf1994/ha-ios-nextalarm/internal/service/server"
	"github.com/andrzejf1994/ha-ios-nextalarm/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// stateFile optionally overrides the snapshot path from config.
	stateFile string

	// rootCmd represents the base command for running the NextAlarm server.
	rootCmd = &cobra.Command{
		Use:   "nextalarm-server",
		Short: "Track the next alarm per person from companion-app events.",
		Long: `Consumes alarm-state events from the event bus, normalizes them into a
canonical model and continuously maintains the soonest-firing alarm per
person, recomputing on rollover timers and flagging persons whose periodic
refresh failed to deliver data in time.

State survives restarts through a JSON snapshot written after every change.
Update signals are broadcast over Redis pub/sub for presentation consumers.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &server.Options{
				ConfigPath: configPath,
				StateFile:  stateFile,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the nextalarm-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().
		StringVarP(&stateFile, "state-file", "s", "", "path to the snapshot file (defaults to config value)")
}
