package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andrzejf1994/ha-ios-nextalarm/internal/config"
	"github.com/andrzejf1994/ha-ios-nextalarm/internal/service/inspector"
	"github.com/andrzejf1994/ha-ios-nextalarm/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// stateFile optionally overrides the snapshot path from config.
	stateFile string

	// rootCmd represents the base command for inspecting the snapshot.
	rootCmd = &cobra.Command{
		Use:   "nextalarm-inspect",
		Short: "Print a per-person report of the persisted alarm snapshot.",
		Long: `Reads the JSON snapshot written by nextalarm-server and prints a
human-readable report per person: the soonest alarm, time remaining, a
schedule preview and refresh health.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &inspector.Options{
				ConfigPath: configPath,
				StateFile:  stateFile,
			}

			return inspector.Run(ctx, os.Stdout, options)
		},
	}
)

// Execute runs the nextalarm-inspect CLI and exits with non-zero status on error.
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
