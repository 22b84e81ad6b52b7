package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andrzejf1994/ha-ios-nextalarm/internal/config"
	"github.com/andrzejf1994/ha-ios-nextalarm/internal/service/emitter"
	"github.com/andrzejf1994/ha-ios-nextalarm/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// person holds the display name the event is emitted for.
	person string
	// alarmsFile points to a JSON file with the alarm collection payload.
	alarmsFile string
	// refreshStart switches the emitted event to a refresh-start marker.
	refreshStart bool

	// rootCmd represents the base command for publishing test events.
	rootCmd = &cobra.Command{
		Use:   "nextalarm-emitter",
		Short: "Publish an alarm-state or refresh-start event to the bus.",
		Long: `Publishes a single event to the configured Kafka topic, either an
alarm-data event built from a JSON file or a refresh-start marker.

Useful for exercising a running nextalarm-server without a companion app.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &emitter.Options{
				ConfigPath:   configPath,
				Person:       person,
				AlarmsFile:   alarmsFile,
				RefreshStart: refreshStart,
			}

			return emitter.Run(ctx, options)
		},
	}
)

// Execute runs the nextalarm-emitter CLI and exits with non-zero status on error.
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
	rootCmd.Flags().StringVarP(&person, "person", "p", "", "display name the event belongs to")
	rootCmd.Flags().StringVarP(&alarmsFile, "file", "f", "", "path to a JSON file with the alarm collection")
	rootCmd.Flags().BoolVar(&refreshStart, "refresh", false, "emit a refresh-start event instead of alarm data")
}
