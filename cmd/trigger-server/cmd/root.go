package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/door-sentry/internal/service/trigger"
	"github.com/oshokin/door-sentry/internal/version"
)

var (
	// command overrides the per-OS trigger action.
	command []string
	// logLevel is the minimum log level.
	logLevel string

	// rootCmd represents the base command for running the trigger server.
	rootCmd = &cobra.Command{
		Use:   "trigger-server [listen-address]",
		Short: "Run the local trigger server for detector mode.",
		Long: `Starts the HTTP server that receives the detector mode pulse.

Each GET /trigger runs the configured desktop action: "xdotool key super+d" on Linux,
minimize all windows on Windows, nothing elsewhere unless --command is given.
Listen address can be provided as argument (default :5000).
Pulse counts are exposed at /metrics.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &trigger.Options{
				ListenAddress: listenAddress,
				Command:       command,
				LogLevel:      logLevel,
			}

			return trigger.Run(ctx, options)
		},
	}
)

// Execute runs the trigger-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringArrayVar(&command, "command", nil, "trigger action and its arguments, repeat per argument")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "log level (debug, info, warn, error)")
}
