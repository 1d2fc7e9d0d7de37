package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/door-sentry/internal/config"
	domain "github.com/oshokin/door-sentry/internal/domain/device"
	"github.com/oshokin/door-sentry/internal/service/controller"
	"github.com/oshokin/door-sentry/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// logLevel overrides the level from the configuration file.
	logLevel string
	// allowMultiple skips the single instance check.
	allowMultiple bool
	// card holds the records given to provision.
	card provisionFlags

	// rootCmd represents the base command; without a subcommand it runs the controller.
	rootCmd = &cobra.Command{
		Use:   "door-sentry",
		Short: "Run the door sentry edge controller.",
		Long: `Edge controller for a face recognition door camera.

Reads recognition lines from the camera module, announces known arrivals to the
notification service and, in detector mode, pulses the local trigger server.
The device configuration (network, mode and notification token) is read from the
config store at boot and can be rewritten with the "config" command on the input line.`,
		Args: cobra.NoArgs,
		RunE: runController,
	}

	// runCmd runs the controller explicitly.
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the controller until interrupted.",
		Args:  cobra.NoArgs,
		RunE:  runController,
	}

	// showConfigCmd prints the persisted device configuration.
	showConfigCmd = &cobra.Command{
		Use:   "show-config",
		Short: "Print the persisted device configuration with secrets masked.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return controller.ShowConfig(cmd.Context(), configPath, cmd.OutOrStdout())
		},
	}

	// provisionCmd writes a complete device configuration to the store.
	provisionCmd = &cobra.Command{
		Use:   "provision",
		Short: "Write the device configuration records to the configured store.",
		Long: `Writes network name, network secret, operating mode and notification token
to the config store named in the settings file (storage card directory or Redis),
so a new device boots straight into its mode.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := domain.ParseModeName(card.mode)
			if err != nil {
				return err
			}

			return controller.Provision(cmd.Context(), configPath, domain.Configuration{
				NetworkName:            card.networkName,
				NetworkSecret:          card.networkSecret,
				Mode:                   mode,
				NotificationCredential: card.token,
			})
		},
	}
)

// provisionFlags are the record values of the provision command.
type provisionFlags struct {
	// networkName is the wireless network SSID.
	networkName string
	// networkSecret is the wireless passphrase.
	networkSecret string
	// mode is "detector" or "intercom".
	mode string
	// token is the notification credential.
	token string
}

// runController starts the controller with graceful shutdown on SIGTERM and SIGINT.
func runController(_ *cobra.Command, _ []string) error {
	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	options := &controller.Options{
		ConfigPath:    configPath,
		LogLevel:      logLevel,
		AllowMultiple: allowMultiple,
	}

	return controller.Run(ctx, options)
}

// Execute runs the door-sentry CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Flags shared by every subcommand.
	// An empty path reads config.DefaultConfigFilename and falls back to defaults when it is missing.
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to configuration file (default "+config.DefaultConfigFilename+" if present)")

	for _, c := range []*cobra.Command{rootCmd, runCmd} {
		c.Flags().StringVarP(&logLevel, "log-level", "l", "", "log level override (debug, info, warn, error)")
		c.Flags().BoolVar(&allowMultiple, "allow-multiple", false, "skip the single instance check")
	}

	provisionCmd.Flags().StringVar(&card.networkName, "network-name", "", "wireless network SSID")
	provisionCmd.Flags().StringVar(&card.networkSecret, "network-secret", "", "wireless network passphrase")
	provisionCmd.Flags().StringVar(&card.mode, "mode", "", "operating mode: detector or intercom")
	provisionCmd.Flags().StringVar(&card.token, "token", "", "notification service token")

	for _, name := range []string{"network-name", "network-secret", "mode", "token"} {
		if err := provisionCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(runCmd, showConfigCmd, provisionCmd)
}
