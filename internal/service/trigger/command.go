package trigger

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/oshokin/door-sentry/internal/logger"
	"github.com/oshokin/door-sentry/internal/version"
)

// shutdownTimeout bounds the graceful stop of the HTTP server.
const shutdownTimeout = 3 * time.Second

// Options controls the trigger-server process.
type Options struct {
	// ListenAddress is the HTTP listen address; empty uses DefaultListenAddress.
	ListenAddress string
	// Command overrides the per-OS default action.
	Command []string
	// LogLevel is the minimum log level.
	LogLevel string
}

// Run serves trigger pulses until ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "trigger-server")

	if err := logger.SetLevelFromString(opts.LogLevel); err != nil {
		return err
	}

	listenAddress := opts.ListenAddress
	if listenAddress == "" {
		listenAddress = DefaultListenAddress
	}

	command := opts.Command
	if len(command) == 0 {
		command = DefaultCommand()
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	srv := &http.Server{
		Handler:           NewServer(command).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.InfoKV(ctx, "Trigger server listening",
		"listen_address", listenAddress,
		"command", command,
		"version", version.Short(),
	)

	// Done channel is closed after Shutdown finishes so Run returns only
	// once in-flight pulses are answered.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down trigger server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)

		close(done)
	}()

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	<-done
	logger.Info(ctx, "Trigger server stopped")

	return nil
}
