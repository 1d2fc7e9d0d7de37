package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"google.golang.org/grpc"

	"github.com/oshokin/door-sentry/internal/api/grpc/health"
	"github.com/oshokin/door-sentry/internal/config"
	"github.com/oshokin/door-sentry/internal/input"
	"github.com/oshokin/door-sentry/internal/logger"
	"github.com/oshokin/door-sentry/internal/metrics"
	"github.com/oshokin/door-sentry/internal/network"
	"github.com/oshokin/door-sentry/internal/notify"
	"github.com/oshokin/door-sentry/internal/repository/configstore"
	"github.com/oshokin/door-sentry/internal/service/instance"
	"github.com/oshokin/door-sentry/internal/version"
)

// Options controls the door-sentry process.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// LogLevel overrides the level from the settings file when set.
	LogLevel string
	// AllowMultiple skips the single instance check.
	AllowMultiple bool
}

// shutdownTimeout bounds the graceful stop of the metrics server.
const shutdownTimeout = 3 * time.Second

// Run loads settings, wires the controller and runs it until ctx is canceled.
//
//nolint:funlen // Wiring is a flat sequence of steps.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "door-sentry")

	// Load settings from configuration file.
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	level := settings.LogLevel
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}

	if err = logger.SetLevelFromString(level); err != nil {
		return err
	}

	// Refuse to share the serial port with another controller.
	if !opts.AllowMultiple {
		if err = instance.EnsureSingle(ctx); err != nil {
			return err
		}
	}

	store, closeStore, err := OpenStore(&settings.Storage)
	if err != nil {
		return err
	}

	defer func() {
		_ = closeStore.Close()
	}()

	lines, err := input.Open(settings.Input.Source, settings.Input.Path, settings.Input.Baud)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}

	defer func() {
		_ = lines.Close()
	}()

	go watchInput(ctx, lines)

	link, err := network.NewLink(settings.Network.Link)
	if err != nil {
		return err
	}

	m := metrics.New()
	connector := network.NewConnector(
		link,
		network.WithRetryInterval(settings.Network.RetryInterval),
		network.WithMaxWait(settings.Network.MaxWait),
		network.WithAttemptObserver(m.ConnectAttempt),
	)

	dispatcher := notify.NewDispatcher(
		notify.WithEndpoint(settings.Notify.Endpoint),
		notify.WithTriggerURL(settings.Notify.TriggerEnabledURL()),
		notify.WithTimeout(settings.Notify.Timeout),
	)

	controllerSettings, err := SettingsFromConfig(&settings.Controller)
	if err != nil {
		return err
	}

	observerList := []Observer{m}

	var healthServer *health.Server
	if settings.HealthAddress != "" {
		healthServer = health.NewServer()
		observerList = append(observerList, StateObserverFunc(healthServer.StateChanged))
	}

	ctrl := New(Dependencies{
		Store:     store,
		Connector: connector,
		Notifier:  dispatcher,
		Lines:     lines,
		Observers: observerList,
	}, controllerSettings)

	if healthServer != nil {
		stop, err := serveHealth(ctx, settings.HealthAddress, healthServer)
		if err != nil {
			return err
		}

		defer stop()
	}

	if settings.MetricsAddress != "" {
		stop, err := serveMetrics(ctx, settings.MetricsAddress, metrics.NewHandler(m, ctrl.StatusFields))
		if err != nil {
			return err
		}

		defer stop()
	}

	logger.InfoKV(ctx, "Door sentry starting",
		"version", version.Short(),
		"storage", settings.Storage.Backend,
		"input", settings.Input.Source,
		"link", settings.Network.Link,
	)

	return ctrl.Run(ctx)
}

// SettingsFromConfig converts the settings file section into controller Settings.
func SettingsFromConfig(c *config.ControllerConfig) (Settings, error) {
	detector, err := c.DetectorTable()
	if err != nil {
		return Settings{}, fmt.Errorf("detector tags: %w", err)
	}

	intercom, err := c.IntercomTable()
	if err != nil {
		return Settings{}, fmt.Errorf("intercom tags: %w", err)
	}

	return Settings{
		PollInterval:  c.PollInterval,
		Cooldown:      c.Cooldown,
		IdleMilestone: c.IdleMilestone,
		LineTimeout:   c.LineTimeout,
		DetectorToken: c.DetectorToken,
		DetectorTable: detector,
		IntercomTable: intercom,
	}, nil
}

// nopCloser is returned for stores without resources to release.
type nopCloser struct{}

// Close does nothing.
func (nopCloser) Close() error { return nil }

// OpenStore builds the configured config store and a closer for it.
//
//nolint:ireturn // Backend is chosen at runtime from settings.
func OpenStore(s *config.StorageConfig) (configstore.Store, io.Closer, error) {
	switch s.Backend {
	case config.BackendRedis:
		store := configstore.NewRedisStore(s.RedisAddress, s.RedisPassword, s.RedisDB, s.RedisPrefix)
		return store, store, nil
	case config.BackendFile, "":
		return configstore.NewFileStore(s.Dir), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage backend %q", s.Backend)
	}
}

// watchInput logs once when the input stream ends.
func watchInput(ctx context.Context, lines *input.Source) {
	select {
	case <-ctx.Done():
	case <-lines.Finished():
		if err := lines.Err(); err != nil {
			logger.ErrorKV(ctx, "Input stream failed", "error", err)
			return
		}

		logger.Warn(ctx, "Input stream ended, no more events will arrive")
	}
}

// serveHealth starts the gRPC health server and returns its stop function.
func serveHealth(ctx context.Context, address string, hs *health.Server) (func(), error) {
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", address, err)
	}

	grpcServer := grpc.NewServer()
	hs.Register(grpcServer)

	logger.InfoKV(ctx, "Health server listening", "listen_address", address)

	go func() {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.ErrorKV(ctx, "Health server failed", "error", err)
		}
	}()

	return func() {
		hs.Shutdown()
		grpcServer.GracefulStop()
	}, nil
}

// serveMetrics starts the metrics HTTP server and returns its stop function.
func serveMetrics(ctx context.Context, address string, handler http.Handler) (func(), error) {
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", address, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.InfoKV(ctx, "Metrics server listening", "listen_address", address)

	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorKV(ctx, "Metrics server failed", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}, nil
}
