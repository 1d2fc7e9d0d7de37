package trigger

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oshokin/door-sentry/internal/logger"
)

// DefaultListenAddress matches the port of the controller's default trigger URL.
const DefaultListenAddress = ":5000"

// Pulse results used as metric labels.
const (
	resultOK     = "ok"
	resultFailed = "failed"
	resultNoop   = "noop"
)

// errEmptyCommand is returned by the default runner when no command is set.
var errEmptyCommand = errors.New("empty trigger command")

// Runner executes the trigger command.
type Runner func(ctx context.Context, command []string) error

// DefaultCommand returns the desktop action for the current OS:
// - Linux:   `xdotool key super+d` (show desktop)
// - Windows: PowerShell minimize-all
// Other systems have no default and pulses are acknowledged without action.
func DefaultCommand() []string {
	switch runtime.GOOS {
	case "linux":
		return []string{"xdotool", "key", "super+d"}
	case "windows":
		return []string{
			"powershell.exe", "-NoProfile", "-Command",
			"(New-Object -ComObject Shell.Application).MinimizeAll()",
		}
	default:
		return nil
	}
}

// execRunner runs command and waits for it to finish.
func execRunner(ctx context.Context, command []string) error {
	if len(command) == 0 {
		return errEmptyCommand
	}

	//nolint:gosec // The command comes from the operator's own flags.
	out, err := exec.CommandContext(ctx, command[0], command[1:]...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("run %s: %w: %s", command[0], err, out)
	}

	return nil
}

// Server handles trigger pulses.
type Server struct {
	// command is the action run per pulse; empty means acknowledge only.
	command []string
	// run executes command.
	run Runner
	// registry holds the pulse counter.
	registry *prometheus.Registry
	// pulses counts pulses by result.
	pulses *prometheus.CounterVec
}

// Option customizes a Server.
type Option func(*Server)

// WithRunner replaces the command runner.
func WithRunner(run Runner) Option {
	return func(s *Server) {
		if run != nil {
			s.run = run
		}
	}
}

// NewServer creates a Server running command per pulse.
func NewServer(command []string, options ...Option) *Server {
	s := &Server{
		command:  command,
		run:      execRunner,
		registry: prometheus.NewRegistry(),
		pulses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "door_sentry",
			Subsystem: "trigger",
			Name:      "pulses_total",
			Help:      "Trigger pulses received, by result.",
		}, []string{"result"}),
	}

	for _, option := range options {
		option(s)
	}

	s.registry.MustRegister(s.pulses)

	return s
}

// Pulses returns the pulse counter for the given result label.
func (s *Server) Pulses(result string) prometheus.Counter {
	return s.pulses.WithLabelValues(result)
}

// Handler returns the HTTP routes: GET /trigger and GET /metrics.
// Everything else is answered with 404.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/trigger", s.handleTrigger)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return r
}

// handleTrigger runs the configured command once.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithKV(r.Context(), "remote_address", r.RemoteAddr)

	if len(s.command) == 0 {
		logger.Info(ctx, "Trigger received, no command configured")
		s.Pulses(resultNoop).Inc()
		_, _ = w.Write([]byte("Triggered"))

		return
	}

	if err := s.run(ctx, s.command); err != nil {
		logger.ErrorKV(ctx, "Trigger command failed", "error", err)
		s.Pulses(resultFailed).Inc()
		http.Error(w, "trigger failed", http.StatusInternalServerError)

		return
	}

	logger.InfoKV(ctx, "Trigger command executed", "command", s.command[0])
	s.Pulses(resultOK).Inc()

	_, _ = w.Write([]byte("Triggered"))
}
