package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oshokin/door-sentry/internal/classifier"
	domain "github.com/oshokin/door-sentry/internal/domain/device"
	"github.com/oshokin/door-sentry/internal/logger"
	"github.com/oshokin/door-sentry/internal/network"
	"github.com/oshokin/door-sentry/internal/notify"
	"github.com/oshokin/door-sentry/internal/repository/configstore"
)

// LineSource delivers input lines from the recognition module.
type LineSource interface {
	// Poll returns a buffered line without blocking.
	Poll() (string, bool)
	// Next blocks until a line arrives.
	Next(ctx context.Context) (string, error)
}

// Connector brings the wireless link up.
type Connector interface {
	Connect(ctx context.Context, ssid, secret string) error
	State() network.ConnectionState
}

// Notifier delivers alerts; results are already logged.
type Notifier interface {
	Notify(ctx context.Context, credential, message string) notify.Result
	Trigger(ctx context.Context) notify.Result
}

// Dependencies are the collaborators of a Controller.
type Dependencies struct {
	// Store holds the device Configuration records.
	Store configstore.Store
	// Connector brings the network up.
	Connector Connector
	// Notifier delivers alerts.
	Notifier Notifier
	// Lines is the input stream.
	Lines LineSource
	// Observers receive activity callbacks.
	Observers []Observer
}

// Settings tune the state machine.
type Settings struct {
	// PollInterval is the delay between main loop iterations.
	PollInterval time.Duration
	// Cooldown is the post-alert hold.
	Cooldown time.Duration
	// IdleMilestone is the idle poll count that produces a diagnostic line.
	IdleMilestone int
	// LineTimeout bounds each reconfiguration line wait; zero waits forever.
	LineTimeout time.Duration
	// ErrorInterval is the delay between error markers in ErrorMode.
	ErrorInterval time.Duration
	// DetectorToken selects Detector mode during reconfiguration.
	DetectorToken string
	// DetectorTable holds the Detector identities.
	DetectorTable *classifier.Table
	// IntercomTable holds the Intercom identities.
	IntercomTable *classifier.Table
}

const (
	// DefaultPollInterval caps the main loop rate.
	DefaultPollInterval = 200 * time.Millisecond
	// DefaultCooldown is the post-alert hold.
	DefaultCooldown = 5 * time.Second
	// DefaultIdleMilestone is the idle poll count between diagnostic lines.
	DefaultIdleMilestone = 1000
	// DefaultErrorInterval is the delay between error markers in ErrorMode.
	DefaultErrorInterval = time.Second
	// DefaultDetectorToken selects Detector mode during reconfiguration.
	DefaultDetectorToken = "oya"
)

// withDefaults fills zero settings.
func (s Settings) withDefaults() Settings {
	if s.PollInterval <= 0 {
		s.PollInterval = DefaultPollInterval
	}

	if s.Cooldown <= 0 {
		s.Cooldown = DefaultCooldown
	}

	if s.IdleMilestone <= 0 {
		s.IdleMilestone = DefaultIdleMilestone
	}

	if s.ErrorInterval <= 0 {
		s.ErrorInterval = DefaultErrorInterval
	}

	if s.DetectorToken == "" {
		s.DetectorToken = DefaultDetectorToken
	}

	if s.DetectorTable == nil {
		s.DetectorTable = classifier.DefaultDetectorTable()
	}

	if s.IntercomTable == nil {
		s.IntercomTable = classifier.DefaultIntercomTable()
	}

	return s
}

// Controller is the mode state machine. Its methods run on a single goroutine;
// only Snapshot may be called concurrently.
type Controller struct {
	// store holds the persisted Configuration.
	store configstore.Store
	// connector brings the network up.
	connector Connector
	// notifier delivers alerts.
	notifier Notifier
	// lines is the input stream.
	lines LineSource
	// observer receives activity callbacks.
	observer observers
	// settings tune timing and identities.
	settings Settings

	// cfg is the active Configuration.
	cfg domain.Configuration
	// idle counts consecutive polls without input.
	idle int

	// mu protects state and cfg for Snapshot readers.
	mu sync.RWMutex
	// state is the state machine position.
	state domain.State
}

// New creates a Controller in the Booting state.
func New(deps Dependencies, settings Settings) *Controller {
	return &Controller{
		store:     deps.Store,
		connector: deps.Connector,
		notifier:  deps.Notifier,
		lines:     deps.Lines,
		observer:  observers(deps.Observers),
		settings:  settings.withDefaults(),
		state:     domain.StateBooting,
	}
}

// Status is a point-in-time view of the controller for status endpoints.
type Status struct {
	// State is the state machine position.
	State domain.State
	// Mode is the active operating mode.
	Mode domain.Mode
	// NetworkName is the configured SSID.
	NetworkName string
	// Connection is the link state.
	Connection network.ConnectionState
}

// Snapshot returns the current Status. It is safe for concurrent use.
func (c *Controller) Snapshot() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Status{
		State:       c.state,
		Mode:        c.cfg.Mode,
		NetworkName: c.cfg.NetworkName,
		Connection:  c.connector.State(),
	}
}

// StatusFields renders Snapshot for the /state endpoint.
func (c *Controller) StatusFields() map[string]any {
	s := c.Snapshot()

	return map[string]any{
		"state":        s.State.String(),
		"mode":         s.Mode.String(),
		"network_name": s.NetworkName,
		"connection":   s.Connection.String(),
	}
}

// Configuration returns the active Configuration.
func (c *Controller) Configuration() domain.Configuration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.cfg
}

// State returns the state machine position.
func (c *Controller) State() domain.State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state
}

// Run boots the controller and steps it every poll interval until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.Boot(ctx); err != nil {
		return ignoreCanceled(err)
	}

	for {
		if err := c.Step(ctx); err != nil {
			return ignoreCanceled(err)
		}

		delay := c.settings.PollInterval
		if c.State() == domain.StateError {
			delay = c.settings.ErrorInterval
		}

		timer := time.NewTimer(delay)

		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Info(ctx, "Context canceled, exiting")

			return nil
		case <-timer.C:
		}
	}
}

// Boot loads the Configuration, connects, announces the mode and enters the
// matching idle state. An incomplete Configuration enters ErrorMode without
// connecting. Only context cancellation is returned as an error.
func (c *Controller) Boot(ctx context.Context) error {
	c.setState(domain.StateBooting)

	cfg, err := configstore.LoadConfiguration(ctx, c.store)
	c.setConfiguration(cfg)

	if err != nil {
		logger.ErrorKV(ctx, "Cannot load device configuration", "error", err)
		c.enterError(ctx)

		return nil
	}

	logger.InfoKV(ctx, "Device configuration loaded",
		"network_name", cfg.NetworkName,
		"mode", cfg.Mode.String(),
	)

	if err = c.connectAndAnnounce(ctx, cfg.NetworkName, cfg.NetworkSecret); err != nil {
		return err
	}

	c.setState(domain.IdleState(cfg.Mode))

	return nil
}

// Step performs one main loop iteration: poll at most one line and act on it.
func (c *Controller) Step(ctx context.Context) error {
	if c.State() == domain.StateError {
		logger.Error(ctx, "Error mode: device configuration is incomplete, restart required")
		return nil
	}

	line, ok := c.lines.Poll()
	if !ok {
		c.idleTick(ctx)
		return nil
	}

	c.idle = 0

	return c.handleLine(ctx, line)
}

// handleLine classifies one line in the active mode and acts on it.
func (c *Controller) handleLine(ctx context.Context, line string) error {
	table := c.activeTable()
	event := classifier.Classify(line, table)

	c.observer.EventClassified(event.Kind)

	switch event.Kind {
	case domain.EventArrival:
		return c.handleArrival(ctx, table, event.Tag)
	case domain.EventUnknownArrival:
		logger.InfoKV(ctx, "Unknown visitor", "line", line)
	case domain.EventReconfigure:
		return c.Reconfigure(ctx)
	case domain.EventMalformed:
		logger.WarnKV(ctx, "Malformed detection payload", "line", line, "reason", event.Reason)
	default:
		logger.DebugKV(ctx, "Ignoring input", "line", line)
	}

	return nil
}

// handleArrival announces a known identity, pulses the trigger in Detector
// mode and holds the cooldown.
func (c *Controller) handleArrival(ctx context.Context, table *classifier.Table, tag string) error {
	message, _ := table.Message(tag)
	mode := c.Configuration().Mode

	logger.InfoKV(ctx, "Known identity arrived", "tag", tag, "mode", mode.String())

	c.notify(ctx, message)

	if mode == domain.ModeDetector {
		c.observer.TriggerSent(c.notifier.Trigger(ctx))
	}

	return c.cooldown(ctx)
}

// cooldown holds processing for the cooldown window, then discards detection
// lines that piled up during it. A reconfiguration request among them is honored.
func (c *Controller) cooldown(ctx context.Context) error {
	timer := time.NewTimer(c.settings.Cooldown)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	discarded := 0

	for {
		line, ok := c.lines.Poll()
		if !ok {
			break
		}

		if classifier.Classify(line, nil).Kind == domain.EventReconfigure {
			c.observer.EventClassified(domain.EventReconfigure)
			logCooldownDiscards(ctx, discarded)

			return c.Reconfigure(ctx)
		}

		discarded++
	}

	logCooldownDiscards(ctx, discarded)

	return nil
}

// logCooldownDiscards reports lines dropped after a cooldown.
func logCooldownDiscards(ctx context.Context, discarded int) {
	if discarded > 0 {
		logger.InfoKV(ctx, "Discarded input received during cooldown", "lines", discarded)
	}
}

// Reconfigure runs the three-line sequence: network name, network secret and
// mode token. Each value is persisted as soon as it arrives; then the link is
// reconnected, the Configuration is read back from the store and announced.
func (c *Controller) Reconfigure(ctx context.Context) error {
	previous := c.State()
	c.setState(domain.StateReconfiguring)

	logger.Info(ctx, "Reconfiguration requested, waiting for network name")

	ssid, err := c.nextLine(ctx)
	if err != nil {
		return c.abortReconfigure(ctx, previous, err)
	}

	c.persist(ctx, configstore.KeyNetworkName, ssid)
	logger.InfoKV(ctx, "Network name received, waiting for network secret", "network_name", ssid)

	secret, err := c.nextLine(ctx)
	if err != nil {
		return c.abortReconfigure(ctx, previous, err)
	}

	c.persist(ctx, configstore.KeyNetworkSecret, secret)
	logger.Info(ctx, "Network secret received, waiting for mode")

	token, err := c.nextLine(ctx)
	if err != nil {
		return c.abortReconfigure(ctx, previous, err)
	}

	mode := domain.ModeIntercom
	if token == c.settings.DetectorToken {
		mode = domain.ModeDetector
	}

	c.persist(ctx, configstore.KeyOperatingMode, mode.Record())
	logger.InfoKV(ctx, "Mode received", "mode", mode.String())

	if err = c.connectOnly(ctx, ssid, secret); err != nil {
		return err
	}

	// Read back what actually reached storage.
	cfg, err := configstore.LoadConfiguration(ctx, c.store)
	c.setConfiguration(cfg)

	if err != nil {
		logger.ErrorKV(ctx, "Cannot confirm persisted configuration", "error", err)
		c.enterError(ctx)

		return nil
	}

	c.announce(ctx, cfg.Mode)
	c.observer.Reconfigured()
	c.setState(domain.IdleState(cfg.Mode))

	return nil
}

// nextLine waits for one reconfiguration line, bounded by the line timeout if set.
func (c *Controller) nextLine(ctx context.Context) (string, error) {
	if c.settings.LineTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.settings.LineTimeout)
		defer cancel()
	}

	line, err := c.lines.Next(ctx)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

// abortReconfigure returns to the previous idle state when a line never came.
// Records persisted before the failure stay written.
func (c *Controller) abortReconfigure(ctx context.Context, previous domain.State, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	logger.WarnKV(ctx, "Reconfiguration aborted", "error", err)
	c.setState(previous)

	return nil
}

// persist writes one record; failures are logged and leave the prior value.
func (c *Controller) persist(ctx context.Context, key, value string) {
	if err := c.store.Write(ctx, key, value); err != nil {
		logger.ErrorKV(ctx, "Failed to persist record", "key", key, "error", err)
	}
}

// connectAndAnnounce connects and sends the startup notification.
func (c *Controller) connectAndAnnounce(ctx context.Context, ssid, secret string) error {
	if err := c.connectOnly(ctx, ssid, secret); err != nil {
		return err
	}

	c.announce(ctx, c.Configuration().Mode)

	return nil
}

// connectOnly blocks on the connector. A bounded wait that expires is logged
// and the controller carries on offline; cancellation is returned.
func (c *Controller) connectOnly(ctx context.Context, ssid, secret string) error {
	err := c.connector.Connect(ctx, ssid, secret)
	if err == nil {
		return nil
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	logger.ErrorKV(ctx, "Network unavailable, continuing offline", "error", err)

	return nil
}

// announce sends the startup notification naming mode.
func (c *Controller) announce(ctx context.Context, mode domain.Mode) {
	logger.InfoKV(ctx, "Mode active", "mode", mode.String())
	c.notify(ctx, StartupMessage(mode))
}

// notify sends message with the active credential and reports the result.
func (c *Controller) notify(ctx context.Context, message string) {
	result := c.notifier.Notify(ctx, c.Configuration().NotificationCredential, message)
	c.observer.NotificationSent(result)
}

// idleTick counts a poll without input and logs at each milestone.
func (c *Controller) idleTick(ctx context.Context) {
	c.idle++
	if c.idle < c.settings.IdleMilestone {
		return
	}

	logger.DebugKV(ctx, "Still idle", "polls", c.idle)
	c.idle = 0
}

// activeTable returns the identity table of the active mode.
func (c *Controller) activeTable() *classifier.Table {
	if c.Configuration().Mode == domain.ModeDetector {
		return c.settings.DetectorTable
	}

	return c.settings.IntercomTable
}

// enterError switches to the terminal ErrorMode.
func (c *Controller) enterError(ctx context.Context) {
	logger.Error(ctx, "Entering error mode")
	c.setState(domain.StateError)
}

// setState records a state transition and informs observers.
func (c *Controller) setState(state domain.State) {
	c.mu.Lock()
	c.state = state
	mode := c.cfg.Mode
	c.mu.Unlock()

	c.observer.StateChanged(state, mode)
}

// setConfiguration replaces the active Configuration.
func (c *Controller) setConfiguration(cfg domain.Configuration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cfg = cfg
}

// StartupMessage is the notification sent when mode becomes active.
func StartupMessage(mode domain.Mode) string {
	return "started in " + mode.String() + " mode"
}

// ignoreCanceled treats context cancellation as a clean stop.
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}

	return err
}
