package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/door-sentry/internal/classifier"
	"github.com/oshokin/door-sentry/internal/input"
	"github.com/oshokin/door-sentry/internal/network"
	"github.com/oshokin/door-sentry/internal/notify"
)

// Config holds the settings of the door-sentry controller.
// The device Configuration itself (network, mode, token) lives in the config store.
type Config struct {
	// Storage selects where the device Configuration records live.
	Storage StorageConfig `yaml:"storage"`
	// Input selects where recognition events come from.
	Input InputConfig `yaml:"input"`
	// Network tunes the wireless connector.
	Network NetworkConfig `yaml:"network"`
	// Notify configures the outbound calls.
	Notify NotifyConfig `yaml:"notify"`
	// Controller tunes the state machine.
	Controller ControllerConfig `yaml:"controller"`
	// HealthAddress enables the gRPC health service when set.
	HealthAddress string `yaml:"health_addr"`
	// MetricsAddress enables the /metrics and /state endpoints when set.
	MetricsAddress string `yaml:"metrics_addr"`
	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

// StorageConfig selects the config store backend.
type StorageConfig struct {
	// Backend is "file" or "redis".
	Backend string `yaml:"backend"`
	// Dir is the storage medium mount point for the file backend.
	Dir string `yaml:"dir"`
	// RedisAddress is host:port of the Redis server.
	RedisAddress string `yaml:"redis_addr"`
	// RedisPassword authenticates to Redis.
	RedisPassword string `yaml:"redis_password"`
	// RedisDB is the Redis database number.
	RedisDB int `yaml:"redis_db"`
	// RedisPrefix namespaces the record keys.
	RedisPrefix string `yaml:"redis_prefix"`
}

// InputConfig selects the line source.
type InputConfig struct {
	// Source is "stdin", "file" or "serial".
	Source string `yaml:"source"`
	// Path is the file, FIFO or serial device.
	Path string `yaml:"path"`
	// Baud is the serial speed.
	Baud int `yaml:"baud"`
}

// NetworkConfig tunes the connector.
type NetworkConfig struct {
	// Link is "nmcli" or "static".
	Link string `yaml:"link"`
	// RetryInterval is the fixed delay between connection checks.
	RetryInterval time.Duration `yaml:"retry_interval"`
	// MaxWait bounds a connect; zero waits forever.
	MaxWait time.Duration `yaml:"max_wait"`
}

// NotifyConfig configures the dispatcher.
type NotifyConfig struct {
	// Endpoint receives notification POSTs.
	Endpoint string `yaml:"endpoint"`
	// TriggerURL receives the Detector-mode GET. Use "-" to disable it.
	TriggerURL string `yaml:"trigger_url"`
	// Timeout bounds each outbound call.
	Timeout time.Duration `yaml:"timeout"`
}

// ControllerConfig tunes the mode state machine.
type ControllerConfig struct {
	// PollInterval is the delay between main loop iterations.
	PollInterval time.Duration `yaml:"poll_interval"`
	// Cooldown is the post-alert hold.
	Cooldown time.Duration `yaml:"cooldown"`
	// IdleMilestone is the idle poll count that produces a diagnostic line.
	IdleMilestone int `yaml:"idle_milestone"`
	// LineTimeout bounds each reconfiguration line wait; zero waits forever.
	LineTimeout time.Duration `yaml:"line_timeout"`
	// DetectorToken is the third reconfiguration line that selects Detector mode.
	DetectorToken string `yaml:"detector_token"`
	// DetectorTags are the identities Detector mode reacts to.
	DetectorTags []Identity `yaml:"detector_tags"`
	// IntercomTags are the identities Intercom mode announces.
	IntercomTags []Identity `yaml:"intercom_tags"`
}

// Identity is one tag to message entry of a mode table.
type Identity struct {
	// Tag is the identity token from the recognition module.
	Tag string `yaml:"tag"`
	// Message is the notification text.
	Message string `yaml:"message"`
}

const (
	// DefaultConfigFilename is the default filename for controller settings.
	DefaultConfigFilename = "door-sentry-settings.yaml"

	// DefaultStorageDir is the default mount point of the storage card.
	DefaultStorageDir = "/media/sd"

	// DefaultPollInterval caps the main loop rate.
	DefaultPollInterval = 200 * time.Millisecond

	// DefaultCooldown is the post-alert hold.
	DefaultCooldown = 5 * time.Second

	// DefaultIdleMilestone is the idle poll count between diagnostic lines.
	DefaultIdleMilestone = 1000

	// DefaultDetectorToken selects Detector mode during reconfiguration.
	DefaultDetectorToken = "oya"

	// DisabledTriggerURL turns the local trigger pulse off.
	DisabledTriggerURL = "-"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

// Storage backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownBackend is returned for unsupported storage backends.
	errUnknownBackend = errors.New("unknown storage backend")
	// errRedisAddressRequired is returned when the redis backend has no address.
	errRedisAddressRequired = errors.New("redis address must be provided")
	// errNegativeDuration is returned for negative timing settings.
	errNegativeDuration = errors.New("duration must not be negative")
)

// Default returns settings with every default applied.
func Default() *Config {
	cfg := new(Config)

	// Defaults cannot fail validation.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates it.
// A missing file at the default path yields the defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes Settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills in defaults.
//
//nolint:cyclop,funlen // One flat list of checks reads better than helpers.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	// Storage.
	settings.Storage.Backend = strings.ToLower(strings.TrimSpace(settings.Storage.Backend))
	switch settings.Storage.Backend {
	case "":
		settings.Storage.Backend = BackendFile
		fallthrough
	case BackendFile:
		if settings.Storage.Dir == "" {
			settings.Storage.Dir = DefaultStorageDir
		}
	case BackendRedis:
		if settings.Storage.RedisAddress == "" {
			return errRedisAddressRequired
		}

		if _, _, err := net.SplitHostPort(settings.Storage.RedisAddress); err != nil {
			return fmt.Errorf("invalid redis address: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", errUnknownBackend, settings.Storage.Backend)
	}

	// Input.
	if settings.Input.Source == "" {
		settings.Input.Source = input.KindStdin
	}

	if settings.Input.Baud <= 0 {
		settings.Input.Baud = input.DefaultBaudRate
	}

	// Network.
	if settings.Network.Link == "" {
		settings.Network.Link = network.LinkNMCLI
	}

	if settings.Network.RetryInterval <= 0 {
		settings.Network.RetryInterval = network.DefaultRetryInterval
	}

	if settings.Network.MaxWait < 0 {
		return fmt.Errorf("network.max_wait: %w", errNegativeDuration)
	}

	// Notify.
	if settings.Notify.Endpoint == "" {
		settings.Notify.Endpoint = notify.DefaultEndpoint
	}

	if _, err := url.ParseRequestURI(settings.Notify.Endpoint); err != nil {
		return fmt.Errorf("invalid notification endpoint: %w", err)
	}

	switch settings.Notify.TriggerURL {
	case "":
		settings.Notify.TriggerURL = notify.DefaultTriggerURL
	case DisabledTriggerURL:
	default:
		if _, err := url.ParseRequestURI(settings.Notify.TriggerURL); err != nil {
			return fmt.Errorf("invalid trigger URL: %w", err)
		}
	}

	if settings.Notify.Timeout <= 0 {
		settings.Notify.Timeout = notify.DefaultTimeout
	}

	// Controller.
	c := &settings.Controller

	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}

	if c.Cooldown < 0 || c.LineTimeout < 0 {
		return fmt.Errorf("controller: %w", errNegativeDuration)
	}

	if c.Cooldown == 0 {
		c.Cooldown = DefaultCooldown
	}

	if c.IdleMilestone <= 0 {
		c.IdleMilestone = DefaultIdleMilestone
	}

	if strings.TrimSpace(c.DetectorToken) == "" {
		c.DetectorToken = DefaultDetectorToken
	}

	if len(c.DetectorTags) == 0 {
		c.DetectorTags = fromTable(classifier.DefaultDetectorTable())
	}

	if len(c.IntercomTags) == 0 {
		c.IntercomTags = fromTable(classifier.DefaultIntercomTable())
	}

	if _, err := c.DetectorTable(); err != nil {
		return fmt.Errorf("detector_tags: %w", err)
	}

	if _, err := c.IntercomTable(); err != nil {
		return fmt.Errorf("intercom_tags: %w", err)
	}

	return nil
}

// TriggerEnabledURL returns the trigger URL, or "" when pulses are disabled.
func (n NotifyConfig) TriggerEnabledURL() string {
	if n.TriggerURL == DisabledTriggerURL {
		return ""
	}

	return n.TriggerURL
}

// DetectorTable builds the Detector identity table.
func (c ControllerConfig) DetectorTable() (*classifier.Table, error) {
	return classifier.NewTable(toIdentities(c.DetectorTags))
}

// IntercomTable builds the Intercom identity table.
func (c ControllerConfig) IntercomTable() (*classifier.Table, error) {
	return classifier.NewTable(toIdentities(c.IntercomTags))
}

// toIdentities converts settings entries to classifier identities.
func toIdentities(entries []Identity) []classifier.Identity {
	result := make([]classifier.Identity, 0, len(entries))
	for _, e := range entries {
		result = append(result, classifier.Identity{Tag: e.Tag, Message: e.Message})
	}

	return result
}

// fromTable converts a classifier table to settings entries.
func fromTable(t *classifier.Table) []Identity {
	ids := t.Identities()

	result := make([]Identity, 0, len(ids))
	for _, id := range ids {
		result = append(result, Identity{Tag: id.Tag, Message: id.Message})
	}

	return result
}
