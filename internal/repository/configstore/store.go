package configstore

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/oshokin/door-sentry/internal/domain/device"
)

// Record keys of the persisted configuration.
const (
	KeyNetworkName            = "networkName"
	KeyNetworkSecret          = "networkSecret"
	KeyOperatingMode          = "operatingMode"
	KeyNotificationCredential = "notificationCredential"
)

// Keys lists the record keys in the order they are loaded.
var Keys = []string{KeyNetworkName, KeyNetworkSecret, KeyOperatingMode, KeyNotificationCredential}

// Store defines record operations on persistent storage.
// Read of a missing key returns an empty string and no error.
type Store interface {
	Read(ctx context.Context, key string) (string, error)
	Write(ctx context.Context, key, value string) error
}

// ErrIncomplete reports which records were empty when loading a Configuration.
var ErrIncomplete = errors.New("configuration is incomplete")

// LoadConfiguration reads every record and decodes them into a Configuration.
// Missing records leave the Mode as ModeUnknown and yield an ErrIncomplete
// error describing them; storage failures are returned as is.
func LoadConfiguration(ctx context.Context, store Store) (domain.Configuration, error) {
	values := make(map[string]string, len(Keys))

	for _, key := range Keys {
		value, err := store.Read(ctx, key)
		if err != nil {
			return domain.Configuration{}, fmt.Errorf("read %s: %w", key, err)
		}

		values[key] = value
	}

	cfg := domain.Configuration{
		NetworkName:            values[KeyNetworkName],
		NetworkSecret:          values[KeyNetworkSecret],
		NotificationCredential: values[KeyNotificationCredential],
	}

	mode, modeErr := domain.ParseMode(values[KeyOperatingMode])
	if modeErr == nil {
		cfg.Mode = mode
	}

	if cfg.Complete() {
		return cfg, nil
	}

	var missing []string

	for _, key := range Keys {
		if values[key] == "" {
			missing = append(missing, key)
		}
	}

	// An incomplete card never selects a mode.
	cfg.Mode = domain.ModeUnknown

	if len(missing) > 0 {
		return cfg, fmt.Errorf("%w: missing %v", ErrIncomplete, missing)
	}

	return cfg, fmt.Errorf("%w: %w", ErrIncomplete, modeErr)
}

// SaveConfiguration writes every record of cfg. Records are independent:
// a failure stops the sequence and earlier records stay written.
func SaveConfiguration(ctx context.Context, store Store, cfg domain.Configuration) error {
	records := []struct {
		key   string
		value string
	}{
		{KeyNetworkName, cfg.NetworkName},
		{KeyNetworkSecret, cfg.NetworkSecret},
		{KeyOperatingMode, cfg.Mode.Record()},
		{KeyNotificationCredential, cfg.NotificationCredential},
	}

	for _, r := range records {
		if err := store.Write(ctx, r.key, r.value); err != nil {
			return fmt.Errorf("write %s: %w", r.key, err)
		}
	}

	return nil
}
