package controller

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/door-sentry/internal/config"
	"github.com/oshokin/door-sentry/internal/repository/configstore"
)

// recordView is the printable form of the persisted records with secrets masked.
type recordView struct {
	NetworkName            string `yaml:"network_name"`
	NetworkSecret          string `yaml:"network_secret"`
	Mode                   string `yaml:"mode"`
	NotificationCredential string `yaml:"notification_credential"`
	Complete               bool   `yaml:"complete"`
	Problem                string `yaml:"problem,omitempty"`
}

// ShowConfig prints the persisted device Configuration as YAML with secrets masked.
// An incomplete Configuration is printed, not returned as an error.
func ShowConfig(ctx context.Context, configPath string, w io.Writer) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	store, closeStore, err := OpenStore(&settings.Storage)
	if err != nil {
		return err
	}

	defer func() {
		_ = closeStore.Close()
	}()

	return writeRecords(ctx, store, w)
}

// writeRecords loads the records from store and encodes them to w.
func writeRecords(ctx context.Context, store configstore.Store, w io.Writer) error {
	cfg, err := configstore.LoadConfiguration(ctx, store)
	if err != nil && !errors.Is(err, configstore.ErrIncomplete) {
		return fmt.Errorf("load device configuration: %w", err)
	}

	masked := cfg.Masked()
	view := recordView{
		NetworkName:            masked.NetworkName,
		NetworkSecret:          masked.NetworkSecret,
		Mode:                   masked.Mode.String(),
		NotificationCredential: masked.NotificationCredential,
		Complete:               err == nil,
	}

	if err != nil {
		view.Problem = err.Error()
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()

	if err = enc.Encode(view); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	return nil
}
