package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/door-sentry/internal/config"
	domain "github.com/oshokin/door-sentry/internal/domain/device"
	"github.com/oshokin/door-sentry/internal/logger"
	"github.com/oshokin/door-sentry/internal/repository/configstore"
)

// errProvisionIncomplete is returned when not every record was given.
var errProvisionIncomplete = errors.New("every record must be set to provision a device")

// Provision writes a complete device Configuration to the configured store,
// preparing a storage card or Redis namespace before the first boot.
func Provision(ctx context.Context, configPath string, cfg domain.Configuration) error {
	ctx = logger.WithName(ctx, "provision")

	if !cfg.Complete() {
		return errProvisionIncomplete
	}

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

	if err = configstore.SaveConfiguration(ctx, store, cfg); err != nil {
		return fmt.Errorf("save device configuration: %w", err)
	}

	logger.InfoKV(ctx, "Device configuration written",
		"storage", settings.Storage.Backend,
		"network_name", cfg.NetworkName,
		"mode", cfg.Mode.String(),
	)

	return nil
}
