package controller

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/door-sentry/internal/config"
	domain "github.com/oshokin/door-sentry/internal/domain/device"
	"github.com/oshokin/door-sentry/internal/repository/configstore"
)

// TestWriteRecords_MasksSecrets prints the records without leaking secrets.
func TestWriteRecords_MasksSecrets(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	store := newMemoryStore("home", "hunter2", "1", "token-value")
	require.NoError(t, writeRecords(context.Background(), store, &buf))

	out := buf.String()
	require.Contains(t, out, "network_name: home")
	require.Contains(t, out, "mode: detector")
	require.Contains(t, out, "complete: true")
	require.NotContains(t, out, "hunter2")
	require.NotContains(t, out, "token-value")
	require.NotContains(t, out, "problem")
}

// TestWriteRecords_Incomplete reports the missing records.
func TestWriteRecords_Incomplete(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	store := newMemoryStore("home", "", "", "token-value")
	require.NoError(t, writeRecords(context.Background(), store, &buf))

	out := buf.String()
	require.Contains(t, out, "complete: false")
	require.Contains(t, out, "mode: unknown")
	require.Contains(t, out, configstore.KeyNetworkSecret)
	require.Contains(t, out, configstore.KeyOperatingMode)
}

// TestShowConfig_FileBackend reads records from the directory named in the settings file.
func TestShowConfig_FileBackend(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cardDir := filepath.Join(dir, "card")
	require.NoError(t, os.MkdirAll(cardDir, 0o750))

	store := configstore.NewFileStore(cardDir)
	for key, value := range map[string]string{
		configstore.KeyNetworkName:            "cafe",
		configstore.KeyNetworkSecret:          "pw",
		configstore.KeyOperatingMode:          "2",
		configstore.KeyNotificationCredential: "tok",
	} {
		require.NoError(t, store.Write(context.Background(), key, value))
	}

	settings := config.Default()
	settings.Storage.Dir = cardDir

	settingsPath := filepath.Join(dir, "settings.yaml")
	require.NoError(t, config.Save(settingsPath, settings))

	var buf bytes.Buffer

	require.NoError(t, ShowConfig(context.Background(), settingsPath, &buf))
	require.Contains(t, buf.String(), "network_name: cafe")
	require.Contains(t, buf.String(), "mode: intercom")
}

// TestSettingsFromConfig builds identity tables from the settings file section.
func TestSettingsFromConfig(t *testing.T) {
	t.Parallel()

	c := config.Default().Controller
	c.DetectorTags = []config.Identity{{Tag: "owner", Message: "owner is home"}}

	settings, err := SettingsFromConfig(&c)
	require.NoError(t, err)

	message, ok := settings.DetectorTable.Message("owner")
	require.True(t, ok)
	require.Equal(t, "owner is home", message)

	c.IntercomTags = []config.Identity{{Tag: "a", Message: "x"}, {Tag: "a", Message: "y"}}

	_, err = SettingsFromConfig(&c)
	require.Error(t, err)
}

// TestOpenStore_UnknownBackend fails.
func TestOpenStore_UnknownBackend(t *testing.T) {
	t.Parallel()

	_, _, err := OpenStore(&config.StorageConfig{Backend: "floppy"})
	require.Error(t, err)
}

// TestProvision_WritesCardReadByBoot prepares a card that the controller then boots from.
func TestProvision_WritesCardReadByBoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cardDir := filepath.Join(dir, "card")
	require.NoError(t, os.MkdirAll(cardDir, 0o750))

	settings := config.Default()
	settings.Storage.Dir = cardDir

	settingsPath := filepath.Join(dir, "settings.yaml")
	require.NoError(t, config.Save(settingsPath, settings))

	want := domain.Configuration{
		NetworkName:            "cafe",
		NetworkSecret:          "latte",
		Mode:                   domain.ModeDetector,
		NotificationCredential: "tok",
	}

	require.NoError(t, Provision(context.Background(), settingsPath, want))

	store := configstore.NewFileStore(cardDir)
	h := newHarness(newMemoryStore("", "", "", ""), Settings{})
	h.ctrl.store = store

	require.NoError(t, h.ctrl.Boot(context.Background()))
	require.Equal(t, want, h.ctrl.Configuration())
	require.Equal(t, domain.StateDetectorIdle, h.ctrl.State())

	record, err := store.Read(context.Background(), configstore.KeyOperatingMode)
	require.NoError(t, err)
	require.Equal(t, "1", record)
}

// TestProvision_RejectsIncomplete writes nothing when a record is missing.
func TestProvision_RejectsIncomplete(t *testing.T) {
	t.Parallel()

	err := Provision(context.Background(), "", domain.Configuration{NetworkName: "cafe"})
	require.ErrorIs(t, err, errProvisionIncomplete)
}
