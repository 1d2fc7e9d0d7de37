package configstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/door-sentry/internal/domain/device"
)

// TestSaveLoadConfiguration_Roundtrip writes a full configuration and reads it back.
func TestSaveLoadConfiguration_Roundtrip(t *testing.T) {
	t.Parallel()

	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	want := domain.Configuration{
		NetworkName:            "X",
		NetworkSecret:          "Y",
		Mode:                   domain.ModeDetector,
		NotificationCredential: "token",
	}

	require.NoError(t, SaveConfiguration(ctx, store, want))

	got, err := LoadConfiguration(ctx, store)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

// TestLoadConfiguration_Missing reports missing records and leaves the mode unknown.
func TestLoadConfiguration_Missing(t *testing.T) {
	t.Parallel()

	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, KeyNetworkName, "home"))
	require.NoError(t, store.Write(ctx, KeyOperatingMode, "1"))

	got, err := LoadConfiguration(ctx, store)
	require.ErrorIs(t, err, ErrIncomplete)
	require.Contains(t, err.Error(), KeyNetworkSecret)
	require.Equal(t, domain.ModeUnknown, got.Mode)
	require.Equal(t, "home", got.NetworkName)

	// Empty mode record on an otherwise complete card.
	require.NoError(t, store.Write(ctx, KeyNetworkSecret, "pw"))
	require.NoError(t, store.Write(ctx, KeyNotificationCredential, "token"))
	require.NoError(t, store.Write(ctx, KeyOperatingMode, ""))

	got, err = LoadConfiguration(ctx, store)
	require.ErrorIs(t, err, ErrIncomplete)
	require.Equal(t, domain.ModeUnknown, got.Mode)
}

// TestLoadConfiguration_ModeDecoding checks the "1" versus anything-else rule.
func TestLoadConfiguration_ModeDecoding(t *testing.T) {
	t.Parallel()

	cases := map[string]domain.Mode{
		"1":    domain.ModeDetector,
		"2":    domain.ModeIntercom,
		"oya":  domain.ModeIntercom,
		"1\n":  domain.ModeDetector,
		"0042": domain.ModeIntercom,
	}

	for record, want := range cases {
		store := NewFileStore(t.TempDir())
		ctx := context.Background()

		require.NoError(t, SaveConfiguration(ctx, store, domain.Configuration{
			NetworkName:            "n",
			NetworkSecret:          "s",
			Mode:                   domain.ModeIntercom,
			NotificationCredential: "t",
		}))
		require.NoError(t, store.Write(ctx, KeyOperatingMode, record))

		got, err := LoadConfiguration(ctx, store)
		require.NoError(t, err, record)
		require.Equal(t, want, got.Mode, record)
	}
}
