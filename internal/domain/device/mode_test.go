package device

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParseMode verifies decoding of the persisted mode record.
func TestParseMode(t *testing.T) {
	t.Parallel()

	m, err := ParseMode("1")
	require.NoError(t, err)
	require.Equal(t, ModeDetector, m)

	m, err = ParseMode(" 1\r\n")
	require.NoError(t, err)
	require.Equal(t, ModeDetector, m)

	for _, s := range []string{"2", "0", "intercom", "11"} {
		m, err = ParseMode(s)
		require.NoError(t, err, s)
		require.Equal(t, ModeIntercom, m, s)
	}

	m, err = ParseMode("  ")
	require.ErrorIs(t, err, ErrModeMissing)
	require.Equal(t, ModeUnknown, m)
}

// TestModeRecordRoundtrip ensures every valid mode decodes from its own record.
func TestModeRecordRoundtrip(t *testing.T) {
	t.Parallel()

	for _, m := range []Mode{ModeDetector, ModeIntercom} {
		got, err := ParseMode(m.Record())
		require.NoError(t, err)
		require.Equal(t, m, got)
	}

	require.Empty(t, ModeUnknown.Record())
	require.False(t, ModeUnknown.Valid())
}

// TestIdleState maps modes to idle states.
func TestIdleState(t *testing.T) {
	t.Parallel()

	require.Equal(t, StateDetectorIdle, IdleState(ModeDetector))
	require.Equal(t, StateIntercomIdle, IdleState(ModeIntercom))
	require.Equal(t, StateError, IdleState(ModeUnknown))
	require.True(t, StateIntercomIdle.Serving())
	require.False(t, StateReconfiguring.Serving())
}

// TestConfigurationMasked hides secrets but keeps the rest.
func TestConfigurationMasked(t *testing.T) {
	t.Parallel()

	cfg := Configuration{
		NetworkName:            "home",
		NetworkSecret:          "hunter2",
		Mode:                   ModeDetector,
		NotificationCredential: "token",
	}

	require.True(t, cfg.Complete())

	masked := cfg.Masked()
	require.Equal(t, "home", masked.NetworkName)
	require.NotContains(t, masked.NetworkSecret, "hunter2")
	require.NotContains(t, masked.NotificationCredential, "token")
	require.Equal(t, "hunter2", cfg.NetworkSecret)

	cfg.NotificationCredential = ""
	require.False(t, cfg.Complete())
}

// TestParseModeName accepts names and record forms only.
func TestParseModeName(t *testing.T) {
	t.Parallel()

	cases := map[string]Mode{
		"detector":  ModeDetector,
		" Intercom": ModeIntercom,
		"1":         ModeDetector,
		"2":         ModeIntercom,
	}

	for name, want := range cases {
		got, err := ParseModeName(name)
		require.NoError(t, err, name)
		require.Equal(t, want, got, name)
	}

	_, err := ParseModeName("oya")
	require.ErrorIs(t, err, ErrUnknownModeName)
}
