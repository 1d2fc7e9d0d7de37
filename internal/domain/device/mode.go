package device

import (
	"errors"
	"fmt"
	"strings"
)

// Mode is the operating mode of the device.
type Mode int

const (
	// ModeUnknown means the persisted mode is missing; the controller treats it as fatal.
	ModeUnknown Mode = iota
	// ModeDetector watches for a single target identity and pulses the local trigger.
	ModeDetector
	// ModeIntercom announces which of the known visitors arrived.
	ModeIntercom
)

const (
	// detectorText is the persisted representation of ModeDetector.
	detectorText = "1"
	// intercomText is the persisted representation of ModeIntercom.
	intercomText = "2"
)

// ErrModeMissing is returned by ParseMode when the persisted record is empty.
var ErrModeMissing = errors.New("operating mode is not set")

// ErrUnknownModeName is returned by ParseModeName for unsupported names.
var ErrUnknownModeName = errors.New("unknown operating mode name")

// ParseModeName decodes a mode typed by an operator: "detector" or "intercom",
// or their record forms "1" and "2".
func ParseModeName(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "detector", detectorText:
		return ModeDetector, nil
	case "intercom", intercomText:
		return ModeIntercom, nil
	default:
		return ModeUnknown, fmt.Errorf("%w: %q", ErrUnknownModeName, s)
	}
}

// ParseMode decodes the persisted operating mode record.
// "1" selects Detector, any other non-empty text selects Intercom.
func ParseMode(s string) (Mode, error) {
	switch strings.TrimSpace(s) {
	case "":
		return ModeUnknown, ErrModeMissing
	case detectorText:
		return ModeDetector, nil
	default:
		return ModeIntercom, nil
	}
}

// Record returns the text written to storage for m, or "" for ModeUnknown.
func (m Mode) Record() string {
	switch m {
	case ModeDetector:
		return detectorText
	case ModeIntercom:
		return intercomText
	default:
		return ""
	}
}

// Valid reports whether m is one of the two operating modes.
func (m Mode) Valid() bool {
	return m == ModeDetector || m == ModeIntercom
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeDetector:
		return "detector"
	case ModeIntercom:
		return "intercom"
	default:
		return "unknown"
	}
}
