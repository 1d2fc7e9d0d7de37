package device

// State is the controller state machine position.
type State int

const (
	// StateBooting covers loading configuration, connecting and the startup notification.
	StateBooting State = iota
	// StateDetectorIdle polls input in Detector mode.
	StateDetectorIdle
	// StateIntercomIdle polls input in Intercom mode.
	StateIntercomIdle
	// StateReconfiguring runs the three-line reconfiguration sequence.
	StateReconfiguring
	// StateError is terminal until restart.
	StateError
)

// States lists every state, in declaration order.
var States = []State{StateBooting, StateDetectorIdle, StateIntercomIdle, StateReconfiguring, StateError}

// IdleState returns the idle state matching m, or StateError for ModeUnknown.
func IdleState(m Mode) State {
	switch m {
	case ModeDetector:
		return StateDetectorIdle
	case ModeIntercom:
		return StateIntercomIdle
	default:
		return StateError
	}
}

// Serving reports whether the device is processing detections.
func (s State) Serving() bool {
	return s == StateDetectorIdle || s == StateIntercomIdle
}

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateBooting:
		return "booting"
	case StateDetectorIdle:
		return "detector_idle"
	case StateIntercomIdle:
		return "intercom_idle"
	case StateReconfiguring:
		return "reconfiguring"
	case StateError:
		return "error"
	default:
		return "invalid"
	}
}
