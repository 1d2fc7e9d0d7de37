package device

// EventKind discriminates the Event union.
type EventKind int

const (
	// EventNoise is a line that carries nothing the controller acts on.
	EventNoise EventKind = iota
	// EventArrival is a detection payload naming a known identity.
	EventArrival
	// EventUnknownArrival is a detection payload without a known identity.
	EventUnknownArrival
	// EventReconfigure is the operator `config` command.
	EventReconfigure
	// EventMalformed is a line that looks like a detection payload but has the wrong shape.
	EventMalformed
)

// String implements fmt.Stringer; the values double as metric labels.
func (k EventKind) String() string {
	switch k {
	case EventArrival:
		return "arrival"
	case EventUnknownArrival:
		return "unknown_arrival"
	case EventReconfigure:
		return "reconfigure"
	case EventMalformed:
		return "malformed"
	default:
		return "noise"
	}
}

// Event is one classified input line.
type Event struct {
	// Kind selects which of the other fields are meaningful.
	Kind EventKind
	// Tag is the matched identity tag for EventArrival.
	Tag string
	// Reason explains why an EventMalformed line was rejected.
	Reason string
}

// Arrival builds an EventArrival for tag.
func Arrival(tag string) Event {
	return Event{Kind: EventArrival, Tag: tag}
}
