package classifier

import (
	"errors"
	"fmt"
	"strings"
)

// Identity maps a recognized identity tag to the notification text announcing it.
type Identity struct {
	// Tag is the identity token emitted by the recognition module, e.g. "face1".
	Tag string
	// Message is the notification text sent when Tag arrives.
	Message string
}

// Table is an ordered, validated set of identities known to one mode.
type Table struct {
	// identities keeps configuration order; the first match wins.
	identities []Identity
	// messages indexes identities by tag.
	messages map[string]string
}

var (
	// ErrEmptyTable is returned when a mode has no identities.
	ErrEmptyTable = errors.New("identity table is empty")
	// ErrInvalidIdentity is returned for blank tags or messages and for tags that
	// cannot appear as a single token.
	ErrInvalidIdentity = errors.New("invalid identity")
	// ErrDuplicateIdentity is returned when a tag or a message repeats.
	ErrDuplicateIdentity = errors.New("duplicate identity")
)

// NewTable validates identities and builds a Table.
// Tags must be unique and so must messages: two visitors never share an announcement.
func NewTable(identities []Identity) (*Table, error) {
	if len(identities) == 0 {
		return nil, ErrEmptyTable
	}

	t := &Table{
		identities: make([]Identity, 0, len(identities)),
		messages:   make(map[string]string, len(identities)),
	}

	seenMessages := make(map[string]struct{}, len(identities))

	for _, id := range identities {
		tag := strings.TrimSpace(id.Tag)
		message := strings.TrimSpace(id.Message)

		if tag == "" || message == "" {
			return nil, fmt.Errorf("%w: tag %q message %q", ErrInvalidIdentity, id.Tag, id.Message)
		}

		if words := tokenize(tag); len(words) != 1 || words[0] != tag || tag == Marker {
			return nil, fmt.Errorf("%w: tag %q is not a single token", ErrInvalidIdentity, id.Tag)
		}

		if _, dup := t.messages[tag]; dup {
			return nil, fmt.Errorf("%w: tag %q", ErrDuplicateIdentity, tag)
		}

		if _, dup := seenMessages[message]; dup {
			return nil, fmt.Errorf("%w: message %q", ErrDuplicateIdentity, message)
		}

		seenMessages[message] = struct{}{}
		t.messages[tag] = message
		t.identities = append(t.identities, Identity{Tag: tag, Message: message})
	}

	return t, nil
}

// MustTable is NewTable for tables known to be valid at compile time.
func MustTable(identities ...Identity) *Table {
	t, err := NewTable(identities)
	if err != nil {
		panic(err)
	}

	return t
}

// Message returns the announcement for tag.
func (t *Table) Message(tag string) (string, bool) {
	message, ok := t.messages[tag]

	return message, ok
}

// Identities returns a copy of the table in configuration order.
func (t *Table) Identities() []Identity {
	return append([]Identity(nil), t.identities...)
}

// DefaultDetectorTable recognizes the single target face.
func DefaultDetectorTable() *Table {
	return MustTable(Identity{Tag: "face1", Message: "target arrived"})
}

// DefaultIntercomTable recognizes the four known visitors.
func DefaultIntercomTable() *Table {
	return MustTable(
		Identity{Tag: "face2", Message: "visitor 2 arrived"},
		Identity{Tag: "face3", Message: "visitor 3 arrived"},
		Identity{Tag: "face4", Message: "visitor 4 arrived"},
		Identity{Tag: "face5", Message: "visitor 5 arrived"},
	)
}
