package classifier

import (
	"fmt"
	"strings"
	"unicode"

	domain "github.com/oshokin/door-sentry/internal/domain/device"
)

const (
	// Marker frames a detection payload.
	Marker = "name"
	// ReconfigureCommand starts the reconfiguration sequence.
	ReconfigureCommand = "config"
)

// Classify turns one input line into an Event using the identities of the active mode.
//
// Rules, in order: the exact command `config` requests reconfiguration; a line
// without the marker is noise; a marker that only occurs inside another word is
// malformed; a known tag word is an arrival; anything else with the marker is
// an unknown arrival. Payload framing such as JSON quotes and braces is ignored.
func Classify(line string, table *Table) domain.Event {
	line = strings.TrimSpace(line)

	if line == ReconfigureCommand {
		return domain.Event{Kind: domain.EventReconfigure}
	}

	if line == "" || !strings.Contains(line, Marker) {
		return domain.Event{Kind: domain.EventNoise}
	}

	tokens := tokenize(line)

	present := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		present[token] = struct{}{}
	}

	if _, ok := present[Marker]; !ok {
		return domain.Event{
			Kind:   domain.EventMalformed,
			Reason: fmt.Sprintf("marker %q is not a separate token", Marker),
		}
	}

	if table != nil {
		for _, id := range table.identities {
			if _, ok := present[id.Tag]; ok {
				return domain.Arrival(id.Tag)
			}
		}
	}

	return domain.Event{Kind: domain.EventUnknownArrival}
}

// tokenize splits a payload into words. Letters, digits, '_' and '-' form
// words; everything else (spaces, quotes, braces, key/value separators) splits.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-'
	})
}
