package classifier

import (
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/door-sentry/internal/domain/device"
)

// TestClassify_Rules walks every rule for both default tables.
func TestClassify_Rules(t *testing.T) {
	t.Parallel()

	detector := DefaultDetectorTable()
	intercom := DefaultIntercomTable()

	cases := []struct {
		name  string
		line  string
		table *Table
		want  domain.Event
	}{
		{"config command", "config", detector, domain.Event{Kind: domain.EventReconfigure}},
		{"config with line ending", "  config\r\n", intercom, domain.Event{Kind: domain.EventReconfigure}},
		{"config inside payload", "config name face1", detector, domain.Arrival("face1")},
		{"empty", "", detector, domain.Event{Kind: domain.EventNoise}},
		{"no marker", "face1 detected", detector, domain.Event{Kind: domain.EventNoise}},
		{"detector target", "face1 name detected", detector, domain.Arrival("face1")},
		{"detector key value", "name:face1", detector, domain.Arrival("face1")},
		{"detector other face", "face2 name", detector, domain.Event{Kind: domain.EventUnknownArrival}},
		{"intercom visitor", "name=face4", intercom, domain.Arrival("face4")},
		{"intercom unknown", "face9 name", intercom, domain.Event{Kind: domain.EventUnknownArrival}},
		{"intercom target face", "face1 name", intercom, domain.Event{Kind: domain.EventUnknownArrival}},
		{"tag prefix is not a tag", "face10 name", detector, domain.Event{Kind: domain.EventUnknownArrival}},
		{"nil table", "face1 name", nil, domain.Event{Kind: domain.EventUnknownArrival}},
		{"json object", `{"name":"face1"}`, detector, domain.Arrival("face1")},
		{"json with score", `{"name": "face1", "score": 0.93}`, detector, domain.Arrival("face1")},
		{"quoted value", `name="face1"`, detector, domain.Arrival("face1")},
		{"key colon space", "name: face1", detector, domain.Arrival("face1")},
		{"json intercom", `{"name":"face3","box":[1,2,3,4]}`, intercom, domain.Arrival("face3")},
		{"json tag prefix", `{"name":"face10"}`, detector, domain.Event{Kind: domain.EventUnknownArrival}},
	}

	for _, tc := range cases {
		got := Classify(tc.line, tc.table)
		require.Equal(t, tc.want, got, tc.name)
	}
}

// TestClassify_Malformed rejects a marker glued to another word.
func TestClassify_Malformed(t *testing.T) {
	t.Parallel()

	for _, line := range []string{"username=face1", `{"username":"face1"}`} {
		got := Classify(line, DefaultDetectorTable())
		require.Equal(t, domain.EventMalformed, got.Kind, line)
		require.NotEmpty(t, got.Reason, line)
	}
}

// TestClassify_FirstTagWins picks the earliest identity of the table when several match.
func TestClassify_FirstTagWins(t *testing.T) {
	t.Parallel()

	got := Classify("name face5 face3", DefaultIntercomTable())
	require.Equal(t, domain.Arrival("face3"), got)
}

// TestNewTable_Validation covers empty, blank, duplicate and multi-token entries.
func TestNewTable_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewTable(nil)
	require.ErrorIs(t, err, ErrEmptyTable)

	_, err = NewTable([]Identity{{Tag: "face1", Message: " "}})
	require.ErrorIs(t, err, ErrInvalidIdentity)

	_, err = NewTable([]Identity{{Tag: "face 1", Message: "x"}})
	require.ErrorIs(t, err, ErrInvalidIdentity)

	_, err = NewTable([]Identity{{Tag: `"face1"`, Message: "x"}})
	require.ErrorIs(t, err, ErrInvalidIdentity)

	_, err = NewTable([]Identity{{Tag: "name", Message: "x"}})
	require.ErrorIs(t, err, ErrInvalidIdentity)

	_, err = NewTable([]Identity{{Tag: "face1", Message: "a"}, {Tag: "face1", Message: "b"}})
	require.ErrorIs(t, err, ErrDuplicateIdentity)

	_, err = NewTable([]Identity{{Tag: "face1", Message: "a"}, {Tag: "face2", Message: "a"}})
	require.ErrorIs(t, err, ErrDuplicateIdentity)
}

// TestDefaultIntercomTable_DistinctMessages ensures each visitor has its own announcement.
func TestDefaultIntercomTable_DistinctMessages(t *testing.T) {
	t.Parallel()

	table := DefaultIntercomTable()
	ids := table.Identities()
	require.Len(t, ids, 4)

	seen := make(map[string]string, len(ids))

	for _, id := range ids {
		message, ok := table.Message(id.Tag)
		require.True(t, ok)

		prev, dup := seen[message]
		require.False(t, dup, "tags %s and %s share %q", prev, id.Tag, message)

		seen[message] = id.Tag
	}
}
