package fsmyaml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librescoot/tickfsm"
)

const doorYAML = `
name: door
initial: closed
states:
  - name: closed
    enter: say_closed
  - name: open
    enter: say_open
    update: tick
    exit: say_leaving
  - name: broken
    enter: say_broken
transitions:
  - {from: closed, event: open, to: open}
  - {from: open, event: close, to: closed}
any:
  - {event: kick, to: broken}
`

type door struct {
	said  []string
	ticks int
}

func doorActions() Actions[*door] {
	say := func(s string) func(*door) {
		return func(d *door) { d.said = append(d.said, s) }
	}
	return Actions[*door]{
		"say_closed":  say("closed"),
		"say_open":    say("open"),
		"say_leaving": say("leaving"),
		"say_broken":  say("broken"),
		"tick":        func(d *door) { d.ticks++ },
	}
}

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(doorYAML))
	require.NoError(t, err)

	assert.Equal(t, "door", doc.Name)
	assert.Equal(t, "closed", doc.Initial)
	require.Len(t, doc.States, 3)
	assert.Equal(t, StateDoc{Name: "open", Enter: "say_open", Update: "tick", Exit: "say_leaving"}, doc.States[1])
	assert.Equal(t, []RuleDoc{
		{From: "closed", Event: "open", To: "open"},
		{From: "open", Event: "close", To: "closed"},
	}, doc.Transitions)
	assert.Equal(t, []AnyDoc{{Event: "kick", To: "broken"}}, doc.Any)
	assert.NoError(t, doc.Validate())
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("states:\n  - name: a\n    guard: nope\n"))
	assert.Error(t, err)
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(nil)
	assert.ErrorIs(t, err, tickfsm.ErrConfiguration)
}

func TestParseRejectsTrailingDocument(t *testing.T) {
	_, err := Parse([]byte("states:\n  - name: a\n---\nstates:\n  - name: b\n"))
	assert.ErrorIs(t, err, tickfsm.ErrConfiguration)

	// The trailing document is decoded too, so its errors still surface.
	_, err = Parse([]byte("states:\n  - name: a\n---\n[unclosed\n"))
	assert.Error(t, err)

	doc, err := Parse([]byte("---\nstates:\n  - name: a\n"))
	require.NoError(t, err)
	assert.Equal(t, "a", doc.States[0].Name)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "door.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doorYAML), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "door", doc.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMarshalRoundTrip(t *testing.T) {
	doc, err := Parse([]byte(doorYAML))
	require.NoError(t, err)

	data, err := doc.Marshal()
	require.NoError(t, err)

	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, doc, again)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
	}{
		{"no states", Document{}},
		{"unnamed state", Document{States: []StateDoc{{Name: ""}}}},
		{"duplicate state", Document{States: []StateDoc{{Name: "a"}, {Name: "a"}}}},
		{"undefined source", Document{
			States:      []StateDoc{{Name: "a"}},
			Transitions: []RuleDoc{{From: "b", Event: "e", To: "a"}},
		}},
		{"undefined target", Document{
			States:      []StateDoc{{Name: "a"}},
			Transitions: []RuleDoc{{From: "a", Event: "e", To: "b"}},
		}},
		{"undefined fallback target", Document{
			States: []StateDoc{{Name: "a"}},
			Any:    []AnyDoc{{Event: "e", To: "b"}},
		}},
		{"undefined initial", Document{
			Initial: "b",
			States:  []StateDoc{{Name: "a"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.doc.Validate(), tickfsm.ErrConfiguration)
		})
	}
}

func TestActionNames(t *testing.T) {
	doc, err := Parse([]byte(doorYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"say_closed", "say_open", "tick", "say_leaving", "say_broken"}, doc.ActionNames())
}
