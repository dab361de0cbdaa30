// Package fsmyaml loads state machine definitions from YAML.
//
// A document names its states, the actions each state runs, and the
// transition rules between them. Actions are referenced by name and resolved
// against a registry when the document is compiled:
//
//	name: door
//	initial: closed
//	states:
//	  - name: closed
//	    enter: log_closed
//	  - name: open
//	    update: count_open_ticks
//	transitions:
//	  - {from: closed, event: open, to: open}
//	  - {from: open, event: close, to: closed}
//	any:
//	  - {event: reset, to: closed}
package fsmyaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/librescoot/tickfsm"
)

// Document is the YAML form of a definition
type Document struct {
	Name        string     `yaml:"name,omitempty"`
	Initial     string     `yaml:"initial,omitempty"`
	States      []StateDoc `yaml:"states"`
	Transitions []RuleDoc  `yaml:"transitions,omitempty"`
	Any         []AnyDoc   `yaml:"any,omitempty"`
}

// StateDoc names a state and the registered actions for its hooks.
type StateDoc struct {
	Name   string `yaml:"name"`
	Enter  string `yaml:"enter,omitempty"`
	Update string `yaml:"update,omitempty"`
	Exit   string `yaml:"exit,omitempty"`
}

// RuleDoc is a state-scoped transition rule
type RuleDoc struct {
	From  string `yaml:"from"`
	Event string `yaml:"event"`
	To    string `yaml:"to"`
}

// AnyDoc is a fallback transition rule
type AnyDoc struct {
	Event string `yaml:"event"`
	To    string `yaml:"to"`
}

// Parse decodes a document. Unknown keys and trailing documents are
// rejected.
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", tickfsm.ErrConfiguration)
		}
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}

	// A file holds exactly one definition.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, fmt.Errorf("yaml unmarshal: %w", err)
		}
		return nil, fmt.Errorf("%w: more than one yaml document", tickfsm.ErrConfiguration)
	}
	return &doc, nil
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Marshal encodes the document as YAML.
func (d *Document) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	return data, nil
}

// Validate checks the document's structure without resolving actions:
// state names must be non-empty and unique, rule endpoints must name
// declared states, and Initial, when set, must be declared.
func (d *Document) Validate() error {
	if len(d.States) == 0 {
		return fmt.Errorf("%w: no states defined", tickfsm.ErrConfiguration)
	}

	seen := make(map[string]bool, len(d.States))
	for i, s := range d.States {
		if s.Name == "" {
			return fmt.Errorf("%w: state %d has no name", tickfsm.ErrConfiguration, i)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: state %q declared twice", tickfsm.ErrConfiguration, s.Name)
		}
		seen[s.Name] = true
	}

	for _, r := range d.Transitions {
		if !seen[r.From] {
			return fmt.Errorf("%w: transition on %q from undefined state %q", tickfsm.ErrConfiguration, r.Event, r.From)
		}
		if !seen[r.To] {
			return fmt.Errorf("%w: transition on %q to undefined state %q", tickfsm.ErrConfiguration, r.Event, r.To)
		}
	}
	for _, r := range d.Any {
		if !seen[r.To] {
			return fmt.Errorf("%w: transition on %q to undefined state %q", tickfsm.ErrConfiguration, r.Event, r.To)
		}
	}

	if d.Initial != "" && !seen[d.Initial] {
		return fmt.Errorf("%w: initial state %q not defined", tickfsm.ErrConfiguration, d.Initial)
	}

	return nil
}

// ActionNames returns every action name the document references, in
// declaration order and without duplicates.
func (d *Document) ActionNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, s := range d.States {
		for _, n := range []string{s.Enter, s.Update, s.Exit} {
			if n != "" && !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	return names
}
