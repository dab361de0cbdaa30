package fsmyaml

import (
	"fmt"

	"github.com/librescoot/tickfsm"
)

// Actions maps action names used in a document to their implementations.
type Actions[O any] map[string]func(O)

// Compile turns a document into a definition keyed by state and event
// names. Every action name must be present in actions. Rule endpoints are
// checked later, by Build.
//
// Duplicate state names are accepted here and replace the earlier state,
// matching tickfsm.Definition.State; Validate reports them.
func Compile[O any](doc *Document, actions Actions[O]) (*tickfsm.Definition[O, string, string], error) {
	def := tickfsm.NewDefinition[O, string, string]()

	for i, s := range doc.States {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: state %d has no name", tickfsm.ErrConfiguration, i)
		}

		var b tickfsm.Behavior[O]
		var err error
		if b.OnEnter, err = lookup(actions, s.Name, "enter", s.Enter); err != nil {
			return nil, err
		}
		if b.OnUpdate, err = lookup(actions, s.Name, "update", s.Update); err != nil {
			return nil, err
		}
		if b.OnExit, err = lookup(actions, s.Name, "exit", s.Exit); err != nil {
			return nil, err
		}

		def.State(s.Name, tickfsm.WithBehavior(b))
	}

	for _, r := range doc.Transitions {
		def.Transition(r.From, r.Event, r.To)
	}
	for _, r := range doc.Any {
		def.AnyStateTransition(r.Event, r.To)
	}

	return def, nil
}

// Build compiles the document and builds a machine from it.
func Build[O any](doc *Document, actions Actions[O], opts ...tickfsm.MachineOption) (*tickfsm.Machine[O, string, string], error) {
	def, err := Compile(doc, actions)
	if err != nil {
		return nil, err
	}
	if doc.Name != "" {
		opts = append([]tickfsm.MachineOption{tickfsm.WithName(doc.Name)}, opts...)
	}
	return def.Build(opts...)
}

func lookup[O any](actions Actions[O], state, hook, name string) (func(O), error) {
	if name == "" {
		return nil, nil
	}
	fn, ok := actions[name]
	if !ok || fn == nil {
		return nil, fmt.Errorf("%w: state %q %s action %q not registered", tickfsm.ErrConfiguration, state, hook, name)
	}
	return fn, nil
}
