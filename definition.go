package tickfsm

import (
	"fmt"
)

// Definition holds the FSM structure before building a Machine
type Definition[O any, S, E comparable] struct {
	states      map[S]*Behavior[O]
	order       []S // registration order, first registration only
	transitions []Transition[S, E]
}

// NewDefinition creates a new FSM definition builder
func NewDefinition[O any, S, E comparable]() *Definition[O, S, E] {
	return &Definition[O, S, E]{
		states:      make(map[S]*Behavior[O]),
		transitions: make([]Transition[S, E], 0),
	}
}

// State registers a state and its behavior. Registering the same state
// again replaces the earlier behavior.
func (d *Definition[O, S, E]) State(id S, opts ...StateOption[O]) *Definition[O, S, E] {
	b := &Behavior[O]{}
	for _, opt := range opts {
		opt(b)
	}
	if _, ok := d.states[id]; !ok {
		d.order = append(d.order, id)
	}
	d.states[id] = b
	return d
}

// Transition adds a rule that fires when event is sent while in from.
// A later rule for the same (from, event) replaces the earlier one.
func (d *Definition[O, S, E]) Transition(from S, event E, to S) *Definition[O, S, E] {
	d.transitions = append(d.transitions, Transition[S, E]{
		From:  from,
		Event: event,
		To:    to,
	})
	return d
}

// AnyStateTransition adds a fallback rule that fires from any state that
// has no scoped rule for event.
func (d *Definition[O, S, E]) AnyStateTransition(event E, to S) *Definition[O, S, E] {
	d.transitions = append(d.transitions, Transition[S, E]{
		Event: event,
		To:    to,
		Any:   true,
	})
	return d
}

// States returns the registered states in registration order.
func (d *Definition[O, S, E]) States() []S {
	out := make([]S, len(d.order))
	copy(out, d.order)
	return out
}

// Transitions returns the rules in the order they were added.
func (d *Definition[O, S, E]) Transitions() []Transition[S, E] {
	out := make([]Transition[S, E], len(d.transitions))
	copy(out, d.transitions)
	return out
}

// Validate checks the definition for errors
func (d *Definition[O, S, E]) Validate() error {
	if len(d.states) == 0 {
		return fmt.Errorf("%w: no states defined", ErrConfiguration)
	}

	for _, t := range d.transitions {
		if !t.Any {
			if _, ok := d.states[t.From]; !ok {
				return fmt.Errorf("%w: transition on %v from undefined state %v", ErrConfiguration, t.Event, t.From)
			}
		}
		if _, ok := d.states[t.To]; !ok {
			return fmt.Errorf("%w: transition on %v to undefined state %v", ErrConfiguration, t.Event, t.To)
		}
	}

	return nil
}

// Build creates a Machine from the definition. The machine gets its own
// copy of the configuration; later changes to d do not affect it.
func (d *Definition[O, S, E]) Build(opts ...MachineOption) (*Machine[O, S, E], error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid definition: %w", err)
	}

	states := make(map[S]Behavior[O], len(d.states))
	for id, b := range d.states {
		states[id] = *b
	}

	cfg := machineConfig{logger: Logger}
	for _, opt := range opts {
		opt(&cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = Logger
	}
	if cfg.name != "" {
		logger = logger.With("fsm", cfg.name)
	}

	m := &Machine[O, S, E]{
		states: states,
		rules:  newTable(d.transitions),
		logger: logger,
	}

	return m, nil
}
