package tickfsm

import (
	"fmt"
	"log/slog"
)

// Machine is the runtime FSM instance.
//
// A Machine is driven synchronously by a single caller: Start once, then
// Update per tick and SendEvent or ChangeState as needed. It holds no lock;
// callers sharing a machine between goroutines must serialize access.
type Machine[O any, S, E comparable] struct {
	states map[S]Behavior[O]
	rules  table[S, E]

	owner   O
	current S
	started bool
	busy    bool // an action or the state change callback is running

	logger              *slog.Logger
	stateChangeCallback func(from, to S)
}

type machineConfig struct {
	logger *slog.Logger
	name   string
}

// MachineOption is a functional option for configuring a Machine
type MachineOption func(*machineConfig)

// WithLogger sets the logger for the machine
func WithLogger(logger *slog.Logger) MachineOption {
	return func(c *machineConfig) {
		c.logger = logger
	}
}

// WithName tags every log record of the machine with fsm=name.
func WithName(name string) MachineOption {
	return func(c *machineConfig) {
		c.name = name
	}
}

// OnStateChange sets a callback invoked after each state change, once the
// new state's entry action has run. Self-transitions are reported too.
// The callback cannot be replaced from inside an action or the callback.
func (m *Machine[O, S, E]) OnStateChange(fn func(from, to S)) error {
	if m.busy {
		return fmt.Errorf("%w: state change callback set from an action", ErrReentrant)
	}
	m.stateChangeCallback = fn
	return nil
}

// Start binds the owner, makes initial the current state and runs its
// entry action. A machine can be started only once.
func (m *Machine[O, S, E]) Start(owner O, initial S) error {
	if m.busy {
		return fmt.Errorf("%w: start called from an action", ErrReentrant)
	}
	if m.started {
		return fmt.Errorf("%w: machine already started", ErrConfiguration)
	}

	b, err := m.behaviorFor(initial)
	if err != nil {
		return fmt.Errorf("failed to enter initial state: %w", err)
	}

	m.owner = owner
	m.current = initial
	m.started = true

	m.logger.Debug("starting machine", "state", initial)
	m.run(func() {
		b.enter(owner)
	})

	return nil
}

// Started reports whether Start has succeeded.
func (m *Machine[O, S, E]) Started() bool {
	return m.started
}

// CurrentState returns the current state.
// During an exit action this is still the state being left; during an
// entry action it is already the state being entered.
func (m *Machine[O, S, E]) CurrentState() (S, error) {
	if !m.started {
		var zero S
		return zero, ErrNotStarted
	}
	return m.current, nil
}

// Update runs the current state's update action. It never transitions.
func (m *Machine[O, S, E]) Update() error {
	if err := m.ready(); err != nil {
		return err
	}

	b := m.states[m.current]
	m.run(func() {
		b.update(m.owner)
	})

	return nil
}

// SendEvent resolves ev against the current state and, if a rule matches,
// changes state. It reports whether a transition happened; an event with no
// matching rule is ignored and is not an error.
func (m *Machine[O, S, E]) SendEvent(ev E) (bool, error) {
	if err := m.ready(); err != nil {
		return false, err
	}

	m.logger.Debug("processing event", "event", ev, "state", m.current)

	to, ok := m.rules.resolve(ev, m.current)
	if !ok {
		m.logger.Debug("no transition found", "event", ev, "state", m.current)
		return false, nil
	}

	m.logger.Debug("executing transition", "event", ev, "from", m.current, "to", to)
	if err := m.changeState(to); err != nil {
		return false, err
	}

	return true, nil
}

// ChangeState exits the current state and enters newState, bypassing event
// resolution. Exit always runs before enter, including when newState is
// the current state.
func (m *Machine[O, S, E]) ChangeState(newState S) error {
	if err := m.ready(); err != nil {
		return err
	}
	return m.changeState(newState)
}

func (m *Machine[O, S, E]) changeState(to S) error {
	next, err := m.behaviorFor(to)
	if err != nil {
		return err
	}

	from := m.current
	prev := m.states[from]

	m.run(func() {
		m.logger.Debug("exiting state", "state", from)
		prev.exit(m.owner)

		m.current = to

		m.logger.Debug("entering state", "state", to)
		next.enter(m.owner)

		if m.stateChangeCallback != nil {
			m.stateChangeCallback(from, to)
		}
	})

	return nil
}

func (m *Machine[O, S, E]) behaviorFor(id S) (Behavior[O], error) {
	b, ok := m.states[id]
	if !ok {
		return Behavior[O]{}, fmt.Errorf("%w: state %v not defined", ErrConfiguration, id)
	}
	return b, nil
}

// ready guards the driver-facing operations
func (m *Machine[O, S, E]) ready() error {
	if m.busy {
		return fmt.Errorf("%w: machine is already running an action", ErrReentrant)
	}
	if !m.started {
		return ErrNotStarted
	}
	return nil
}

// run executes fn with the reentrancy guard held. The guard is released
// even if fn panics.
func (m *Machine[O, S, E]) run(fn func()) {
	m.busy = true
	defer func() {
		m.busy = false
	}()
	fn()
}
