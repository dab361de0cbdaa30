package tickfsm

import (
	"errors"
	"log/slog"
)

// Behavior bundles the actions run against the owner while in one state.
// Any of the hooks may be nil.
type Behavior[O any] struct {
	OnEnter  func(owner O)
	OnUpdate func(owner O)
	OnExit   func(owner O)
}

var (
	// ErrConfiguration reports a definition or call that references an
	// unregistered state, or a second Start.
	ErrConfiguration = errors.New("tickfsm: configuration error")

	// ErrNotStarted is returned by machine operations called before Start.
	ErrNotStarted = errors.New("tickfsm: machine not started")

	// ErrReentrant is returned when an action calls back into the machine
	// that is running it.
	ErrReentrant = errors.New("tickfsm: reentrant call")
)

// Logger is the default logger used when none is provided
var Logger = slog.Default()
