// Package timeline switches targets on and off along a fixed-length
// timeline advanced in ticks.
//
// A Timeline is usually the owner of, or is owned by, a state machine state:
// Reset on entry and Advance from the state's update action.
package timeline

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnsorted is returned by New when schedules are not ordered by Start.
var ErrUnsorted = errors.New("timeline: schedules not sorted by start")

// Schedule keeps Target active for Duration starting at Start.
type Schedule[T any] struct {
	Start    time.Duration
	Duration time.Duration
	Target   T
}

// Within reports whether t falls inside [Start, Start+Duration).
func (s Schedule[T]) Within(t time.Duration) bool {
	return t >= s.Start && t < s.Start+s.Duration
}

type initialState[T any] struct {
	target T
	active bool
}

// Timeline is not safe for concurrent use.
type Timeline[T comparable] struct {
	setActive func(target T, active bool)
	schedules []Schedule[T]
	initial   []initialState[T]
	total     time.Duration
	elapsed   time.Duration

	// OnEnd is called once by the Advance that reaches the end.
	OnEnd func()
}

// New creates a timeline. Its length is the larger of total and the end of
// the latest schedule. Call Reset before the first Advance to apply the
// targets' states at time zero.
func New[T comparable](setActive func(T, bool), total time.Duration, schedules ...Schedule[T]) (*Timeline[T], error) {
	if setActive == nil {
		return nil, errors.New("timeline: nil setActive")
	}

	for i := 0; i+1 < len(schedules); i++ {
		if schedules[i].Start > schedules[i+1].Start {
			return nil, fmt.Errorf("%w: schedule %d starts at %v, after schedule %d at %v",
				ErrUnsorted, i, schedules[i].Start, i+1, schedules[i+1].Start)
		}
	}

	l := &Timeline[T]{
		setActive: setActive,
		schedules: append([]Schedule[T](nil), schedules...),
		total:     total,
	}

	// A target is initially active if any of its schedules covers zero.
	index := make(map[T]int)
	for _, s := range l.schedules {
		if end := s.Start + s.Duration; end > l.total {
			l.total = end
		}

		i, ok := index[s.Target]
		if !ok {
			i = len(l.initial)
			index[s.Target] = i
			l.initial = append(l.initial, initialState[T]{target: s.Target})
		}
		l.initial[i].active = l.initial[i].active || s.Within(0)
	}

	return l, nil
}

// Reset rewinds to zero and applies every target's initial state.
func (l *Timeline[T]) Reset() {
	l.elapsed = 0
	for _, s := range l.initial {
		l.setActive(s.target, s.active)
	}
}

// Advance moves the timeline forward by dt and toggles every target whose
// schedule was entered or left. A negative dt counts as zero. It reports
// whether the end has been reached; once it has, Advance does nothing.
func (l *Timeline[T]) Advance(dt time.Duration) bool {
	if l.elapsed >= l.total {
		return true
	}
	if dt < 0 {
		dt = 0
	}

	next := l.elapsed + dt
	for _, s := range l.schedules {
		if s.Start > next {
			break
		}
		if was, now := s.Within(l.elapsed), s.Within(next); was != now {
			l.setActive(s.Target, now)
		}
	}
	l.elapsed = next

	if l.elapsed >= l.total {
		if l.OnEnd != nil {
			l.OnEnd()
		}
		return true
	}
	return false
}

// Elapsed returns the current position.
func (l *Timeline[T]) Elapsed() time.Duration {
	return l.elapsed
}

// Total returns the timeline length.
func (l *Timeline[T]) Total() time.Duration {
	return l.total
}

// Done reports whether the end has been reached.
func (l *Timeline[T]) Done() bool {
	return l.elapsed >= l.total
}
