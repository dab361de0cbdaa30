package tick

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librescoot/tickfsm"
)

type state string
type event string

type counter struct {
	log     []string
	updates int
}

var _ Target[event] = (*tickfsm.Machine[*counter, state, event])(nil)

func newMachine(t *testing.T) (*tickfsm.Machine[*counter, state, event], *counter) {
	t.Helper()

	m, err := tickfsm.NewDefinition[*counter, state, event]().
		State("off",
			tickfsm.WithOnEnter(func(c *counter) { c.log = append(c.log, "enter off") }),
			tickfsm.WithOnUpdate(func(c *counter) { c.updates++; c.log = append(c.log, "update off") }),
		).
		State("on",
			tickfsm.WithOnEnter(func(c *counter) { c.log = append(c.log, "enter on") }),
			tickfsm.WithOnUpdate(func(c *counter) { c.updates++; c.log = append(c.log, "update on") }),
		).
		Transition("off", "toggle", "on").
		Transition("on", "toggle", "off").
		Build()
	require.NoError(t, err)

	return m, &counter{}
}

func TestStepDeliversEventsThenUpdates(t *testing.T) {
	m, c := newMachine(t)
	require.NoError(t, m.Start(c, "off"))
	c.log = nil

	l := New[event](m, Config{})
	require.NoError(t, l.Send("toggle"))
	require.NoError(t, l.Send("ignored"))
	require.NoError(t, l.Send("toggle"))
	require.NoError(t, l.Send("toggle"))
	assert.Equal(t, 4, l.Pending())

	require.NoError(t, l.Step())

	assert.Equal(t, []string{"enter on", "enter off", "enter on", "update on"}, c.log)
	assert.Equal(t, 0, l.Pending())
	assert.Equal(t, uint64(1), l.Ticks())

	// An empty tick still updates once.
	c.log = nil
	require.NoError(t, l.Step())
	assert.Equal(t, []string{"update on"}, c.log)
	assert.Equal(t, uint64(2), l.Ticks())
}

func TestSendQueueFull(t *testing.T) {
	m, c := newMachine(t)
	require.NoError(t, m.Start(c, "off"))

	l := New[event](m, Config{MaxEventsPerTick: 2})
	require.NoError(t, l.Send("toggle"))
	require.NoError(t, l.Send("toggle"))
	assert.ErrorIs(t, l.Send("toggle"), ErrQueueFull)

	require.NoError(t, l.Step())
	assert.NoError(t, l.Send("toggle"))
}

func TestStepBeforeStart(t *testing.T) {
	m, _ := newMachine(t)

	l := New[event](m, Config{})
	require.NoError(t, l.Send("toggle"))
	require.NoError(t, l.Send("toggle"))

	err := l.Step()
	assert.ErrorIs(t, err, tickfsm.ErrNotStarted)
	assert.Equal(t, 0, l.Pending(), "failed batch is discarded")
	assert.Equal(t, uint64(0), l.Ticks())

	err = l.Step()
	assert.ErrorIs(t, err, tickfsm.ErrNotStarted)
}

func TestConcurrentSend(t *testing.T) {
	m, c := newMachine(t)
	require.NoError(t, m.Start(c, "off"))

	l := New[event](m, Config{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_ = l.Send("toggle")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, l.Pending())

	require.NoError(t, l.Step())
	s, err := m.CurrentState()
	require.NoError(t, err)
	assert.Equal(t, state("off"), s, "an even number of toggles")
}

func TestRunStopsOnCancel(t *testing.T) {
	m, c := newMachine(t)
	require.NoError(t, m.Start(c, "off"))

	l := New[event](m, Config{Rate: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- l.Run(ctx)
	}()

	require.Eventually(t, func() bool { return l.Ticks() >= 3 }, time.Second, time.Millisecond)
	require.NoError(t, l.Send("toggle"))
	require.Eventually(t, func() bool { return l.Pending() == 0 }, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("run did not stop")
	}

	s, err := m.CurrentState()
	require.NoError(t, err)
	assert.Equal(t, state("on"), s)
}

type failingTarget struct{}

func (failingTarget) Update() error { return errors.New("broken") }

func (failingTarget) SendEvent(event) (bool, error) { return false, nil }

func TestRunReturnsStepError(t *testing.T) {
	l := New[event](failingTarget{}, Config{Rate: time.Millisecond})

	err := l.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}
