// Package tick drives a state machine at a fixed rate.
//
// Events may be sent from any goroutine. They are batched and delivered to
// the machine at the start of the next tick, followed by exactly one Update.
// Only the goroutine running the loop touches the machine, which is how a
// single-threaded machine is shared safely.
package tick

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/librescoot/tickfsm"
)

// ErrQueueFull is returned by Send when the current batch is at capacity.
var ErrQueueFull = errors.New("tick: event queue full")

// Target is the part of *tickfsm.Machine the loop drives.
type Target[E any] interface {
	Update() error
	SendEvent(ev E) (bool, error)
}

// Config configures a Loop
type Config struct {
	Rate             time.Duration // Tick interval (default: 60 per second)
	MaxEventsPerTick int           // Batch capacity (default: 1000)
	Logger           *slog.Logger  // Default: tickfsm.Logger
}

// Loop batches events and steps a Target once per tick
type Loop[E any] struct {
	target Target[E]
	rate   time.Duration
	max    int
	logger *slog.Logger

	batchMu sync.Mutex
	batch   []E

	stepMu sync.Mutex
	ticks  atomic.Uint64
}

// New creates a loop for target.
func New[E any](target Target[E], cfg Config) *Loop[E] {
	if cfg.Rate <= 0 {
		cfg.Rate = time.Second / 60
	}
	if cfg.MaxEventsPerTick <= 0 {
		cfg.MaxEventsPerTick = 1000
	}
	if cfg.Logger == nil {
		cfg.Logger = tickfsm.Logger
	}

	return &Loop[E]{
		target: target,
		rate:   cfg.Rate,
		max:    cfg.MaxEventsPerTick,
		logger: cfg.Logger,
		batch:  make([]E, 0, cfg.MaxEventsPerTick),
	}
}

// Send queues ev for the next tick. It is safe for concurrent use.
func (l *Loop[E]) Send(ev E) error {
	l.batchMu.Lock()
	defer l.batchMu.Unlock()

	if len(l.batch) >= l.max {
		l.logger.Warn("event queue full, dropping event", "event", ev)
		return ErrQueueFull
	}
	l.batch = append(l.batch, ev)
	return nil
}

// Pending returns the number of events waiting for the next tick.
func (l *Loop[E]) Pending() int {
	l.batchMu.Lock()
	defer l.batchMu.Unlock()
	return len(l.batch)
}

// Ticks returns the number of completed steps.
func (l *Loop[E]) Ticks() uint64 {
	return l.ticks.Load()
}

// Step runs one tick: queued events are sent in FIFO order, then the
// target is updated once. On the first error the rest of the batch is
// discarded and the error returned.
func (l *Loop[E]) Step() error {
	l.stepMu.Lock()
	defer l.stepMu.Unlock()

	events := l.collect()
	for _, ev := range events {
		changed, err := l.target.SendEvent(ev)
		if err != nil {
			return fmt.Errorf("send %v: %w", ev, err)
		}
		l.logger.Debug("event delivered", "event", ev, "changed", changed)
	}

	if err := l.target.Update(); err != nil {
		return fmt.Errorf("update: %w", err)
	}

	l.ticks.Add(1)
	return nil
}

// Run steps the target every tick until ctx is done or a step fails.
func (l *Loop[E]) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.rate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := l.Step(); err != nil {
				l.logger.Error("tick failed", "tick", l.Ticks(), "err", err)
				return err
			}
		}
	}
}

// collect atomically retrieves and clears the event batch
func (l *Loop[E]) collect() []E {
	l.batchMu.Lock()
	defer l.batchMu.Unlock()

	events := l.batch
	l.batch = make([]E, 0, cap(events))
	return events
}
