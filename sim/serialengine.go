package sim

import (
	"fmt"
	"log"
	"reflect"
	"sync"
)

// A SerialEngine handles events one at a time in time order. It is driven by
// a single goroutine. The lock only guards readers of the current time, such
// as monitoring.
type SerialEngine struct {
	HookableBase

	mu    sync.RWMutex
	now   VTimeInSec
	queue eventQueue
}

// NewSerialEngine creates an engine at time zero.
func NewSerialEngine() *SerialEngine {
	return &SerialEngine{}
}

// Schedule queues an event. Scheduling into the past is a modelling bug.
func (e *SerialEngine) Schedule(evt Event) {
	if now := e.CurrentTime(); evt.Time() < now {
		log.Panicf(
			"scheduling an event earlier than current time, evt @ %.10f, now %.10f",
			evt.Time(), now,
		)
	}

	e.queue.push(evt)
}

// CurrentTime returns the time of the last handled event, or the target of
// the last RunUntil if that is later.
func (e *SerialEngine) CurrentTime() VTimeInSec {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.now
}

func (e *SerialEngine) advance(t VTimeInSec) {
	e.mu.Lock()
	if t > e.now {
		e.now = t
	}
	e.mu.Unlock()
}

// Run handles events until none is left.
func (e *SerialEngine) Run() error {
	for e.queue.Len() > 0 {
		if err := e.handleNext(); err != nil {
			return err
		}
	}

	return nil
}

// RunUntil handles the events that happen no later than t and then moves the
// current time to t.
func (e *SerialEngine) RunUntil(t VTimeInSec) error {
	for {
		next := e.queue.peek()
		if next == nil || next.Time() > t {
			break
		}

		if err := e.handleNext(); err != nil {
			return err
		}
	}

	e.advance(t)

	return nil
}

// Pending returns the number of queued events.
func (e *SerialEngine) Pending() int {
	return e.queue.Len()
}

// NextEventTime returns the time of the earliest queued event.
func (e *SerialEngine) NextEventTime() (VTimeInSec, bool) {
	next := e.queue.peek()
	if next == nil {
		return 0, false
	}

	return next.Time(), true
}

func (e *SerialEngine) handleNext() error {
	evt := e.queue.pop()
	e.advance(evt.Time())

	ctx := HookCtx{Domain: e, Pos: HookPosBeforeEvent, Item: evt}
	e.InvokeHook(ctx)

	if err := evt.Handler().Handle(evt); err != nil {
		return fmt.Errorf("handling %s @ %.10f: %w",
			reflect.TypeOf(evt), evt.Time(), err)
	}

	ctx.Pos = HookPosAfterEvent
	e.InvokeHook(ctx)

	return nil
}
