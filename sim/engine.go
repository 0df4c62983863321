// Package sim provides the virtual-time event engine that the simulation
// backend runs device models on.
package sim

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// EventScheduler can be used to schedule future events.
type EventScheduler interface {
	Schedule(e Event)
}

// An Engine is a unit that keeps the discrete event simulation run.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	// Run will process all the events until the simulation finishes
	Run() error

	// RunUntil processes all the events that happen no later than t and then
	// moves the current time to t. Events after t stay in the queue.
	RunUntil(t VTimeInSec) error

	// Pending returns the number of events that have not been handled yet.
	Pending() int

	// NextEventTime returns the time of the earliest pending event. The
	// second return value is false if there is no pending event.
	NextEventTime() (VTimeInSec, bool)
}
