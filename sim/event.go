package sim

// VTimeInSec is a point in virtual time, in seconds since the engine started.
type VTimeInSec float64

// An Event happens at a fixed virtual time and is handled by one Handler.
type Event interface {
	Time() VTimeInSec
	Handler() Handler
}

// A Handler owns the state that its events change.
type Handler interface {
	Handle(e Event) error
}

// HandlerFunc lets a plain function handle events.
type HandlerFunc func(e Event) error

// Handle calls f(e).
func (f HandlerFunc) Handle(e Event) error {
	return f(e)
}

// EventBase carries the fields every event has.
type EventBase struct {
	ID      string
	time    VTimeInSec
	handler Handler
}

// NewEventBase creates an EventBase with a fresh ID.
func NewEventBase(t VTimeInSec, handler Handler) *EventBase {
	return &EventBase{
		ID:      GetIDGenerator().Generate(),
		time:    t,
		handler: handler,
	}
}

// Time returns when the event happens.
func (e EventBase) Time() VTimeInSec {
	return e.time
}

// Handler returns the handler of the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// A CallbackEvent runs a function when it fires. The simulation backend uses
// it to inject packets at their scheduled offsets.
type CallbackEvent struct {
	*EventBase
}

// NewCallbackEvent creates an event that runs fn at time t.
func NewCallbackEvent(t VTimeInSec, fn func(now VTimeInSec) error) *CallbackEvent {
	return &CallbackEvent{
		EventBase: NewEventBase(t, HandlerFunc(func(e Event) error {
			return fn(e.Time())
		})),
	}
}
