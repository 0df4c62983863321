package sim

// A Ticker advances by one clock cycle. It reports whether anything changed.
type Ticker interface {
	Tick(now VTimeInSec) bool
}

// TickEvent advances a ticking component by one cycle.
type TickEvent struct {
	*EventBase
}

// MakeTickEvent creates a tick for handler at time t.
func MakeTickEvent(handler Handler, t VTimeInSec) TickEvent {
	return TickEvent{EventBase: NewEventBase(t, handler)}
}

// TickingComponent keeps ticking on its clock while its Ticker makes
// progress and goes idle otherwise. Wake restarts an idle component. At most
// one tick is pending at any time.
type TickingComponent struct {
	HookableBase

	name   string
	engine Engine
	freq   Freq
	ticker Ticker

	// nextTick is the time of the pending tick. It starts negative so that
	// the first wake always schedules.
	nextTick VTimeInSec
}

// NewTickingComponent creates a component that ticks ticker at freq.
func NewTickingComponent(
	name string,
	engine Engine,
	freq Freq,
	ticker Ticker,
) *TickingComponent {
	return &TickingComponent{
		name:     name,
		engine:   engine,
		freq:     freq,
		ticker:   ticker,
		nextTick: -1,
	}
}

// Name returns the name of the component.
func (c *TickingComponent) Name() string {
	return c.name
}

// Wake schedules a tick on the next cycle.
func (c *TickingComponent) Wake() {
	t := c.freq.NextTick(c.engine.CurrentTime())
	if c.nextTick >= t {
		return
	}

	c.nextTick = t
	c.engine.Schedule(MakeTickEvent(c, t))
}

// Handle runs one tick.
func (c *TickingComponent) Handle(e Event) error {
	if c.ticker.Tick(e.Time()) {
		c.Wake()
	}

	return nil
}
