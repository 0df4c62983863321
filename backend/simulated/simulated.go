// Package simulated implements the backend that runs a device model on the
// virtual-time engine.
package simulated

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sarchlab/nftest/backend"
	"github.com/sarchlab/nftest/dut"
	"github.com/sarchlab/nftest/dut/designs"
	"github.com/sarchlab/nftest/fault"
	"github.com/sarchlab/nftest/packet"
	"github.com/sarchlab/nftest/regmap"
	"github.com/sarchlab/nftest/sim"
	"github.com/sarchlab/nftest/topology"
)

// Backend is the simulation backend.
type Backend struct {
	logger       *zap.Logger
	design       designs.Design
	freq         sim.Freq
	modelCfg     dut.Config
	loopLatency  uint64
	drainMargin  uint64
	settleBudget uint64
	traceEvents  bool

	engine    *sim.SerialEngine
	device    *dut.Datapath
	topo      *topology.Topology
	names     []string
	injectors map[packet.Endpoint]*injector
	captured  map[packet.Endpoint][]*packet.Packet
	dropped   int
	last      sim.VTimeInSec
	opened    bool
}

var _ backend.Backend = (*Backend)(nil)

// Mode returns backend.Sim.
func (b *Backend) Mode() backend.Mode {
	return backend.Sim
}

// Clocked returns true. Packet timestamps are honored.
func (b *Backend) Clocked() bool {
	return true
}

// VerifyPolicy returns a policy without retries. Simulated counters are exact
// once the device has drained.
func (b *Backend) VerifyPolicy() backend.RetryPolicy {
	return backend.RetryPolicy{}
}

// Design returns the name of the simulated design.
func (b *Backend) Design() string {
	return b.design.Name
}

// Now returns the current virtual time.
func (b *Backend) Now() sim.VTimeInSec {
	if b.engine == nil {
		return 0
	}

	return b.engine.CurrentTime()
}

// Open creates the engine and the device model.
func (b *Backend) Open(_ context.Context, topo *topology.Topology) error {
	if b.opened {
		return fault.Usagef("open", "simulation backend already open")
	}

	ports := topo.Ports()
	if len(ports) > dut.NumPorts {
		return fault.Configf("open", "design %s has %d ports, topology has %d",
			b.design.Name, dut.NumPorts, len(ports))
	}

	b.engine = sim.NewSerialEngine()
	if b.traceEvents {
		b.engine.AcceptHook(sim.NewEventLogger(b.logger.Named("event")))
	}

	b.device = b.design.Build(
		dut.MakeBuilder().
			WithEngine(b.engine).
			WithFreq(b.freq).
			WithConfig(b.modelCfg),
		b.logger.Named(b.design.Name),
	)
	b.device.SetEgress(b.onEgress)

	b.topo = topo
	b.names = b.names[:0]
	for _, p := range ports {
		b.names = append(b.names, p.Name)
	}

	b.injectors = make(map[packet.Endpoint]*injector)
	b.captured = make(map[packet.Endpoint][]*packet.Packet)
	b.dropped = 0
	b.last = 0

	for _, ep := range topo.Endpoints() {
		port, _ := topo.Index(ep.Port)
		b.injectors[ep] = &injector{
			backend: b,
			src:     dut.Dest{Port: port, Path: ep.Path},
		}
	}

	b.opened = true

	b.logger.Info("simulation backend open",
		zap.String("design", b.design.Name),
		zap.Float64("freq_mhz", float64(b.freq/sim.MHz)),
		zap.Strings("loopback", topo.Loopback()))

	return nil
}

func (b *Backend) mustBeOpen(op string) error {
	if !b.opened {
		return fault.Usagef(op, "simulation backend is not open")
	}

	return nil
}

// RegRead reads a register of the device model.
func (b *Backend) RegRead(
	_ context.Context,
	addr regmap.Addr,
) (regmap.Value, error) {
	if err := b.mustBeOpen("regread"); err != nil {
		return 0, err
	}

	v, err := b.device.RegRead(addr)
	if err != nil {
		return 0, b.classifyRegError("regread", err)
	}

	return v, nil
}

// RegWrite writes a register of the device model.
func (b *Backend) RegWrite(
	_ context.Context,
	addr regmap.Addr,
	v regmap.Value,
) error {
	if err := b.mustBeOpen("regwrite"); err != nil {
		return err
	}

	if err := b.device.RegWrite(addr, v); err != nil {
		return b.classifyRegError("regwrite", err)
	}

	return nil
}

func (b *Backend) classifyRegError(op string, err error) error {
	if errors.Is(err, dut.ErrNoRegister) {
		return fault.New(fault.Configuration, op, err)
	}

	return fault.New(fault.Transport, op, err)
}

// Submit schedules every entry at the current virtual time plus its offset.
// The schedule is validated as a whole before anything is scheduled.
func (b *Backend) Submit(_ context.Context, s *packet.Schedule) error {
	if err := b.mustBeOpen("submit"); err != nil {
		return err
	}

	for _, e := range s.Entries() {
		if err := b.topo.Validate(e.Endpoint); err != nil {
			return err
		}

		if e.Offset < 0 {
			return fault.Configf("submit", "packet %s has negative offset %g",
				e.Packet.ID, e.Offset)
		}
	}

	now := b.engine.CurrentTime()

	for _, e := range s.Entries() {
		inj := b.injectors[e.Endpoint]
		pkt := e.Packet
		t := now + sim.VTimeInSec(e.Offset)

		b.engine.Schedule(sim.NewCallbackEvent(t,
			func(now sim.VTimeInSec) error {
				inj.arrive(now, pkt)
				return nil
			}))

		if t > b.last {
			b.last = t
		}
	}

	b.logger.Debug("schedule submitted",
		zap.Int("packets", s.Len()),
		zap.Float64("now", float64(now)),
		zap.Float64("last", float64(b.last)))

	return nil
}

// Receive pops the next frame captured on an endpoint. It never blocks.
func (b *Backend) Receive(
	_ context.Context,
	ep packet.Endpoint,
) (*packet.Packet, error) {
	if err := b.mustBeOpen("receive"); err != nil {
		return nil, err
	}

	if err := b.topo.Validate(ep); err != nil {
		return nil, err
	}

	q := b.captured[ep]
	if len(q) == 0 {
		return nil, backend.ErrNoPacket
	}

	p := q[0]
	b.captured[ep] = q[1:]

	return p, nil
}

// Delay advances virtual time by a number of device cycles.
func (b *Backend) Delay(_ context.Context, cycles uint64) error {
	if err := b.mustBeOpen("delay"); err != nil {
		return err
	}

	target := b.engine.CurrentTime() + b.freq.Cycles(cycles)
	if err := b.engine.RunUntil(target); err != nil {
		return fault.New(fault.Transport, "delay", err)
	}

	return nil
}

// Drain runs the engine until every scheduled injection has happened and the
// device holds no frame.
func (b *Backend) Drain(ctx context.Context) error {
	if err := b.mustBeOpen("drain"); err != nil {
		return err
	}

	start := b.engine.CurrentTime()
	if b.last > start {
		start = b.last
	}

	target := start + b.freq.Cycles(b.drainMargin)
	if err := b.engine.RunUntil(target); err != nil {
		return fault.New(fault.Transport, "drain", err)
	}

	deadline := target + b.freq.Cycles(b.settleBudget)

	for {
		if err := ctx.Err(); err != nil {
			return fault.New(fault.Timeout, "drain", err)
		}

		next, ok := b.engine.NextEventTime()
		if !ok {
			break
		}

		if next > deadline {
			return b.notDrained()
		}

		if err := b.engine.RunUntil(next); err != nil {
			return fault.New(fault.Transport, "drain", err)
		}
	}

	if b.device.Busy() {
		return b.notDrained()
	}

	b.logger.Debug("drained",
		zap.Float64("now", float64(b.engine.CurrentTime())),
		zap.Uint64("cycle", b.freq.Cycle(b.engine.CurrentTime())))

	return nil
}

func (b *Backend) notDrained() error {
	return fault.Timeoutf("drain",
		"device did not drain within %d cycles after the last injection",
		b.drainMargin+b.settleBudget)
}

// Dropped returns how many frames the device sent to ports outside the
// topology since Open.
func (b *Backend) Dropped() int {
	return b.dropped
}

// Close releases the model.
func (b *Backend) Close() error {
	if !b.opened {
		return nil
	}

	b.opened = false
	b.logger.Info("simulation backend closed",
		zap.Float64("virtual_time", float64(b.engine.CurrentTime())))

	return nil
}

func (b *Backend) onEgress(now sim.VTimeInSec, d dut.Dest, f *dut.Frame) {
	if d.Port < 0 || d.Port >= len(b.names) {
		b.drop(now, d, f)
		return
	}

	name := b.names[d.Port]
	ep := packet.Endpoint{Port: name, Path: d.Path}

	if d.Path == packet.PHY && b.topo.IsLoopback(name) {
		inj, ok := b.injectors[ep]
		if !ok {
			b.drop(now, d, f)
			return
		}

		p := &packet.Packet{ID: f.ID, Data: f.Data}
		t := now + b.freq.Cycles(b.loopLatency)

		b.engine.Schedule(sim.NewCallbackEvent(t,
			func(now sim.VTimeInSec) error {
				inj.arrive(now, p)
				return nil
			}))

		return
	}

	b.captured[ep] = append(b.captured[ep], &packet.Packet{
		ID:   f.ID,
		Data: f.Data,
		Time: float64(now),
	})
}

func (b *Backend) drop(now sim.VTimeInSec, d dut.Dest, f *dut.Frame) {
	b.dropped++

	b.logger.Warn("frame sent to a port outside the topology",
		zap.String("packet", f.ID),
		zap.Int("port", d.Port),
		zap.Stringer("path", d.Path),
		zap.Int("ports", len(b.names)),
		zap.Float64("now", float64(now)))
}
