// Package hardware implements the backend that drives a physical board: the
// register window is memory mapped and packets travel over raw sockets on
// the host interfaces cabled to the board.
package hardware

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/sarchlab/nftest/backend"
	"github.com/sarchlab/nftest/fault"
	"github.com/sarchlab/nftest/packet"
	"github.com/sarchlab/nftest/regmap"
	"github.com/sarchlab/nftest/topology"
)

const allOnes = 0xffffffff

var (
	errContention = errors.New("bus contention")
	errNotSticky  = errors.New("written value did not read back")
)

// Backend is the hardware backend.
type Backend struct {
	cfg      Config
	logger   *zap.Logger
	regs     *regmap.Map
	bus      RegisterBus
	ownBus   bool
	openBus  BusOpener
	openLink LinkOpener

	topo     *topology.Topology
	ports    map[packet.Endpoint]*port
	cancel   context.CancelFunc
	group    *errgroup.Group
	openedAt time.Time
	opened   bool

	lastCapture atomic.Int64
	lastSend    time.Time

	failMu  sync.Mutex
	failure error
}

var _ backend.Backend = (*Backend)(nil)

// Mode returns backend.HW.
func (b *Backend) Mode() backend.Mode {
	return backend.HW
}

// Clocked returns false. Packet timestamps are ignored.
func (b *Backend) Clocked() bool {
	return false
}

// VerifyPolicy re-reads lagging counters a few times before giving up.
func (b *Backend) VerifyPolicy() backend.RetryPolicy {
	return backend.RetryPolicy{
		Retries:  b.cfg.VerifyRetries,
		Interval: b.cfg.VerifyInterval,
	}
}

// Open maps the register window, opens one link per endpoint, and starts
// capturing.
func (b *Backend) Open(ctx context.Context, topo *topology.Topology) error {
	if b.opened {
		return fault.Usagef("open", "hardware backend already open")
	}

	if err := ctx.Err(); err != nil {
		return fault.New(fault.Transport, "open", err)
	}

	if b.bus == nil {
		bus, err := b.openBus(b.cfg.ResourcePath, b.cfg.WindowSize)
		if err != nil {
			return fault.New(fault.Transport, "open", err)
		}

		b.bus = bus
		b.ownBus = true
	}

	if err := b.openLinks(topo); err != nil {
		_ = b.closeLinks()
		_ = b.releaseBus()

		return err
	}

	b.topo = topo
	b.openedAt = time.Now()
	b.lastSend = b.openedAt
	b.lastCapture.Store(b.openedAt.UnixNano())

	captureCtx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.group, captureCtx = errgroup.WithContext(captureCtx)

	for _, p := range b.ports {
		b.group.Go(func() error {
			err := b.capture(captureCtx, p)
			if err != nil {
				b.fail(errors.Wrapf(err, "capturing on %s", p.link.Name()))
			}

			return err
		})
	}

	b.opened = true

	b.logger.Info("hardware backend open",
		zap.String("window", b.cfg.ResourcePath),
		zap.Int("links", len(b.ports)))

	return nil
}

func (b *Backend) openLinks(topo *topology.Topology) error {
	b.ports = make(map[packet.Endpoint]*port)
	used := make(map[string]packet.Endpoint)

	for _, ep := range topo.Endpoints() {
		p, _ := topo.Port(ep.Port)

		iface := p.DMAIface
		if ep.Path == packet.PHY {
			iface = p.PHYIface
		}

		if iface == "" && ep.Path == packet.DMA {
			iface = p.Name
		}

		if iface == "" {
			return fault.Configf("open", "endpoint %s has no host interface", ep)
		}

		if other, dup := used[iface]; dup {
			return fault.Configf("open", "endpoints %s and %s share interface %s",
				other, ep, iface)
		}

		used[iface] = ep

		link, err := b.openLink(iface)
		if err != nil {
			return fault.New(fault.Transport, "open", err)
		}

		b.ports[ep] = &port{
			ep:     ep,
			link:   link,
			queue:  newFrameQueue(),
			echoes: newEchoFilter(),
		}
	}

	return nil
}

func (b *Backend) closeLinks() error {
	var first error

	for _, p := range b.ports {
		if err := p.link.Close(); err != nil && first == nil {
			first = err
		}
	}

	return first
}

func (b *Backend) fail(err error) {
	b.failMu.Lock()
	defer b.failMu.Unlock()

	if b.failure == nil {
		b.failure = err
	}
}

func (b *Backend) checkLinks(op string) error {
	if !b.opened {
		return fault.Usagef(op, "hardware backend is not open")
	}

	b.failMu.Lock()
	defer b.failMu.Unlock()

	if b.failure != nil {
		return fault.New(fault.Transport, op, b.failure)
	}

	return nil
}

func (b *Backend) offset(op string, addr regmap.Addr) (uint32, error) {
	if addr < b.cfg.BaseAddr {
		return 0, fault.Configf(op, "address %s is below the register window",
			addr)
	}

	return uint32(addr - b.cfg.BaseAddr), nil
}

func isBusy(err error) bool {
	return errors.Is(err, unix.EBUSY) || errors.Is(err, unix.EAGAIN)
}

func (b *Backend) budget(ctx context.Context) backoff.BackOff {
	return backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewConstantBackOff(b.cfg.RetryInterval),
			uint64(b.cfg.ReadRetries)),
		ctx)
}

func (b *Backend) read(ctx context.Context, off uint32) (uint32, error) {
	return backoff.RetryWithData(func() (uint32, error) {
		v, err := b.bus.Read32(off)

		switch {
		case err != nil && isBusy(err):
			return 0, err
		case err != nil:
			return 0, backoff.Permanent(err)
		case v == allOnes:
			return 0, errContention
		}

		return v, nil
	}, b.budget(ctx))
}

func (b *Backend) regError(op string, addr regmap.Addr, err error) error {
	desc := b.regs.Describe(addr)

	if errors.Is(err, errContention) || errors.Is(err, errNotSticky) ||
		isBusy(err) {
		return fault.Transportf(op, "register %s did not settle after %d retries: %v",
			desc, b.cfg.ReadRetries, err)
	}

	return fault.New(fault.Transport, op, errors.Wrapf(err, "register %s", desc))
}

// RegRead reads a register, retrying while the bus reports contention.
func (b *Backend) RegRead(
	ctx context.Context,
	addr regmap.Addr,
) (regmap.Value, error) {
	if err := b.checkLinks("regread"); err != nil {
		return 0, err
	}

	off, err := b.offset("regread", addr)
	if err != nil {
		return 0, err
	}

	v, err := b.read(ctx, off)
	if err != nil {
		return 0, b.regError("regread", addr, err)
	}

	return regmap.Value(v), nil
}

// RegWrite writes a register. Writes to reset and command registers are
// issued once. Other writes are read back when write verification is on.
func (b *Backend) RegWrite(
	ctx context.Context,
	addr regmap.Addr,
	v regmap.Value,
) error {
	if err := b.checkLinks("regwrite"); err != nil {
		return err
	}

	off, err := b.offset("regwrite", addr)
	if err != nil {
		return err
	}

	verify := b.cfg.VerifyWrites && !b.regs.IsClearOnWrite(addr)

	err = backoff.Retry(func() error {
		if err := b.bus.Write32(off, uint32(v)); err != nil {
			if isBusy(err) {
				return err
			}

			return backoff.Permanent(err)
		}

		if !verify {
			return nil
		}

		got, err := b.bus.Read32(off)
		switch {
		case err != nil && isBusy(err):
			return err
		case err != nil:
			return backoff.Permanent(err)
		case got != uint32(v):
			return errNotSticky
		}

		return nil
	}, b.budget(ctx))
	if err != nil {
		return b.regError("regwrite", addr, err)
	}

	return nil
}

// Submit writes every frame of the schedule to its link in schedule order.
// Offsets are ignored.
func (b *Backend) Submit(ctx context.Context, s *packet.Schedule) error {
	if err := b.checkLinks("submit"); err != nil {
		return err
	}

	for _, e := range s.Entries() {
		if err := b.topo.Validate(e.Endpoint); err != nil {
			return err
		}
	}

	for _, e := range s.Entries() {
		if err := ctx.Err(); err != nil {
			return fault.New(fault.Transport, "submit", err)
		}

		p := b.ports[e.Endpoint]
		p.echoes.record(e.Packet.Data)

		if err := p.link.Send(e.Packet.Data); err != nil {
			return fault.New(fault.Transport, "submit",
				errors.Wrapf(err, "sending on %s", p.link.Name()))
		}

		b.lastSend = time.Now()
	}

	return nil
}

// Receive pops the next captured frame of an endpoint, waiting up to the
// receive timeout.
func (b *Backend) Receive(
	ctx context.Context,
	ep packet.Endpoint,
) (*packet.Packet, error) {
	if err := b.checkLinks("receive"); err != nil {
		return nil, err
	}

	if err := b.topo.Validate(ep); err != nil {
		return nil, err
	}

	q := b.ports[ep].queue
	timer := time.NewTimer(b.cfg.ReceiveTimeout)
	defer timer.Stop()

	for {
		if p, ok := q.pop(); ok {
			return p, nil
		}

		select {
		case <-q.notify:
		case <-timer.C:
			return nil, backend.ErrNoPacket
		case <-ctx.Done():
			return nil, fault.New(fault.Timeout, "receive", ctx.Err())
		}
	}
}

// Delay sleeps for the wall time of a number of device cycles.
func (b *Backend) Delay(ctx context.Context, cycles uint64) error {
	d := time.Duration(float64(cycles) / b.cfg.ClockHz * float64(time.Second))

	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return fault.New(fault.Timeout, "delay", ctx.Err())
	}
}

// Drain waits until the links have been quiet for the quiet period and the
// idle register, if any, reports idle.
func (b *Backend) Drain(ctx context.Context) error {
	if err := b.checkLinks("drain"); err != nil {
		return err
	}

	deadline := time.Now().Add(b.cfg.DrainTimeout)

	poll := b.cfg.QuietPeriod / 4
	if poll < time.Millisecond {
		poll = time.Millisecond
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		settled, err := b.settled(ctx)
		if err != nil {
			return err
		}

		if settled {
			return nil
		}

		if time.Now().After(deadline) {
			return fault.Timeoutf("drain", "device did not drain within %s",
				b.cfg.DrainTimeout)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return fault.New(fault.Timeout, "drain", ctx.Err())
		}

		if err := b.checkLinks("drain"); err != nil {
			return err
		}
	}
}

func (b *Backend) settled(ctx context.Context) (bool, error) {
	last := time.Unix(0, b.lastCapture.Load())
	if b.lastSend.After(last) {
		last = b.lastSend
	}

	if time.Since(last) < b.cfg.QuietPeriod {
		return false, nil
	}

	if b.cfg.IdleRegister == nil {
		return true, nil
	}

	v, err := b.RegRead(ctx, *b.cfg.IdleRegister)
	if err != nil {
		return false, err
	}

	return v == b.cfg.IdleValue, nil
}

// releaseBus closes the register window if Open mapped it.
func (b *Backend) releaseBus() error {
	if !b.ownBus {
		return nil
	}

	err := b.bus.Close()
	b.bus = nil
	b.ownBus = false

	return err
}

// Close stops capturing and releases links and the register window.
func (b *Backend) Close() error {
	if !b.opened {
		return nil
	}

	b.opened = false
	b.cancel()

	linkErr := b.closeLinks()
	captureErr := b.group.Wait()

	busErr := b.releaseBus()

	b.logger.Info("hardware backend closed")

	for _, err := range []error{captureErr, linkErr, busErr} {
		if err != nil {
			return fault.New(fault.Transport, "close", err)
		}
	}

	return nil
}
