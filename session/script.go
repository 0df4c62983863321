package session

import (
	"context"

	"github.com/sarchlab/nftest/fault"
	"github.com/sarchlab/nftest/packet"
	"github.com/sarchlab/nftest/regmap"
	"github.com/sarchlab/nftest/result"
	"github.com/sarchlab/nftest/verify"
)

func (s *Session) mustBeRunning(op string) error {
	switch {
	case !s.started:
		return fault.Usagef(op, "session not started")
	case s.finished:
		return fault.Usagef(op, "session already finished")
	}

	return nil
}

// Addr resolves a register name through the design's register map.
func (s *Session) Addr(name string) (regmap.Addr, error) {
	addr, err := s.regs.Addr(name)
	if err != nil {
		return 0, fault.New(fault.Configuration, "registers", err)
	}

	return addr, nil
}

// RegWrite writes a register.
func (s *Session) RegWrite(ctx context.Context, addr regmap.Addr, v regmap.Value) error {
	if err := s.mustBeRunning("reg write"); err != nil {
		return err
	}

	return s.backend.RegWrite(ctx, addr, v)
}

// RegRead reads a register.
func (s *Session) RegRead(ctx context.Context, addr regmap.Addr) (regmap.Value, error) {
	if err := s.mustBeRunning("reg read"); err != nil {
		return 0, err
	}

	return s.backend.RegRead(ctx, addr)
}

// RegReadExpect checks that a register holds the expected value. A mismatch
// is recorded and does not stop the script. The device must be settled.
func (s *Session) RegReadExpect(
	ctx context.Context,
	addr regmap.Addr,
	expected regmap.Value,
) (result.Result, error) {
	if err := s.mustBeRunning("reg read expect"); err != nil {
		return result.Result{}, err
	}

	return s.verifier.Verify(ctx, addr, expected)
}

// RegReadExpectAll checks several registers and returns their results as one
// list.
func (s *Session) RegReadExpectAll(
	ctx context.Context,
	checks ...verify.Check,
) ([]result.Result, error) {
	if err := s.mustBeRunning("reg read expect"); err != nil {
		return nil, err
	}

	return s.verifier.VerifyAll(ctx, checks...)
}

func (s *Session) send(ctx context.Context, ep packet.Endpoint, pkts []*packet.Packet) error {
	if err := s.mustBeRunning("send"); err != nil {
		return err
	}

	if err := s.channel.Send(ctx, ep, pkts...); err != nil {
		return err
	}

	s.sync.MarkSending()

	return nil
}

func (s *Session) expect(ep packet.Endpoint, pkts []*packet.Packet) error {
	if err := s.mustBeRunning("expect"); err != nil {
		return err
	}

	if err := s.channel.Expect(ep, pkts...); err != nil {
		return err
	}

	s.sync.MarkSending()

	return nil
}

// SendPHY sends packets into the external side of a port.
func (s *Session) SendPHY(ctx context.Context, port string, pkts ...*packet.Packet) error {
	return s.send(ctx, packet.PHYPort(port), pkts)
}

// SendDMA sends packets from the host side of a port.
func (s *Session) SendDMA(ctx context.Context, port string, pkts ...*packet.Packet) error {
	return s.send(ctx, packet.DMAPort(port), pkts)
}

// ExpectPHY declares packets that must leave the external side of a port.
func (s *Session) ExpectPHY(port string, pkts ...*packet.Packet) error {
	return s.expect(packet.PHYPort(port), pkts)
}

// ExpectDMA declares packets that must reach the host side of a port.
func (s *Session) ExpectDMA(port string, pkts ...*packet.Packet) error {
	return s.expect(packet.DMAPort(port), pkts)
}

// Barrier submits queued packets, waits until the device has processed
// everything, and checks the captured packets against the expectations.
func (s *Session) Barrier(ctx context.Context) error {
	if err := s.mustBeRunning("barrier"); err != nil {
		return err
	}

	return s.sync.Barrier(ctx)
}

// Delay waits for a number of device clock cycles.
func (s *Session) Delay(ctx context.Context, cycles uint64) error {
	if err := s.mustBeRunning("delay"); err != nil {
		return err
	}

	return s.backend.Delay(ctx, cycles)
}
