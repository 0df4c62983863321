// Package backend defines the device interface that hides whether a test runs
// against real hardware or a cycle-accurate simulation.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sarchlab/nftest/packet"
	"github.com/sarchlab/nftest/regmap"
	"github.com/sarchlab/nftest/topology"
)

// Mode selects a backend.
type Mode string

// Supported modes.
const (
	Sim Mode = "sim"
	HW  Mode = "hw"
)

// ParseMode converts a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Sim, HW:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q, want %q or %q", s, Sim, HW)
	}
}

// ErrNoPacket is returned by Receive when nothing is captured on an endpoint.
var ErrNoPacket = errors.New("no packet")

// RetryPolicy controls how register reads are repeated before a mismatch is
// declared.
type RetryPolicy struct {
	// Retries is the number of re-reads after the first mismatching read.
	Retries int

	// Interval is the wall-clock wait before each re-read.
	Interval time.Duration
}

// A Backend executes device operations. Implementations are driven from a
// single goroutine.
type Backend interface {
	// Mode returns the backend kind.
	Mode() Mode

	// Clocked reports whether the backend has a virtual clock and therefore
	// honors packet timestamps.
	Clocked() bool

	// Open binds the backend to the ports of a session.
	Open(ctx context.Context, topo *topology.Topology) error

	// RegRead reads a 32-bit register.
	RegRead(ctx context.Context, addr regmap.Addr) (regmap.Value, error)

	// RegWrite writes a 32-bit register.
	RegWrite(ctx context.Context, addr regmap.Addr, v regmap.Value) error

	// Submit injects a schedule of packets as one unit.
	Submit(ctx context.Context, s *packet.Schedule) error

	// Receive pops the next captured packet of an endpoint, or returns
	// ErrNoPacket.
	Receive(ctx context.Context, ep packet.Endpoint) (*packet.Packet, error)

	// Delay waits for a number of device clock cycles.
	Delay(ctx context.Context, cycles uint64) error

	// Drain blocks until every in-flight packet has been processed.
	Drain(ctx context.Context) error

	// VerifyPolicy returns how register verification should retry.
	VerifyPolicy() RetryPolicy

	// Close releases the device.
	Close() error
}
