// Package barrier implements the synchronizer that decides when assertions
// about the device may run.
package barrier

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/sarchlab/nftest/fault"
)

// State is the synchronizer state.
type State int

// States, in the order a barrier moves through them.
const (
	Idle State = iota
	Sending
	Draining
	Settled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Sending:
		return "SENDING"
	case Draining:
		return "DRAINING"
	case Settled:
		return "SETTLED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// A Drainer waits until the device has processed everything in flight.
type Drainer interface {
	Drain(ctx context.Context) error
}

// A Channel moves packets around a barrier. Flush submits the queued sends
// and Collect matches what was captured against the expectations.
type Channel interface {
	Flush(ctx context.Context) error
	Collect(ctx context.Context) error
}

// Synchronizer tracks whether the device has settled. Barrier and
// MarkSending are called from the driving goroutine. State and Rounds may be
// read from anywhere.
type Synchronizer struct {
	logger  *zap.Logger
	drainer Drainer
	channel Channel

	mu     sync.Mutex
	state  State
	rounds int
}

// New creates a synchronizer in the Idle state.
func New(drainer Drainer, channel Channel, logger *zap.Logger) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Synchronizer{
		logger:  logger.Named("barrier"),
		drainer: drainer,
		channel: channel,
	}
}

// State returns the current state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Rounds returns how many barriers have settled the device.
func (s *Synchronizer) Rounds() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rounds
}

func (s *Synchronizer) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state
	if state == Settled {
		s.rounds++
	}
}

// MarkSending records that packets were sent or expected since the last
// barrier.
func (s *Synchronizer) MarkSending() {
	s.setState(Sending)
}

// Barrier flushes queued sends, drains the device, and collects captured
// packets. It returns immediately when the device is already settled. On a
// drain failure the state stays Draining and the error is returned.
func (s *Synchronizer) Barrier(ctx context.Context) error {
	if s.State() == Settled {
		return nil
	}

	if err := s.channel.Flush(ctx); err != nil {
		return err
	}

	s.setState(Draining)

	if err := s.drainer.Drain(ctx); err != nil {
		s.logger.Warn("drain failed", zap.Error(err))
		return err
	}

	if err := s.channel.Collect(ctx); err != nil {
		return err
	}

	s.setState(Settled)

	s.logger.Debug("settled", zap.Int("round", s.Rounds()))

	return nil
}

// MustBeSettled returns a usage error unless the device is settled.
func (s *Synchronizer) MustBeSettled(op string) error {
	if state := s.State(); state != Settled {
		return fault.Usagef(op, "device is %s, call Barrier first", state)
	}

	return nil
}
