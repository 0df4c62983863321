// Package channel queues the packets a test sends and expects, submits them
// to a backend, and matches what the device emitted.
package channel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/sarchlab/nftest/backend"
	"github.com/sarchlab/nftest/fault"
	"github.com/sarchlab/nftest/packet"
	"github.com/sarchlab/nftest/result"
	"github.com/sarchlab/nftest/topology"
)

// Stats counts the traffic of one endpoint.
type Stats struct {
	Endpoint   packet.Endpoint
	Queued     int
	Sent       int
	Expected   int
	Received   int
	Matched    int
	Mismatched int
	Unexpected int
}

// Manager owns the send and expectation queues of a session. Queues are
// mutated only by the driving goroutine. Stats may be read concurrently.
type Manager struct {
	logger  *zap.Logger
	backend backend.Backend
	topo    *topology.Topology
	results *result.Set
	opts    packet.CompareOptions

	sendOrder []packet.Endpoint
	sends     map[packet.Endpoint][]*packet.Packet
	expects   map[packet.Endpoint][]*packet.Packet
	checkSeq  int

	mu    sync.Mutex
	stats map[packet.Endpoint]*Stats
}

// Send queues packets on an endpoint. On an unclocked backend each packet is
// submitted right away. On a clocked backend the packets wait for Flush and
// their times must not decrease within the endpoint.
func (m *Manager) Send(ctx context.Context, ep packet.Endpoint, pkts ...*packet.Packet) error {
	if err := m.topo.Validate(ep); err != nil {
		return err
	}

	if !m.backend.Clocked() {
		return m.sendNow(ctx, ep, pkts)
	}

	queued := m.sends[ep]
	for _, p := range pkts {
		if n := len(queued); n > 0 && p.Time < queued[n-1].Time {
			return fault.Configf("send",
				"packet %s on %s is scheduled at %g, before the previous packet at %g",
				p.ID, ep, p.Time, queued[n-1].Time)
		}

		queued = append(queued, p)
	}

	if _, seen := m.sends[ep]; !seen {
		m.sendOrder = append(m.sendOrder, ep)
	}

	m.sends[ep] = queued

	m.update(ep, func(s *Stats) { s.Queued += len(pkts) })

	return nil
}

func (m *Manager) sendNow(ctx context.Context, ep packet.Endpoint, pkts []*packet.Packet) error {
	for _, p := range pkts {
		s := packet.NewSchedule()
		s.Add(ep, p)

		if err := m.backend.Submit(ctx, s); err != nil {
			return err
		}

		m.update(ep, func(s *Stats) { s.Sent++ })
	}

	return nil
}

// Expect declares packets that must appear on an endpoint, in order.
func (m *Manager) Expect(ep packet.Endpoint, pkts ...*packet.Packet) error {
	if err := m.topo.Validate(ep); err != nil {
		return err
	}

	m.expects[ep] = append(m.expects[ep], pkts...)

	m.update(ep, func(s *Stats) { s.Expected += len(pkts) })

	return nil
}

// Pending reports whether sends are queued or expectations are outstanding.
func (m *Manager) Pending() bool {
	for _, q := range m.sends {
		if len(q) > 0 {
			return true
		}
	}

	for _, q := range m.expects {
		if len(q) > 0 {
			return true
		}
	}

	return false
}

// Flush submits every queued send as one schedule. Endpoints appear in the
// order they were first used and entries are ordered by time.
func (m *Manager) Flush(ctx context.Context) error {
	s := packet.NewSchedule()

	for _, ep := range m.sendOrder {
		for _, p := range m.sends[ep] {
			s.Add(ep, p)
		}
	}

	if s.Len() == 0 {
		return nil
	}

	s.Interleave()

	if err := m.backend.Submit(ctx, s); err != nil {
		return err
	}

	for _, ep := range m.sendOrder {
		n := len(m.sends[ep])
		m.update(ep, func(st *Stats) {
			st.Queued -= n
			st.Sent += n
		})
	}

	m.logger.Debug("flushed",
		zap.Int("packets", s.Len()),
		zap.Float64("last", s.Last()))

	m.sendOrder = nil
	m.sends = make(map[packet.Endpoint][]*packet.Packet)

	return nil
}

// Collect drains the captured packets of every endpoint and matches them
// against the expectations. Each expected packet yields one result and each
// packet nobody expected yields one failure. Expectations are consumed.
func (m *Manager) Collect(ctx context.Context) error {
	var results []result.Result

	for _, ep := range m.topo.Endpoints() {
		got, err := m.receiveAll(ctx, ep)
		if err != nil {
			return err
		}

		results = append(results, m.match(ep, m.expects[ep], got)...)
	}

	m.expects = make(map[packet.Endpoint][]*packet.Packet)

	return m.results.Add(results...)
}

func (m *Manager) receiveAll(ctx context.Context, ep packet.Endpoint) ([]*packet.Packet, error) {
	var got []*packet.Packet

	for {
		p, err := m.backend.Receive(ctx, ep)
		if errors.Is(err, backend.ErrNoPacket) {
			return got, nil
		}

		if err != nil {
			return nil, fault.Classify(fault.Transport, "receive", err)
		}

		got = append(got, p)
	}
}

func (m *Manager) match(ep packet.Endpoint, want, got []*packet.Packet) []result.Result {
	var (
		results []result.Result
		st      Stats
	)

	st.Received = len(got)

	for i, w := range want {
		r := result.Result{
			ID:       m.nextID("packet"),
			Kind:     result.Packet,
			Expected: packet.Summary(w.Data),
		}

		switch {
		case i >= len(got):
			r.Description = fmt.Sprintf("%s packet %d was not received", ep, i)
			r.Actual = "none"
			st.Mismatched++
		case packet.Equal(w.Data, got[i].Data, m.opts):
			r.Description = fmt.Sprintf("%s packet %d", ep, i)
			r.Actual = packet.Summary(got[i].Data)
			r.Pass = true
			st.Matched++
		default:
			r.Description = fmt.Sprintf("%s packet %d differs:\n%s",
				ep, i, packet.Diff(w.Data, got[i].Data))
			r.Actual = packet.Summary(got[i].Data)
			st.Mismatched++
		}

		results = append(results, r)
	}

	for i := len(want); i < len(got); i++ {
		results = append(results, result.Result{
			ID:          m.nextID("unexpected"),
			Kind:        result.Packet,
			Description: fmt.Sprintf("%s received unexpected packet %d", ep, i),
			Expected:    "none",
			Actual:      packet.Summary(got[i].Data),
		})
		st.Unexpected++
	}

	if st.Mismatched > 0 || st.Unexpected > 0 {
		m.logger.Info("packet mismatch",
			zap.Stringer("endpoint", ep),
			zap.Int("expected", len(want)),
			zap.Int("received", len(got)),
			zap.Int("mismatched", st.Mismatched),
			zap.Int("unexpected", st.Unexpected))
	}

	m.update(ep, func(s *Stats) {
		s.Received += st.Received
		s.Matched += st.Matched
		s.Mismatched += st.Mismatched
		s.Unexpected += st.Unexpected
	})

	return results
}

func (m *Manager) nextID(prefix string) string {
	m.checkSeq++
	return fmt.Sprintf("%s-%04d", prefix, m.checkSeq)
}

func (m *Manager) update(ep packet.Endpoint, f func(s *Stats)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stats[ep]
	if !ok {
		s = &Stats{Endpoint: ep}
		m.stats[ep] = s
	}

	f(s)
}

// Stats returns the counters of every endpoint of the topology, in topology
// order.
func (m *Manager) Stats() []Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	eps := m.topo.Endpoints()
	out := make([]Stats, 0, len(eps))

	for _, ep := range eps {
		if s, ok := m.stats[ep]; ok {
			out = append(out, *s)
			continue
		}

		out = append(out, Stats{Endpoint: ep})
	}

	return out
}
