package packet

import "sort"

// Scheduled is one entry of a schedule: send Packet on Endpoint at Offset
// seconds after the schedule is submitted.
type Scheduled struct {
	Endpoint Endpoint
	Packet   *Packet
	Offset   float64
}

// A Schedule is an ordered list of packets to inject. A backend receives a
// schedule as one unit, so the relative timing of a burst across ports is
// part of the contract rather than a side effect of call order.
type Schedule struct {
	entries []Scheduled
}

// NewSchedule creates an empty schedule.
func NewSchedule() *Schedule {
	return &Schedule{}
}

// Add appends a packet, using the packet's Time as its offset.
func (s *Schedule) Add(ep Endpoint, p *Packet) {
	s.entries = append(s.entries, Scheduled{
		Endpoint: ep,
		Packet:   p,
		Offset:   p.Time,
	})
}

// Entries returns the entries in submission order.
func (s *Schedule) Entries() []Scheduled {
	return s.entries
}

// Len returns the number of entries.
func (s *Schedule) Len() int {
	return len(s.entries)
}

// Last returns the largest offset in the schedule.
func (s *Schedule) Last() float64 {
	last := 0.0
	for _, e := range s.entries {
		if e.Offset > last {
			last = e.Offset
		}
	}

	return last
}

// Interleave orders the entries by offset. Entries with equal offsets keep
// their relative order, so per-endpoint order is never changed as long as
// offsets do not decrease within an endpoint.
func (s *Schedule) Interleave() {
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].Offset < s.entries[j].Offset
	})
}

// Endpoints returns the distinct endpoints in first-use order.
func (s *Schedule) Endpoints() []Endpoint {
	seen := make(map[Endpoint]bool)
	var eps []Endpoint

	for _, e := range s.entries {
		if seen[e.Endpoint] {
			continue
		}

		seen[e.Endpoint] = true
		eps = append(eps, e.Endpoint)
	}

	return eps
}
