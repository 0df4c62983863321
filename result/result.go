// Package result collects the outcome of every check a test performs.
package result

import (
	"fmt"
	"sync"

	"github.com/sarchlab/nftest/fault"
)

// Kind tells what a result checks.
type Kind int

// Result kinds.
const (
	Packet Kind = iota
	Register
)

func (k Kind) String() string {
	switch k {
	case Packet:
		return "packet"
	case Register:
		return "register"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// A Result is the outcome of one comparison.
type Result struct {
	ID          string
	Kind        Kind
	Description string
	Expected    string
	Actual      string
	Pass        bool
}

// Summary counts results.
type Summary struct {
	Total  int
	Passed int
	Failed int
}

// OK reports whether every result passed.
func (s Summary) OK() bool {
	return s.Failed == 0
}

// A Set accumulates results until it is finalized.
type Set struct {
	mu      sync.Mutex
	results []Result
	index   map[string]int
	final   bool
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{index: make(map[string]int)}
}

// Add records results. A result whose ID is already present is ignored.
// Adding to a finalized set is a usage error.
func (s *Set) Add(rs ...Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.final {
		return fault.Usagef("result", "result set is finalized")
	}

	for _, r := range rs {
		if r.ID != "" {
			if _, dup := s.index[r.ID]; dup {
				continue
			}

			s.index[r.ID] = len(s.results)
		}

		s.results = append(s.results, r)
	}

	return nil
}

// Finalize freezes the set and returns its summary. Calling it again returns
// the same summary.
func (s *Set) Finalize() Summary {
	s.mu.Lock()
	s.final = true
	s.mu.Unlock()

	return s.Summary()
}

// Finalized reports whether the set is frozen.
func (s *Set) Finalized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.final
}

// Results returns a copy of the results in insertion order.
func (s *Set) Results() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Result, len(s.results))
	copy(out, s.results)

	return out
}

// Failures returns the results that did not pass.
func (s *Set) Failures() []Result {
	var failed []Result

	for _, r := range s.Results() {
		if !r.Pass {
			failed = append(failed, r)
		}
	}

	return failed
}

// Summary counts the results recorded so far.
func (s *Set) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{Total: len(s.results)}

	for _, r := range s.results {
		if r.Pass {
			sum.Passed++
		} else {
			sum.Failed++
		}
	}

	return sum
}
