// Package regress holds the regression scripts of the reference designs.
//
// Every script runs unchanged against the simulated and the hardware
// backend. The session decides how sends, barriers, and delays map onto the
// device.
package regress

import (
	"context"
	"fmt"
	"sort"

	"github.com/sarchlab/nftest/config"
	"github.com/sarchlab/nftest/fault"
	"github.com/sarchlab/nftest/regmap"
	"github.com/sarchlab/nftest/session"
	"github.com/sarchlab/nftest/verify"
)

// Options tune a script run.
type Options struct {
	// Seed feeds the generator of random packet lengths.
	Seed uint64
}

// A Test is a named regression script together with the setup it needs.
type Test struct {
	Name        string
	Design      string
	Description string

	// Loopback lists the ports whose PHY side is looped back in simulation.
	Loopback []string

	Script func(opts Options) session.Script
}

// Configure returns cfg adjusted to the test's design and loopback ports.
func (t Test) Configure(cfg config.Config) config.Config {
	cfg.Design = t.Design
	cfg.Sim.Loopback = append([]string(nil), t.Loopback...)

	return cfg
}

// Run runs the test in a fresh session and returns the exit code.
func (t Test) Run(
	ctx context.Context,
	cfg config.Config,
	opts Options,
	sessionOpts ...session.Option,
) int {
	sessionOpts = append([]session.Option{session.WithName(t.Name)}, sessionOpts...)

	return session.Run(ctx, t.Configure(cfg), t.Script(opts), sessionOpts...)
}

var registry = map[string]Test{}

func register(t Test) {
	if _, dup := registry[t.Name]; dup {
		panic(fmt.Sprintf("test %q registered twice", t.Name))
	}

	registry[t.Name] = t
}

// Lookup finds a registered test by name.
func Lookup(name string) (Test, error) {
	t, ok := registry[name]
	if !ok {
		return Test{}, fault.Configf("lookup", "unknown test %q", name)
	}

	return t, nil
}

// Tests lists all registered tests sorted by name.
func Tests() []Test {
	tests := make([]Test, 0, len(registry))
	for _, t := range registry {
		tests = append(tests, t)
	}

	sort.Slice(tests, func(i, j int) bool {
		return tests[i].Name < tests[j].Name
	})

	return tests
}

// expectCounters checks that every named register holds the same value.
func expectCounters(
	ctx context.Context,
	s *session.Session,
	want regmap.Value,
	names ...string,
) error {
	checks := make([]verify.Check, 0, len(names))

	for _, n := range names {
		addr, err := s.Addr(n)
		if err != nil {
			return err
		}

		checks = append(checks, verify.Check{Addr: addr, Expected: want})
	}

	_, err := s.RegReadExpectAll(ctx, checks...)

	return err
}
