// Package designs lists the device models the simulation backend can run.
package designs

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/sarchlab/nftest/dut"
	"github.com/sarchlab/nftest/dut/refnic"
	"github.com/sarchlab/nftest/dut/refrouter"
	"github.com/sarchlab/nftest/regmap"
)

// A Design describes one device model.
type Design struct {
	Name      string
	ID        regmap.Value
	Registers func() *regmap.Map
	NewLookup func(logger *zap.Logger) dut.Lookup
}

var registry = map[string]Design{
	"reference_nic": {
		Name:      "reference_nic",
		ID:        refnic.DesignID,
		Registers: regmap.ReferenceNIC,
		NewLookup: func(*zap.Logger) dut.Lookup { return refnic.NewLookup() },
	},
	"reference_router": {
		Name:      "reference_router",
		ID:        refrouter.DesignID,
		Registers: regmap.ReferenceRouter,
		NewLookup: func(l *zap.Logger) dut.Lookup { return refrouter.NewLookup(l) },
	},
}

// Get returns the named design.
func Get(name string) (Design, error) {
	d, ok := registry[name]
	if !ok {
		return Design{}, fmt.Errorf("unknown design %q, known designs: %v",
			name, Names())
	}

	return d, nil
}

// Names returns the known design names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

// Build creates the datapath of a design. The builder supplies the engine,
// clock, and sizes.
func (d Design) Build(b dut.Builder, logger *zap.Logger) *dut.Datapath {
	if logger == nil {
		logger = zap.NewNop()
	}

	return b.
		WithLookup(d.NewLookup(logger.Named("lookup"))).
		WithDesignID(d.ID).
		WithLogger(logger).
		Build(d.Name)
}
