package simulated

import (
	"go.uber.org/zap"

	"github.com/sarchlab/nftest/dut"
	"github.com/sarchlab/nftest/dut/designs"
	"github.com/sarchlab/nftest/sim"
)

// Builder can build simulation backends.
type Builder struct {
	design       string
	freq         sim.Freq
	modelCfg     dut.Config
	loopLatency  uint64
	drainMargin  uint64
	settleBudget uint64
	logger       *zap.Logger
	traceEvents  bool
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:         200 * sim.MHz,
		modelCfg:     dut.DefaultConfig(),
		loopLatency:  10,
		drainMargin:  100,
		settleBudget: 1_000_000,
		logger:       zap.NewNop(),
	}
}

// WithDesign sets the device model to run.
func (b Builder) WithDesign(name string) Builder {
	b.design = name
	return b
}

// WithFreq sets the device clock.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithModelConfig sets the device model sizes.
func (b Builder) WithModelConfig(cfg dut.Config) Builder {
	b.modelCfg = cfg
	return b
}

// WithLoopLatency sets how many cycles a frame takes to travel from the PHY
// egress of a loopback port back to its ingress.
func (b Builder) WithLoopLatency(cycles uint64) Builder {
	b.loopLatency = cycles
	return b
}

// WithDrainMargin sets how many cycles past the last scheduled injection the
// engine always runs before checking whether the device is idle.
func (b Builder) WithDrainMargin(cycles uint64) Builder {
	b.drainMargin = cycles
	return b
}

// WithSettleBudget sets the upper bound of cycles spent waiting for the
// device to become idle after the margin.
func (b Builder) WithSettleBudget(cycles uint64) Builder {
	b.settleBudget = cycles
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(logger *zap.Logger) Builder {
	b.logger = logger
	return b
}

// WithEventTracing logs every simulation event at debug level.
func (b Builder) WithEventTracing(on bool) Builder {
	b.traceEvents = on
	return b
}

// Build creates the backend. The engine and the device model are created
// when the backend is opened.
func (b Builder) Build() (*Backend, error) {
	design, err := designs.Get(b.design)
	if err != nil {
		return nil, err
	}

	if err := b.modelCfg.Validate(); err != nil {
		return nil, err
	}

	return &Backend{
		logger:       b.logger.Named("sim"),
		design:       design,
		freq:         b.freq,
		modelCfg:     b.modelCfg,
		loopLatency:  b.loopLatency,
		drainMargin:  b.drainMargin,
		settleBudget: b.settleBudget,
		traceEvents:  b.traceEvents,
	}, nil
}
