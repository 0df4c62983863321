package hardware

import (
	"go.uber.org/zap"

	"github.com/sarchlab/nftest/regmap"
)

// Builder can build hardware backends.
type Builder struct {
	cfg      Config
	regs     *regmap.Map
	bus      RegisterBus
	openBus  BusOpener
	openLink LinkOpener
	logger   *zap.Logger
}

// MakeBuilder creates a builder with the default board parameters.
func MakeBuilder() Builder {
	return Builder{
		cfg:      DefaultConfig(),
		openBus:  openMmapBus,
		openLink: OpenRawLink,
		logger:   zap.NewNop(),
	}
}

// WithConfig sets the board parameters.
func (b Builder) WithConfig(cfg Config) Builder {
	b.cfg = cfg
	return b
}

// WithRegisters sets the register map used to classify registers and to
// describe them in errors.
func (b Builder) WithRegisters(m *regmap.Map) Builder {
	b.regs = m
	return b
}

// WithBus replaces the memory mapped register window.
func (b Builder) WithBus(bus RegisterBus) Builder {
	b.bus = bus
	return b
}

// WithBusOpener replaces how the register window is mapped when no bus is
// given.
func (b Builder) WithBusOpener(open BusOpener) Builder {
	b.openBus = open
	return b
}

// WithLinkOpener replaces how links are opened.
func (b Builder) WithLinkOpener(open LinkOpener) Builder {
	b.openLink = open
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(logger *zap.Logger) Builder {
	b.logger = logger
	return b
}

// Build creates the backend. Devices are opened by Open.
func (b Builder) Build() *Backend {
	return &Backend{
		cfg:      b.cfg,
		regs:     b.regs,
		bus:      b.bus,
		openBus:  b.openBus,
		openLink: b.openLink,
		logger:   b.logger.Named("hw"),
	}
}
